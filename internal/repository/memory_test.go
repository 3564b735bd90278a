package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/kretovv/talkroom/internal/domain"
	"github.com/kretovv/talkroom/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubClient struct {
	id string
}

func (c *stubClient) ID() string { return c.id }

func (c *stubClient) Send(_ domain.Event) error { return nil }

func (c *stubClient) Close() error { return nil }

func TestRoomTableUpsert(t *testing.T) {
	ctx := context.Background()
	table := repository.NewInMemoryRoomTable()
	first := &stubClient{id: "conn-1"}

	reconnected, err := table.UpsertMember(ctx, "abc123", "u1", "Alice", first)
	require.NoError(t, err)
	assert.False(t, reconnected)

	member, err := table.Member(ctx, "abc123", "u1")
	require.NoError(t, err)
	assert.Equal(t, "Alice", member.Name)
	assert.True(t, member.Connected)
	assert.Same(t, first, member.Client.(*stubClient))

	require.NoError(t, table.MarkDisconnected(ctx, "abc123", "u1"))

	second := &stubClient{id: "conn-2"}
	reconnected, err = table.UpsertMember(ctx, "abc123", "u1", "", second)
	require.NoError(t, err)
	assert.True(t, reconnected)

	member, err = table.Member(ctx, "abc123", "u1")
	require.NoError(t, err)
	assert.True(t, member.Connected)
	// Name survives a reconnect that supplied none.
	assert.Equal(t, "Alice", member.Name)
	assert.Same(t, second, member.Client.(*stubClient))
}

func TestRoomTableEnsureRoomIsIdempotent(t *testing.T) {
	ctx := context.Background()
	table := repository.NewInMemoryRoomTable()

	require.NoError(t, table.EnsureRoom(ctx, "abc123"))
	require.NoError(t, table.EnsureRoom(ctx, "abc123"))

	snap, err := table.Snapshot(ctx, "abc123")
	require.NoError(t, err)
	assert.Empty(t, snap)

	_, err = table.UpsertMember(ctx, "abc123", "u1", "Alice", &stubClient{id: "c"})
	require.NoError(t, err)

	// EnsureRoom on an occupied room keeps its members.
	require.NoError(t, table.EnsureRoom(ctx, "abc123"))
	snap, err = table.Snapshot(ctx, "abc123")
	require.NoError(t, err)
	assert.Len(t, snap, 1)
}

func TestRoomTableRejectsEmptyParticipantID(t *testing.T) {
	table := repository.NewInMemoryRoomTable()

	_, err := table.UpsertMember(context.Background(), "abc123", "", "Alice", &stubClient{id: "c"})
	require.ErrorIs(t, err, repository.ErrEmptyUserID)

	_, err = table.Snapshot(context.Background(), "abc123")
	assert.ErrorIs(t, err, repository.ErrRoomNotFound)
}

func TestRoomTableDefaultsDisplayName(t *testing.T) {
	ctx := context.Background()
	table := repository.NewInMemoryRoomTable()

	_, err := table.UpsertMember(ctx, "abc123", "0c73d41f-9d79-44de-b3cc-a1c41f5e95b8", "", &stubClient{id: "c"})
	require.NoError(t, err)

	member, err := table.Member(ctx, "abc123", "0c73d41f-9d79-44de-b3cc-a1c41f5e95b8")
	require.NoError(t, err)
	assert.Equal(t, "User 0c73d41f...", member.Name)
}

func TestRoomTableRemovesEmptyRoom(t *testing.T) {
	ctx := context.Background()
	table := repository.NewInMemoryRoomTable()

	_, err := table.UpsertMember(ctx, "abc123", "u1", "Alice", &stubClient{id: "c1"})
	require.NoError(t, err)
	_, err = table.UpsertMember(ctx, "abc123", "u2", "Bob", &stubClient{id: "c2"})
	require.NoError(t, err)

	require.NoError(t, table.RemoveMember(ctx, "abc123", "u1"))

	snap, err := table.Snapshot(ctx, "abc123")
	require.NoError(t, err)
	assert.Len(t, snap, 1)

	require.NoError(t, table.RemoveMember(ctx, "abc123", "u2"))

	_, err = table.Snapshot(ctx, "abc123")
	assert.ErrorIs(t, err, repository.ErrRoomNotFound)

	// Removing from a gone room stays a no-op.
	assert.NoError(t, table.RemoveMember(ctx, "abc123", "u2"))
}

func TestRoomTableMarkDisconnected(t *testing.T) {
	ctx := context.Background()
	table := repository.NewInMemoryRoomTable()

	_, err := table.UpsertMember(ctx, "abc123", "u1", "Alice", &stubClient{id: "c1"})
	require.NoError(t, err)

	before, err := table.Member(ctx, "abc123", "u1")
	require.NoError(t, err)

	require.NoError(t, table.MarkDisconnected(ctx, "abc123", "u1"))

	after, err := table.Member(ctx, "abc123", "u1")
	require.NoError(t, err)
	assert.False(t, after.Connected)
	assert.False(t, after.LastSeen.Before(before.LastSeen))

	// Absent record: defined no-op.
	assert.NoError(t, table.MarkDisconnected(ctx, "abc123", "nobody"))
	assert.NoError(t, table.MarkDisconnected(ctx, "no-room", "u1"))
}

func TestSessionRegistry(t *testing.T) {
	ctx := context.Background()
	registry := repository.NewInMemorySessionRegistry()
	first := &stubClient{id: "conn-1"}

	require.NoError(t, registry.Put(ctx, domain.Session{
		UserID:   "u1",
		RoomID:   "abc123",
		Client:   first,
		LastSeen: time.Now().UTC(),
	}))

	session, err := registry.GetByClient(ctx, "conn-1")
	require.NoError(t, err)
	assert.Equal(t, "abc123", session.RoomID)

	// A reconnect replaces the transport; the old connection no longer
	// resolves, so its late teardown cannot touch the session.
	second := &stubClient{id: "conn-2"}
	require.NoError(t, registry.Put(ctx, domain.Session{
		UserID:   "u1",
		RoomID:   "abc123",
		Client:   second,
		LastSeen: time.Now().UTC(),
	}))

	_, err = registry.GetByClient(ctx, "conn-1")
	assert.ErrorIs(t, err, repository.ErrSessionNotFound)

	session, err = registry.GetByClient(ctx, "conn-2")
	require.NoError(t, err)
	assert.Equal(t, "u1", session.UserID)

	require.NoError(t, registry.Delete(ctx, "u1"))
	_, err = registry.Get(ctx, "u1")
	assert.ErrorIs(t, err, repository.ErrSessionNotFound)
	_, err = registry.GetByClient(ctx, "conn-2")
	assert.ErrorIs(t, err, repository.ErrSessionNotFound)
}

func TestSessionRegistryTouch(t *testing.T) {
	ctx := context.Background()
	registry := repository.NewInMemorySessionRegistry()

	assert.ErrorIs(t, registry.Touch(ctx, "u1", time.Now()), repository.ErrSessionNotFound)

	require.NoError(t, registry.Put(ctx, domain.Session{UserID: "u1", RoomID: "abc123"}))

	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, registry.Touch(ctx, "u1", at))

	session, err := registry.Get(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, session.LastSeen.Equal(at))
}
