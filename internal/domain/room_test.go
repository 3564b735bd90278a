package domain_test

import (
	"testing"
	"time"

	"github.com/kretovv/talkroom/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidRoomID(t *testing.T) {
	cases := []struct {
		name string
		id   string
		want bool
	}{
		{"alphanumeric", "abc123", true},
		{"hyphen and underscore", "team-call_42", true},
		{"empty", "", false},
		{"slash", "a/b", false},
		{"dot", "..", false},
		{"space", "room name", false},
		{"percent encoded", "room%20", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, domain.ValidRoomID(tc.id))
		})
	}
}

func TestDefaultDisplayName(t *testing.T) {
	assert.Equal(t, "User 0c73d41f...", domain.DefaultDisplayName("0c73d41f-9d79-44de-b3cc-a1c41f5e95b8"))
	assert.Equal(t, "User u1", domain.DefaultDisplayName("u1"))
}

func TestRoomSnapshot(t *testing.T) {
	room := domain.NewRoom("abc123")
	seen := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	room.Members["u1"] = &domain.Member{
		ID:        "u1",
		Name:      "Alice",
		Connected: true,
		LastSeen:  seen,
	}

	snap := room.Snapshot()
	require.Len(t, snap, 1)
	assert.Equal(t, domain.MemberInfo{
		ID:        "u1",
		Name:      "Alice",
		Connected: true,
		LastSeen:  seen.UnixMilli(),
	}, snap["u1"])

	// Later mutations must not show through the snapshot.
	room.Members["u1"].Connected = false
	assert.True(t, snap["u1"].Connected)
}
