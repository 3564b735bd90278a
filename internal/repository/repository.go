package repository

import (
	"context"
	"time"

	"github.com/kretovv/talkroom/internal/domain"
)

// RoomTable owns room membership. Mutators never accept an empty participant
// id; callers substitute a generated one first.
type RoomTable interface {
	EnsureRoom(ctx context.Context, roomID string) error
	// UpsertMember adds or refreshes a presence record and reports whether
	// the participant already had one in this room (a reconnection).
	UpsertMember(ctx context.Context, roomID, userID, name string, client domain.Client) (reconnected bool, err error)
	// MarkDisconnected flags transport loss and stamps LastSeen. No-op when
	// the record is absent.
	MarkDisconnected(ctx context.Context, roomID, userID string) error
	// Touch refreshes LastSeen without changing connectivity.
	Touch(ctx context.Context, roomID, userID string) error
	// RemoveMember deletes the record and the room itself once empty.
	RemoveMember(ctx context.Context, roomID, userID string) error
	Member(ctx context.Context, roomID, userID string) (domain.Member, error)
	Members(ctx context.Context, roomID string) ([]domain.Member, error)
	Snapshot(ctx context.Context, roomID string) (domain.RoomSnapshot, error)
}

// SessionRegistry maps participants to their last-known transport,
// independent of room.
type SessionRegistry interface {
	Put(ctx context.Context, session domain.Session) error
	Get(ctx context.Context, userID string) (domain.Session, error)
	// GetByClient resolves a transport-level disconnect back to its session.
	// A session whose transport was since replaced does not resolve.
	GetByClient(ctx context.Context, clientID string) (domain.Session, error)
	Touch(ctx context.Context, userID string, at time.Time) error
	Delete(ctx context.Context, userID string) error
}
