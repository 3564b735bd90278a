package service

import (
	"context"

	"github.com/kretovv/talkroom/internal/domain"
)

type PresenceInteractor interface {
	// Join returns the effective participant id, which may be generated when
	// the client supplied none.
	Join(ctx context.Context, roomID, userID, userName string, client domain.Client) (string, error)
	// Disconnect handles an implicit transport loss, identified only by the
	// connection id.
	Disconnect(ctx context.Context, clientID string) error
	ForceReconnect(ctx context.Context, roomID, userID string, client domain.Client) error
	Keepalive(ctx context.Context, ping domain.PingPayload, client domain.Client) error
	Snapshot(ctx context.Context, roomID string) (domain.RoomSnapshot, error)
}

type RelayInteractor interface {
	SendGroupMessage(ctx context.Context, roomID string, msg domain.ChatPayload) error
	SendPrivateMessage(ctx context.Context, roomID string, msg domain.ChatPayload) error
}
