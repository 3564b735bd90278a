package service

import (
	"context"
	"log/slog"

	"github.com/kretovv/talkroom/internal/domain"
	"github.com/kretovv/talkroom/internal/repository"
	"github.com/kretovv/talkroom/lib/logger/sl"
)

// Broadcaster fans events out to room members. Delivery is best effort and
// at most once; a failed send to one member never aborts the rest.
type Broadcaster struct {
	rooms repository.RoomTable
	log   *slog.Logger
}

func NewBroadcaster(rooms repository.RoomTable, log *slog.Logger) *Broadcaster {
	if log == nil {
		log = slog.Default()
	}
	return &Broadcaster{rooms: rooms, log: log}
}

// BroadcastToRoom delivers the event to every connected member's transport,
// except the optionally excluded participant.
func (b *Broadcaster) BroadcastToRoom(ctx context.Context, roomID, name string, data any, exclude string) {
	members, err := b.rooms.Members(ctx, roomID)
	if err != nil {
		b.log.Debug("broadcast to missing room", slog.String("room_id", roomID), slog.String("event", name))
		return
	}

	event := domain.Event{Name: name, Data: data}
	for _, member := range members {
		if member.ID == exclude {
			continue
		}
		if !member.Connected || member.Client == nil {
			continue
		}
		if err := member.Client.Send(event); err != nil {
			b.log.Debug("dropping event",
				slog.String("member", member.ID),
				slog.String("event", name),
				sl.Err(err),
			)
		}
	}
}

// SendToMember resolves the participant's current transport and delivers
// directly. Absent or disconnected recipients are a logged no-op.
func (b *Broadcaster) SendToMember(ctx context.Context, roomID, userID, name string, data any) {
	member, err := b.rooms.Member(ctx, roomID, userID)
	if err != nil {
		b.log.Debug("send to absent member",
			slog.String("room_id", roomID),
			slog.String("member", userID),
			slog.String("event", name),
		)
		return
	}
	if !member.Connected || member.Client == nil {
		return
	}

	if err := member.Client.Send(domain.Event{Name: name, Data: data}); err != nil {
		b.log.Debug("dropping event",
			slog.String("member", userID),
			slog.String("event", name),
			sl.Err(err),
		)
	}
}
