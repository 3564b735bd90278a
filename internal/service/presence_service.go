package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/kretovv/talkroom/internal/domain"
	"github.com/kretovv/talkroom/internal/repository"
	"github.com/kretovv/talkroom/lib/logger/sl"
)

var (
	ErrInvalidRoomID = errors.New("invalid room id")
	ErrNilClient     = errors.New("client is required")
)

const defaultGraceWindow = 15 * time.Second

// PresenceService runs the per-participant presence state machine: joins,
// reconnections, transport losses and grace-window expiry. A disconnect is
// never final until the grace window elapses with no sign of life, so a page
// refresh shows up to other members as a single status flicker instead of a
// leave-and-rejoin.
type PresenceService struct {
	rooms    repository.RoomTable
	sessions repository.SessionRegistry
	fanout   *Broadcaster
	log      *slog.Logger
	grace    time.Duration
}

func NewPresenceService(rooms repository.RoomTable, sessions repository.SessionRegistry, fanout *Broadcaster, log *slog.Logger, grace time.Duration) *PresenceService {
	if log == nil {
		log = slog.Default()
	}
	if grace <= 0 {
		grace = defaultGraceWindow
	}
	return &PresenceService{
		rooms:    rooms,
		sessions: sessions,
		fanout:   fanout,
		log:      log,
		grace:    grace,
	}
}

func (s *PresenceService) Join(ctx context.Context, roomID, userID, userName string, client domain.Client) (string, error) {
	const op = "service.presence.join"

	if client == nil {
		return "", ErrNilClient
	}
	if !domain.ValidRoomID(roomID) {
		return "", ErrInvalidRoomID
	}
	if userID == "" {
		// Clients normally reuse a stored id across refreshes; fall back to
		// the transport id so the table never sees an empty key.
		userID = client.ID()
	}

	log := s.log.With(
		slog.String("op", op),
		slog.String("room_id", roomID),
		slog.String("user_id", userID),
	)

	if err := s.rooms.EnsureRoom(ctx, roomID); err != nil {
		return "", err
	}
	reconnected, err := s.rooms.UpsertMember(ctx, roomID, userID, userName, client)
	if err != nil {
		log.Error("upsert failed", sl.Err(err))
		return "", err
	}

	if err := s.rebindSession(ctx, roomID, userID, client); err != nil {
		log.Error("session rebind failed", sl.Err(err))
		return "", err
	}

	// Announced on every join, reconnections included: peers that missed the
	// first announcement still get a connection attempt triggered.
	s.fanout.BroadcastToRoom(ctx, roomID, domain.EventUserConnected, userID, userID)
	s.broadcastSnapshot(ctx, roomID)

	log.Info("member joined", slog.Bool("reconnected", reconnected))
	return userID, nil
}

// Disconnect handles transport loss. The record is only marked disconnected;
// actual removal waits for the expiry check.
func (s *PresenceService) Disconnect(ctx context.Context, clientID string) error {
	const op = "service.presence.disconnect"

	session, err := s.sessions.GetByClient(ctx, clientID)
	if err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			// Connection that never joined a room, or one already replaced
			// by a reconnect.
			return nil
		}
		return err
	}

	log := s.log.With(
		slog.String("op", op),
		slog.String("room_id", session.RoomID),
		slog.String("user_id", session.UserID),
	)

	s.beginExpiry(ctx, session.RoomID, session.UserID)
	log.Info("member disconnected, expiry scheduled", slog.Duration("grace", s.grace))
	return nil
}

// rebindSession points the participant's single session at roomID and the
// given transport. A session left over from a different room means the
// participant moved on; that room's record starts its disconnect transition
// so it cannot linger connected behind a dead correlation.
func (s *PresenceService) rebindSession(ctx context.Context, roomID, userID string, client domain.Client) error {
	previous, err := s.sessions.Get(ctx, userID)
	movedRooms := err == nil && previous.RoomID != roomID

	if err := s.sessions.Put(ctx, domain.Session{
		UserID:   userID,
		RoomID:   roomID,
		Client:   client,
		LastSeen: time.Now().UTC(),
	}); err != nil {
		return err
	}

	if movedRooms {
		s.beginExpiry(ctx, previous.RoomID, userID)
	}
	return nil
}

// beginExpiry runs the disconnect transition: mark the record, tell the
// room, and schedule the one-shot check. No cancellation handle; correctness
// comes from the LastSeen re-validation at fire time.
func (s *PresenceService) beginExpiry(ctx context.Context, roomID, userID string) {
	if err := s.rooms.MarkDisconnected(ctx, roomID, userID); err != nil {
		s.log.Error("mark disconnected failed", sl.Err(err))
		return
	}

	member, err := s.rooms.Member(ctx, roomID, userID)
	if err != nil {
		return
	}
	if session, err := s.sessions.Get(ctx, userID); err == nil && session.RoomID == roomID {
		_ = s.sessions.Touch(ctx, userID, member.LastSeen)
	}

	s.broadcastSnapshot(ctx, roomID)

	seenAt := member.LastSeen
	time.AfterFunc(s.grace, func() {
		s.expire(roomID, userID, seenAt)
	})
}

// expire fires after the grace window. Any intervening reconnect or
// keepalive moved LastSeen, which turns the check into a no-op.
func (s *PresenceService) expire(roomID, userID string, seenAt time.Time) {
	const op = "service.presence.expire"
	ctx := context.Background()

	log := s.log.With(
		slog.String("op", op),
		slog.String("room_id", roomID),
		slog.String("user_id", userID),
	)

	member, err := s.rooms.Member(ctx, roomID, userID)
	if err != nil {
		return
	}
	if member.Connected || !member.LastSeen.Equal(seenAt) {
		log.Debug("expiry superseded")
		return
	}

	if err := s.rooms.RemoveMember(ctx, roomID, userID); err != nil {
		log.Error("remove failed", sl.Err(err))
		return
	}
	// The session may already belong to another room the participant moved
	// to; deleting it then would sever the live correlation.
	if session, err := s.sessions.Get(ctx, userID); err == nil && session.RoomID == roomID {
		_ = s.sessions.Delete(ctx, userID)
	}

	s.fanout.BroadcastToRoom(ctx, roomID, domain.EventUserDisconnected, userID, "")
	s.broadcastSnapshot(ctx, roomID)
	log.Info("member expired")
}

// ForceReconnect asks every peer in the room to re-initiate its link to the
// requesting participant.
func (s *PresenceService) ForceReconnect(ctx context.Context, roomID, userID string, client domain.Client) error {
	const op = "service.presence.forceReconnect"

	if client == nil {
		return ErrNilClient
	}
	if !domain.ValidRoomID(roomID) {
		return ErrInvalidRoomID
	}
	if userID == "" {
		userID = client.ID()
	}

	log := s.log.With(
		slog.String("op", op),
		slog.String("room_id", roomID),
		slog.String("user_id", userID),
	)

	if _, err := s.rooms.UpsertMember(ctx, roomID, userID, "", client); err != nil {
		log.Error("upsert failed", sl.Err(err))
		return err
	}
	// The requesting transport becomes the member's current one, so the
	// session must follow it just like on a join; otherwise a record created
	// here is uncorrelatable and a stale socket's teardown hits the live one.
	if err := s.rebindSession(ctx, roomID, userID, client); err != nil {
		log.Error("session rebind failed", sl.Err(err))
		return err
	}

	s.fanout.BroadcastToRoom(ctx, roomID, domain.EventUserReconnectRequest, userID, userID)
	s.broadcastSnapshot(ctx, roomID)

	log.Info("reconnect requested")
	return nil
}

// Keepalive refreshes liveness and answers pong-server with the client's own
// timestamp echoed back.
func (s *PresenceService) Keepalive(ctx context.Context, ping domain.PingPayload, client domain.Client) error {
	if client == nil {
		return ErrNilClient
	}

	now := time.Now().UTC()
	if err := s.rooms.Touch(ctx, ping.RoomID, ping.UserID); err == nil {
		_ = s.sessions.Touch(ctx, ping.UserID, now)
	}

	return client.Send(domain.Event{
		Name: domain.EventPongServer,
		Data: domain.PingPayload{
			UserID:    ping.UserID,
			RoomID:    ping.RoomID,
			Timestamp: ping.Timestamp,
		},
	})
}

func (s *PresenceService) Snapshot(ctx context.Context, roomID string) (domain.RoomSnapshot, error) {
	return s.rooms.Snapshot(ctx, roomID)
}

func (s *PresenceService) broadcastSnapshot(ctx context.Context, roomID string) {
	snapshot, err := s.rooms.Snapshot(ctx, roomID)
	if err != nil {
		// Room already gone, nothing left to update.
		return
	}
	s.fanout.BroadcastToRoom(ctx, roomID, domain.EventUserListUpdate, snapshot, "")
}
