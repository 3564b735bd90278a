package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/kretovv/talkroom/internal/domain"
	"github.com/kretovv/talkroom/internal/repository"
)

var (
	ErrNoRoomContext  = errors.New("sender has no room context")
	ErrMessageTooLong = errors.New("chat message is too long")
	ErrEmptyMessage   = errors.New("chat message cannot be empty")
)

const maxChatMessageLength = 4000

// RelayService is the stateless chat pass-through. It owns no state of its
// own; routing goes through the room table and fanout.
type RelayService struct {
	rooms    repository.RoomTable
	sessions repository.SessionRegistry
	fanout   *Broadcaster
	log      *slog.Logger
}

func NewRelayService(rooms repository.RoomTable, sessions repository.SessionRegistry, fanout *Broadcaster, log *slog.Logger) *RelayService {
	if log == nil {
		log = slog.Default()
	}
	return &RelayService{
		rooms:    rooms,
		sessions: sessions,
		fanout:   fanout,
		log:      log,
	}
}

// SendGroupMessage broadcasts to everyone in the room except the sender,
// who renders its own copy locally.
func (s *RelayService) SendGroupMessage(ctx context.Context, roomID string, msg domain.ChatPayload) error {
	const op = "service.relay.group"

	if err := validateMessage(msg.Message); err != nil {
		return err
	}
	if err := s.requireRoomContext(ctx, roomID, msg.Sender); err != nil {
		return err
	}

	s.log.Debug("group message",
		slog.String("op", op),
		slog.String("room_id", roomID),
		slog.String("sender", msg.Sender),
	)

	s.fanout.BroadcastToRoom(ctx, roomID, domain.EventReceiveMessage, msg, msg.Sender)
	return nil
}

// SendPrivateMessage delivers to a single recipient. An absent recipient is
// a silent drop, not an error.
func (s *RelayService) SendPrivateMessage(ctx context.Context, roomID string, msg domain.ChatPayload) error {
	const op = "service.relay.private"

	if err := validateMessage(msg.Message); err != nil {
		return err
	}
	if msg.Recipient == "" {
		return nil
	}
	if err := s.requireRoomContext(ctx, roomID, msg.Sender); err != nil {
		return err
	}

	if _, err := s.rooms.Member(ctx, roomID, msg.Recipient); err != nil {
		s.log.Debug("private message to absent recipient",
			slog.String("op", op),
			slog.String("room_id", roomID),
			slog.String("recipient", msg.Recipient),
		)
		return nil
	}

	s.fanout.SendToMember(ctx, roomID, msg.Recipient, domain.EventReceivePrivateMessage, msg)
	return nil
}

func (s *RelayService) requireRoomContext(ctx context.Context, roomID, senderID string) error {
	session, err := s.sessions.Get(ctx, senderID)
	if err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			return ErrNoRoomContext
		}
		return err
	}
	if session.RoomID != roomID {
		return ErrNoRoomContext
	}
	return nil
}

func validateMessage(text string) error {
	if strings.TrimSpace(text) == "" {
		return ErrEmptyMessage
	}
	if utf8.RuneCountInString(text) > maxChatMessageLength {
		return ErrMessageTooLong
	}
	return nil
}
