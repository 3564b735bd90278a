package repository

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/kretovv/talkroom/internal/domain"
)

var (
	ErrRoomNotFound    = errors.New("room not found")
	ErrMemberNotFound  = errors.New("member not found")
	ErrSessionNotFound = errors.New("session not found")
	ErrEmptyUserID     = errors.New("participant id is empty")
)

// InMemoryRoomTable keeps all room state in process memory. There is no
// persistence; a restart empties every room.
type InMemoryRoomTable struct {
	mu    sync.RWMutex
	rooms map[string]*domain.Room
}

func NewInMemoryRoomTable() *InMemoryRoomTable {
	return &InMemoryRoomTable{rooms: make(map[string]*domain.Room)}
}

func (t *InMemoryRoomTable) EnsureRoom(ctx context.Context, roomID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.rooms[roomID]; !ok {
		t.rooms[roomID] = domain.NewRoom(roomID)
	}
	return nil
}

func (t *InMemoryRoomTable) UpsertMember(ctx context.Context, roomID, userID, name string, client domain.Client) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	if userID == "" {
		return false, ErrEmptyUserID
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	room, ok := t.rooms[roomID]
	if !ok {
		room = domain.NewRoom(roomID)
		t.rooms[roomID] = room
	}

	now := time.Now().UTC()

	if member, ok := room.Members[userID]; ok {
		member.Client = client
		member.Connected = true
		member.LastSeen = now
		if name != "" {
			member.Name = name
		}
		return true, nil
	}

	if name == "" {
		name = domain.DefaultDisplayName(userID)
	}
	room.Members[userID] = &domain.Member{
		ID:        userID,
		Name:      name,
		Connected: true,
		LastSeen:  now,
		Client:    client,
	}
	return false, nil
}

func (t *InMemoryRoomTable) MarkDisconnected(ctx context.Context, roomID, userID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	room, ok := t.rooms[roomID]
	if !ok {
		return nil
	}
	member, ok := room.Members[userID]
	if !ok {
		return nil
	}

	member.Connected = false
	member.LastSeen = time.Now().UTC()
	return nil
}

func (t *InMemoryRoomTable) Touch(ctx context.Context, roomID, userID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	room, ok := t.rooms[roomID]
	if !ok {
		return ErrRoomNotFound
	}
	member, ok := room.Members[userID]
	if !ok {
		return ErrMemberNotFound
	}

	member.LastSeen = time.Now().UTC()
	return nil
}

func (t *InMemoryRoomTable) RemoveMember(ctx context.Context, roomID, userID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	room, ok := t.rooms[roomID]
	if !ok {
		return nil
	}
	delete(room.Members, userID)
	if len(room.Members) == 0 {
		delete(t.rooms, roomID)
	}
	return nil
}

func (t *InMemoryRoomTable) Member(ctx context.Context, roomID, userID string) (domain.Member, error) {
	if err := ctx.Err(); err != nil {
		return domain.Member{}, err
	}

	t.mu.RLock()
	defer t.mu.RUnlock()

	room, ok := t.rooms[roomID]
	if !ok {
		return domain.Member{}, ErrRoomNotFound
	}
	member, ok := room.Members[userID]
	if !ok {
		return domain.Member{}, ErrMemberNotFound
	}
	return *member, nil
}

func (t *InMemoryRoomTable) Members(ctx context.Context, roomID string) ([]domain.Member, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	t.mu.RLock()
	defer t.mu.RUnlock()

	room, ok := t.rooms[roomID]
	if !ok {
		return nil, ErrRoomNotFound
	}

	members := make([]domain.Member, 0, len(room.Members))
	for _, m := range room.Members {
		members = append(members, *m)
	}
	return members, nil
}

func (t *InMemoryRoomTable) Snapshot(ctx context.Context, roomID string) (domain.RoomSnapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	t.mu.RLock()
	defer t.mu.RUnlock()

	room, ok := t.rooms[roomID]
	if !ok {
		return nil, ErrRoomNotFound
	}
	return room.Snapshot(), nil
}

// InMemorySessionRegistry indexes sessions both by participant and by
// transport id, so an implicit disconnect can find its session.
type InMemorySessionRegistry struct {
	mu       sync.RWMutex
	sessions map[string]domain.Session
	byClient map[string]string
}

func NewInMemorySessionRegistry() *InMemorySessionRegistry {
	return &InMemorySessionRegistry{
		sessions: make(map[string]domain.Session),
		byClient: make(map[string]string),
	}
}

func (r *InMemorySessionRegistry) Put(ctx context.Context, session domain.Session) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if session.UserID == "" {
		return ErrEmptyUserID
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	// A replaced transport must no longer resolve to this session, otherwise
	// the old connection's teardown would tear down the new one.
	if prev, ok := r.sessions[session.UserID]; ok && prev.Client != nil {
		delete(r.byClient, prev.Client.ID())
	}

	r.sessions[session.UserID] = session
	if session.Client != nil {
		r.byClient[session.Client.ID()] = session.UserID
	}
	return nil
}

func (r *InMemorySessionRegistry) Get(ctx context.Context, userID string) (domain.Session, error) {
	if err := ctx.Err(); err != nil {
		return domain.Session{}, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	session, ok := r.sessions[userID]
	if !ok {
		return domain.Session{}, ErrSessionNotFound
	}
	return session, nil
}

func (r *InMemorySessionRegistry) GetByClient(ctx context.Context, clientID string) (domain.Session, error) {
	if err := ctx.Err(); err != nil {
		return domain.Session{}, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	userID, ok := r.byClient[clientID]
	if !ok {
		return domain.Session{}, ErrSessionNotFound
	}
	session, ok := r.sessions[userID]
	if !ok {
		return domain.Session{}, ErrSessionNotFound
	}
	return session, nil
}

func (r *InMemorySessionRegistry) Touch(ctx context.Context, userID string, at time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	session, ok := r.sessions[userID]
	if !ok {
		return ErrSessionNotFound
	}
	session.LastSeen = at
	r.sessions[userID] = session
	return nil
}

func (r *InMemorySessionRegistry) Delete(ctx context.Context, userID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	session, ok := r.sessions[userID]
	if !ok {
		return nil
	}
	if session.Client != nil {
		delete(r.byClient, session.Client.ID())
	}
	delete(r.sessions, userID)
	return nil
}
