package domain

import (
	"regexp"
	"time"
)

var roomIDPattern = regexp.MustCompile(`^[a-zA-Z0-9-_]+$`)

// ValidRoomID reports whether id matches the allow-list of alphanumerics,
// hyphen and underscore. Anything else is rejected before it can reach the
// room table.
func ValidRoomID(id string) bool {
	return roomIDPattern.MatchString(id)
}

// Room is a named, ephemeral group of participants. Rooms are created on
// first join and removed as soon as the last member definitively leaves.
// The member map is guarded by the room table's lock.
type Room struct {
	ID        string
	Members   map[string]*Member
	CreatedAt time.Time
}

func NewRoom(id string) *Room {
	return &Room{
		ID:        id,
		Members:   make(map[string]*Member),
		CreatedAt: time.Now().UTC(),
	}
}

// Snapshot copies the member mapping into its client-facing form.
func (r *Room) Snapshot() RoomSnapshot {
	snap := make(RoomSnapshot, len(r.Members))
	for id, m := range r.Members {
		snap[id] = m.Info()
	}
	return snap
}
