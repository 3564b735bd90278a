package domain

import "time"

// Session correlates a participant with its current room and transport. A
// transport-level disconnect only identifies the connection, so the session
// registry is what maps it back to the right room and participant.
type Session struct {
	UserID   string
	RoomID   string
	Client   Client
	LastSeen time.Time
}
