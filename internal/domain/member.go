package domain

import "time"

// Member is the presence record of one participant in one room. Fields are
// guarded by the room table's lock; the table hands out copies only.
type Member struct {
	ID        string
	Name      string
	Connected bool
	LastSeen  time.Time
	Client    Client
}

// MemberInfo is the client-facing view of a Member. Transport handles never
// leave the server.
type MemberInfo struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Connected bool   `json:"connected"`
	LastSeen  int64  `json:"lastSeen"`
}

// RoomSnapshot is the full member mapping broadcast as user-list-update.
type RoomSnapshot map[string]MemberInfo

func (m Member) Info() MemberInfo {
	return MemberInfo{
		ID:        m.ID,
		Name:      m.Name,
		Connected: m.Connected,
		LastSeen:  m.LastSeen.UnixMilli(),
	}
}

const displayNamePrefixLen = 8

// DefaultDisplayName builds a fallback name from the participant id when the
// client supplied none.
func DefaultDisplayName(id string) string {
	if len(id) <= displayNamePrefixLen {
		return "User " + id
	}
	return "User " + id[:displayNamePrefixLen] + "..."
}
