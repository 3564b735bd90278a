package domain

import "encoding/json"

// Inbound event names. These are the wire contract with browser clients and
// must not be renamed.
const (
	EventJoinRoom           = "join-room"
	EventForceReconnect     = "force-reconnect"
	EventSendMessage        = "send-message"
	EventSendPrivateMessage = "send-private-message"
	EventPingServer         = "ping-server"
)

// Outbound event names.
const (
	EventUserConnected         = "user-connected"
	EventUserDisconnected      = "user-disconnected"
	EventUserListUpdate        = "user-list-update"
	EventUserReconnectRequest  = "user-reconnect-request"
	EventReceiveMessage        = "receive-message"
	EventReceivePrivateMessage = "receive-private-message"
	EventPongServer            = "pong-server"
)

// Event is an outbound envelope written to a client transport.
type Event struct {
	Name string `json:"event"`
	Data any    `json:"data,omitempty"`
}

// Envelope is an inbound frame; Data is decoded per event name.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

type JoinPayload struct {
	RoomID   string `json:"roomId"`
	UserID   string `json:"userId"`
	UserName string `json:"userName,omitempty"`
}

type ReconnectPayload struct {
	RoomID string `json:"roomId"`
	UserID string `json:"userId"`
}

// ChatPayload carries both group and private chat messages. Recipient is set
// only for private messages.
type ChatPayload struct {
	Sender    string `json:"sender"`
	Name      string `json:"name"`
	Recipient string `json:"recipient,omitempty"`
	Message   string `json:"message"`
	Time      string `json:"time"`
	IsPrivate bool   `json:"isPrivate"`
}

// PingPayload is used for both ping-server and pong-server; the timestamp is
// echoed back untouched so clients can measure latency.
type PingPayload struct {
	UserID    string `json:"userId"`
	RoomID    string `json:"roomId"`
	Timestamp int64  `json:"timestamp"`
}
