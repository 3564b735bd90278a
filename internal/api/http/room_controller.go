package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/kretovv/talkroom/internal/domain"
	"github.com/kretovv/talkroom/internal/repository"
	"github.com/kretovv/talkroom/internal/service"
	"github.com/kretovv/talkroom/lib/logger/sl"
	"github.com/pion/webrtc/v3"
)

type RoomController struct {
	presence   service.PresenceInteractor
	relay      service.RelayInteractor
	log        *slog.Logger
	upgrader   websocket.Upgrader
	peerHost   string
	iceServers []webrtc.ICEServer
}

func NewRoomController(presence service.PresenceInteractor, relay service.RelayInteractor, log *slog.Logger, peerHost string, iceServers []webrtc.ICEServer) *RoomController {
	if log == nil {
		log = slog.Default()
	}
	return &RoomController{
		presence: presence,
		relay:    relay,
		log:      log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		peerHost:   peerHost,
		iceServers: iceServers,
	}
}

// RoomEntry validates the room name before the client opens a socket to it.
// Invalid names are redirected back to the index, same as an unknown path.
func (c *RoomController) RoomEntry(ctx *gin.Context) {
	roomID := ctx.Param("room")
	if !domain.ValidRoomID(roomID) {
		ctx.Redirect(http.StatusFound, "/")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"roomId":   roomID,
		"peerHost": c.peerHost,
	})
}

// ListMembers returns the current snapshot of a room.
func (c *RoomController) ListMembers(ctx *gin.Context) {
	roomID := ctx.Param("roomID")
	if !domain.ValidRoomID(roomID) {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid room id"})
		return
	}

	snapshot, err := c.presence.Snapshot(ctx.Request.Context(), roomID)
	if err != nil {
		if errors.Is(err, repository.ErrRoomNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "room not found"})
			return
		}
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"members": snapshot})
}

// ICEServers hands clients the STUN/TURN configuration for the external
// peer broker. Pass-through only.
func (c *RoomController) ICEServers(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{"iceServers": c.iceServers})
}

// ServeWS upgrades the connection and runs the event dispatch loop until the
// transport drops. The drop itself is the implicit disconnect event.
func (c *RoomController) ServeWS(ctx *gin.Context) {
	conn, err := c.upgrader.Upgrade(ctx.Writer, ctx.Request, nil)
	if err != nil {
		c.log.Warn("upgrade failed", sl.Err(err))
		return
	}

	client := newWSClient(conn, c.log)
	go client.writeLoop()

	c.readLoop(client)

	if err := c.presence.Disconnect(context.Background(), client.ID()); err != nil {
		c.log.Error("disconnect failed", slog.String("client_id", client.ID()), sl.Err(err))
	}
	_ = client.Close()
}

func (c *RoomController) readLoop(client *wsClient) {
	// The room a socket last joined, used to route chat the way the client
	// sent it: message payloads carry no room id.
	var currentRoom string

	for {
		var env domain.Envelope
		if err := client.conn.ReadJSON(&env); err != nil {
			return
		}

		switch env.Event {
		case domain.EventJoinRoom:
			var p domain.JoinPayload
			if err := json.Unmarshal(env.Data, &p); err != nil {
				continue
			}
			if _, err := c.presence.Join(context.Background(), p.RoomID, p.UserID, p.UserName, client); err != nil {
				_ = client.Send(domain.Event{Name: "error", Data: gin.H{"error": err.Error()}})
				continue
			}
			currentRoom = p.RoomID

		case domain.EventForceReconnect:
			var p domain.ReconnectPayload
			if err := json.Unmarshal(env.Data, &p); err != nil {
				continue
			}
			if err := c.presence.ForceReconnect(context.Background(), p.RoomID, p.UserID, client); err != nil {
				_ = client.Send(domain.Event{Name: "error", Data: gin.H{"error": err.Error()}})
				continue
			}
			currentRoom = p.RoomID

		case domain.EventSendMessage:
			if currentRoom == "" {
				continue
			}
			var p domain.ChatPayload
			if err := json.Unmarshal(env.Data, &p); err != nil {
				continue
			}
			if err := c.relay.SendGroupMessage(context.Background(), currentRoom, p); err != nil {
				c.log.Debug("group message dropped", slog.String("room_id", currentRoom), sl.Err(err))
			}

		case domain.EventSendPrivateMessage:
			if currentRoom == "" {
				continue
			}
			var p domain.ChatPayload
			if err := json.Unmarshal(env.Data, &p); err != nil {
				continue
			}
			if err := c.relay.SendPrivateMessage(context.Background(), currentRoom, p); err != nil {
				c.log.Debug("private message dropped", slog.String("room_id", currentRoom), sl.Err(err))
			}

		case domain.EventPingServer:
			var p domain.PingPayload
			if err := json.Unmarshal(env.Data, &p); err != nil {
				continue
			}
			if err := c.presence.Keepalive(context.Background(), p, client); err != nil {
				c.log.Debug("keepalive failed", sl.Err(err))
			}

		default:
			c.log.Debug("unsupported event", slog.String("event", env.Event))
		}
	}
}
