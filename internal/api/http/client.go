package http

import (
	"errors"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/kretovv/talkroom/internal/domain"
	"github.com/kretovv/talkroom/lib/logger/sl"
)

var (
	errClientGone = errors.New("client is gone")
	errQueueFull  = errors.New("event queue is full")
)

const eventQueueSize = 16

// wsClient adapts a gorilla connection to domain.Client. All writes funnel
// through the events channel so only the write loop touches the socket.
type wsClient struct {
	id     string
	conn   *websocket.Conn
	events chan domain.Event
	closed chan struct{}
	once   sync.Once
	log    *slog.Logger
}

func newWSClient(conn *websocket.Conn, log *slog.Logger) *wsClient {
	return &wsClient{
		id:     uuid.New().String(),
		conn:   conn,
		events: make(chan domain.Event, eventQueueSize),
		closed: make(chan struct{}),
		log:    log,
	}
}

func (c *wsClient) ID() string { return c.id }

func (c *wsClient) Send(event domain.Event) error {
	select {
	case <-c.closed:
		return errClientGone
	default:
	}

	select {
	case c.events <- event:
		return nil
	case <-c.closed:
		return errClientGone
	default:
		return errQueueFull
	}
}

func (c *wsClient) Close() error {
	c.once.Do(func() { close(c.closed) })
	return c.conn.Close()
}

func (c *wsClient) writeLoop() {
	for {
		select {
		case event := <-c.events:
			if err := c.conn.WriteJSON(event); err != nil {
				c.log.Debug("write failed", slog.String("client_id", c.id), sl.Err(err))
				_ = c.Close()
				return
			}
		case <-c.closed:
			return
		}
	}
}
