package domain

// Client is the transport handle of one connected browser. The concrete
// implementation lives in the transport layer; services only address it.
type Client interface {
	// ID identifies the underlying connection, not the participant. A
	// participant keeps its id across reconnects, a Client does not.
	ID() string
	// Send enqueues an event for delivery. Best effort: an error means the
	// event was dropped, never that delivery to others should stop.
	Send(event Event) error
	Close() error
}
