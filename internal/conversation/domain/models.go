package domain

import "context"

// EventType classifies an inbound chat event.
type EventType string

const (
	EventText    EventType = "text"
	EventPhoto   EventType = "photo"
	EventReset   EventType = "reset"
	EventSummary EventType = "summary"
)

// Event is one inbound chat event for one user.
type Event struct {
	UserID string
	Type   EventType
	Text   string
	Photo  []byte
}

// Reply is the outbound message produced for an event.
type Reply struct {
	UserID string
	Text   string
}

// Service is the per-user session state machine. Handle consumes one event,
// reads and updates that user's session, optionally calls the recognition
// gateway and the ledger, and always produces a reply.
type Service interface {
	Handle(ctx context.Context, ev Event) Reply
}
