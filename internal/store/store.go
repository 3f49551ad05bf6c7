package store

import (
	"context"
	"time"
)

// Message is an archived chat message.
type Message struct {
	ID        int64
	RunID     string // process run that produced the message; ids restart per run
	MsgID     string // wire id, "msg_<n>"
	Nick      string
	Body      string // raw JSON payload as sent by the client
	CreatedAt time.Time
}

// Presence is an archived join or leave.
type Presence struct {
	ID     int64
	RunID  string
	ConnID string
	Nick   string
	Joined bool
	At     time.Time
}

// MessageStore handles message persistence.
type MessageStore interface {
	// SaveMessage persists a message and sets its ID.
	SaveMessage(ctx context.Context, msg *Message) error

	// ListMessages returns up to limit of the most recent messages of a run,
	// oldest first.
	ListMessages(ctx context.Context, runID string, limit int) ([]*Message, error)
}

// PresenceStore handles presence persistence.
type PresenceStore interface {
	// SavePresence persists a presence change and sets its ID.
	SavePresence(ctx context.Context, p *Presence) error

	// ListPresence returns the presence log of a run in insertion order.
	ListPresence(ctx context.Context, runID string) ([]*Presence, error)
}

// Store aggregates all storage interfaces.
type Store interface {
	MessageStore
	PresenceStore

	// Close closes the underlying database connection.
	Close() error
}
