package core

import (
	"encoding/json"
	"time"
)

// MainRoom is the name of the single broadcast group every named session joins.
const MainRoom = "main"

// Room groups the roster, the message history and the id counter of one
// broadcast group. It is only touched from the hub goroutine.
type Room struct {
	Name     string
	registry *Registry
	history  *History
	seq      uint64
}

// NewRoom constructs an empty room whose history keeps cacheSize messages.
func NewRoom(name string, cacheSize int) *Room {
	return &Room{
		Name:     name,
		registry: NewRegistry(),
		history:  NewHistory(cacheSize),
	}
}

// Join registers a display name. See Registry.Join.
func (r *Room) Join(name string) (string, error) {
	return r.registry.Join(name)
}

// Leave drops a display name from the roster.
func (r *Room) Leave(name string) {
	r.registry.Leave(name)
}

// Roster returns member names in join order.
func (r *Room) Roster() []string {
	return r.registry.Snapshot()
}

// History returns the buffered messages, oldest first.
func (r *Room) History() []ChatMessage {
	return r.history.Snapshot()
}

// Post stamps a new message with the next id and stores it in the history.
func (r *Room) Post(from string, body json.RawMessage, at time.Time) ChatMessage {
	r.seq++
	msg := ChatMessage{
		ID:        MessageID(r.seq),
		From:      from,
		Body:      body,
		CreatedAt: at,
	}
	r.history.Append(msg)
	return msg
}

// Empty reports whether nobody is logged in.
func (r *Room) Empty() bool {
	return r.registry.Len() == 0
}
