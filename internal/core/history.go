package core

import "github.com/gammazero/deque"

// History keeps the most recent messages of a room, oldest first.
// Appending at capacity evicts the oldest entry regardless of how often it was read.
type History struct {
	capacity int
	buf      deque.Deque[ChatMessage]
}

// NewHistory builds a buffer holding up to capacity messages.
// A capacity of zero or less disables retention.
func NewHistory(capacity int) *History {
	if capacity < 0 {
		capacity = 0
	}
	return &History{capacity: capacity}
}

// Append stores msg, evicting the oldest entry when full.
func (h *History) Append(msg ChatMessage) {
	if h.capacity == 0 {
		return
	}
	for h.buf.Len() >= h.capacity {
		h.buf.PopFront()
	}
	h.buf.PushBack(msg)
}

// Snapshot copies the buffered messages, oldest first.
func (h *History) Snapshot() []ChatMessage {
	out := make([]ChatMessage, h.buf.Len())
	for i := range out {
		out[i] = h.buf.At(i)
	}
	return out
}

// Len returns the number of buffered messages.
func (h *History) Len() int {
	return h.buf.Len()
}

// Cap returns the configured capacity.
func (h *History) Cap() int {
	return h.capacity
}
