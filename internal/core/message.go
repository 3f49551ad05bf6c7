package core

import (
	"encoding/json"
	"strconv"
	"time"
)

const messageIDPrefix = "msg_"

// ChatMessage is an accepted chat message. It is never mutated after creation.
// Body is the client payload, passed through as-is.
type ChatMessage struct {
	ID        string
	From      string
	Body      json.RawMessage
	CreatedAt time.Time
}

// MessageID formats the n-th message id.
func MessageID(n uint64) string {
	return messageIDPrefix + strconv.FormatUint(n, 10)
}
