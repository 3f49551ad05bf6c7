package core

// SessionState is the lifecycle stage of a connection.
type SessionState int

const (
	// StateAnonymous is the initial state: connected but without a nick.
	StateAnonymous SessionState = iota
	// StateNamed means the session owns a nick in the room.
	StateNamed
	// StateClosed is terminal; the session receives nothing afterwards.
	StateClosed
)

func (s SessionState) String() string {
	switch s {
	case StateAnonymous:
		return "anonymous"
	case StateNamed:
		return "named"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// DefaultSendBuffer is the outbound queue length used when none is configured.
const DefaultSendBuffer = 256

// Session is the server-side state of one live connection.
//
// ID and Events may be read by the transport. Name and State belong to the hub
// goroutine and must not be touched elsewhere. The hub closes Events once the
// session is closed.
type Session struct {
	ID     string
	Name   string
	State  SessionState
	Events chan *Event

	// announced is set once the room has been told about the join.
	announced bool
}

// NewSession constructs an anonymous session with an outbound queue of the given size.
func NewSession(id string, buffer int) *Session {
	if buffer <= 0 {
		buffer = DefaultSendBuffer
	}
	return &Session{
		ID:     id,
		State:  StateAnonymous,
		Events: make(chan *Event, buffer),
	}
}

// Named reports whether the session has completed login.
func (s *Session) Named() bool {
	return s.State == StateNamed
}

// Live reports whether the session can still receive events.
func (s *Session) Live() bool {
	return s.State != StateClosed
}
