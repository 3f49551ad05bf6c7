package core

import "encoding/json"

// CommandKind describes what the client wants to do.
type CommandKind int

const (
	// CommandLogin asks to take a nick and join the room.
	CommandLogin CommandKind = iota
	// CommandSendMessage posts a chat message to the room.
	CommandSendMessage
	// CommandTyping toggles the typing indicator.
	CommandTyping
	// CommandSignalingQuery asks whether signaling is offered.
	CommandSignalingQuery
	// CommandReady announces readiness for peer negotiation.
	CommandReady
	// CommandSignal relays an opaque signaling payload to one peer.
	CommandSignal
	// CommandPing is the application heartbeat.
	CommandPing
)

func (k CommandKind) String() string {
	switch k {
	case CommandLogin:
		return "login"
	case CommandSendMessage:
		return "send-msg"
	case CommandTyping:
		return "typing"
	case CommandSignalingQuery:
		return "signaling-enabled"
	case CommandReady:
		return "ready"
	case CommandSignal:
		return "signal"
	case CommandPing:
		return "ping"
	default:
		return "unknown"
	}
}

// Command represents an action requested by a session.
type Command struct {
	Kind CommandKind
	// Nick is the requested name for CommandLogin.
	Nick string
	// Body is the message payload for CommandSendMessage.
	Body json.RawMessage
	// Typing is the indicator value for CommandTyping.
	Typing bool
	// Target and Signal address a CommandSignal.
	Target string
	Signal json.RawMessage
}
