package core

import (
	"encoding/json"

	"github.com/pion/webrtc/v4"
)

// EventKind is a notification the core emits to sessions.
type EventKind int

const (
	// EventForceLogin tells a session it must (re)try login. Error carries the reason.
	EventForceLogin EventKind = iota
	// EventUserEntered announces a new member to the room.
	EventUserEntered
	// EventStart delivers the roster to a newly named session.
	EventStart
	// EventHistory replays buffered messages to a newly named session.
	EventHistory
	// EventNewMessage broadcasts an accepted chat message.
	EventNewMessage
	// EventTyping relays a typing indicator to the other members.
	EventTyping
	// EventUserLeft announces that a member disconnected.
	EventUserLeft
	// EventSignalingAvailable answers a signaling query.
	EventSignalingAvailable
	// EventUserReady announces that a peer is ready to negotiate.
	EventUserReady
	// EventSignal delivers a relayed signaling payload.
	EventSignal
	// EventPong answers the application heartbeat.
	EventPong
)

// Event is sent to sessions to describe what happened in the system.
type Event struct {
	Kind      EventKind
	User      string        // nick for entered/left/typing
	ConnID    string        // connection id for left/user-ready, sender for signal
	Users     []string      // EventStart
	Message   ChatMessage   // EventNewMessage
	Messages  []ChatMessage // EventHistory
	Typing    bool
	Signal    json.RawMessage
	Error     *CoreError
	Signaling *SignalingInfo
}

// SignalingInfo is the answer to a signaling query.
// ICEServers is empty when no ICE servers are configured.
type SignalingInfo struct {
	Enabled    bool
	ICEServers []webrtc.ICEServer
}
