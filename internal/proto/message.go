package proto

import (
	"encoding/json"

	"github.com/pion/webrtc/v4"
)

// Envelope is the frame shape in both directions.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// Inbound event names.
const (
	EventLogin            = "login"
	EventSendMsg          = "send-msg"
	EventTyping           = "typing"
	EventSignalingEnabled = "signaling-enabled"
	EventReady            = "ready"
	EventSignal           = "signal"
	EventPing             = "ping"
)

// Outbound event names.
const (
	EventForceLogin         = "force-login"
	EventUserEntered        = "ue"
	EventStart              = "start"
	EventPreviousMsg        = "previous-msg"
	EventNewMsg             = "new-msg"
	EventUserLeft           = "ul"
	EventSignalingAvailable = "signaling-available"
	EventUserReady          = "user-ready"
	EventPong               = "pong"
)

// Outbound is the envelope for frames sent to the client.
type Outbound struct {
	Event string `json:"event"`
	Data  any    `json:"data,omitempty"`
}

// LoginData asks for a nick.
type LoginData struct {
	Nick string `json:"nick"`
}

// SendMsgData carries an opaque chat payload.
type SendMsgData struct {
	M json.RawMessage `json:"m"`
}

// SignalData addresses an opaque signaling payload to a connection.
type SignalData struct {
	Target string          `json:"target"`
	Signal json.RawMessage `json:"signal"`
}

// NickData names a member (ue).
type NickData struct {
	Nick string `json:"nick"`
}

// UserLeftData names a member that disconnected and its connection.
type UserLeftData struct {
	Nick string `json:"nick"`
	ID   string `json:"id"`
}

// StartData is the roster sent to a newly named session.
type StartData struct {
	Users []string `json:"users"`
}

// ChatMessage is a chat message on the wire.
type ChatMessage struct {
	F  string          `json:"f"`
	M  json.RawMessage `json:"m"`
	ID string          `json:"id"`
}

// PreviousMsgData replays buffered messages.
type PreviousMsgData struct {
	Msgs []ChatMessage `json:"msgs"`
}

// TypingData is the relayed typing indicator.
type TypingData struct {
	Status bool   `json:"status"`
	Nick   string `json:"nick"`
}

// SignalingAvailableData is the extended signaling answer used when ICE
// servers are configured.
type SignalingAvailableData struct {
	Enabled    bool               `json:"enabled"`
	ICEServers []webrtc.ICEServer `json:"iceServers"`
}

// RelayedSignal is a signaling payload delivered to its target.
type RelayedSignal struct {
	From   string          `json:"from"`
	Signal json.RawMessage `json:"signal"`
}
