package core

import (
	"bytes"
	"encoding/json"

	"github.com/pion/webrtc/v4"
)

// ICESource supplies the ICE servers advertised alongside the signaling flag.
// Current must not block.
type ICESource interface {
	Current() []webrtc.ICEServer
}

// Relay forwards opaque signaling payloads between two sessions.
// The enabled flag is fixed at construction.
type Relay struct {
	enabled bool
	ice     ICESource
	ready   map[string]struct{}
}

// NewRelay builds a relay. ice may be nil.
func NewRelay(enabled bool, ice ICESource) *Relay {
	return &Relay{
		enabled: enabled,
		ice:     ice,
		ready:   make(map[string]struct{}),
	}
}

// Enabled returns the signaling flag.
func (r *Relay) Enabled() bool {
	return r.enabled
}

// Info answers a signaling query. ICE servers are only advertised while
// signaling is enabled.
func (r *Relay) Info() *SignalingInfo {
	info := &SignalingInfo{Enabled: r.enabled}
	if r.enabled && r.ice != nil {
		info.ICEServers = r.ice.Current()
	}
	return info
}

// Guard decides whether s may emit ready or signal events.
func (r *Relay) Guard(s *Session) error {
	if !r.enabled {
		return ErrSignalingDisabled
	}
	if !s.Named() {
		return ErrNotLoggedIn
	}
	return nil
}

// MarkReady records that s announced readiness.
func (r *Relay) MarkReady(s *Session) {
	r.ready[s.ID] = struct{}{}
}

// Release forgets everything kept for the connection.
func (r *Relay) Release(connID string) {
	delete(r.ready, connID)
}

// ReadyCount returns how many connections announced readiness.
func (r *Relay) ReadyCount() int {
	return len(r.ready)
}

// Validate checks a relay request: target and payload must both be present.
// The payload itself is never inspected beyond emptiness.
func (r *Relay) Validate(target string, signal json.RawMessage) error {
	if target == "" || emptyPayload(signal) {
		return ErrInvalidSignal
	}
	return nil
}

var emptyPayloads = [][]byte{
	[]byte("null"),
	[]byte(`""`),
	[]byte("{}"),
	[]byte("[]"),
	[]byte("false"),
}

func emptyPayload(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return true
	}
	for _, empty := range emptyPayloads {
		if bytes.Equal(trimmed, empty) {
			return true
		}
	}
	return false
}
