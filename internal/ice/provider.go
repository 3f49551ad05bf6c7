// Package ice supplies the STUN/TURN servers advertised to browsers together
// with the signaling flag.
package ice

import (
	"context"
	"fmt"

	"github.com/pion/stun/v3"
	"github.com/pion/webrtc/v4"

	"github.com/vovakirdan/chatrelay/internal/config"
)

// Provider produces a list of ICE servers.
type Provider interface {
	ICEServers(ctx context.Context) ([]webrtc.ICEServer, error)
}

// Static is a fixed list taken from configuration.
type Static []webrtc.ICEServer

// NewStatic converts and validates configured servers.
func NewStatic(servers []config.ICEServer) (Static, error) {
	out := make(Static, 0, len(servers))
	for _, s := range servers {
		out = append(out, toWebRTC(s))
	}
	if err := validate(out); err != nil {
		return nil, err
	}
	return out, nil
}

// ICEServers returns the configured list.
func (s Static) ICEServers(context.Context) ([]webrtc.ICEServer, error) {
	return s, nil
}

func toWebRTC(s config.ICEServer) webrtc.ICEServer {
	server := webrtc.ICEServer{
		URLs:     append([]string(nil), s.URLs...),
		Username: s.Username,
	}
	if s.Credential != "" {
		server.Credential = s.Credential
		server.CredentialType = webrtc.ICECredentialTypePassword
	}
	return server
}

func validate(servers []webrtc.ICEServer) error {
	for i, s := range servers {
		if len(s.URLs) == 0 {
			return fmt.Errorf("ice server %d: no urls", i)
		}
		for _, raw := range s.URLs {
			if _, err := stun.ParseURI(raw); err != nil {
				return fmt.Errorf("ice server %d: parse %q: %w", i, raw, err)
			}
		}
	}
	return nil
}
