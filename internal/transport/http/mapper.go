package http

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/samber/lo"

	"github.com/vovakirdan/chatrelay/internal/core"
	"github.com/vovakirdan/chatrelay/internal/proto"
)

var errUnknownEvent = errors.New("unknown event")

func inboundToCommand(in proto.Envelope) (*core.Command, error) {
	switch in.Event {
	case proto.EventLogin:
		var login proto.LoginData
		if err := decodeData(in.Data, &login); err != nil {
			return nil, err
		}
		return &core.Command{Kind: core.CommandLogin, Nick: login.Nick}, nil
	case proto.EventSendMsg:
		var msg proto.SendMsgData
		if err := decodeData(in.Data, &msg); err != nil {
			return nil, err
		}
		return &core.Command{Kind: core.CommandSendMessage, Body: msg.M}, nil
	case proto.EventTyping:
		var status bool
		if err := decodeData(in.Data, &status); err != nil {
			return nil, err
		}
		return &core.Command{Kind: core.CommandTyping, Typing: status}, nil
	case proto.EventSignalingEnabled:
		return &core.Command{Kind: core.CommandSignalingQuery}, nil
	case proto.EventReady:
		return &core.Command{Kind: core.CommandReady}, nil
	case proto.EventSignal:
		var sig proto.SignalData
		if err := decodeData(in.Data, &sig); err != nil {
			return nil, err
		}
		return &core.Command{Kind: core.CommandSignal, Target: sig.Target, Signal: sig.Signal}, nil
	case proto.EventPing:
		return &core.Command{Kind: core.CommandPing}, nil
	default:
		return nil, fmt.Errorf("%w: %q", errUnknownEvent, in.Event)
	}
}

// decodeData leaves v untouched when the frame carries no data.
func decodeData(data json.RawMessage, v any) error {
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode data: %w", err)
	}
	return nil
}

func outboundFromEvent(event *core.Event) proto.Outbound {
	switch event.Kind {
	case core.EventForceLogin:
		out := proto.Outbound{Event: proto.EventForceLogin}
		if event.Error != nil {
			out.Data = event.Error.Message
		}
		return out
	case core.EventUserEntered:
		return proto.Outbound{Event: proto.EventUserEntered, Data: proto.NickData{Nick: event.User}}
	case core.EventStart:
		users := event.Users
		if users == nil {
			users = []string{}
		}
		return proto.Outbound{Event: proto.EventStart, Data: proto.StartData{Users: users}}
	case core.EventHistory:
		return proto.Outbound{
			Event: proto.EventPreviousMsg,
			Data:  proto.PreviousMsgData{Msgs: lo.Map(event.Messages, toWireMessage)},
		}
	case core.EventNewMessage:
		return proto.Outbound{Event: proto.EventNewMsg, Data: toWireMessage(event.Message, 0)}
	case core.EventTyping:
		return proto.Outbound{Event: proto.EventTyping, Data: proto.TypingData{Status: event.Typing, Nick: event.User}}
	case core.EventUserLeft:
		return proto.Outbound{Event: proto.EventUserLeft, Data: proto.UserLeftData{Nick: event.User, ID: event.ConnID}}
	case core.EventSignalingAvailable:
		return proto.Outbound{Event: proto.EventSignalingAvailable, Data: signalingData(event.Signaling)}
	case core.EventUserReady:
		return proto.Outbound{Event: proto.EventUserReady, Data: event.ConnID}
	case core.EventSignal:
		return proto.Outbound{Event: proto.EventSignal, Data: proto.RelayedSignal{From: event.ConnID, Signal: event.Signal}}
	case core.EventPong:
		return proto.Outbound{Event: proto.EventPong}
	default:
		return proto.Outbound{}
	}
}

func toWireMessage(msg core.ChatMessage, _ int) proto.ChatMessage {
	return proto.ChatMessage{F: msg.From, M: msg.Body, ID: msg.ID}
}

// signalingData answers with a bare flag unless ICE servers are known.
func signalingData(info *core.SignalingInfo) any {
	if info == nil {
		return false
	}
	if len(info.ICEServers) == 0 {
		return info.Enabled
	}
	return proto.SignalingAvailableData{Enabled: info.Enabled, ICEServers: info.ICEServers}
}
