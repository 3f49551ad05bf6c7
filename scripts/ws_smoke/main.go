package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/vovakirdan/chatrelay/internal/proto"
)

func main() {
	if err := run(); err != nil {
		log.Printf("ws_smoke: %v", err)
		os.Exit(1)
	}
}

func run() error {
	addr := flag.String("addr", "ws://localhost:8090/ws", "WebSocket address")
	nick := flag.String("nick", "tester", "nick to log in with")
	text := flag.String("text", "hello from smoke test", "message text to send")
	timeout := flag.Duration("timeout", 5*time.Second, "total timeout for the run")
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, *addr, nil)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer conn.Close(websocket.StatusNormalClosure, "bye")

	mustSend := func(event string, data any) error {
		if err := wsjson.Write(ctx, conn, proto.Outbound{Event: event, Data: data}); err != nil {
			return fmt.Errorf("send %s: %w", event, err)
		}
		return nil
	}

	if err := mustSend(proto.EventLogin, proto.LoginData{Nick: *nick}); err != nil {
		return err
	}

	body, err := json.Marshal(*text)
	if err != nil {
		return fmt.Errorf("marshal msg: %w", err)
	}
	if err := mustSend(proto.EventSendMsg, proto.SendMsgData{M: body}); err != nil {
		return err
	}
	if err := mustSend(proto.EventSignalingEnabled, nil); err != nil {
		return err
	}

	// Expect start, previous-msg, ue, new-msg and signaling-available in that order.
	seen := map[string]bool{}
	for !seen[proto.EventSignalingAvailable] {
		var in proto.Envelope
		if err := wsjson.Read(ctx, conn, &in); err != nil {
			return fmt.Errorf("read: %w", err)
		}

		fmt.Printf("Received event=%s", in.Event)
		if len(in.Data) > 0 {
			fmt.Printf(" data=%s", in.Data)
		}
		fmt.Println()

		if in.Event == proto.EventForceLogin {
			return fmt.Errorf("login rejected: %s", in.Data)
		}
		seen[in.Event] = true
	}

	if !seen[proto.EventNewMsg] {
		return fmt.Errorf("own message was not echoed")
	}
	return nil
}
