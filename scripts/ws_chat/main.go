package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/vovakirdan/chatrelay/internal/proto"
)

func main() {
	if err := run(); err != nil {
		log.Printf("ws_chat: %v", err)
		os.Exit(1)
	}
}

func run() error {
	addr := flag.String("addr", "ws://localhost:8090/ws", "WebSocket address")
	nick := flag.String("nick", "cli-user", "nick to log in with")
	flag.Parse()

	baseCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(baseCtx)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, *addr, nil)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer conn.Close(websocket.StatusNormalClosure, "bye")

	if err := wsjson.Write(ctx, conn, proto.Outbound{Event: proto.EventLogin, Data: proto.LoginData{Nick: *nick}}); err != nil {
		return fmt.Errorf("send login: %w", err)
	}

	fmt.Printf("Connected to %s as %s\n", *addr, *nick)
	fmt.Println("Type messages and press Enter to send. Ctrl+C to exit.")

	go func() {
		defer cancel()
		readLoop(ctx, conn)
	}()

	writeLoop(ctx, conn)

	stop()
	cancel()
	_ = conn.Close(websocket.StatusNormalClosure, "bye")
	return nil
}

func readLoop(ctx context.Context, conn *websocket.Conn) {
	for {
		var in proto.Envelope
		if err := wsjson.Read(ctx, conn, &in); err != nil {
			// Treat expected shutdowns quietly.
			if errors.Is(err, context.Canceled) {
				return
			}
			switch websocket.CloseStatus(err) {
			case websocket.StatusNormalClosure, websocket.StatusGoingAway:
				return
			}
			log.Printf("read error: %v", err)
			return
		}
		printEvent(in)
	}
}

func printEvent(in proto.Envelope) {
	switch in.Event {
	case proto.EventNewMsg:
		var msg proto.ChatMessage
		if err := json.Unmarshal(in.Data, &msg); err != nil {
			log.Printf("unmarshal new-msg: %v", err)
			return
		}
		fmt.Printf("%s: %s\n", msg.F, text(msg.M))
	case proto.EventPreviousMsg:
		var prev proto.PreviousMsgData
		if err := json.Unmarshal(in.Data, &prev); err != nil {
			log.Printf("unmarshal previous-msg: %v", err)
			return
		}
		for _, msg := range prev.Msgs {
			fmt.Printf("(history) %s: %s\n", msg.F, text(msg.M))
		}
	case proto.EventStart:
		var start proto.StartData
		if err := json.Unmarshal(in.Data, &start); err != nil {
			log.Printf("unmarshal start: %v", err)
			return
		}
		fmt.Printf("online: %s\n", strings.Join(start.Users, ", "))
	case proto.EventUserEntered:
		var ue proto.NickData
		if err := json.Unmarshal(in.Data, &ue); err == nil {
			fmt.Printf("* %s joined\n", ue.Nick)
		}
	case proto.EventUserLeft:
		var ul proto.UserLeftData
		if err := json.Unmarshal(in.Data, &ul); err == nil {
			fmt.Printf("* %s left\n", ul.Nick)
		}
	case proto.EventForceLogin:
		var reason string
		_ = json.Unmarshal(in.Data, &reason)
		fmt.Printf("! login required: %s\n", reason)
	case proto.EventTyping:
		// too noisy for a terminal
	default:
		fmt.Printf("event=%s data=%s\n", in.Event, in.Data)
	}
}

// text renders a string payload without quotes and anything else as JSON.
func text(m json.RawMessage) string {
	var s string
	if err := json.Unmarshal(m, &s); err == nil {
		return s
	}
	return string(m)
}

func writeLoop(ctx context.Context, conn *websocket.Conn) {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case line, ok := <-lines:
			if !ok {
				return
			}
			msg := strings.TrimSpace(line)
			if msg == "" {
				continue
			}

			body, err := json.Marshal(msg)
			if err != nil {
				log.Printf("marshal msg: %v", err)
				return
			}
			out := proto.Outbound{Event: proto.EventSendMsg, Data: proto.SendMsgData{M: body}}
			if err := wsjson.Write(ctx, conn, out); err != nil {
				log.Printf("send error: %v", err)
				return
			}
		}
	}
}
