package http

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/chatrelay/internal/config"
	"github.com/vovakirdan/chatrelay/internal/core"
	"github.com/vovakirdan/chatrelay/internal/proto"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func testConfig() config.Config {
	cfg := config.Default()
	cfg.Addr = ":0"
	cfg.StaticDir = ""
	cfg.PingInterval = 0
	return cfg
}

// startTestServer runs a hub and an httptest server around NewServer.
func startTestServer(t *testing.T, cfg config.Config, opts core.Options) *httptest.Server {
	t.Helper()

	logger := zerolog.Nop()
	opts.Logger = &logger
	hub := core.NewHub(opts)
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)

	server := NewServer(hub, cfg, &logger)
	ts := httptest.NewServer(server.Handler)
	t.Cleanup(func() {
		ts.Close()
		cancel()
	})
	return ts
}

func dial(t *testing.T, ctx context.Context, ts *httptest.Server) *websocket.Conn {
	t.Helper()

	wsURL := strings.Replace(ts.URL, "http", "ws", 1) + "/ws"
	conn, _, err := websocket.Dial(ctx, wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close(websocket.StatusNormalClosure, "done") })
	return conn
}

func send(t *testing.T, ctx context.Context, conn *websocket.Conn, event string, data any) {
	t.Helper()

	frame := map[string]any{"event": event}
	if data != nil {
		frame["data"] = data
	}
	if err := wsjson.Write(ctx, conn, frame); err != nil {
		t.Fatalf("send %s: %v", event, err)
	}
}

// expect reads the next frame and fails unless it is the given event.
func expect(t *testing.T, ctx context.Context, conn *websocket.Conn, event string) json.RawMessage {
	t.Helper()

	var in proto.Envelope
	if err := wsjson.Read(ctx, conn, &in); err != nil {
		t.Fatalf("read %s: %v", event, err)
	}
	if in.Event != event {
		t.Fatalf("expected %s, got %s (%s)", event, in.Event, in.Data)
	}
	return in.Data
}

func decode[T any](t *testing.T, data json.RawMessage) T {
	t.Helper()

	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		t.Fatalf("decode %s: %v", data, err)
	}
	return v
}

// login performs the full join handshake and returns the roster.
func login(t *testing.T, ctx context.Context, conn *websocket.Conn, nick string) []string {
	t.Helper()

	send(t, ctx, conn, proto.EventLogin, proto.LoginData{Nick: nick})
	start := decode[proto.StartData](t, expect(t, ctx, conn, proto.EventStart))
	expect(t, ctx, conn, proto.EventPreviousMsg)
	ue := decode[proto.NickData](t, expect(t, ctx, conn, proto.EventUserEntered))
	if ue.Nick != nick {
		t.Fatalf("expected ue for %s, got %s", nick, ue.Nick)
	}
	return start.Users
}

func testContext(t *testing.T) context.Context {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	return ctx
}
