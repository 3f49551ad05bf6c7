package http

import (
	"encoding/json"
	"net/http"
	"reflect"
	"testing"

	"github.com/coder/websocket"
	"github.com/pion/webrtc/v4"

	"github.com/vovakirdan/chatrelay/internal/core"
	"github.com/vovakirdan/chatrelay/internal/proto"
)

type staticICE []webrtc.ICEServer

func (s staticICE) Current() []webrtc.ICEServer { return s }

func TestHealthEndpoint(t *testing.T) {
	ts := startTestServer(t, testConfig(), core.Options{})

	resp, err := ts.Client().Get(ts.URL + "/health")
	if err != nil {
		t.Fatalf("health request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected status: %d", resp.StatusCode)
	}
}

func TestWebSocketChatScenario(t *testing.T) {
	ts := startTestServer(t, testConfig(), core.Options{})
	ctx := testContext(t)

	alice := dial(t, ctx, ts)
	if users := login(t, ctx, alice, "alice"); !reflect.DeepEqual(users, []string{"alice"}) {
		t.Fatalf("unexpected roster for alice: %v", users)
	}

	bob := dial(t, ctx, ts)
	if users := login(t, ctx, bob, "bob"); !reflect.DeepEqual(users, []string{"alice", "bob"}) {
		t.Fatalf("unexpected roster for bob: %v", users)
	}
	if ue := decode[proto.NickData](t, expect(t, ctx, alice, proto.EventUserEntered)); ue.Nick != "bob" {
		t.Fatalf("alice expected ue bob, got %+v", ue)
	}

	send(t, ctx, alice, proto.EventSendMsg, map[string]any{"m": "hi"})
	for _, conn := range []*websocket.Conn{alice, bob} {
		msg := decode[proto.ChatMessage](t, expect(t, ctx, conn, proto.EventNewMsg))
		if msg.F != "alice" || string(msg.M) != `"hi"` || msg.ID != "msg_1" {
			t.Fatalf("unexpected message: %+v", msg)
		}
	}

	send(t, ctx, bob, proto.EventTyping, true)
	typing := decode[proto.TypingData](t, expect(t, ctx, alice, proto.EventTyping))
	if !typing.Status || typing.Nick != "bob" {
		t.Fatalf("unexpected typing: %+v", typing)
	}

	bob.Close(websocket.StatusNormalClosure, "bye")
	left := decode[proto.UserLeftData](t, expect(t, ctx, alice, proto.EventUserLeft))
	if left.Nick != "bob" || left.ID == "" {
		t.Fatalf("unexpected ul: %+v", left)
	}
}

func TestWebSocketLoginRejected(t *testing.T) {
	ts := startTestServer(t, testConfig(), core.Options{})
	ctx := testContext(t)

	alice := dial(t, ctx, ts)
	login(t, ctx, alice, "alice")

	other := dial(t, ctx, ts)
	send(t, ctx, other, proto.EventLogin, proto.LoginData{Nick: "alice"})
	if reason := decode[string](t, expect(t, ctx, other, proto.EventForceLogin)); reason != core.ErrNameTaken.Message {
		t.Fatalf("unexpected reason: %q", reason)
	}

	send(t, ctx, other, proto.EventLogin, proto.LoginData{Nick: "   "})
	if reason := decode[string](t, expect(t, ctx, other, proto.EventForceLogin)); reason != core.ErrEmptyName.Message {
		t.Fatalf("unexpected reason: %q", reason)
	}

	send(t, ctx, other, proto.EventSendMsg, map[string]any{"m": "sneaky"})
	if reason := decode[string](t, expect(t, ctx, other, proto.EventForceLogin)); reason != core.ErrNotLoggedIn.Message {
		t.Fatalf("unexpected reason: %q", reason)
	}
}

func TestWebSocketMalformedFramesAreSkipped(t *testing.T) {
	ts := startTestServer(t, testConfig(), core.Options{})
	ctx := testContext(t)

	conn := dial(t, ctx, ts)
	if err := conn.Write(ctx, websocket.MessageText, []byte("not json")); err != nil {
		t.Fatalf("write garbage: %v", err)
	}
	send(t, ctx, conn, "no-such-event", nil)
	send(t, ctx, conn, proto.EventLogin, "not an object")
	send(t, ctx, conn, proto.EventPing, nil)

	expect(t, ctx, conn, proto.EventPong)
}

func TestWebSocketHistoryReplay(t *testing.T) {
	cfg := testConfig()
	cfg.CacheSize = 2
	ts := startTestServer(t, cfg, core.Options{CacheSize: cfg.CacheSize})
	ctx := testContext(t)

	alice := dial(t, ctx, ts)
	login(t, ctx, alice, "alice")
	for _, text := range []string{"1", "2", "3"} {
		send(t, ctx, alice, proto.EventSendMsg, map[string]any{"m": text})
		expect(t, ctx, alice, proto.EventNewMsg)
	}

	bob := dial(t, ctx, ts)
	send(t, ctx, bob, proto.EventLogin, proto.LoginData{Nick: "bob"})
	expect(t, ctx, bob, proto.EventStart)
	history := decode[proto.PreviousMsgData](t, expect(t, ctx, bob, proto.EventPreviousMsg))
	if len(history.Msgs) != 2 || string(history.Msgs[0].M) != `"2"` || string(history.Msgs[1].M) != `"3"` {
		t.Fatalf("unexpected history: %+v", history.Msgs)
	}
	if history.Msgs[0].ID != "msg_2" || history.Msgs[1].ID != "msg_3" {
		t.Fatalf("unexpected history ids: %+v", history.Msgs)
	}
}

func TestWebSocketSignalingRelay(t *testing.T) {
	cfg := testConfig()
	cfg.SignalingEnabled = true
	ice := staticICE{{URLs: []string{"stun:stun.example.org:3478"}}}
	ts := startTestServer(t, cfg, core.Options{SignalingEnabled: true, ICE: ice})
	ctx := testContext(t)

	alice := dial(t, ctx, ts)
	login(t, ctx, alice, "alice")
	bob := dial(t, ctx, ts)
	login(t, ctx, bob, "bob")
	expect(t, ctx, alice, proto.EventUserEntered)

	send(t, ctx, alice, proto.EventSignalingEnabled, nil)
	avail := decode[struct {
		Enabled    bool `json:"enabled"`
		ICEServers []struct {
			URLs []string `json:"urls"`
		} `json:"iceServers"`
	}](t, expect(t, ctx, alice, proto.EventSignalingAvailable))
	if !avail.Enabled || len(avail.ICEServers) != 1 || avail.ICEServers[0].URLs[0] != "stun:stun.example.org:3478" {
		t.Fatalf("unexpected signaling-available: %+v", avail)
	}

	send(t, ctx, bob, proto.EventReady, nil)
	bobID := decode[string](t, expect(t, ctx, alice, proto.EventUserReady))
	if bobID == "" {
		t.Fatal("user-ready carried no connection id")
	}

	send(t, ctx, alice, proto.EventSignal, map[string]any{"target": bobID, "signal": map[string]any{"type": "offer", "sdp": "v=0"}})
	relayed := decode[proto.RelayedSignal](t, expect(t, ctx, bob, proto.EventSignal))
	if relayed.From == "" || relayed.From == bobID {
		t.Fatalf("unexpected signal sender: %q", relayed.From)
	}
	var payload map[string]string
	if err := json.Unmarshal(relayed.Signal, &payload); err != nil || payload["sdp"] != "v=0" || payload["type"] != "offer" {
		t.Fatalf("signal payload changed: %s", relayed.Signal)
	}

	// Answer back to the sender using the id from the relayed frame.
	send(t, ctx, bob, proto.EventSignal, map[string]any{"target": relayed.From, "signal": map[string]any{"type": "answer"}})
	back := decode[proto.RelayedSignal](t, expect(t, ctx, alice, proto.EventSignal))
	if back.From != bobID {
		t.Fatalf("expected answer from %s, got %s", bobID, back.From)
	}
}

func TestWebSocketSignalingDisabled(t *testing.T) {
	ts := startTestServer(t, testConfig(), core.Options{})
	ctx := testContext(t)

	conn := dial(t, ctx, ts)
	send(t, ctx, conn, proto.EventSignalingEnabled, nil)
	if enabled := decode[bool](t, expect(t, ctx, conn, proto.EventSignalingAvailable)); enabled {
		t.Fatal("expected signaling to be disabled")
	}
}

func TestStatsEndpoint(t *testing.T) {
	ts := startTestServer(t, testConfig(), core.Options{})
	ctx := testContext(t)

	conn := dial(t, ctx, ts)
	login(t, ctx, conn, "alice")

	resp, err := ts.Client().Get(ts.URL + "/api/stats")
	if err != nil {
		t.Fatalf("stats request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected status: %d", resp.StatusCode)
	}
	var stats StatsResponse
	if err := json.NewDecoder(resp.Body).Decode(&stats); err != nil {
		t.Fatalf("decode stats: %v", err)
	}
	if !reflect.DeepEqual(stats.Users, []string{"alice"}) || stats.Sessions != 1 || stats.Empty {
		t.Fatalf("unexpected stats: %+v", stats)
	}
}

func TestWebSocketUpgradeAlongsideStaticFiles(t *testing.T) {
	cfg := testConfig()
	cfg.StaticDir = t.TempDir()
	ts := startTestServer(t, cfg, core.Options{})
	ctx := testContext(t)

	conn := dial(t, ctx, ts)
	send(t, ctx, conn, proto.EventPing, nil)
	expect(t, ctx, conn, proto.EventPong)

	resp, err := ts.Client().Get(ts.URL + "/health")
	if err != nil {
		t.Fatalf("health: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("health status = %d", resp.StatusCode)
	}
}
