package core

import (
	"context"
	"encoding/json"
	"errors"
	"regexp"
	"time"

	"github.com/rs/zerolog"
	"github.com/samber/lo"
)

// ErrHubStopped is returned when the hub no longer accepts requests.
var ErrHubStopped = errors.New("hub stopped")

// Presence records a member entering or leaving the room.
type Presence struct {
	ConnID string
	Nick   string
	Joined bool
	At     time.Time
}

// Archive receives accepted messages and presence changes. Implementations must
// not block the hub.
type Archive interface {
	ArchiveMessage(msg ChatMessage)
	ArchivePresence(p Presence)
}

// Stats is a point-in-time view of the hub.
type Stats struct {
	Users            []string
	Empty            bool
	Sessions         int
	History          int
	HistoryCapacity  int
	Messages         uint64
	SignalingEnabled bool
	ReadyPeers       int
}

// Options configures a Hub.
type Options struct {
	SignalingEnabled bool
	CacheSize        int
	ICE              ICESource
	Archive          Archive
	Logger           *zerolog.Logger
	// Now overrides the message clock, for tests.
	Now func() time.Time
}

type inbound struct {
	session *Session
	cmd     *Command
}

// Hub owns the room, the relay and every session. All state changes happen on
// the goroutine running Run; other goroutines talk to it through channels.
type Hub struct {
	room     *Room
	relay    *Relay
	sessions map[string]*Session

	register   chan *Session
	unregister chan *Session
	commands   chan inbound
	stats      chan chan Stats
	done       chan struct{}

	archive Archive
	log     *zerolog.Logger
	now     func() time.Time
}

// NewHub creates a hub with a single main room.
func NewHub(opts Options) *Hub {
	logger := opts.Logger
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Hub{
		room:       NewRoom(MainRoom, opts.CacheSize),
		relay:      NewRelay(opts.SignalingEnabled, opts.ICE),
		sessions:   make(map[string]*Session),
		register:   make(chan *Session),
		unregister: make(chan *Session),
		commands:   make(chan inbound),
		stats:      make(chan chan Stats),
		done:       make(chan struct{}),
		archive:    opts.Archive,
		log:        logger,
		now:        now,
	}
}

// Run processes requests until ctx is cancelled. On exit every session queue is closed.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)

	for {
		select {
		case <-ctx.Done():
			h.shutdown()
			return
		case s := <-h.register:
			h.sessions[s.ID] = s
			h.log.Debug().Str("conn_id", s.ID).Int("sessions", len(h.sessions)).Msg("session connected")
		case s := <-h.unregister:
			if cur, ok := h.sessions[s.ID]; ok && cur == s {
				h.disconnect(s)
			}
		case in := <-h.commands:
			h.handle(in.session, in.cmd)
		case reply := <-h.stats:
			reply <- h.snapshot()
		}
	}
}

// RegisterSession adds a freshly connected, anonymous session.
func (h *Hub) RegisterSession(s *Session) error {
	select {
	case h.register <- s:
		return nil
	case <-h.done:
		return ErrHubStopped
	}
}

// UnregisterSession tears the session down as a transport disconnect.
func (h *Hub) UnregisterSession(s *Session) {
	select {
	case h.unregister <- s:
	case <-h.done:
	}
}

// Submit hands a command to the hub. It returns once the hub has taken it.
func (h *Hub) Submit(s *Session, cmd *Command) error {
	select {
	case h.commands <- inbound{session: s, cmd: cmd}:
		return nil
	case <-h.done:
		return ErrHubStopped
	}
}

// Stats queries the hub state.
func (h *Hub) Stats(ctx context.Context) (Stats, error) {
	reply := make(chan Stats, 1)
	select {
	case h.stats <- reply:
	case <-h.done:
		return Stats{}, ErrHubStopped
	case <-ctx.Done():
		return Stats{}, ctx.Err()
	}
	select {
	case st := <-reply:
		return st, nil
	case <-ctx.Done():
		return Stats{}, ctx.Err()
	}
}

func (h *Hub) handle(s *Session, cmd *Command) {
	if cur, ok := h.sessions[s.ID]; !ok || cur != s || cmd == nil {
		return
	}

	switch cmd.Kind {
	case CommandLogin:
		h.login(s, cmd.Nick)
	case CommandSendMessage:
		h.sendMessage(s, cmd.Body)
	case CommandTyping:
		h.typing(s, cmd.Typing)
	case CommandSignalingQuery:
		h.send(s, &Event{Kind: EventSignalingAvailable, Signaling: h.relay.Info()})
	case CommandReady:
		h.ready(s)
	case CommandSignal:
		h.signal(s, cmd.Target, cmd.Signal)
	case CommandPing:
		h.send(s, &Event{Kind: EventPong})
	default:
		h.log.Warn().Str("conn_id", s.ID).Int("kind", int(cmd.Kind)).Msg("unknown command")
	}
}

func (h *Hub) login(s *Session, nick string) {
	if s.Named() {
		h.relogin(s, nick)
		return
	}

	name, err := h.room.Join(nick)
	if err != nil {
		var ce *CoreError
		if errors.As(err, &ce) {
			h.send(s, &Event{Kind: EventForceLogin, Error: ce})
		}
		h.log.Debug().Str("conn_id", s.ID).Err(err).Msg("login rejected")
		return
	}

	s.Name = name
	s.State = StateNamed
	h.log.Info().Str("conn_id", s.ID).Str("nick", logName(name)).Msg("user joined")

	h.send(s, &Event{Kind: EventStart, Users: h.room.Roster()})
	h.send(s, &Event{Kind: EventHistory, Messages: h.room.History()})
	if !s.Live() {
		return
	}
	s.announced = true
	h.broadcast(nil, &Event{Kind: EventUserEntered, User: name})

	if h.archive != nil {
		h.archive.ArchivePresence(Presence{ConnID: s.ID, Nick: name, Joined: true, At: h.now()})
	}
}

// relogin handles login from a session that already owns a nick. Repeating
// the own nick resyncs roster and history; any other nick is ignored.
func (h *Hub) relogin(s *Session, nick string) {
	if trimName(nick) != s.Name {
		h.log.Warn().Str("conn_id", s.ID).Str("nick", logName(s.Name)).Msg("rename is not supported, login ignored")
		return
	}
	h.send(s, &Event{Kind: EventStart, Users: h.room.Roster()})
	h.send(s, &Event{Kind: EventHistory, Messages: h.room.History()})
}

func (h *Hub) sendMessage(s *Session, body json.RawMessage) {
	if !s.Named() {
		h.send(s, &Event{Kind: EventForceLogin, Error: ErrNotLoggedIn})
		h.log.Info().Str("conn_id", s.ID).Msg("ignoring send-msg: no nick assigned")
		return
	}

	msg := h.room.Post(s.Name, body, h.now())
	h.broadcast(nil, &Event{Kind: EventNewMessage, Message: msg})
	h.log.Debug().Str("nick", logName(s.Name)).Str("msg_id", msg.ID).Msg("user sent message")

	if h.archive != nil {
		h.archive.ArchiveMessage(msg)
	}
}

func (h *Hub) typing(s *Session, status bool) {
	if !s.Named() {
		h.send(s, &Event{Kind: EventForceLogin, Error: ErrNotLoggedIn})
		return
	}
	h.broadcast(s, &Event{Kind: EventTyping, User: s.Name, Typing: status})
}

func (h *Hub) ready(s *Session) {
	if err := h.relay.Guard(s); err != nil {
		h.log.Debug().Str("conn_id", s.ID).Err(err).Msg("ready ignored")
		return
	}
	h.relay.MarkReady(s)
	h.broadcast(s, &Event{Kind: EventUserReady, ConnID: s.ID})
	h.log.Debug().Str("conn_id", s.ID).Str("nick", logName(s.Name)).Msg("peer ready")
}

func (h *Hub) signal(s *Session, target string, payload json.RawMessage) {
	if err := h.relay.Guard(s); err != nil {
		h.log.Debug().Str("conn_id", s.ID).Err(err).Msg("signal ignored")
		return
	}
	if err := h.relay.Validate(target, payload); err != nil || target == s.ID {
		h.log.Warn().Str("conn_id", s.ID).Msg("invalid signal received")
		return
	}

	peer, ok := h.sessions[target]
	if !ok || !peer.Live() {
		h.log.Debug().Str("conn_id", s.ID).Str("target", target).Msg("signal target not found")
		return
	}
	h.send(peer, &Event{Kind: EventSignal, ConnID: s.ID, Signal: payload})
}

// disconnect moves s to Closed and releases everything it held.
func (h *Hub) disconnect(s *Session) {
	if !s.Live() {
		return
	}
	wasNamed := s.Named()
	s.State = StateClosed
	delete(h.sessions, s.ID)
	close(s.Events)
	h.relay.Release(s.ID)

	if !wasNamed {
		h.log.Debug().Str("conn_id", s.ID).Msg("anonymous session disconnected")
		return
	}

	h.room.Leave(s.Name)
	if !s.announced {
		h.log.Debug().Str("conn_id", s.ID).Str("nick", logName(s.Name)).Msg("session dropped before join was announced")
		return
	}
	h.broadcast(nil, &Event{Kind: EventUserLeft, User: s.Name, ConnID: s.ID})
	h.log.Info().Str("conn_id", s.ID).Str("nick", logName(s.Name)).Msg("user left")

	if h.archive != nil {
		h.archive.ArchivePresence(Presence{ConnID: s.ID, Nick: s.Name, Joined: false, At: h.now()})
	}
}

// send queues ev for s and evicts s if its queue is full.
func (h *Hub) send(s *Session, ev *Event) {
	if !h.deliver(s, ev) {
		h.evict(s)
	}
}

// broadcast queues ev for every named session except the given one.
func (h *Hub) broadcast(except *Session, ev *Event) {
	members := lo.Filter(lo.Values(h.sessions), func(m *Session, _ int) bool {
		return m != except && m.Named()
	})
	slow := lo.Filter(members, func(m *Session, _ int) bool {
		return !h.deliver(m, ev)
	})
	for _, m := range slow {
		h.evict(m)
	}
}

func (h *Hub) deliver(s *Session, ev *Event) bool {
	if !s.Live() {
		return false
	}
	select {
	case s.Events <- ev:
		return true
	default:
		return false
	}
}

func (h *Hub) evict(s *Session) {
	if !s.Live() {
		return
	}
	h.log.Warn().Str("conn_id", s.ID).Msg("send queue full, dropping session")
	h.disconnect(s)
}

func (h *Hub) snapshot() Stats {
	return Stats{
		Users:            h.room.Roster(),
		Empty:            h.room.Empty(),
		Sessions:         len(h.sessions),
		History:          h.room.history.Len(),
		HistoryCapacity:  h.room.history.Cap(),
		Messages:         h.room.seq,
		SignalingEnabled: h.relay.Enabled(),
		ReadyPeers:       h.relay.ReadyCount(),
	}
}

func (h *Hub) shutdown() {
	for id, s := range h.sessions {
		s.State = StateClosed
		close(s.Events)
		delete(h.sessions, id)
	}
	h.log.Info().Msg("hub stopped")
}

var tagPattern = regexp.MustCompile(`<[^>]+>`)

// logName strips markup so nicks cannot forge log output.
func logName(name string) string {
	return tagPattern.ReplaceAllString(name, "")
}
