// Package archive records accepted chat messages and presence changes to a
// store without slowing the hub down.
package archive

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/chatrelay/internal/core"
	"github.com/vovakirdan/chatrelay/internal/store"
)

const (
	// DefaultBuffer is the number of records queued before new ones are dropped.
	DefaultBuffer = 1024
	writeTimeout  = 5 * time.Second
)

type record struct {
	message  *store.Message
	presence *store.Presence
}

// Writer queues records and persists them on its own goroutine.
// It implements core.Archive.
type Writer struct {
	store store.Store
	runID string
	queue chan record
	log   *zerolog.Logger
}

// New builds a writer tagging every record with a fresh run id.
func New(st store.Store, buffer int, logger *zerolog.Logger) *Writer {
	if buffer <= 0 {
		buffer = DefaultBuffer
	}
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Writer{
		store: st,
		runID: uuid.NewString(),
		queue: make(chan record, buffer),
		log:   logger,
	}
}

// RunID identifies this process run in the archive.
func (w *Writer) RunID() string {
	return w.runID
}

// ArchiveMessage queues msg. It never blocks.
func (w *Writer) ArchiveMessage(msg core.ChatMessage) {
	w.enqueue(record{message: &store.Message{
		RunID:     w.runID,
		MsgID:     msg.ID,
		Nick:      msg.From,
		Body:      string(msg.Body),
		CreatedAt: msg.CreatedAt,
	}})
}

// ArchivePresence queues p. It never blocks.
func (w *Writer) ArchivePresence(p core.Presence) {
	w.enqueue(record{presence: &store.Presence{
		RunID:  w.runID,
		ConnID: p.ConnID,
		Nick:   p.Nick,
		Joined: p.Joined,
		At:     p.At,
	}})
}

func (w *Writer) enqueue(r record) {
	select {
	case w.queue <- r:
	default:
		w.log.Warn().Msg("archive queue full, record dropped")
	}
}

// Run persists queued records until ctx is done, then flushes what is left.
func (w *Writer) Run(ctx context.Context) {
	for {
		select {
		case r := <-w.queue:
			w.persist(r)
		case <-ctx.Done():
			w.flush()
			return
		}
	}
}

func (w *Writer) flush() {
	for {
		select {
		case r := <-w.queue:
			w.persist(r)
		default:
			return
		}
	}
}

func (w *Writer) persist(r record) {
	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()

	var err error
	switch {
	case r.message != nil:
		err = w.store.SaveMessage(ctx, r.message)
	case r.presence != nil:
		err = w.store.SavePresence(ctx, r.presence)
	}
	if err != nil {
		w.log.Error().Err(err).Str("run_id", w.runID).Msg("failed to archive record")
	}
}

var _ core.Archive = (*Writer)(nil)
