package archive

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/vovakirdan/chatrelay/internal/core"
	"github.com/vovakirdan/chatrelay/internal/store/sqlite"
)

func TestWriterPersistsRecords(t *testing.T) {
	st, err := sqlite.New(":memory:")
	require.NoError(t, err)
	defer st.Close()

	w := New(st, 16, nil)
	require.NotEmpty(t, w.RunID())

	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	w.ArchivePresence(core.Presence{ConnID: "c1", Nick: "alice", Joined: true, At: at})
	w.ArchiveMessage(core.ChatMessage{ID: "msg_1", From: "alice", Body: json.RawMessage(`{"text":"hi"}`), CreatedAt: at})
	w.ArchivePresence(core.Presence{ConnID: "c1", Nick: "alice", Joined: false, At: at.Add(time.Second)})

	// A cancelled context makes Run flush the queue and return.
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	w.Run(ctx)

	msgs, err := st.ListMessages(context.Background(), w.RunID(), 10)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	require.Equal(t, "msg_1", msgs[0].MsgID)
	require.JSONEq(t, `{"text":"hi"}`, msgs[0].Body)

	presence, err := st.ListPresence(context.Background(), w.RunID())
	require.NoError(t, err)
	require.Len(t, presence, 2)
	require.True(t, presence[0].Joined)
	require.False(t, presence[1].Joined)
}

func TestWriterDropsWhenFull(t *testing.T) {
	st, err := sqlite.New(":memory:")
	require.NoError(t, err)
	defer st.Close()

	w := New(st, 1, nil)
	w.ArchiveMessage(core.ChatMessage{ID: "msg_1", From: "a", Body: json.RawMessage(`1`)})
	w.ArchiveMessage(core.ChatMessage{ID: "msg_2", From: "a", Body: json.RawMessage(`2`)})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	w.Run(ctx)

	msgs, err := st.ListMessages(context.Background(), w.RunID(), 10)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	require.Equal(t, "msg_1", msgs[0].MsgID)
}

func TestWriterBehindHub(t *testing.T) {
	st, err := sqlite.New(":memory:")
	require.NoError(t, err)
	defer st.Close()

	w := New(st, 0, nil)
	hub := core.NewHub(core.Options{Archive: w})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	s := core.NewSession("c1", 8)
	require.NoError(t, hub.RegisterSession(s))
	require.NoError(t, hub.Submit(s, &core.Command{Kind: core.CommandLogin, Nick: "alice"}))
	require.NoError(t, hub.Submit(s, &core.Command{Kind: core.CommandSendMessage, Body: json.RawMessage(`"hello"`)}))
	_, err = hub.Stats(ctx)
	require.NoError(t, err)

	drained, stop := context.WithCancel(context.Background())
	stop()
	w.Run(drained)

	msgs, err := st.ListMessages(context.Background(), w.RunID(), 10)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	require.Equal(t, "alice", msgs[0].Nick)
	require.Equal(t, `"hello"`, msgs[0].Body)
}
