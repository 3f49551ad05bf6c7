package core

import (
	"context"
	"encoding/json"
	"strconv"
	"testing"
)

func benchmarkRoomBroadcast(b *testing.B, recipients int) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := NewHub(Options{CacheSize: 50})
	go hub.Run(ctx)

	delivered := make(chan struct{}, 1)
	join := func(id, nick string, watch bool) *Session {
		s := NewSession(id, DefaultSendBuffer)
		if err := hub.RegisterSession(s); err != nil {
			b.Fatal(err)
		}
		// Drain from the start so join notices never overflow the queues.
		go func() {
			for ev := range s.Events {
				if watch && ev.Kind == EventNewMessage {
					delivered <- struct{}{}
				}
			}
		}()
		if err := hub.Submit(s, &Command{Kind: CommandLogin, Nick: nick}); err != nil {
			b.Fatal(err)
		}
		return s
	}

	sender := join("sender", "sender", false)
	join("c0", "client0", true)
	for i := 1; i < recipients; i++ {
		join("c"+strconv.Itoa(i), "client"+strconv.Itoa(i), false)
	}

	body := json.RawMessage(`{"text":"payload","type":"text"}`)

	b.ReportAllocs()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		if err := hub.Submit(sender, &Command{Kind: CommandSendMessage, Body: body}); err != nil {
			b.Fatal(err)
		}
		<-delivered
	}
}

func BenchmarkRoomBroadcast_10(b *testing.B)  { benchmarkRoomBroadcast(b, 10) }
func BenchmarkRoomBroadcast_100(b *testing.B) { benchmarkRoomBroadcast(b, 100) }
func BenchmarkRoomBroadcast_500(b *testing.B) { benchmarkRoomBroadcast(b, 500) }
