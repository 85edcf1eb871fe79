package tracking

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func TestFeedClient_ReceivesSamples(t *testing.T) {
	upgrader := websocket.Upgrader{Subprotocols: []string{Subprotocol}}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		data, err := EncodeDepth(Sample{X: 0.6, Y: 0.4, Z: 0.2, Tracking: true})
		if err != nil {
			return
		}
		conn.WriteMessage(websocket.TextMessage, []byte("hello"))
		conn.WriteMessage(websocket.BinaryMessage, []byte{0x01})
		conn.WriteMessage(websocket.BinaryMessage, data)

		// Hold the connection until the client goes away.
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	defer server.Close()

	feed := NewFeed()
	url := "ws" + strings.TrimPrefix(server.URL, "http")
	client := NewFeedClient(url, DefaultConfig(), feed)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		client.Run(ctx)
		close(done)
	}()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if received, _ := feed.Stats(); received > 0 {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}

	s, status := feed.Latest(time.Now(), time.Second)
	if status != SignalLive {
		t.Fatalf("Expected live signal, got %v", status)
	}
	if s.X < 0.59 || s.X > 0.61 || !s.Tracking {
		t.Errorf("Expected x≈0.6 tracking, got x=%v tracking=%v", s.X, s.Tracking)
	}
	if !client.IsConnected() {
		t.Error("Expected client to report connected")
	}
	if _, rejected := client.Stats(); rejected != 1 {
		t.Errorf("Expected 1 rejected packet, got %d", rejected)
	}

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Expected Run to return after cancel")
	}
}

func TestFeedClient_StopsWhileReconnecting(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ReconnectMin = 10 * time.Millisecond
	client := NewFeedClient("ws://127.0.0.1:1", cfg, NewFeed())

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	done := make(chan struct{})
	go func() {
		client.Run(ctx)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Expected Run to return when context expires")
	}
}
