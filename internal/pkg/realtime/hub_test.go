package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

func newTestClient(hub *Hub, userID int64, buffer int) *Client {
	return &Client{hub: hub, send: make(chan []byte, buffer), userID: userID, logger: hub.logger}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func TestHub_PublishReachesOnlyTargetUser(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	alice := newTestClient(hub, 1, 4)
	bob := newTestClient(hub, 2, 4)
	hub.register <- alice
	hub.register <- bob
	waitFor(t, func() bool { return hub.ClientCount(1) == 1 && hub.ClientCount(2) == 1 })

	if err := hub.Publish(ctx, 1, NewEvent("notification", map[string]string{"title": "Job approved"})); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}

	select {
	case payload := <-alice.send:
		var ev Event
		if err := json.Unmarshal(payload, &ev); err != nil {
			t.Fatalf("invalid payload: %v", err)
		}
		if ev.Type != "notification" {
			t.Errorf("Type = %q", ev.Type)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("alice did not receive the event")
	}

	select {
	case <-bob.send:
		t.Fatal("bob must not receive alice's event")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHub_UnregisterClosesSend(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	c := newTestClient(hub, 5, 1)
	hub.register <- c
	hub.unregister <- c
	waitFor(t, func() bool { return hub.ClientCount(5) == 0 })

	if _, ok := <-c.send; ok {
		t.Error("send channel should be closed")
	}
}

func TestHub_DropsSlowClient(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	c := newTestClient(hub, 9, 0)
	hub.register <- c
	waitFor(t, func() bool { return hub.ClientCount(9) == 1 })

	if err := hub.Deliver(ctx, 9, []byte(`{}`)); err != nil {
		t.Fatalf("Deliver() error = %v", err)
	}
	waitFor(t, func() bool { return hub.ClientCount(9) == 0 })
}

func TestHub_AfterRunReturns(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(stopped)
	}()

	c := newTestClient(hub, 4, 1)
	if !hub.join(c) {
		t.Fatal("join on a running hub should succeed")
	}
	cancel()
	<-stopped

	returned := make(chan struct{})
	go func() {
		hub.leave(c)
		if hub.join(newTestClient(hub, 4, 1)) {
			t.Error("join after stop should be refused")
		}
		close(returned)
	}()
	select {
	case <-returned:
	case <-time.After(2 * time.Second):
		t.Fatal("leave/join blocked on a stopped hub")
	}

	if err := hub.Deliver(context.Background(), 4, []byte(`{}`)); !errors.Is(err, ErrHubStopped) {
		t.Errorf("Deliver() error = %v, want ErrHubStopped", err)
	}
}

func TestServe_ReturnsWhenHubStops(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	served := make(chan struct{})
	upgrader := Upgrader([]string{"*"})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		Serve(hub, conn, 3)
		close(served)
	}))
	defer srv.Close()

	ws, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer ws.Close()
	waitFor(t, func() bool { return hub.ClientCount(3) == 1 })

	cancel()

	select {
	case <-served:
	case <-time.After(2 * time.Second):
		t.Fatal("Serve did not return after the hub stopped")
	}
}

func TestChannel(t *testing.T) {
	if got := Channel(42); got != "user_notifications:42" {
		t.Errorf("Channel() = %q", got)
	}
	if id, ok := userFromChannel("user_notifications:42"); !ok || id != 42 {
		t.Errorf("userFromChannel() = %d, %v", id, ok)
	}
	if _, ok := userFromChannel("user_notifications:abc"); ok {
		t.Error("malformed channel should not parse")
	}
}
