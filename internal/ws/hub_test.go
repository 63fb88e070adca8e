package ws

import (
	"context"
	"encoding/json"
	"testing"
	"time"
)

func startHub(t *testing.T) *Hub {
	t.Helper()
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)
	return hub
}

func joinRoom(t *testing.T, hub *Hub, sessionID string) *Client {
	t.Helper()
	c := &Client{hub: hub, sessionID: sessionID, send: make(chan []byte, 4)}
	want := hub.RoomSize(sessionID) + 1
	hub.register <- c
	deadline := time.Now().Add(time.Second)
	for hub.RoomSize(sessionID) != want {
		if time.Now().After(deadline) {
			t.Fatalf("Client never joined room %s", sessionID)
		}
		time.Sleep(time.Millisecond)
	}
	return c
}

func receive(t *testing.T, c *Client) map[string]interface{} {
	t.Helper()
	select {
	case data := <-c.send:
		var msg map[string]interface{}
		if err := json.Unmarshal(data, &msg); err != nil {
			t.Fatalf("Invalid JSON: %v", err)
		}
		return msg
	case <-time.After(time.Second):
		t.Fatalf("No message received")
		return nil
	}
}

func TestBroadcastReachesOnlyTheRoom(t *testing.T) {
	hub := startHub(t)
	a := joinRoom(t, hub, "s1")
	b := joinRoom(t, hub, "s1")
	other := joinRoom(t, hub, "s2")

	hub.BroadcastToSession("s1", map[string]interface{}{"type": "frame", "tick": 6})

	for _, c := range []*Client{a, b} {
		if msg := receive(t, c); msg["type"] != "frame" {
			t.Errorf("Unexpected message %v", msg)
		}
	}
	select {
	case <-other.send:
		t.Errorf("Client in another room received the broadcast")
	default:
	}
}

func TestFullBufferDropsInsteadOfBlocking(t *testing.T) {
	hub := startHub(t)
	c := joinRoom(t, hub, "s1")
	for i := 0; i < cap(c.send)+3; i++ {
		hub.BroadcastToSession("s1", map[string]int{"i": i})
	}
	if len(c.send) != cap(c.send) {
		t.Errorf("Expected a full buffer, got %d", len(c.send))
	}
}

func TestUnregisterClosesSend(t *testing.T) {
	hub := startHub(t)
	c := joinRoom(t, hub, "s1")
	hub.unregister <- c

	select {
	case _, ok := <-c.send:
		if ok {
			t.Errorf("Expected closed channel")
		}
	case <-time.After(time.Second):
		t.Fatalf("Send channel not closed")
	}
	if hub.RoomSize("s1") != 0 {
		t.Errorf("Room not emptied")
	}
	hub.sendTo(c, []byte("{}"))
}

func TestRelayEvent(t *testing.T) {
	hub := startHub(t)
	c := joinRoom(t, hub, "s1")

	if hub.relayEvent("not json") {
		t.Errorf("Garbage payload relayed")
	}
	if hub.relayEvent(`{"type":"hole_completed"}`) {
		t.Errorf("Event without a session relayed")
	}
	if !hub.relayEvent(`{"type":"session_halted","session_id":"s1","reason":"boom","at":"2024-01-01T00:00:00Z"}`) {
		t.Fatalf("Valid event not relayed")
	}

	msg := receive(t, c)
	ev, _ := msg["event"].(map[string]interface{})
	if msg["type"] != "session_event" || ev["type"] != "session_halted" {
		t.Errorf("Unexpected relay %v", msg)
	}
}
