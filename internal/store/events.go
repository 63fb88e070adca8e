package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/playmatatu/gravityputt/internal/game"
	"github.com/redis/go-redis/v9"
)

// EventsChannel is the pub/sub channel session events are fanned out on.
const EventsChannel = "golf_events"

const (
	EventHoleCompleted  = "hole_completed"
	EventSessionHalted  = "session_halted"
	EventSessionIdle    = "session_idle"
	EventSessionResumed = "session_resumed"
)

// Event is published whenever something outside the tick loop should hear
// about a session.
type Event struct {
	Type      string          `json:"type"`
	SessionID string          `json:"session_id"`
	Hole      int             `json:"hole,omitempty"`
	Strokes   int             `json:"strokes,omitempty"`
	Reason    string          `json:"reason,omitempty"`
	Stats     *game.GameStats `json:"stats,omitempty"`
	At        time.Time       `json:"at"`
}

type EventBus struct {
	rdb *redis.Client
}

func NewEventBus(rdb *redis.Client) *EventBus {
	return &EventBus{rdb: rdb}
}

// Publish returns the number of subscribers that received the event.
func (b *EventBus) Publish(ctx context.Context, ev Event) (int64, error) {
	if b == nil || b.rdb == nil {
		return 0, nil
	}
	if ev.At.IsZero() {
		ev.At = time.Now().UTC()
	}
	data, err := json.Marshal(ev)
	if err != nil {
		return 0, err
	}
	return b.rdb.Publish(ctx, EventsChannel, data).Result()
}

// Subscribe returns nil when there is no Redis client.
func (b *EventBus) Subscribe(ctx context.Context) *redis.PubSub {
	if b == nil || b.rdb == nil {
		return nil
	}
	return b.rdb.Subscribe(ctx, EventsChannel)
}

// DecodeEvent parses a payload received on EventsChannel.
func DecodeEvent(payload string) (Event, error) {
	var ev Event
	err := json.Unmarshal([]byte(payload), &ev)
	return ev, err
}
