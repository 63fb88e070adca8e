package ws

import (
	"context"

	"github.com/playmatatu/gravityputt/internal/store"
)

// StartEventSubscriber relays session events published on Redis, possibly by
// other server instances, to the clients connected here.
func StartEventSubscriber(ctx context.Context, bus *store.EventBus, hub *Hub) {
	pubsub := bus.Subscribe(ctx)
	if pubsub == nil {
		hub.logger.Info().Msg("redis not configured; event subscriber not started")
		return
	}

	ch := pubsub.Channel()
	go func() {
		defer pubsub.Close()
		hub.logger.Info().Str("channel", store.EventsChannel).Msg("event subscriber started")
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				hub.relayEvent(msg.Payload)
			}
		}
	}()
}

// relayEvent reports whether the payload was a deliverable event.
func (h *Hub) relayEvent(payload string) bool {
	ev, err := store.DecodeEvent(payload)
	if err != nil {
		h.logger.Warn().Err(err).Msg("invalid event payload")
		return false
	}
	if ev.SessionID == "" {
		return false
	}
	h.logger.Debug().Str("type", ev.Type).Str("session_id", ev.SessionID).Int("room_size", h.RoomSize(ev.SessionID)).Msg("event received")
	h.BroadcastToSession(ev.SessionID, map[string]interface{}{"type": "session_event", "event": ev})
	return true
}
