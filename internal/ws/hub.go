package ws

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/playmatatu/gravityputt/internal/observability"
	"github.com/rs/zerolog"
)

// Hub tracks connected clients by session room and fans messages out to them.
type Hub struct {
	rooms      map[string]map[*Client]struct{}
	register   chan *Client
	unregister chan *Client
	mu         sync.RWMutex
	logger     zerolog.Logger
}

func NewHub() *Hub {
	return &Hub{
		rooms:      make(map[string]map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		logger:     observability.Component("ws"),
	}
}

// Run serves register and unregister requests until ctx is done, then closes
// every client.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for id, room := range h.rooms {
				for c := range room {
					close(c.send)
				}
				delete(h.rooms, id)
			}
			h.mu.Unlock()
			return

		case c := <-h.register:
			h.mu.Lock()
			room, ok := h.rooms[c.sessionID]
			if !ok {
				room = make(map[*Client]struct{})
				h.rooms[c.sessionID] = room
			}
			room[c] = struct{}{}
			size := len(room)
			h.mu.Unlock()
			h.logger.Info().Str("session_id", c.sessionID).Int("room_size", size).Msg("client connected")

		case c := <-h.unregister:
			h.mu.Lock()
			if room, ok := h.rooms[c.sessionID]; ok {
				if _, member := room[c]; member {
					delete(room, c)
					close(c.send)
					if len(room) == 0 {
						delete(h.rooms, c.sessionID)
					}
				}
			}
			h.mu.Unlock()
			h.logger.Info().Str("session_id", c.sessionID).Msg("client disconnected")
		}
	}
}

// BroadcastToSession sends message to every client in the session's room. A
// client whose buffer is full misses the message.
func (h *Hub) BroadcastToSession(sessionID string, message interface{}) {
	data, err := json.Marshal(message)
	if err != nil {
		h.logger.Error().Err(err).Msg("marshal broadcast")
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.rooms[sessionID] {
		select {
		case c.send <- data:
		default:
			h.logger.Debug().Str("session_id", sessionID).Msg("client send buffer full, dropping message")
		}
	}
}

func (h *Hub) RoomSize(sessionID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[sessionID])
}

// sendTo delivers data to c if it is still registered.
func (h *Hub) sendTo(c *Client, data []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if _, ok := h.rooms[c.sessionID][c]; !ok {
		return
	}
	select {
	case c.send <- data:
	default:
	}
}
