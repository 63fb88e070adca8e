package ws

import (
	"encoding/json"
	"errors"
	"math"
	"time"

	"github.com/gorilla/websocket"
	"github.com/playmatatu/gravityputt/internal/game"
	"github.com/playmatatu/gravityputt/internal/session"
	"github.com/rs/zerolog"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 30 * time.Second
	maxMessage = 4096

	// Aim points beyond this are rejected before they reach the session.
	maxAimCoordinate = 1e7
)

// WSMessage is the envelope for everything a client sends.
type WSMessage struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// AimData is a pointer position in world coordinates.
type AimData struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Client is one websocket connection watching and driving a session.
type Client struct {
	hub       *Hub
	conn      *websocket.Conn
	sessionID string
	sess      *session.Session
	send      chan []byte
	logger    zerolog.Logger
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				c.logger.Debug().Err(err).Msg("write failed")
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.logger.Debug().Err(err).Msg("ping failed")
				return
			}
		}
	}
}

func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessage)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Warn().Err(err).Msg("unexpected close")
			}
			return
		}

		var msg WSMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			c.sendError("invalid message")
			continue
		}
		c.handleMessage(msg)
	}
}

func (c *Client) handleMessage(msg WSMessage) {
	switch msg.Type {
	case "aim_begin", "aim_update", "aim_release":
		var data AimData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("invalid aim data")
			return
		}
		if math.Abs(data.X) > maxAimCoordinate || math.Abs(data.Y) > maxAimCoordinate {
			c.sendError("aim point out of range")
			return
		}
		in := session.Input{Kind: aimKinds[msg.Type], Point: game.NewVec2(data.X, data.Y)}
		if err := c.sess.Submit(in); err != nil {
			if errors.Is(err, session.ErrSessionClosed) {
				c.sendError("session has ended")
				return
			}
			c.logger.Debug().Err(err).Str("type", msg.Type).Msg("input dropped")
		}

	case "get_state":
		c.sendJSON(map[string]interface{}{"type": "state", "state": c.sess.View()})

	case "stop":
		c.sess.Stop(session.ReasonClient)

	default:
		c.sendError("unknown message type")
	}
}

var aimKinds = map[string]session.InputKind{
	"aim_begin":   session.InputBegin,
	"aim_update":  session.InputUpdate,
	"aim_release": session.InputRelease,
}

func (c *Client) sendJSON(v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	c.hub.sendTo(c, data)
}

func (c *Client) sendError(message string) {
	c.sendJSON(map[string]interface{}{"type": "error", "message": message})
}
