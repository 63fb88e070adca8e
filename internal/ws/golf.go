package ws

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/playmatatu/gravityputt/internal/session"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	// Origins are checked by middleware.WebSocketCORSCheck before the upgrade.
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// HandleGolfWebSocket attaches a client to a live session. The route is
// expected to sit behind auth.RequireSession.
func HandleGolfWebSocket(manager *session.Manager, hub *Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID := c.Param("id")
		sess, ok := manager.Get(sessionID)
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "session not running"})
			return
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			hub.logger.Warn().Err(err).Str("session_id", sessionID).Msg("upgrade failed")
			return
		}

		client := &Client{
			hub:       hub,
			conn:      conn,
			sessionID: sessionID,
			sess:      sess,
			send:      make(chan []byte, 256),
			logger:    hub.logger.With().Str("session_id", sessionID).Logger(),
		}
		if data, err := json.Marshal(map[string]interface{}{"type": "state", "state": sess.View()}); err == nil {
			client.send <- data
		}

		hub.register <- client

		go client.writePump()
		go client.readPump()
	}
}
