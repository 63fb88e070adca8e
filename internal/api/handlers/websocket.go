package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/playmatatu/gravityputt/internal/session"
	"github.com/playmatatu/gravityputt/internal/ws"
)

// HandleGameWebSocket streams frames for a session and accepts aim input.
func HandleGameWebSocket(manager *session.Manager, hub *ws.Hub) gin.HandlerFunc {
	return ws.HandleGolfWebSocket(manager, hub)
}
