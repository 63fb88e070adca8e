package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

var startTime = time.Now()

const version = "1.0.0"

// ActiveCounter reports how many sessions are ticking.
type ActiveCounter interface {
	Count() int
}

// HealthCheck returns server health status
func HealthCheck(active ActiveCounter) gin.HandlerFunc {
	return func(c *gin.Context) {
		body := gin.H{
			"status":  "ok",
			"service": "gravityputt-api",
			"version": version,
			"uptime":  time.Since(startTime).String(),
		}
		if active != nil {
			body["active_sessions"] = active.Count()
		}
		c.JSON(http.StatusOK, body)
	}
}
