package api

import (
	"github.com/gin-gonic/gin"
	"github.com/playmatatu/gravityputt/internal/api/handlers"
	"github.com/playmatatu/gravityputt/internal/auth"
	"github.com/playmatatu/gravityputt/internal/config"
	"github.com/playmatatu/gravityputt/internal/middleware"
	"github.com/playmatatu/gravityputt/internal/observability"
	"github.com/playmatatu/gravityputt/internal/session"
	"github.com/playmatatu/gravityputt/internal/ws"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Dependencies are the collaborators the routes are wired to.
type Dependencies struct {
	Config  *config.Config
	Manager *session.Manager
	Hub     *ws.Hub
	Tokens  *auth.Tokens
	History handlers.History
}

// SetupRoutes configures all API routes
func SetupRoutes(router *gin.Engine, deps Dependencies) {
	cfg := deps.Config
	logger := observability.Component("http")

	router.Use(observability.RequestMetrics())
	router.Use(observability.RequestLogger(logger))
	router.Use(middleware.CORSMiddleware(cfg))
	if cfg.Environment != "production" {
		router.Use(middleware.NoCache())
		logger.Debug().Msg("no-cache headers enabled for all routes")
	}

	router.GET("/health", handlers.HealthCheck(deps.Manager))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	requireSession := auth.RequireSession(deps.Tokens)

	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", handlers.HealthCheck(deps.Manager))
		v1.GET("/leaderboard", handlers.GetLeaderboard(deps.History))

		sessions := v1.Group("/sessions")
		{
			sessions.POST("", handlers.CreateSession(deps.Manager, deps.Tokens))
			sessions.GET("/:id", requireSession, handlers.GetSession(deps.Manager, deps.History))
			sessions.POST("/:id/resume", requireSession, handlers.ResumeSession(deps.Manager))
			sessions.DELETE("/:id", requireSession, handlers.StopSession(deps.Manager))
		}
	}

	router.GET("/ws/:id",
		middleware.WebSocketCORSCheck(cfg),
		requireSession,
		handlers.HandleGameWebSocket(deps.Manager, deps.Hub),
	)
}
