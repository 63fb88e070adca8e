package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/playmatatu/gravityputt/internal/game"
	"github.com/playmatatu/gravityputt/internal/models"
	"github.com/playmatatu/gravityputt/internal/observability"
	"github.com/playmatatu/gravityputt/internal/session"
	"github.com/playmatatu/gravityputt/internal/store"
)

// Sessions is the live session registry the handlers drive.
type Sessions interface {
	Create(ctx context.Context) (*session.Session, error)
	Resume(ctx context.Context, sessionID string) (*session.Session, error)
	Get(sessionID string) (*session.Session, bool)
	Stop(sessionID, reason string) bool
}

// History is the durable record of finished holes.
type History interface {
	GetSession(ctx context.Context, sessionID string) (*models.Session, error)
	HoleResults(ctx context.Context, sessionID string) ([]models.HoleResult, error)
	Leaderboard(ctx context.Context, minHoles, limit int) ([]models.LeaderboardEntry, error)
}

// TokenIssuer signs session tokens.
type TokenIssuer interface {
	Issue(sessionID string) (string, time.Time, error)
}

// CreateSession starts a new run and returns the token that unlocks it.
func CreateSession(sessions Sessions, tokens TokenIssuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		logger := observability.Component("api")
		s, err := sessions.Create(c.Request.Context())
		if err != nil {
			if errors.Is(err, session.ErrTooManySessions) {
				c.JSON(http.StatusServiceUnavailable, gin.H{"error": "server is full, try again shortly"})
				return
			}
			logger.Error().Err(err).Msg("create session failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to start session"})
			return
		}

		token, exp, err := tokens.Issue(s.ID)
		if err != nil {
			logger.Error().Err(err).Str("session_id", s.ID).Msg("token issue failed")
			s.Stop(session.ReasonClient)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}

		c.JSON(http.StatusCreated, gin.H{
			"session_id": s.ID,
			"token":      token,
			"expires_at": exp,
			"ws_path":    "/ws/" + s.ID,
			"state":      s.View(),
		})
	}
}

// ResumeSession brings a stopped or halted session back from its last
// snapshot.
func ResumeSession(sessions Sessions) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")
		s, err := sessions.Resume(c.Request.Context(), id)
		switch {
		case errors.Is(err, store.ErrSnapshotNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "nothing to resume for this session"})
			return
		case errors.Is(err, session.ErrTooManySessions):
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "server is full, try again shortly"})
			return
		case errors.Is(err, game.ErrConfiguration):
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
			return
		case err != nil:
			logger := observability.Component("api")
			logger.Error().Err(err).Str("session_id", id).Msg("resume failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to resume session"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"session_id": s.ID, "ws_path": "/ws/" + s.ID, "state": s.View()})
	}
}

// GetSession returns the live view when the session is running, otherwise
// its stored history.
func GetSession(sessions Sessions, history History) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")
		if s, ok := sessions.Get(id); ok {
			c.JSON(http.StatusOK, gin.H{"live": true, "state": s.View()})
			return
		}

		record, err := history.GetSession(c.Request.Context(), id)
		if errors.Is(err, store.ErrSessionNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load session"})
			return
		}
		holes, err := history.HoleResults(c.Request.Context(), id)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load holes"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"live": false, "session": record, "holes": holes})
	}
}

// StopSession ends a running session; it can be resumed later.
func StopSession(sessions Sessions) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !sessions.Stop(c.Param("id"), session.ReasonClient) {
			c.JSON(http.StatusNotFound, gin.H{"error": "session not running"})
			return
		}
		c.JSON(http.StatusAccepted, gin.H{"status": "stopping"})
	}
}

// GetLeaderboard ranks sessions by average strokes per hole.
func GetLeaderboard(history History) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
		minHoles, _ := strconv.Atoi(c.DefaultQuery("min_holes", "1"))
		if minHoles < 1 {
			minHoles = 1
		}

		entries, err := history.Leaderboard(c.Request.Context(), minHoles, limit)
		if err != nil {
			logger := observability.Component("api")
			logger.Error().Err(err).Msg("leaderboard query failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load leaderboard"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"entries": entries, "min_holes": minHoles})
	}
}
