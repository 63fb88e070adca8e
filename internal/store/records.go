package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/playmatatu/gravityputt/internal/game"
	"github.com/playmatatu/gravityputt/internal/models"
)

var ErrSessionNotFound = errors.New("session not found")

// RecordStore writes the durable history of sessions and holes to Postgres.
// A nil database turns every write into a no-op so the server can run on
// Redis alone.
type RecordStore struct {
	db *sqlx.DB
}

func NewRecordStore(db *sqlx.DB) *RecordStore {
	return &RecordStore{db: db}
}

// CreateSession inserts the session row, or reopens it on resume.
func (s *RecordStore) CreateSession(ctx context.Context, sessionID string, seed uint64) error {
	if s == nil || s.db == nil {
		return nil
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sessions (id, seed, status, created_at, updated_at)
		VALUES ($1, $2, $3, NOW(), NOW())
		ON CONFLICT (id) DO UPDATE
		SET status = EXCLUDED.status, halt_reason = NULL, ended_at = NULL, updated_at = NOW()`,
		sessionID, int64(seed), string(game.StatusInProgress),
	)
	if err != nil {
		return fmt.Errorf("create session %s: %w", sessionID, err)
	}
	return nil
}

// RecordHole stores the hole result and the session totals in one transaction.
// Replaying the same hole is ignored.
func (s *RecordStore) RecordHole(ctx context.Context, sessionID string, res game.HoleResult) error {
	if s == nil || s.db == nil {
		return nil
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO hole_results (session_id, hole, strokes, duration_ms, completed_at)
		VALUES ($1, $2, $3, $4, NOW())
		ON CONFLICT (session_id, hole) DO NOTHING`,
		sessionID, res.Hole, res.Strokes, res.Duration.Milliseconds(),
	)
	if err != nil {
		return fmt.Errorf("insert hole %d for %s: %w", res.Hole, sessionID, err)
	}

	if err := updateStats(ctx, tx, sessionID, res.Stats); err != nil {
		return err
	}
	return tx.Commit()
}

// UpdateStats copies the running totals onto the session row.
func (s *RecordStore) UpdateStats(ctx context.Context, sessionID string, stats game.GameStats) error {
	if s == nil || s.db == nil {
		return nil
	}
	return updateStats(ctx, s.db, sessionID, stats)
}

func updateStats(ctx context.Context, ex sqlx.ExecerContext, sessionID string, stats game.GameStats) error {
	_, err := ex.ExecContext(ctx, `
		UPDATE sessions
		SET hole_number = $2, total_strokes = $3, recoveries = $4, updated_at = NOW()
		WHERE id = $1`,
		sessionID, stats.HoleNumber, stats.TotalStrokes, stats.Recoveries,
	)
	if err != nil {
		return fmt.Errorf("update stats for %s: %w", sessionID, err)
	}
	return nil
}

// UpdateStatus marks the session as ended unless status is IN_PROGRESS.
func (s *RecordStore) UpdateStatus(ctx context.Context, sessionID string, status game.GameStatus, reason string) error {
	if s == nil || s.db == nil {
		return nil
	}
	var haltReason sql.NullString
	if reason != "" {
		haltReason = sql.NullString{String: reason, Valid: true}
	}
	_, err := s.db.ExecContext(ctx, `
		UPDATE sessions
		SET status = $2,
		    halt_reason = $3,
		    ended_at = CASE WHEN $2 = 'IN_PROGRESS' THEN NULL ELSE NOW() END,
		    updated_at = NOW()
		WHERE id = $1`,
		sessionID, string(status), haltReason,
	)
	if err != nil {
		return fmt.Errorf("update status for %s: %w", sessionID, err)
	}
	return nil
}

func (s *RecordStore) GetSession(ctx context.Context, sessionID string) (*models.Session, error) {
	if s == nil || s.db == nil {
		return nil, ErrSessionNotFound
	}
	var sess models.Session
	err := s.db.GetContext(ctx, &sess, `
		SELECT id, seed, status, hole_number, total_strokes, recoveries, halt_reason,
		       created_at, updated_at, ended_at
		FROM sessions WHERE id = $1`, sessionID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}
	return &sess, nil
}

func (s *RecordStore) HoleResults(ctx context.Context, sessionID string) ([]models.HoleResult, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	results := []models.HoleResult{}
	err := s.db.SelectContext(ctx, &results, `
		SELECT id, session_id, hole, strokes, duration_ms, completed_at
		FROM hole_results WHERE session_id = $1
		ORDER BY hole`, sessionID)
	return results, err
}

const maxLeaderboard = 100

// leaderboardLimit defaults a missing limit to 20 and caps it at 100.
func leaderboardLimit(limit int) int {
	if limit <= 0 {
		return 20
	}
	if limit > maxLeaderboard {
		return maxLeaderboard
	}
	return limit
}

// Leaderboard ranks sessions with at least minHoles completed holes by average
// strokes per hole, best first.
func (s *RecordStore) Leaderboard(ctx context.Context, minHoles, limit int) ([]models.LeaderboardEntry, error) {
	if s == nil || s.db == nil {
		return []models.LeaderboardEntry{}, nil
	}
	limit = leaderboardLimit(limit)
	entries := []models.LeaderboardEntry{}
	err := s.db.SelectContext(ctx, &entries, `
		SELECT session_id,
		       COUNT(*) AS holes_completed,
		       SUM(strokes) AS total_strokes,
		       AVG(strokes)::float8 AS average_strokes
		FROM hole_results
		GROUP BY session_id
		HAVING COUNT(*) >= $1
		ORDER BY average_strokes ASC, holes_completed DESC
		LIMIT $2`, minHoles, limit)
	return entries, err
}
