package models

import (
	"database/sql"
	"time"
)

// Session is one player's run through the endless course.
type Session struct {
	ID           string         `db:"id" json:"id"`
	Seed         int64          `db:"seed" json:"seed"`
	Status       string         `db:"status" json:"status"`
	HoleNumber   int            `db:"hole_number" json:"hole_number"`
	TotalStrokes int            `db:"total_strokes" json:"total_strokes"`
	Recoveries   int            `db:"recoveries" json:"recoveries"`
	HaltReason   sql.NullString `db:"halt_reason" json:"halt_reason,omitempty"`
	CreatedAt    time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time      `db:"updated_at" json:"updated_at"`
	EndedAt      sql.NullTime   `db:"ended_at" json:"ended_at,omitempty"`
}

// HoleResult records a completed hole
type HoleResult struct {
	ID          int64     `db:"id" json:"id"`
	SessionID   string    `db:"session_id" json:"session_id"`
	Hole        int       `db:"hole" json:"hole"`
	Strokes     int       `db:"strokes" json:"strokes"`
	DurationMs  int64     `db:"duration_ms" json:"duration_ms"`
	CompletedAt time.Time `db:"completed_at" json:"completed_at"`
}

// LeaderboardEntry ranks sessions by strokes per completed hole
type LeaderboardEntry struct {
	SessionID      string  `db:"session_id" json:"session_id"`
	HolesCompleted int     `db:"holes_completed" json:"holes_completed"`
	TotalStrokes   int     `db:"total_strokes" json:"total_strokes"`
	AverageStrokes float64 `db:"average_strokes" json:"average_strokes"`
}
