package game

import "fmt"

// GameStatus represents the lifecycle of a session.
type GameStatus string

const (
	StatusWaiting    GameStatus = "WAITING"
	StatusInProgress GameStatus = "IN_PROGRESS"
	StatusHalted     GameStatus = "HALTED"
	StatusStopped    GameStatus = "STOPPED"
)

// GameStats is mutated at stroke resolution, hole completion and recovery.
type GameStats struct {
	HoleNumber   int `json:"hole_number"`
	TotalStrokes int `json:"total_strokes"`
	HoleStrokes  int `json:"hole_strokes"`
	Recoveries   int `json:"recoveries"`
}

func NewGameStats() GameStats {
	return GameStats{HoleNumber: 1}
}

// CompleteHole folds the hole's strokes into the total and moves on.
func (s *GameStats) CompleteHole() {
	s.TotalStrokes += s.HoleStrokes
	s.HoleStrokes = 0
	s.HoleNumber++
}

// ScoreText is the status label shown above the course.
func (s GameStats) ScoreText() string {
	return fmt.Sprintf("%d, +%d", s.TotalStrokes, s.HoleStrokes)
}

// LevelRef is enough to regenerate a placed level from the session seed.
type LevelRef struct {
	Index  int  `json:"index"`
	Offset Vec2 `json:"offset"`
}

// Snapshot is what persistence receives after each advance.
type Snapshot struct {
	SessionID string     `json:"session_id"`
	Seed      uint64     `json:"seed"`
	Ghost     *LevelRef  `json:"ghost,omitempty"`
	Levels    []LevelRef `json:"levels"`
	Stats     GameStats  `json:"stats"`
	// HoleTicks is how long the completed hole took, in ticks.
	HoleTicks int `json:"hole_ticks"`
}

// Persister accepts snapshots for saving off the tick goroutine. RequestSave
// must not block.
type Persister interface {
	RequestSave(Snapshot)
}

type nopPersister struct{}

func (nopPersister) RequestSave(Snapshot) {}
