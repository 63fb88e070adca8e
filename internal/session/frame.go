package session

import (
	"time"

	"github.com/playmatatu/gravityputt/internal/game"
)

// Message types sent to clients.
const (
	MessageFrame  = "frame"
	MessageHole   = "hole_completed"
	MessageEnded  = "session_ended"
	MessageStroke = "stroke"
)

type CameraView struct {
	Position game.Vec2 `json:"position"`
	Scale    float64   `json:"scale"`
}

// Frame is the per-broadcast state a client renders from. Animations holds
// every instruction the scene emitted since the previous frame.
type Frame struct {
	Type       string           `json:"type"`
	SessionID  string           `json:"session_id"`
	Tick       int              `json:"tick"`
	Status     game.GameStatus  `json:"status"`
	Ball       game.Ball        `json:"ball"`
	Camera     CameraView       `json:"camera"`
	Score      string           `json:"score"`
	Stats      game.GameStats   `json:"stats"`
	Animations []game.Animation `json:"animations,omitempty"`
	Error      string           `json:"error,omitempty"`
}

// View is the read-only summary served over HTTP.
type View struct {
	SessionID string          `json:"session_id"`
	Seed      uint64          `json:"seed"`
	Status    game.GameStatus `json:"status"`
	Tick      int             `json:"tick"`
	Hole      int             `json:"hole"`
	Score     string          `json:"score"`
	Stats     game.GameStats  `json:"stats"`
	Ball      game.Vec2       `json:"ball"`
	Levels    []LevelView     `json:"levels"`
	Error     string          `json:"error,omitempty"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// LevelView is a copy of a placed level's world geometry.
type LevelView struct {
	Index   int           `json:"index"`
	Offset  game.Vec2     `json:"offset"`
	Size    game.Vec2     `json:"size"`
	Start   game.Rect     `json:"start"`
	Goal    game.Circle   `json:"goal"`
	Planets []game.Circle `json:"planets"`
}

func newLevelView(l *game.Level) LevelView {
	v := LevelView{
		Index:  l.Index,
		Offset: l.Offset,
		Size:   l.Size,
		Start:  game.Rect{Origin: l.Start.Origin.Plus(l.Offset), Size: l.Start.Size},
		Goal:   l.GoalCircle(),
	}
	for _, p := range l.Planets {
		v.Planets = append(v.Planets, p.Body)
	}
	return v
}

// frameRenderer buffers animations between broadcasts. It is only touched on
// the tick goroutine.
type frameRenderer struct {
	pending []game.Animation
}

func (r *frameRenderer) Animate(a game.Animation) {
	r.pending = append(r.pending, a)
}

func (r *frameRenderer) drain() []game.Animation {
	if len(r.pending) == 0 {
		return nil
	}
	out := r.pending
	r.pending = nil
	return out
}
