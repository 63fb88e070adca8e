package game

import (
	"fmt"
	"time"
)

// AnimationKind says which property an animation drives.
type AnimationKind string

const (
	AnimSpawn  AnimationKind = "spawn"
	AnimMove   AnimationKind = "move"
	AnimScale  AnimationKind = "scale"
	AnimRotate AnimationKind = "rotate"
	AnimFade   AnimationKind = "fade"
	AnimTint   AnimationKind = "tint"
	AnimText   AnimationKind = "text"
	AnimRemove AnimationKind = "remove"
)

// Curve is the timing function the renderer should apply.
type Curve string

const (
	CurveLinear    Curve = "linear"
	CurveEaseInOut Curve = "ease_in_out"
)

// Animation is one instruction to the renderer. The core decides values,
// durations and curves; the renderer executes them.
type Animation struct {
	Target   string        `json:"target"`
	Kind     AnimationKind `json:"kind"`
	To       Vec2          `json:"to,omitempty"`
	Size     Vec2          `json:"size,omitempty"`
	Value    float64       `json:"value,omitempty"`
	Text     string        `json:"text,omitempty"`
	Delay    time.Duration `json:"delay,omitempty"`
	Duration time.Duration `json:"duration,omitempty"`
	Curve    Curve         `json:"curve,omitempty"`
	Tile     *TileParams   `json:"tile,omitempty"`
}

// Renderer receives animations. Animate is called on the tick goroutine and
// must not block.
type Renderer interface {
	Animate(Animation)
}

type nopRenderer struct{}

func (nopRenderer) Animate(Animation) {}

const (
	targetCamera = "camera"
	targetScore  = "score"
	targetAim    = "aim"
	targetBall   = "ball"
)

func levelTarget(index int) string {
	return fmt.Sprintf("level:%d", index)
}

func goalTarget(index int) string {
	return fmt.Sprintf("goal:%d", index)
}

func goalLabelTarget(index int) string {
	return fmt.Sprintf("goal_label:%d", index)
}

func tileTarget(layer int, id uint64) string {
	return fmt.Sprintf("tile:%d:%d", layer, id)
}

func pathTarget(id int) string {
	return fmt.Sprintf("path:%d", id)
}
