package game

import (
	"context"
	"fmt"
)

// SourceID identifies a gravity source across the whole window.
type SourceID string

// PlanetSourceID names the field of planet i in level index.
func PlanetSourceID(index, i int) SourceID {
	return SourceID(fmt.Sprintf("L%d:P%d", index, i))
}

// GoalSourceID names the goal field of level index.
func GoalSourceID(index int) SourceID {
	return SourceID(fmt.Sprintf("L%d:goal", index))
}

// GravitySource is a radial field that pulls the ball toward Center while the
// ball is within Radius. Exclusive and Enabled are written only by the Arbiter.
type GravitySource struct {
	ID             SourceID `json:"id"`
	Center         Vec2     `json:"center"`
	Radius         float64  `json:"radius"`
	Strength       float64  `json:"strength"`
	DesignStrength float64  `json:"design_strength"`
	Exclusive      bool     `json:"exclusive"`
	Enabled        bool     `json:"enabled"`
}

// Planet is a solid body the ball can touch and rest on. Local is in level
// space; Body is filled in when the level is placed.
type Planet struct {
	Local  Circle         `json:"local"`
	Body   Circle         `json:"body"`
	Source *GravitySource `json:"source"`
}

// Level is one hole. Regions are generated in local space; Offset maps them
// into the world.
type Level struct {
	Index      int            `json:"index"`
	Size       Vec2           `json:"size"`
	Start      Rect           `json:"start"`
	Goal       Circle         `json:"goal"`
	Planets    []Planet       `json:"planets"`
	GoalSource *GravitySource `json:"goal_source"`
	Offset     Vec2           `json:"offset"`
}

// LevelFactory produces levels. Generate may be slow; LevelWindow calls it off
// the tick goroutine and never reads a level before it returns.
type LevelFactory interface {
	Generate(ctx context.Context, size Vec2, index int) (*Level, error)
}

// Place moves the level to offset and recomputes world-space geometry.
func (l *Level) Place(offset Vec2) {
	l.Offset = offset
	for i := range l.Planets {
		p := &l.Planets[i]
		p.Body = p.Local.Offset(offset)
		if p.Source != nil {
			p.Source.Center = p.Body.Center
		}
	}
	if l.GoalSource != nil {
		l.GoalSource.Center = l.GoalCenter()
	}
}

func (l *Level) Bounds() Rect {
	return Rect{Origin: l.Offset, Size: l.Size}
}

// StartCenter is the world-space tee position.
func (l *Level) StartCenter() Vec2 {
	return l.Start.Center().Plus(l.Offset)
}

func (l *Level) GoalCenter() Vec2 {
	return l.Goal.Center.Plus(l.Offset)
}

func (l *Level) GoalCircle() Circle {
	return l.Goal.Offset(l.Offset)
}

// CameraCenter is where the camera rests while this level is current.
func (l *Level) CameraCenter() Vec2 {
	return l.Offset.Plus(l.Size.Times(0.5))
}

// Sources returns every field the level owns, planets first.
func (l *Level) Sources() []*GravitySource {
	out := make([]*GravitySource, 0, len(l.Planets)+1)
	for _, p := range l.Planets {
		if p.Source != nil {
			out = append(out, p.Source)
		}
	}
	if l.GoalSource != nil {
		out = append(out, l.GoalSource)
	}
	return out
}

// validate checks the geometry a window needs before splicing.
func (l *Level) validate() error {
	if l == nil {
		return fmt.Errorf("%w: factory returned no level", ErrGenerationFailed)
	}
	if l.Size.X <= 0 || l.Size.Y <= 0 {
		return fmt.Errorf("%w: level %d has empty size", ErrGenerationFailed, l.Index)
	}
	if l.Goal.Radius <= 0 {
		return fmt.Errorf("%w: level %d has no goal", ErrGenerationFailed, l.Index)
	}
	if l.GoalSource == nil {
		return fmt.Errorf("%w: level %d has no goal field", ErrGenerationFailed, l.Index)
	}
	return nil
}
