package game

// GoalBand classifies the ball's distance from the goal rim.
type GoalBand int

const (
	BandFar   GoalBand = iota // d > 2R
	BandFade                  // 1.5R <= d <= 2R
	BandNear                  // R/5 <= d < 1.5R
	BandInner                 // d < R/5
)

func (b GoalBand) String() string {
	switch b {
	case BandFade:
		return "fade"
	case BandNear:
		return "near"
	case BandInner:
		return "inner"
	default:
		return "far"
	}
}

// GoalReading is the outcome of one proximity update.
type GoalReading struct {
	Distance float64
	Band     GoalBand
	Alpha    float64
	// Damping is the velocity modifier the goal imposes; 1 outside the near
	// bands.
	Damping  float64
	Complete bool
}

// GoalProximity shapes the goal field and ball damping by distance and decides
// when the hole is complete.
type GoalProximity struct {
	tuning   Tuning
	arbiter  *Arbiter
	renderer Renderer

	alpha float64
}

func NewGoalProximity(tuning Tuning, arbiter *Arbiter, renderer Renderer) *GoalProximity {
	if renderer == nil {
		renderer = nopRenderer{}
	}
	return &GoalProximity{tuning: tuning, arbiter: arbiter, renderer: renderer, alpha: 1}
}

// Classify maps a rim distance d to a band for goal radius r.
func Classify(d, r float64) GoalBand {
	switch {
	case d > 2*r:
		return BandFar
	case d >= 1.5*r:
		return BandFade
	case d >= r/5:
		return BandNear
	default:
		return BandInner
	}
}

// Update reads the ball against the current level's goal and pushes field
// strength and exclusivity through the arbiter.
func (g *GoalProximity) Update(ball *Ball, level *Level) GoalReading {
	goal := level.GoalCircle()
	src := level.GoalSource
	r := goal.Radius
	d := ball.Position.DistanceTo(goal.Center) - ball.Radius

	reading := GoalReading{Distance: d, Band: Classify(d, r), Damping: 1}
	switch reading.Band {
	case BandFar:
		reading.Alpha = 1
		src.Strength = src.DesignStrength
		g.arbiter.Release(src.ID)
	case BandFade:
		reading.Alpha = clamp((d-1.5*r)/(0.5*r), 0, 1)
		src.Strength = src.DesignStrength
		g.arbiter.Release(src.ID)
	case BandNear:
		g.arbiter.Claim(src.ID)
		src.Strength = g.tuning.GoalExclusiveStr
		reading.Damping = g.tuning.GoalNearDamping
	case BandInner:
		g.arbiter.Claim(src.ID)
		src.Strength = g.tuning.GoalGentleStr
		reading.Damping = g.tuning.GoalInnerDamping
	}

	if reading.Alpha != g.alpha {
		g.alpha = reading.Alpha
		g.renderer.Animate(Animation{Target: goalLabelTarget(level.Index), Kind: AnimFade, Value: reading.Alpha})
	}

	reading.Complete = d < g.tuning.HoleCompleteDist && ball.Speed() < g.tuning.HoleCompleteSpeed
	return reading
}

// Reset restores the label for a fresh hole.
func (g *GoalProximity) Reset() {
	g.alpha = 1
}
