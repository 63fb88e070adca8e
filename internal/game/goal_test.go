package game

import "testing"

func TestClassifyBoundaries(t *testing.T) {
	const r = 24.0
	cases := []struct {
		d    float64
		want GoalBand
	}{
		{2*r + 0.001, BandFar},
		{2 * r, BandFade},
		{1.5 * r, BandFade},
		{1.5*r - 0.001, BandNear},
		{r / 5, BandNear},
		{r/5 - 0.001, BandInner},
		{-10, BandInner},
	}
	for _, c := range cases {
		if got := Classify(c.d, r); got != c.want {
			t.Errorf("Classify(%.3f) = %s, want %s", c.d, got, c.want)
		}
	}
}

type goalFixture struct {
	goal    *GoalProximity
	arbiter *Arbiter
	level   *Level
	ball    *Ball
}

func newGoalFixture() *goalFixture {
	a, _ := newTestArbiter()
	l := testLevel(1, NewVec2(1024, 768))
	a.Register(l)
	a.SetEnabled(l.GoalSource.ID, true)
	ball := NewBall(10)
	ball.Interacting = true
	return &goalFixture{
		goal:    NewGoalProximity(DefaultTuning(), a, &recordingRenderer{}),
		arbiter: a,
		level:   l,
		ball:    ball,
	}
}

// at puts the ball so its rim is d units from the goal center along +X.
func (f *goalFixture) at(d float64) {
	f.ball.Position = f.level.GoalCenter().Plus(NewVec2(d+f.ball.Radius, 0))
}

func TestCompletionThresholdsAreStrict(t *testing.T) {
	cases := []struct {
		name     string
		d, speed float64
		want     bool
	}{
		{"exactly at distance", 2, 0, false},
		{"exactly at speed", 0, 1, false},
		{"just inside both", 1.999, 0.999, true},
		{"at rest on center", -10, 0, true},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			f := newGoalFixture()
			f.at(c.d)
			f.ball.Velocity = NewVec2(c.speed, 0)
			if got := f.goal.Update(f.ball, f.level).Complete; got != c.want {
				t.Errorf("Complete = %v, want %v", got, c.want)
			}
		})
	}
}

func TestNearBandClaimsGoalField(t *testing.T) {
	f := newGoalFixture()
	f.at(20)

	reading := f.goal.Update(f.ball, f.level)
	if reading.Band != BandNear {
		t.Fatalf("Expected near band, got %s", reading.Band)
	}
	if id, _ := f.arbiter.Exclusive(); id != f.level.GoalSource.ID {
		t.Errorf("Goal should be exclusive, got %q", id)
	}
	if f.level.GoalSource.Strength != 4.25 || reading.Damping != 0.69 {
		t.Errorf("Near band strength %.2f damping %.2f", f.level.GoalSource.Strength, reading.Damping)
	}
}

func TestInnerBandGentlesField(t *testing.T) {
	f := newGoalFixture()
	f.at(2)
	reading := f.goal.Update(f.ball, f.level)
	if reading.Band != BandInner || f.level.GoalSource.Strength != 0.25 || reading.Damping != 0.48 {
		t.Errorf("Inner band: %+v strength %.2f", reading, f.level.GoalSource.Strength)
	}
}

func TestLeavingGoalReleasesClaim(t *testing.T) {
	f := newGoalFixture()
	f.at(20)
	f.goal.Update(f.ball, f.level)

	f.at(200)
	reading := f.goal.Update(f.ball, f.level)
	if _, ok := f.arbiter.Exclusive(); ok {
		t.Errorf("Claim should be released in the far band")
	}
	if reading.Alpha != 1 || reading.Damping != 1 {
		t.Errorf("Far band reading %+v", reading)
	}
	if f.level.GoalSource.Strength != f.level.GoalSource.DesignStrength {
		t.Errorf("Far band should restore design strength")
	}
}

func TestFadeBandAlpha(t *testing.T) {
	f := newGoalFixture()
	r := f.level.Goal.Radius
	f.at(1.75 * r)
	reading := f.goal.Update(f.ball, f.level)
	if reading.Band != BandFade || reading.Alpha < 0.499 || reading.Alpha > 0.501 {
		t.Errorf("Expected half alpha in fade band, got %+v", reading)
	}
}
