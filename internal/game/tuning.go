package game

import (
	"fmt"
	"time"
)

// Tuning holds every gameplay constant. DefaultTuning matches the shipped game;
// config.LoadTuning overlays a TOML file on top of it.
type Tuning struct {
	// Viewport (and level) size in world units.
	ViewportWidth  float64 `toml:"viewport_width"`
	ViewportHeight float64 `toml:"viewport_height"`

	TickRate time.Duration `toml:"-"`

	BallRadius        float64 `toml:"ball_radius"`
	ImpulseScale      float64 `toml:"impulse_scale"` // velocity per unit of impulse
	MinImpulse        float64 `toml:"min_impulse"`
	MaxImpulse        float64 `toml:"max_impulse"`
	ImpulseDivisor    float64 `toml:"impulse_divisor"`
	AimVisualMax      float64 `toml:"aim_visual_max"`
	StrokeGraceDelay  float64 `toml:"stroke_grace_delay_seconds"`
	PathSpacing       float64 `toml:"path_spacing"`
	RestSpeed         float64 `toml:"rest_speed"`
	PlanetFieldStr    float64 `toml:"planet_field_strength"`
	GoalFieldStr      float64 `toml:"goal_field_strength"`
	CaptureSpeed      float64 `toml:"capture_speed"`
	PlanetDamping     float64 `toml:"planet_damping"`
	RampSeedDivisor   float64 `toml:"ramp_seed_divisor"`
	RampDuration      float64 `toml:"ramp_duration_seconds"`
	ContactTolerance  float64 `toml:"contact_tolerance"`
	GoalExclusiveStr  float64 `toml:"goal_exclusive_strength"`
	GoalGentleStr     float64 `toml:"goal_gentle_strength"`
	GoalNearDamping   float64 `toml:"goal_near_damping"`
	GoalInnerDamping  float64 `toml:"goal_inner_damping"`
	HoleCompleteDist  float64 `toml:"hole_complete_distance"`
	HoleCompleteSpeed float64 `toml:"hole_complete_speed"`

	CameraMaxScale      float64 `toml:"camera_max_scale"`
	CameraScaleDuration float64 `toml:"camera_scale_duration_seconds"`
	CameraSafeFraction  float64 `toml:"camera_safe_fraction"`
	RecoveryDelay       float64 `toml:"recovery_delay_seconds"`
	TransitionDuration  float64 `toml:"transition_duration_seconds"`

	DepthLayers        int     `toml:"depth_layers"`
	DepthMinCount      int     `toml:"depth_min_count"`
	DepthCountDivisor  float64 `toml:"depth_count_divisor"`
	DepthMinRadius     float64 `toml:"depth_min_radius"`
	DepthMaxRadius     float64 `toml:"depth_max_radius"`
	DepthParallaxScale float64 `toml:"depth_parallax_scale"`
}

// DefaultTuning returns the values the game was balanced with.
func DefaultTuning() Tuning {
	return Tuning{
		ViewportWidth:  1024,
		ViewportHeight: 768,
		TickRate:       time.Second / 60,

		BallRadius:        10,
		ImpulseScale:      0.05,
		MinImpulse:        5,
		MaxImpulse:        200,
		ImpulseDivisor:    5,
		AimVisualMax:      200,
		StrokeGraceDelay:  0.2,
		PathSpacing:       18,
		RestSpeed:         0.01,
		PlanetFieldStr:    2.5,
		GoalFieldStr:      1.5,
		CaptureSpeed:      2,
		PlanetDamping:     0.9,
		RampSeedDivisor:   100,
		RampDuration:      1.5,
		ContactTolerance:  1,
		GoalExclusiveStr:  4.25,
		GoalGentleStr:     0.25,
		GoalNearDamping:   0.69,
		GoalInnerDamping:  0.48,
		HoleCompleteDist:  2,
		HoleCompleteSpeed: 1,

		CameraMaxScale:      1.5,
		CameraScaleDuration: 0.25,
		CameraSafeFraction:  0.1,
		RecoveryDelay:       1.0,
		TransitionDuration:  1.5,

		DepthLayers:        15,
		DepthMinCount:      180,
		DepthCountDivisor:  4000,
		DepthMinRadius:     0.4,
		DepthMaxRadius:     0.8,
		DepthParallaxScale: 0.5,
	}
}

// Viewport returns the viewport size as a vector.
func (t Tuning) Viewport() Vec2 {
	return Vec2{X: t.ViewportWidth, Y: t.ViewportHeight}
}

// Validate rejects tunings that would break window or camera math.
func (t Tuning) Validate() error {
	switch {
	case t.ViewportWidth <= 0 || t.ViewportHeight <= 0:
		return fmt.Errorf("%w: viewport must be positive", ErrConfiguration)
	case t.TickRate <= 0:
		return fmt.Errorf("%w: tick rate must be positive", ErrConfiguration)
	case t.BallRadius <= 0:
		return fmt.Errorf("%w: ball radius must be positive", ErrConfiguration)
	case t.MinImpulse > t.MaxImpulse:
		return fmt.Errorf("%w: min impulse %.2f exceeds max %.2f", ErrConfiguration, t.MinImpulse, t.MaxImpulse)
	case t.ImpulseDivisor <= 0:
		return fmt.Errorf("%w: impulse divisor must be positive", ErrConfiguration)
	case t.CameraMaxScale < 1:
		return fmt.Errorf("%w: camera max scale must be at least 1", ErrConfiguration)
	case t.DepthLayers < 1:
		return fmt.Errorf("%w: need at least one depth layer", ErrConfiguration)
	case t.RampSeedDivisor <= 0:
		return fmt.Errorf("%w: ramp seed divisor must be positive", ErrConfiguration)
	}
	return nil
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
