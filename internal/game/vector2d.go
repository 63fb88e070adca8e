package game

import "math"

// Vec2 is a 2D point or vector in world units.
type Vec2 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func NewVec2(x, y float64) Vec2 {
	return Vec2{X: x, Y: y}
}

func (v Vec2) Plus(o Vec2) Vec2 {
	return Vec2{X: v.X + o.X, Y: v.Y + o.Y}
}

func (v Vec2) Minus(o Vec2) Vec2 {
	return Vec2{X: v.X - o.X, Y: v.Y - o.Y}
}

func (v Vec2) Times(s float64) Vec2 {
	return Vec2{X: v.X * s, Y: v.Y * s}
}

// TimesVec scales each component independently.
func (v Vec2) TimesVec(o Vec2) Vec2 {
	return Vec2{X: v.X * o.X, Y: v.Y * o.Y}
}

func (v Vec2) Dot(o Vec2) float64 {
	return v.X*o.X + v.Y*o.Y
}

func (v Vec2) Magnitude() float64 {
	return math.Hypot(v.X, v.Y)
}

func (v Vec2) MagnitudeSquared() float64 {
	return v.X*v.X + v.Y*v.Y
}

func (v Vec2) Normalize() Vec2 {
	m := v.Magnitude()
	if m == 0 {
		return Vec2{}
	}
	return v.Times(1.0 / m)
}

func (v Vec2) DistanceTo(o Vec2) float64 {
	return v.Minus(o).Magnitude()
}

// Angle returns the bearing of v in radians.
func (v Vec2) Angle() float64 {
	return math.Atan2(v.Y, v.X)
}

func (v Vec2) Invert() Vec2 {
	return Vec2{X: -v.X, Y: -v.Y}
}

// IsFinite reports whether both components are neither NaN nor infinite.
func (v Vec2) IsFinite() bool {
	return !math.IsNaN(v.X) && !math.IsNaN(v.Y) && !math.IsInf(v.X, 0) && !math.IsInf(v.Y, 0)
}

func (v Vec2) IsZero() bool {
	return v.X == 0 && v.Y == 0
}

// ApproxEqual reports whether both components differ by at most eps.
func (v Vec2) ApproxEqual(o Vec2, eps float64) bool {
	return math.Abs(v.X-o.X) <= eps && math.Abs(v.Y-o.Y) <= eps
}

// Rect is an axis-aligned rectangle anchored at its minimum corner.
type Rect struct {
	Origin Vec2 `json:"origin"`
	Size   Vec2 `json:"size"`
}

func (r Rect) Center() Vec2 {
	return r.Origin.Plus(r.Size.Times(0.5))
}

func (r Rect) Max() Vec2 {
	return r.Origin.Plus(r.Size)
}

func (r Rect) Contains(p Vec2) bool {
	m := r.Max()
	return p.X >= r.Origin.X && p.X <= m.X && p.Y >= r.Origin.Y && p.Y <= m.Y
}

func (r Rect) Offset(by Vec2) Rect {
	return Rect{Origin: r.Origin.Plus(by), Size: r.Size}
}

// Inset shrinks r by dx on the left and right and dy on the top and bottom.
func (r Rect) Inset(dx, dy float64) Rect {
	return Rect{
		Origin: Vec2{X: r.Origin.X + dx, Y: r.Origin.Y + dy},
		Size:   Vec2{X: r.Size.X - 2*dx, Y: r.Size.Y - 2*dy},
	}
}

// Circle is a region described by its center and radius.
type Circle struct {
	Center Vec2    `json:"center"`
	Radius float64 `json:"radius"`
}

func (c Circle) Offset(by Vec2) Circle {
	return Circle{Center: c.Center.Plus(by), Radius: c.Radius}
}

func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
