package game

// Ball is the single player body. The physics engine integrates Position and
// Velocity; controllers adjust the rest.
type Ball struct {
	Position Vec2    `json:"position"`
	Velocity Vec2    `json:"velocity"`
	Radius   float64 `json:"radius"`
	Ready    bool    `json:"ready"`
	// Damping multiplies velocity once per tick.
	Damping float64 `json:"damping"`
	// Interacting is false while fields and collisions must ignore the ball:
	// between a reset and the end of the stroke grace delay.
	Interacting bool `json:"interacting"`
	// Rest is the last position the ball was explicitly placed at or came to
	// rest on a planet. Off-screen recovery returns the ball here.
	Rest        Vec2 `json:"rest"`
	LastImpulse Vec2 `json:"last_impulse"`
}

func NewBall(radius float64) *Ball {
	return &Ball{Radius: radius, Ready: true, Damping: 1}
}

func (b *Ball) Speed() float64 {
	return b.Velocity.Magnitude()
}

// ApplyImpulse adds an instantaneous impulse converted to velocity by scale.
func (b *Ball) ApplyImpulse(impulse Vec2, scale float64) {
	b.LastImpulse = impulse
	b.Velocity = b.Velocity.Plus(impulse.Times(scale))
}

// PlaceAt puts the ball at rest on p and records p as the resting snapshot.
func (b *Ball) PlaceAt(p Vec2) {
	b.Position = p
	b.Velocity = Vec2{}
	b.Rest = p
	b.Damping = 1
	b.Ready = true
	b.Interacting = false
}

// Settle stops the ball where it is, for example when it lands on a planet.
func (b *Ball) Settle() {
	b.Velocity = Vec2{}
	b.Rest = b.Position
	b.Ready = true
}
