package game

import (
	"math"
	"time"
)

// TileParams is the generation snapshot a renderer needs to draw a star tile.
type TileParams struct {
	Count     int     `json:"count"`
	MinRadius float64 `json:"min_radius"`
	MaxRadius float64 `json:"max_radius"`
	Seed      uint64  `json:"seed"`
}

// Tile is one background tile. Position is its minimum corner.
type Tile struct {
	ID       uint64     `json:"id"`
	Position Vec2       `json:"position"`
	Size     Vec2       `json:"size"`
	Params   TileParams `json:"params"`
}

// DepthLayer is a ring arena of tiles ordered by X. Tiles are only appended at
// the tail and evicted at the head.
type DepthLayer struct {
	Depth  int
	Scale  float64
	Params TileParams

	ring []Tile
	head int
	n    int
}

func (l *DepthLayer) Len() int {
	return l.n
}

// At returns the i-th tile counting from the head.
func (l *DepthLayer) At(i int) *Tile {
	return &l.ring[(l.head+i)%len(l.ring)]
}

func (l *DepthLayer) Head() *Tile {
	return l.At(0)
}

func (l *DepthLayer) Tail() *Tile {
	return l.At(l.n - 1)
}

// Tiles copies the live tiles in order.
func (l *DepthLayer) Tiles() []Tile {
	out := make([]Tile, l.n)
	for i := range out {
		out[i] = *l.At(i)
	}
	return out
}

func (l *DepthLayer) push(t Tile) {
	if l.n == len(l.ring) {
		grown := make([]Tile, max(4, 2*len(l.ring)))
		for i := 0; i < l.n; i++ {
			grown[i] = *l.At(i)
		}
		l.ring = grown
		l.head = 0
	}
	l.ring[(l.head+l.n)%len(l.ring)] = t
	l.n++
}

func (l *DepthLayer) popHead() Tile {
	t := *l.Head()
	l.ring[l.head] = Tile{}
	l.head = (l.head + 1) % len(l.ring)
	l.n--
	return t
}

// DepthLayers scrolls N independent parallax layers with the camera and
// recycles their tiles so each layer only covers the padded viewport.
type DepthLayers struct {
	tuning   Tuning
	renderer Renderer
	seed     uint64

	tileSize Vec2
	layers   []*DepthLayer
	nextID   uint64
}

func NewDepthLayers(tuning Tuning, renderer Renderer, seed uint64) *DepthLayers {
	if renderer == nil {
		renderer = nopRenderer{}
	}
	return &DepthLayers{
		tuning:   tuning,
		renderer: renderer,
		seed:     seed,
		tileSize: Vec2{X: tuning.ViewportWidth * 2, Y: tuning.ViewportHeight * 3},
	}
}

// ParallaxScale is how much of the camera's motion layer depth follows.
// Nearer layers (higher depth) follow more.
func (d *DepthLayers) ParallaxScale(depth int) float64 {
	n := float64(d.tuning.DepthLayers)
	return d.tuning.DepthParallaxScale * math.Cbrt(float64(depth+1)/n)
}

// LayerParams interpolates star density and size over depth: far layers are
// dense with small stars, near layers sparse with large ones.
func (d *DepthLayers) LayerParams(depth int) TileParams {
	t := 0.0
	if d.tuning.DepthLayers > 1 {
		t = float64(depth) / float64(d.tuning.DepthLayers-1)
	}
	area := d.tileSize.X * d.tileSize.Y
	maxCount := int(area / d.tuning.DepthCountDivisor)
	if maxCount < d.tuning.DepthMinCount {
		maxCount = d.tuning.DepthMinCount
	}
	count := int(math.Round(lerp(float64(maxCount), float64(d.tuning.DepthMinCount), t)))
	maxR := lerp(d.tuning.DepthMinRadius, d.tuning.DepthMaxRadius, t)
	return TileParams{
		Count:     count,
		MinRadius: math.Max(0.05, maxR-0.2),
		MaxRadius: maxR,
	}
}

// Initialize lays one tile per layer with its left edge on anchor.
func (d *DepthLayers) Initialize(anchor Vec2) {
	d.layers = make([]*DepthLayer, d.tuning.DepthLayers)
	for depth := range d.layers {
		l := &DepthLayer{
			Depth:  depth,
			Scale:  d.ParallaxScale(depth),
			Params: d.LayerParams(depth),
		}
		d.layers[depth] = l
		d.appendTile(l, Vec2{X: anchor.X, Y: anchor.Y - d.tileSize.Y/2}, 0)
	}
}

// Update moves every tile by the layer's share of the camera offset, then
// extends coverage ahead of the camera and evicts tiles left far behind.
func (d *DepthLayers) Update(cameraPos, cameraOffset Vec2, duration time.Duration) {
	lead := cameraPos.X + 2*d.tuning.ViewportWidth
	behind := 2 * d.tuning.ViewportWidth

	for _, l := range d.layers {
		shift := cameraOffset.Times(l.Scale)
		for i := 0; i < l.Len(); i++ {
			t := l.At(i)
			t.Position = t.Position.Plus(shift)
			d.renderer.Animate(Animation{
				Target:   tileTarget(l.Depth, t.ID),
				Kind:     AnimMove,
				To:       t.Position,
				Duration: duration,
				Curve:    CurveEaseInOut,
			})
		}

		before := l.Len()
		for lead-(l.Tail().Position.X+l.Tail().Size.X) > 0 {
			tail := l.Tail()
			d.appendTile(l, Vec2{X: tail.Position.X + tail.Size.X, Y: cameraPos.Y - d.tileSize.Y/2}, duration)
		}

		if before == 1 && l.Len() > 1 {
			continue
		}
		for l.Len() > 1 && lead-(l.Head().Position.X+l.Head().Size.X) > behind {
			gone := l.popHead()
			d.renderer.Animate(Animation{Target: tileTarget(l.Depth, gone.ID), Kind: AnimRemove, Delay: duration})
		}
	}
}

// Layers exposes the layers in depth order.
func (d *DepthLayers) Layers() []*DepthLayer {
	return d.layers
}

// LiveTiles counts tiles across all layers.
func (d *DepthLayers) LiveTiles() int {
	n := 0
	for _, l := range d.layers {
		n += l.Len()
	}
	return n
}

func (d *DepthLayers) appendTile(l *DepthLayer, pos Vec2, delay time.Duration) {
	d.nextID++
	params := l.Params
	params.Seed = mix64(d.seed ^ d.nextID<<8 ^ uint64(l.Depth))
	t := Tile{ID: d.nextID, Position: pos, Size: d.tileSize, Params: params}
	l.push(t)
	d.renderer.Animate(Animation{
		Target: tileTarget(l.Depth, t.ID),
		Kind:   AnimSpawn,
		To:     t.Position,
		Size:   t.Size,
		Delay:  delay,
		Tile:   &params,
	})
}

// mix64 is the splitmix64 finalizer; it spreads tile ids into texture seeds.
func mix64(z uint64) uint64 {
	z += 0x9e3779b97f4a7c15
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return z ^ (z >> 31)
}
