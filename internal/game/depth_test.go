package game

import (
	"math"
	"testing"
	"time"
)

func TestParallaxGrowsWithDepth(t *testing.T) {
	d := NewDepthLayers(DefaultTuning(), nil, 1)
	n := DefaultTuning().DepthLayers

	if got, want := d.ParallaxScale(n-1), 0.5; math.Abs(got-want) > 1e-12 {
		t.Errorf("Nearest layer scale = %.6f, want %.6f", got, want)
	}
	for depth := 1; depth < n; depth++ {
		if d.ParallaxScale(depth) <= d.ParallaxScale(depth-1) {
			t.Errorf("Scale not increasing at depth %d", depth)
		}
	}
}

func TestLayerParamsInterpolate(t *testing.T) {
	tuning := DefaultTuning()
	d := NewDepthLayers(tuning, nil, 1)
	far := d.LayerParams(0)
	near := d.LayerParams(tuning.DepthLayers - 1)

	if near.Count != tuning.DepthMinCount {
		t.Errorf("Nearest layer count = %d, want %d", near.Count, tuning.DepthMinCount)
	}
	if far.Count <= near.Count {
		t.Errorf("Far layer should be denser: far=%d near=%d", far.Count, near.Count)
	}
	if far.MaxRadius != tuning.DepthMinRadius || near.MaxRadius != tuning.DepthMaxRadius {
		t.Errorf("Radius range not interpolated: far=%.2f near=%.2f", far.MaxRadius, near.MaxRadius)
	}
	if math.Abs(near.MinRadius-(near.MaxRadius-0.2)) > 1e-12 {
		t.Errorf("Min radius should trail max by 0.2, got %.2f..%.2f", near.MinRadius, near.MaxRadius)
	}
}

func TestInitializeLaysOneTilePerLayer(t *testing.T) {
	r := &recordingRenderer{}
	d := NewDepthLayers(DefaultTuning(), r, 1)
	d.Initialize(NewVec2(0, 0))

	if len(d.Layers()) != DefaultTuning().DepthLayers {
		t.Fatalf("Expected %d layers, got %d", DefaultTuning().DepthLayers, len(d.Layers()))
	}
	for _, l := range d.Layers() {
		if l.Len() != 1 || l.Head().Position.X != 0 {
			t.Errorf("Layer %d: expected one tile at x=0, got %d tiles", l.Depth, l.Len())
		}
	}
	if got := r.count(AnimSpawn, "tile:"); got != DefaultTuning().DepthLayers {
		t.Errorf("Expected %d tile spawns, got %d", DefaultTuning().DepthLayers, got)
	}
}

func TestUpdateKeepsTilesOrderedAndBounded(t *testing.T) {
	tuning := DefaultTuning()
	r := &recordingRenderer{}
	d := NewDepthLayers(tuning, r, 7)
	d.Initialize(NewVec2(0, 0))

	cam := NewVec2(tuning.ViewportWidth/2, 0)
	step := NewVec2(880, 35)
	for hole := 0; hole < 40; hole++ {
		cam = cam.Plus(step)
		d.Update(cam, step, time.Second)

		for _, l := range d.Layers() {
			if l.Len() > 4 {
				t.Fatalf("Hole %d layer %d: %d tiles, expected bounded coverage", hole, l.Depth, l.Len())
			}
			tiles := l.Tiles()
			for i := 1; i < len(tiles); i++ {
				if tiles[i].Position.X <= tiles[i-1].Position.X {
					t.Fatalf("Hole %d layer %d: tiles out of order %v", hole, l.Depth, tiles)
				}
				if tiles[i].ID <= tiles[i-1].ID {
					t.Fatalf("Hole %d layer %d: tile ids not appended at tail", hole, l.Depth)
				}
			}
			lead := cam.X + 2*tuning.ViewportWidth
			if tail := l.Tail(); tail.Position.X+tail.Size.X < lead {
				t.Fatalf("Hole %d layer %d: tail ends at %.0f before lead %.0f", hole, l.Depth, tail.Position.X+tail.Size.X, lead)
			}
		}
	}
	if r.count(AnimRemove, "tile:") == 0 {
		t.Errorf("Expected old tiles to be evicted")
	}
}

func TestFreshlyGrownLayerKeepsItsHead(t *testing.T) {
	tuning := DefaultTuning()
	d := NewDepthLayers(tuning, nil, 1)
	d.Initialize(NewVec2(0, 0))

	// One big jump: every layer grows from its single tile.
	jump := NewVec2(tuning.ViewportWidth*6, 0)
	d.Update(jump, jump, 0)

	for _, l := range d.Layers() {
		if l.Head().ID > uint64(tuning.DepthLayers) {
			t.Errorf("Layer %d evicted its original tile in the update that grew it", l.Depth)
		}
	}
}

func TestRingGrowthPreservesOrder(t *testing.T) {
	var l DepthLayer
	for i := 1; i <= 9; i++ {
		l.push(Tile{ID: uint64(i), Position: NewVec2(float64(i), 0)})
		if i%3 == 0 {
			l.popHead()
		}
	}
	tiles := l.Tiles()
	if len(tiles) != 6 {
		t.Fatalf("Expected 6 tiles, got %d", len(tiles))
	}
	for i := 1; i < len(tiles); i++ {
		if tiles[i].ID != tiles[i-1].ID+1 {
			t.Errorf("Ring order broken: %v", tiles)
		}
	}
}
