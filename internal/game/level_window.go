package game

import (
	"context"
	"fmt"
	"time"
)

// generation is the result of one off-tick Generate call.
type generation struct {
	index   int
	level   *Level
	err     error
	elapsed time.Duration
}

// LevelWindow is the live chain of levels: an optional ghost (the hole just
// completed), the current hole, and the pre-generated next hole. All window
// mutation happens on the tick goroutine; Generate runs on its own goroutine
// and hands back a finished level through results.
type LevelWindow struct {
	tuning   Tuning
	factory  LevelFactory
	arbiter  *Arbiter
	renderer Renderer
	persist  Persister

	ghost   *Level
	current *Level
	next    *Level

	pending   bool
	nextIndex int
	results   chan generation

	ctx    context.Context
	cancel context.CancelFunc

	// OnGenerated observes generation latency. Optional.
	OnGenerated func(time.Duration)
}

func NewLevelWindow(tuning Tuning, factory LevelFactory, arbiter *Arbiter, renderer Renderer, persist Persister) *LevelWindow {
	if renderer == nil {
		renderer = nopRenderer{}
	}
	if persist == nil {
		persist = nopPersister{}
	}
	return &LevelWindow{
		tuning:   tuning,
		factory:  factory,
		arbiter:  arbiter,
		renderer: renderer,
		persist:  persist,
		results:  make(chan generation, 1),
	}
}

// Init builds the first two holes synchronously, starting at hole first.
// Failure here is a configuration error: there is nothing to play.
func (w *LevelWindow) Init(ctx context.Context, first int) error {
	w.ctx, w.cancel = context.WithCancel(ctx)

	current, err := w.generateNow(first)
	if err != nil {
		return fmt.Errorf("%w: initial level: %v", ErrConfiguration, err)
	}
	current.Place(Vec2{X: 0, Y: -current.Start.Center().Y})

	next, err := w.generateNow(first + 1)
	if err != nil {
		return fmt.Errorf("%w: second level: %v", ErrConfiguration, err)
	}
	next.Place(chainOffset(current, next))

	w.current = current
	w.next = next
	w.nextIndex = first + 2
	w.arbiter.Register(current)
	w.arbiter.Register(next)
	w.arbiter.SetEnabled(current.GoalSource.ID, true)
	return nil
}

// Restore rebuilds a persisted window. Levels are regenerated from their index
// and pinned to their stored offsets; the next hole is chained onto the last.
func (w *LevelWindow) Restore(ctx context.Context, ghost *LevelRef, levels []LevelRef) error {
	if len(levels) == 0 {
		return fmt.Errorf("%w: snapshot has no levels", ErrConfiguration)
	}
	w.ctx, w.cancel = context.WithCancel(ctx)

	place := func(ref LevelRef) (*Level, error) {
		l, err := w.generateNow(ref.Index)
		if err != nil {
			return nil, fmt.Errorf("%w: restore level %d: %v", ErrConfiguration, ref.Index, err)
		}
		l.Place(ref.Offset)
		w.arbiter.Register(l)
		return l, nil
	}

	var err error
	if ghost != nil {
		if w.ghost, err = place(*ghost); err != nil {
			return err
		}
	}
	if w.current, err = place(levels[0]); err != nil {
		return err
	}
	if len(levels) > 1 {
		if w.next, err = place(levels[1]); err != nil {
			return err
		}
	} else {
		next, err := w.generateNow(levels[0].Index + 1)
		if err != nil {
			return fmt.Errorf("%w: restore next level: %v", ErrConfiguration, err)
		}
		next.Place(chainOffset(w.current, next))
		w.arbiter.Register(next)
		w.next = next
	}
	w.nextIndex = w.next.Index + 1
	w.arbiter.SetEnabled(w.current.GoalSource.ID, true)
	return nil
}

// Advance rotates the window after a completed hole: the old ghost is evicted,
// current becomes the ghost, next becomes current, and a new next is requested
// off the tick goroutine. snap carries the stats to persist; the window fills
// in its own level refs.
func (w *LevelWindow) Advance(snap Snapshot) error {
	if w.next == nil {
		return fmt.Errorf("%w: hole %d completed while level %d is generating", ErrGenerationNotReady, w.current.Index, w.nextIndex-1)
	}
	transition := seconds(w.tuning.TransitionDuration)

	if w.ghost != nil {
		w.arbiter.Unregister(w.ghost)
		w.renderer.Animate(Animation{Target: levelTarget(w.ghost.Index), Kind: AnimRemove, Delay: transition})
	}

	w.ghost = w.current
	w.current = w.next
	w.next = nil

	w.arbiter.Release(w.ghost.GoalSource.ID)
	w.arbiter.SetEnabled(w.ghost.GoalSource.ID, false)
	w.arbiter.SetEnabled(w.current.GoalSource.ID, true)

	w.requestNext()

	snap.Ghost = &LevelRef{Index: w.ghost.Index, Offset: w.ghost.Offset}
	snap.Levels = []LevelRef{{Index: w.current.Index, Offset: w.current.Offset}}
	w.persist.RequestSave(snap)
	return nil
}

// Poll splices a finished generation into the window. It never blocks. A
// generation error is fatal.
func (w *LevelWindow) Poll() error {
	select {
	case g := <-w.results:
		w.pending = false
		if w.OnGenerated != nil {
			w.OnGenerated(g.elapsed)
		}
		if g.err != nil {
			return fmt.Errorf("%w: level %d: %v", ErrGenerationFailed, g.index, g.err)
		}
		if err := g.level.validate(); err != nil {
			return err
		}
		g.level.Index = g.index
		g.level.Place(chainOffset(w.current, g.level))
		w.arbiter.Register(g.level)
		w.next = g.level
		w.renderer.Animate(Animation{Target: levelTarget(g.level.Index), Kind: AnimSpawn, To: g.level.Offset, Size: g.level.Size})
		return nil
	default:
		return nil
	}
}

// Pending reports whether a generation is in flight.
func (w *LevelWindow) Pending() bool {
	return w.pending
}

func (w *LevelWindow) Current() *Level {
	return w.current
}

func (w *LevelWindow) Ghost() *Level {
	return w.ghost
}

func (w *LevelWindow) Next() *Level {
	return w.next
}

// Levels returns the live levels in chain order.
func (w *LevelWindow) Levels() []*Level {
	out := make([]*Level, 0, 3)
	for _, l := range []*Level{w.ghost, w.current, w.next} {
		if l != nil {
			out = append(out, l)
		}
	}
	return out
}

func (w *LevelWindow) Len() int {
	return len(w.Levels())
}

// LevelContaining returns the live level whose bounds contain p, preferring
// the current level where levels overlap.
func (w *LevelWindow) LevelContaining(p Vec2) (*Level, bool) {
	for _, l := range []*Level{w.current, w.next, w.ghost} {
		if l != nil && l.Bounds().Contains(p) {
			return l, true
		}
	}
	return nil, false
}

// Sources returns every gravity source in the window.
func (w *LevelWindow) Sources() []*GravitySource {
	var out []*GravitySource
	for _, l := range w.Levels() {
		out = append(out, l.Sources()...)
	}
	return out
}

// Planets returns every planet in the window.
func (w *LevelWindow) Planets() []Planet {
	var out []Planet
	for _, l := range w.Levels() {
		out = append(out, l.Planets...)
	}
	return out
}

// Close abandons any in-flight generation.
func (w *LevelWindow) Close() {
	if w.cancel != nil {
		w.cancel()
	}
}

func (w *LevelWindow) requestNext() {
	index := w.nextIndex
	w.nextIndex++
	w.pending = true

	ctx := w.ctx
	if ctx == nil {
		ctx = context.Background()
	}
	factory := w.factory
	size := w.tuning.Viewport()
	results := w.results
	go func() {
		start := time.Now()
		l, err := factory.Generate(ctx, size, index)
		results <- generation{index: index, level: l, err: err, elapsed: time.Since(start)}
	}()
}

func (w *LevelWindow) generateNow(index int) (*Level, error) {
	start := time.Now()
	l, err := w.factory.Generate(w.ctx, w.tuning.Viewport(), index)
	if w.OnGenerated != nil {
		w.OnGenerated(time.Since(start))
	}
	if err != nil {
		return nil, err
	}
	if err := l.validate(); err != nil {
		return nil, err
	}
	l.Index = index
	return l, nil
}

// chainOffset places next so its start center lands on prev's goal center.
func chainOffset(prev, next *Level) Vec2 {
	return prev.Offset.Plus(prev.Goal.Center).Minus(next.Start.Center())
}
