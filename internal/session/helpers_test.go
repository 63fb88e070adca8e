package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/playmatatu/gravityputt/internal/game"
	"github.com/playmatatu/gravityputt/internal/levelgen"
	"github.com/playmatatu/gravityputt/internal/store"
)

type memSnapshots struct {
	mu    sync.Mutex
	snaps map[string]game.Snapshot
	saves int
}

func newMemSnapshots() *memSnapshots {
	return &memSnapshots{snaps: make(map[string]game.Snapshot)}
}

func (m *memSnapshots) Save(_ context.Context, snap game.Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snaps[snap.SessionID] = snap
	m.saves++
	return nil
}

func (m *memSnapshots) Load(_ context.Context, id string) (game.Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	snap, ok := m.snaps[id]
	if !ok {
		return game.Snapshot{}, store.ErrSnapshotNotFound
	}
	return snap, nil
}

func (m *memSnapshots) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.snaps, id)
	return nil
}

func (m *memSnapshots) get(id string) (game.Snapshot, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	snap, ok := m.snaps[id]
	return snap, ok
}

type memRecords struct {
	mu       sync.Mutex
	created  []string
	holes    []game.HoleResult
	stats    map[string]game.GameStats
	statuses map[string]game.GameStatus
}

func newMemRecords() *memRecords {
	return &memRecords{stats: make(map[string]game.GameStats), statuses: make(map[string]game.GameStatus)}
}

func (r *memRecords) CreateSession(_ context.Context, id string, _ uint64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.created = append(r.created, id)
	return nil
}

func (r *memRecords) RecordHole(_ context.Context, id string, res game.HoleResult) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.holes = append(r.holes, res)
	r.stats[id] = res.Stats
	return nil
}

func (r *memRecords) UpdateStats(_ context.Context, id string, stats game.GameStats) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stats[id] = stats
	return nil
}

func (r *memRecords) UpdateStatus(_ context.Context, id string, status game.GameStatus, _ string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.statuses[id] = status
	return nil
}

func (r *memRecords) status(id string) game.GameStatus {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.statuses[id]
}

func (r *memRecords) holeCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.holes)
}

type memEvents struct {
	mu     sync.Mutex
	events []store.Event
}

func (e *memEvents) Publish(_ context.Context, ev store.Event) (int64, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.events = append(e.events, ev)
	return 1, nil
}

func (e *memEvents) has(kind, id string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, ev := range e.events {
		if ev.Type == kind && ev.SessionID == id {
			return true
		}
	}
	return false
}

type memIdle struct {
	mu        sync.Mutex
	deadlines map[string]time.Time
}

func newMemIdle() *memIdle {
	return &memIdle{deadlines: make(map[string]time.Time)}
}

func (i *memIdle) Touch(_ context.Context, id string, deadline time.Time) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.deadlines[id] = deadline
	return nil
}

func (i *memIdle) Due(_ context.Context, now time.Time) ([]string, error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	var out []string
	for id, d := range i.deadlines {
		if !d.After(now) {
			out = append(out, id)
		}
	}
	return out, nil
}

func (i *memIdle) Claim(_ context.Context, id string) (bool, error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	_, ok := i.deadlines[id]
	delete(i.deadlines, id)
	return ok, nil
}

func (i *memIdle) Forget(ctx context.Context, id string) error {
	_, err := i.Claim(ctx, id)
	return err
}

func (i *memIdle) deadline(id string) (time.Time, bool) {
	i.mu.Lock()
	defer i.mu.Unlock()
	d, ok := i.deadlines[id]
	return d, ok
}

type memBroadcaster struct {
	mu       sync.Mutex
	messages map[string][]interface{}
}

func (b *memBroadcaster) BroadcastToSession(id string, msg interface{}) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.messages == nil {
		b.messages = make(map[string][]interface{})
	}
	b.messages[id] = append(b.messages[id], msg)
}

func (b *memBroadcaster) frames(id string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for _, msg := range b.messages[id] {
		if _, ok := msg.(Frame); ok {
			n++
		}
	}
	return n
}

func (b *memBroadcaster) typed(id, kind string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for _, msg := range b.messages[id] {
		if m, ok := msg.(map[string]interface{}); ok && m["type"] == kind {
			n++
		}
	}
	return n
}

// stillEngine never moves the ball and reports no contacts.
type stillEngine struct{}

func (stillEngine) Step(*game.Ball, []*game.GravitySource, []game.Planet) []game.ContactEvent {
	return nil
}

// failingFactory generates real levels until index reaches failFrom.
type failingFactory struct {
	inner    game.LevelFactory
	failFrom int
}

func (f failingFactory) Generate(ctx context.Context, size game.Vec2, index int) (*game.Level, error) {
	if index >= f.failFrom {
		return nil, errors.New("no room for planets")
	}
	return f.inner.Generate(ctx, size, index)
}

type fixture struct {
	manager   *Manager
	snapshots *memSnapshots
	records   *memRecords
	events    *memEvents
	idle      *memIdle
	bcast     *memBroadcaster
}

func newFixture(t *testing.T, tweak func(*Options)) *fixture {
	t.Helper()
	f := &fixture{
		snapshots: newMemSnapshots(),
		records:   newMemRecords(),
		events:    &memEvents{},
		idle:      newMemIdle(),
		bcast:     &memBroadcaster{},
	}
	opts := Options{
		Tuning:         game.DefaultTuning(),
		BroadcastEvery: 1,
		IdleTimeout:    time.Minute,
		Snapshots:      f.snapshots,
		Records:        f.records,
		Events:         f.events,
		Idle:           f.idle,
		Broadcaster:    f.bcast,
		NewEngine:      func(game.Tuning) game.Engine { return stillEngine{} },
	}
	if tweak != nil {
		tweak(&opts)
	}
	m, err := NewManager(opts)
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}
	f.manager = m
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		m.Shutdown(ctx)
	})
	return f
}

// manual builds a started session whose tick goroutine is not running, so
// the test drives step itself.
func (f *fixture) manual(t *testing.T, id string) *Session {
	t.Helper()
	s, err := f.manager.newSession(id, levelgen.Seed(id))
	if err != nil {
		t.Fatalf("newSession failed: %v", err)
	}
	if err := s.scene.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	return s
}

func dropInGoal(s *Session) {
	ball := s.scene.Ball
	ball.Position = s.scene.Window.Current().GoalCenter()
	ball.Velocity = game.Vec2{}
	ball.Interacting = true
}

func eventually(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("Timed out waiting for %s", what)
}

func waitDone(t *testing.T, s *Session) {
	t.Helper()
	select {
	case <-s.Done():
	case <-time.After(3 * time.Second):
		t.Fatalf("Session %s did not end", s.ID)
	}
}
