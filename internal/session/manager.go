package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/playmatatu/gravityputt/internal/game"
	"github.com/playmatatu/gravityputt/internal/levelgen"
	"github.com/playmatatu/gravityputt/internal/observability"
	"github.com/playmatatu/gravityputt/internal/physics"
	"github.com/playmatatu/gravityputt/internal/store"
	"github.com/rs/zerolog"
)

var (
	ErrTooManySessions = errors.New("too many concurrent sessions")
	ErrShuttingDown    = errors.New("session manager shutting down")
)

// SnapshotStore keeps the latest resumable snapshot per session.
type SnapshotStore interface {
	Save(ctx context.Context, snap game.Snapshot) error
	Load(ctx context.Context, sessionID string) (game.Snapshot, error)
	Delete(ctx context.Context, sessionID string) error
}

// RecordStore is the durable session and hole history.
type RecordStore interface {
	CreateSession(ctx context.Context, sessionID string, seed uint64) error
	RecordHole(ctx context.Context, sessionID string, res game.HoleResult) error
	UpdateStats(ctx context.Context, sessionID string, stats game.GameStats) error
	UpdateStatus(ctx context.Context, sessionID string, status game.GameStatus, reason string) error
}

type EventPublisher interface {
	Publish(ctx context.Context, ev store.Event) (int64, error)
}

// IdleTracker schedules idle deadlines.
type IdleTracker interface {
	Touch(ctx context.Context, sessionID string, deadline time.Time) error
	Due(ctx context.Context, now time.Time) ([]string, error)
	Claim(ctx context.Context, sessionID string) (bool, error)
	Forget(ctx context.Context, sessionID string) error
}

// Broadcaster delivers messages to every client watching a session.
type Broadcaster interface {
	BroadcastToSession(sessionID string, message interface{})
}

// Options configures a Manager. Only Tuning is required; missing stores turn
// their writes into no-ops.
type Options struct {
	Tuning         game.Tuning
	BroadcastEvery int
	IdleTimeout    time.Duration
	MaxSessions    int

	Snapshots   SnapshotStore
	Records     RecordStore
	Events      EventPublisher
	Idle        IdleTracker
	Broadcaster Broadcaster

	NewFactory func(seed uint64, tuning game.Tuning) game.LevelFactory
	NewEngine  func(tuning game.Tuning) game.Engine
}

// Manager owns every live session and the background job queue that keeps
// slow I/O off the tick goroutines.
type Manager struct {
	opts   Options
	logger zerolog.Logger

	mu       sync.RWMutex
	sessions map[string]*Session
	closed   bool
	drained  bool

	ctx          context.Context
	cancel       context.CancelFunc
	running      sync.WaitGroup
	shutdownOnce sync.Once
	jobs         chan func(context.Context)
	jobsDone     chan struct{}
}

func NewManager(opts Options) (*Manager, error) {
	if err := opts.Tuning.Validate(); err != nil {
		return nil, err
	}
	if opts.BroadcastEvery <= 0 {
		opts.BroadcastEvery = 1
	}
	if opts.IdleTimeout <= 0 {
		opts.IdleTimeout = 5 * time.Minute
	}
	if opts.MaxSessions <= 0 {
		opts.MaxSessions = 500
	}
	if opts.Records == nil {
		opts.Records = store.NewRecordStore(nil)
	}
	if opts.NewFactory == nil {
		opts.NewFactory = func(seed uint64, tuning game.Tuning) game.LevelFactory {
			return levelgen.New(seed, tuning)
		}
	}
	if opts.NewEngine == nil {
		opts.NewEngine = func(tuning game.Tuning) game.Engine {
			return physics.New(tuning)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	m := &Manager{
		opts:     opts,
		logger:   observability.Component("session"),
		sessions: make(map[string]*Session),
		ctx:      ctx,
		cancel:   cancel,
		jobs:     make(chan func(context.Context), 1024),
		jobsDone: make(chan struct{}),
	}
	go m.runJobs()
	return m, nil
}

// Create starts a new session on a fresh seed.
func (m *Manager) Create(ctx context.Context) (*Session, error) {
	if m.Count() >= m.opts.MaxSessions {
		return nil, ErrTooManySessions
	}
	id := uuid.NewString()
	seed := levelgen.Seed(id)

	s, err := m.newSession(id, seed)
	if err != nil {
		return nil, err
	}
	if err := s.scene.Start(ctx); err != nil {
		return nil, fmt.Errorf("start session: %w", err)
	}
	if err := m.opts.Records.CreateSession(ctx, id, seed); err != nil {
		m.logger.Warn().Err(err).Str("session_id", id).Msg("session row not written")
	}
	if err := m.launch(s); err != nil {
		s.scene.Close()
		return nil, err
	}
	m.logger.Info().Str("session_id", id).Uint64("seed", seed).Msg("session created")
	return s, nil
}

// Resume returns the live session if there is one, otherwise rebuilds it from
// its last snapshot.
func (m *Manager) Resume(ctx context.Context, sessionID string) (*Session, error) {
	if s, ok := m.Get(sessionID); ok {
		return s, nil
	}
	if m.opts.Snapshots == nil {
		return nil, store.ErrSnapshotNotFound
	}

	snap, err := m.opts.Snapshots.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	s, err := m.newSession(sessionID, snap.Seed)
	if err != nil {
		return nil, err
	}
	if err := s.scene.Resume(ctx, snap); err != nil {
		return nil, fmt.Errorf("resume session: %w", err)
	}
	if err := m.opts.Records.CreateSession(ctx, sessionID, snap.Seed); err != nil {
		m.logger.Warn().Err(err).Str("session_id", sessionID).Msg("session row not reopened")
	}
	if err := m.launch(s); err != nil {
		s.scene.Close()
		return nil, err
	}

	stats := snap.Stats
	m.enqueue(func(ctx context.Context) {
		m.publish(ctx, store.Event{Type: store.EventSessionResumed, SessionID: sessionID, Stats: &stats})
	})
	m.logger.Info().Str("session_id", sessionID).Int("hole", snap.Stats.HoleNumber).Msg("session resumed")
	return s, nil
}

func (m *Manager) Get(sessionID string) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[sessionID]
	return s, ok
}

// Stop ends a live session. It returns false if there was none.
func (m *Manager) Stop(sessionID, reason string) bool {
	s, ok := m.Get(sessionID)
	if !ok {
		return false
	}
	s.Stop(reason)
	return true
}

func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Shutdown stops every session, then drains the job queue. It is safe to call
// more than once.
func (m *Manager) Shutdown(ctx context.Context) error {
	m.shutdownOnce.Do(func() {
		m.mu.Lock()
		m.closed = true
		m.mu.Unlock()
		m.cancel()

		go func() {
			m.running.Wait()
			m.mu.Lock()
			m.drained = true
			close(m.jobs)
			m.mu.Unlock()
		}()
	})

	select {
	case <-m.jobsDone:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (m *Manager) newSession(id string, seed uint64) (*Session, error) {
	s := &Session{
		ID:        id,
		Seed:      seed,
		CreatedAt: time.Now().UTC(),
		manager:   m,
		renderer:  &frameRenderer{},
		logger:    m.logger.With().Str("session_id", id).Logger(),
		inputs:    make(chan Input, 64),
		stop:      make(chan string, 1),
		done:      make(chan struct{}),
	}
	scene, err := game.NewScene(game.SceneConfig{
		Tuning:    m.opts.Tuning,
		SessionID: id,
		Seed:      seed,
		Factory:   m.opts.NewFactory(seed, m.opts.Tuning),
		Engine:    m.opts.NewEngine(m.opts.Tuning),
		Renderer:  s.renderer,
		Persister: persister{m: m},
	})
	if err != nil {
		return nil, err
	}
	s.scene = scene
	s.wireHooks()
	s.lastInput.Store(time.Now().UnixNano())
	return s, nil
}

// register adds s to the live set without starting its goroutine.
func (m *Manager) register(s *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrShuttingDown
	}
	if len(m.sessions) >= m.opts.MaxSessions {
		return ErrTooManySessions
	}
	if _, exists := m.sessions[s.ID]; exists {
		return fmt.Errorf("session %s already running", s.ID)
	}
	m.sessions[s.ID] = s
	m.running.Add(1)
	observability.SessionStarted()
	return nil
}

func (m *Manager) launch(s *Session) error {
	if err := m.register(s); err != nil {
		return err
	}
	s.publishView("")
	s.touchIdle(time.Now())
	go func() {
		defer m.running.Done()
		s.run(m.ctx)
	}()
	return nil
}

func (m *Manager) remove(s *Session) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if cur, ok := m.sessions[s.ID]; ok && cur == s {
		delete(m.sessions, s.ID)
		observability.SessionEnded()
	}
}

// enqueue hands work to the job worker. It never blocks; when the queue is
// full the job is dropped and logged.
func (m *Manager) enqueue(job func(context.Context)) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.drained {
		m.logger.Warn().Msg("job dropped after shutdown")
		return
	}
	select {
	case m.jobs <- job:
	default:
		m.logger.Warn().Int("queued", len(m.jobs)).Msg("job queue full, dropping job")
	}
}

func (m *Manager) runJobs() {
	defer close(m.jobsDone)
	for job := range m.jobs {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		job(ctx)
		cancel()
	}
}

func (m *Manager) saveSnapshot(ctx context.Context, snap game.Snapshot) {
	if m.opts.Snapshots == nil {
		return
	}
	err := m.opts.Snapshots.Save(ctx, snap)
	observability.RecordSnapshotSave(err)
	if err != nil {
		m.logger.Error().Err(err).Str("session_id", snap.SessionID).Msg("snapshot save failed")
		return
	}
	m.logger.Debug().Str("session_id", snap.SessionID).Int("hole", snap.Stats.HoleNumber).Msg("snapshot saved")
}

func (m *Manager) publish(ctx context.Context, ev store.Event) {
	if m.opts.Events == nil {
		return
	}
	n, err := m.opts.Events.Publish(ctx, ev)
	if err != nil {
		m.logger.Warn().Err(err).Str("type", ev.Type).Str("session_id", ev.SessionID).Msg("publish failed")
		return
	}
	m.logger.Debug().Str("type", ev.Type).Str("session_id", ev.SessionID).Int64("subscribers", n).Msg("event published")
}

// persister adapts the job queue to game.Persister.
type persister struct {
	m *Manager
}

func (p persister) RequestSave(snap game.Snapshot) {
	p.m.enqueue(func(ctx context.Context) {
		p.m.saveSnapshot(ctx, snap)
	})
}
