package session

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/playmatatu/gravityputt/internal/game"
	"github.com/playmatatu/gravityputt/internal/observability"
	"github.com/playmatatu/gravityputt/internal/store"
	"github.com/rs/zerolog"
)

var (
	ErrSessionClosed = errors.New("session closed")
	ErrInputBusy     = errors.New("input queue full")
)

// InputKind is the phase of an aim gesture.
type InputKind string

const (
	InputBegin   InputKind = "begin"
	InputUpdate  InputKind = "update"
	InputRelease InputKind = "release"
)

// Input is one pointer event in world coordinates.
type Input struct {
	Kind  InputKind `json:"kind"`
	Point game.Vec2 `json:"point"`
}

const (
	ReasonIdle     = "idle"
	ReasonShutdown = "shutdown"
	ReasonClient   = "client"
)

// Session owns one Scene and the goroutine that ticks it. Everything that
// touches the scene runs on that goroutine; other goroutines talk to it
// through Submit and Stop and read the published View.
type Session struct {
	ID        string
	Seed      uint64
	CreatedAt time.Time

	manager  *Manager
	scene    *game.Scene
	renderer *frameRenderer
	logger   zerolog.Logger

	inputs   chan Input
	stop     chan string
	stopOnce sync.Once
	done     chan struct{}

	lastInput atomic.Int64
	lastTouch atomic.Int64

	mu   sync.RWMutex
	view View
}

// Submit queues an input for the tick goroutine. It never blocks.
func (s *Session) Submit(in Input) error {
	select {
	case <-s.done:
		return ErrSessionClosed
	default:
	}

	now := time.Now()
	s.lastInput.Store(now.UnixNano())
	s.touchIdle(now)

	select {
	case s.inputs <- in:
		return nil
	default:
		return ErrInputBusy
	}
}

// Stop asks the session to end. Only the first reason counts.
func (s *Session) Stop(reason string) {
	s.stopOnce.Do(func() {
		select {
		case s.stop <- reason:
		default:
		}
	})
}

// Done is closed once the session has ended.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

func (s *Session) View() View {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.view
}

func (s *Session) LastInput() time.Time {
	return time.Unix(0, s.lastInput.Load())
}

// touchIdle pushes the idle deadline forward, at most once per second.
func (s *Session) touchIdle(now time.Time) {
	idle := s.manager.opts.Idle
	if idle == nil {
		return
	}
	last := s.lastTouch.Load()
	if now.UnixNano()-last < int64(time.Second) || !s.lastTouch.CompareAndSwap(last, now.UnixNano()) {
		return
	}
	deadline := now.Add(s.manager.opts.IdleTimeout)
	s.manager.enqueue(func(ctx context.Context) {
		if err := idle.Touch(ctx, s.ID, deadline); err != nil {
			s.logger.Warn().Err(err).Msg("idle touch failed")
		}
	})
}

func (s *Session) run(ctx context.Context) {
	ticker := time.NewTicker(s.manager.opts.Tuning.TickRate)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.finish(game.StatusStopped, ReasonShutdown)
			return
		case reason := <-s.stop:
			s.finish(game.StatusStopped, reason)
			return
		case in := <-s.inputs:
			s.apply(in)
		case <-ticker.C:
			if !s.step() {
				return
			}
		}
	}
}

func (s *Session) apply(in Input) {
	switch in.Kind {
	case InputBegin:
		s.scene.BeginAim(in.Point)
	case InputUpdate:
		s.scene.UpdateAim(in.Point)
	case InputRelease:
		s.scene.ReleaseAim(in.Point)
	default:
		s.logger.Debug().Str("kind", string(in.Kind)).Msg("unknown input ignored")
	}
}

// step runs one tick and reports whether the session is still alive.
func (s *Session) step() bool {
	if err := s.scene.Tick(); err != nil {
		s.halt(err)
		return false
	}
	if s.scene.TickCount()%s.manager.opts.BroadcastEvery == 0 {
		s.broadcast(s.frame(""))
		s.publishView("")
	}
	return true
}

func (s *Session) frame(errText string) Frame {
	return Frame{
		Type:       MessageFrame,
		SessionID:  s.ID,
		Tick:       s.scene.TickCount(),
		Status:     s.scene.Status(),
		Ball:       *s.scene.Ball,
		Camera:     CameraView{Position: s.scene.Camera.Position, Scale: s.scene.Camera.Scale},
		Score:      s.scene.Stats.ScoreText(),
		Stats:      s.scene.Stats,
		Animations: s.renderer.drain(),
		Error:      errText,
	}
}

func (s *Session) publishView(errText string) {
	v := View{
		SessionID: s.ID,
		Seed:      s.Seed,
		Status:    s.scene.Status(),
		Tick:      s.scene.TickCount(),
		Hole:      s.scene.Stats.HoleNumber,
		Score:     s.scene.Stats.ScoreText(),
		Stats:     s.scene.Stats,
		Ball:      s.scene.Ball.Position,
		Error:     errText,
		UpdatedAt: time.Now().UTC(),
	}
	for _, l := range s.scene.Window.Levels() {
		v.Levels = append(v.Levels, newLevelView(l))
	}
	s.mu.Lock()
	s.view = v
	s.mu.Unlock()
}

func (s *Session) broadcast(msg interface{}) {
	if b := s.manager.opts.Broadcaster; b != nil {
		b.BroadcastToSession(s.ID, msg)
	}
}

// wireHooks connects scene callbacks to metrics, history and events. The
// callbacks run on the tick goroutine, so slow work goes through the job queue.
func (s *Session) wireHooks() {
	m := s.manager
	s.scene.Window.OnGenerated = observability.RecordLevelGeneration

	s.scene.OnStroke = func(res game.StrokeResult) {
		observability.RecordStroke()
		s.broadcast(map[string]interface{}{"type": MessageStroke, "stroke": res})
	}

	s.scene.OnHoleComplete = func(res game.HoleResult) {
		observability.RecordHole(res.Strokes)
		s.logger.Info().Int("hole", res.Hole).Int("strokes", res.Strokes).Dur("duration", res.Duration).Msg("hole completed")
		s.broadcast(map[string]interface{}{"type": MessageHole, "result": res})

		stats := res.Stats
		m.enqueue(func(ctx context.Context) {
			if err := m.opts.Records.RecordHole(ctx, s.ID, res); err != nil {
				s.logger.Error().Err(err).Int("hole", res.Hole).Msg("record hole failed")
			}
			m.publish(ctx, store.Event{Type: store.EventHoleCompleted, SessionID: s.ID, Hole: res.Hole, Strokes: res.Strokes, Stats: &stats})
		})
	}

	s.scene.OnRecovery = func(stats game.GameStats) {
		observability.RecordRecovery()
		s.logger.Debug().Int("recoveries", stats.Recoveries).Msg("ball recovered")
		m.enqueue(func(ctx context.Context) {
			if err := m.opts.Records.UpdateStats(ctx, s.ID, stats); err != nil {
				s.logger.Warn().Err(err).Msg("update stats failed")
			}
		})
	}
}

func (s *Session) halt(err error) {
	reason := haltReason(err)
	observability.RecordHalt(reason)
	s.logger.Error().Err(err).Str("reason", reason).Int("tick", s.scene.TickCount()).Msg("session halted")

	s.manager.enqueue(func(ctx context.Context) {
		s.manager.publish(ctx, store.Event{Type: store.EventSessionHalted, SessionID: s.ID, Reason: err.Error()})
	})
	s.end(game.StatusHalted, err.Error(), false)
}

// finish ends a healthy session. Its current window is saved so it can be
// resumed later.
func (s *Session) finish(status game.GameStatus, reason string) {
	s.scene.Stop()
	s.logger.Info().Str("reason", reason).Interface("stats", s.scene.Stats).Msg("session stopped")
	if reason == ReasonIdle {
		stats := s.scene.Stats
		s.manager.enqueue(func(ctx context.Context) {
			s.manager.publish(ctx, store.Event{Type: store.EventSessionIdle, SessionID: s.ID, Stats: &stats})
		})
	}
	s.end(status, reason, true)
}

func (s *Session) end(status game.GameStatus, reason string, save bool) {
	m := s.manager
	errText := ""
	if status == game.StatusHalted {
		errText = reason
	}
	s.publishView(errText)
	s.broadcast(s.frame(errText))
	s.broadcast(map[string]interface{}{"type": MessageEnded, "status": status, "reason": reason})

	snap := s.scene.Snapshot()
	stats := s.scene.Stats
	m.enqueue(func(ctx context.Context) {
		if save {
			m.saveSnapshot(ctx, snap)
		}
		if err := m.opts.Records.UpdateStats(ctx, s.ID, stats); err != nil {
			s.logger.Warn().Err(err).Msg("update stats failed")
		}
		if err := m.opts.Records.UpdateStatus(ctx, s.ID, status, reason); err != nil {
			s.logger.Warn().Err(err).Msg("update status failed")
		}
		if m.opts.Idle != nil {
			if err := m.opts.Idle.Forget(ctx, s.ID); err != nil {
				s.logger.Warn().Err(err).Msg("idle forget failed")
			}
		}
	})

	s.scene.Close()
	m.remove(s)
	close(s.done)
}

func haltReason(err error) string {
	switch {
	case errors.Is(err, game.ErrGenerationNotReady):
		return "generation_not_ready"
	case errors.Is(err, game.ErrGenerationFailed):
		return "generation_failed"
	case errors.Is(err, game.ErrConfiguration):
		return "configuration"
	default:
		return "unknown"
	}
}
