package session

import (
	"context"
	"time"
)

// StartIdleWorker polls the idle set and stops sessions whose players have
// gone quiet. Stopping saves the session, so it can be resumed later.
func (m *Manager) StartIdleWorker(ctx context.Context, poll time.Duration) {
	if m.opts.Idle == nil {
		m.logger.Info().Msg("no idle tracker; idle worker not started")
		return
	}
	if poll <= 0 {
		poll = 5 * time.Second
	}

	m.logger.Info().Dur("poll", poll).Dur("timeout", m.opts.IdleTimeout).Msg("idle worker started")
	go func() {
		ticker := time.NewTicker(poll)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				m.logger.Info().Msg("idle worker stopping")
				return
			case now := <-ticker.C:
				m.sweepIdle(ctx, now)
			}
		}
	}()
}

// sweepIdle stops every due session and returns how many it stopped.
func (m *Manager) sweepIdle(ctx context.Context, now time.Time) int {
	idle := m.opts.Idle
	due, err := idle.Due(ctx, now)
	if err != nil {
		m.logger.Warn().Err(err).Msg("failed to fetch idle sessions")
		return 0
	}

	stopped := 0
	for _, id := range due {
		claimed, err := idle.Claim(ctx, id)
		if err != nil || !claimed {
			continue
		}
		s, ok := m.Get(id)
		if !ok {
			// Another instance owns it, or it already ended.
			continue
		}
		if last := s.LastInput(); now.Sub(last) < m.opts.IdleTimeout {
			if err := idle.Touch(ctx, id, last.Add(m.opts.IdleTimeout)); err != nil {
				m.logger.Warn().Err(err).Str("session_id", id).Msg("idle reschedule failed")
			}
			continue
		}
		m.logger.Info().Str("session_id", id).Time("last_input", s.LastInput()).Msg("stopping idle session")
		s.Stop(ReasonIdle)
		stopped++
	}
	return stopped
}
