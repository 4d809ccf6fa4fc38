package core

// reaper.go drops editing sessions nobody has touched within the idle
// timeout. Unsaved changes in a reaped session are lost, the same as closing
// the browser tab.

import (
	"context"
	"log/slog"
	"time"
)

// ReapIdle closes every session idle longer than the configured timeout as
// of now and returns how many were closed.
func (s *Service) ReapIdle(now time.Time) int {
	cutoff := now.Add(-s.opts.IdleTimeout)

	type reapedSession struct {
		id    string
		idle  time.Duration
		dirty bool
	}

	s.mu.Lock()
	var reaped []reapedSession
	for id, h := range s.sessions {
		if !h.mu.TryLock() {
			continue // in use
		}
		if h.lastUsed.Before(cutoff) {
			reaped = append(reaped, reapedSession{id: id, idle: now.Sub(h.lastUsed), dirty: h.session.Dirty()})
			delete(s.sessions, id)
		}
		h.mu.Unlock()
	}
	s.mu.Unlock()

	for _, r := range reaped {
		slog.Info("idle session reaped",
			"session_id", r.id,
			"idle", r.idle.Round(time.Second).String(),
			"discarded_changes", r.dirty,
		)
	}
	return len(reaped)
}

// StartReaper runs ReapIdle every interval until ctx is cancelled.
func (s *Service) StartReaper(ctx context.Context, interval time.Duration) {
	slog.Info("session reaper started",
		"interval", interval.String(),
		"idle_timeout", s.opts.IdleTimeout.String(),
	)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("session reaper stopped")
			return
		case t := <-ticker.C:
			if n := s.ReapIdle(t); n > 0 {
				slog.Info("reap cycle completed", "sessions_reaped", n, "sessions_open", s.SessionCount())
			}
		}
	}
}
