package service

import (
	"context"
	"log/slog"
	"time"
)

// StartRelaxWorker sweeps active sessions on a fixed cadence and applies
// the difficulty-relax rule to each. Runs until ctx is cancelled.
func StartRelaxWorker(ctx context.Context, svc *SessionService, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				svc.relaxSweep(ctx, now)
			}
		}
	}()
}

func (s *SessionService) relaxSweep(ctx context.Context, now time.Time) {
	sessions, err := s.store.ListSessions(ctx)
	if err != nil {
		slog.Error("list sessions for relax sweep", "error", err)
		return
	}
	for _, session := range sessions {
		if session.Completed {
			continue
		}
		if err := s.MaybeRelaxDifficulty(ctx, session.ID, now); err != nil {
			slog.Error("relax difficulty", "error", err, "session_id", session.ID)
		}
	}
}
