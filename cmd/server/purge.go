package main

import (
	"context"
	"log/slog"
	"time"
)

type sessionPurger interface {
	PurgeExpiredSessions(ctx context.Context) (int, error)
}

// purgeSessions removes expired sessions every interval until ctx ends.
func purgeSessions(ctx context.Context, purger sessionPurger, interval time.Duration, log *slog.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := purger.PurgeExpiredSessions(ctx)
			if err != nil {
				log.ErrorContext(ctx, "session purge failed", "error", err)
				continue
			}
			log.DebugContext(ctx, "session purge completed", "purged", n)
		}
	}
}
