package tasks

import (
	"context"
	"fmt"
)

// newSessionCleanupTask drops conversation states idle for longer than the
// configured session TTL; a zero TTL disables it. Backends with native
// expiry report zero.
func newSessionCleanupTask(deps TaskDeps) ScheduledTaskFunc {
	log := deps.Logger.With("task", TaskSessionCleanup)

	return func(ctx context.Context) error {
		ttl := deps.Config.Session.TTL
		if ttl <= 0 {
			log.DebugContext(ctx, "Session TTL disabled, nothing to purge")
			return nil
		}

		n, err := deps.Sessions.Purge(ctx, ttl)
		if err != nil {
			return fmt.Errorf("failed to purge sessions: %w", err)
		}
		log.InfoContext(ctx, "Stale sessions purged", "count", n, "ttl", ttl)
		return nil
	}
}
