package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/baechuer/explore-with-me/services/main-service/internal/pkg/logger"
)

// StartOutboxCleanup periodically deletes published outbox rows older than
// retention. Dead rows are kept for inspection.
func (r *Repository) StartOutboxCleanup(ctx context.Context, every, retention time.Duration) {
	go func() {
		log := logger.Logger.With().Str("component", "outbox_cleanup").Logger()
		ticker := time.NewTicker(every)
		defer ticker.Stop()

		r.cleanupSentOutbox(ctx, retention)

		for {
			select {
			case <-ctx.Done():
				log.Info().Msg("stopped")
				return
			case <-ticker.C:
				r.cleanupSentOutbox(ctx, retention)
			}
		}
	}()
}

func (r *Repository) cleanupSentOutbox(ctx context.Context, retention time.Duration) {
	result, err := r.pool.Exec(ctx, `
		DELETE FROM outbox
		WHERE status = 'sent' AND sent_at < NOW() - $1::interval
	`, formatInterval(retention))
	if err != nil {
		logger.Logger.Warn().Err(err).Msg("outbox cleanup failed")
		return
	}

	if n := result.RowsAffected(); n > 0 {
		logger.Logger.Info().Int64("deleted", n).Msg("sent outbox rows cleaned up")
	}
}

func formatInterval(d time.Duration) string {
	return fmt.Sprintf("%d seconds", int64(d.Seconds()))
}
