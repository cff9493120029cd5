package postgres

import (
	"context"
	"math"
	"math/rand"
	"time"

	"github.com/baechuer/explore-with-me/services/main-service/internal/audit"
	"github.com/baechuer/explore-with-me/services/main-service/internal/pkg/logger"
	"github.com/google/uuid"
)

const (
	outboxBatchSize   = 20
	outboxMaxAttempts = 12
	outboxPollEvery   = 500 * time.Millisecond
	outboxInFlightFor = 15 * time.Second
	confirmWait       = 300 * time.Millisecond
)

type OutboxConfig struct {
	RabbitURL string
	Exchange  string
	AppID     string
	Audit     *audit.Logger
}

type outboxRow struct {
	ID         uuid.UUID
	MessageID  uuid.UUID
	TraceID    string
	RoutingKey string
	Payload    []byte
	Attempt    int
}

// computeNextRetry is 2^attempt seconds clamped to [5s, 30m], with +/-10% jitter.
func computeNextRetry(attempt int) time.Duration {
	sec := math.Pow(2, float64(max(attempt, 0)))
	sec = math.Min(math.Max(sec, 5), 1800)

	d := time.Duration(sec) * time.Second
	return d + time.Duration(rand.Int63n(int64(d/5))) - d/10
}

// StartOutboxWorker relays pending outbox rows to RabbitMQ until ctx is done.
func (r *Repository) StartOutboxWorker(ctx context.Context, cfg OutboxConfig) {
	if cfg.Audit == nil {
		cfg.Audit = audit.New(logger.Logger)
	}
	go func() {
		log := logger.Logger.With().Str("component", "outbox_worker").Logger()

		pub, err := dialPublisher(cfg)
		if err != nil {
			log.Error().Err(err).Str("exchange", cfg.Exchange).Msg("outbox publisher unavailable")
			return
		}
		defer pub.Close()

		r.runOutbox(ctx, pub, cfg.Audit)
		log.Info().Msg("stopped")
	}()
}

func (r *Repository) runOutbox(ctx context.Context, pub outboxPublisher, a *audit.Logger) {
	log := logger.Logger.With().Str("component", "outbox_worker").Logger()

	ticker := time.NewTicker(outboxPollEvery)
	defer ticker.Stop()

	// repeated identical failures are logged at most every 10s
	var lastErr string
	var lastAt time.Time

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			err := r.relayBatch(ctx, pub, a)
			if err == nil {
				lastErr = ""
				continue
			}
			if err.Error() != lastErr || time.Since(lastAt) > 10*time.Second {
				log.Warn().Err(err).Msg("outbox batch failed")
				lastErr, lastAt = err.Error(), time.Now()
			}
		}
	}
}

func (r *Repository) relayBatch(ctx context.Context, pub outboxPublisher, a *audit.Logger) error {
	rows, err := r.claimOutbox(ctx)
	if err != nil {
		return err
	}
	for _, m := range rows {
		if err := pub.Publish(ctx, m); err != nil {
			r.failOutbox(ctx, a, m, err.Error())
			continue
		}
		r.markSent(ctx, m)
	}
	return nil
}

// claimOutbox locks a batch of due rows and pushes their next_retry_at forward
// so concurrent workers skip them while this one publishes outside the tx.
func (r *Repository) claimOutbox(ctx context.Context) ([]outboxRow, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	rows, err := tx.Query(ctx, `
		SELECT id, message_id, trace_id, routing_key, payload, attempt
		FROM outbox
		WHERE status = 'pending' AND next_retry_at <= NOW()
		ORDER BY next_retry_at, occurred_at
		LIMIT $1
		FOR UPDATE SKIP LOCKED
	`, outboxBatchSize)
	if err != nil {
		return nil, err
	}

	var claimed []outboxRow
	for rows.Next() {
		var m outboxRow
		if err := rows.Scan(&m.ID, &m.MessageID, &m.TraceID, &m.RoutingKey, &m.Payload, &m.Attempt); err != nil {
			rows.Close()
			return nil, err
		}
		claimed = append(claimed, m)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(claimed) == 0 {
		return nil, nil
	}

	ids := make([]string, len(claimed))
	for i, m := range claimed {
		ids[i] = m.ID.String()
	}
	if _, err := tx.Exec(ctx, `UPDATE outbox SET next_retry_at = $2 WHERE id = ANY($1::uuid[])`,
		ids, time.Now().Add(outboxInFlightFor)); err != nil {
		return nil, err
	}
	return claimed, tx.Commit(ctx)
}

func (r *Repository) markSent(ctx context.Context, m outboxRow) {
	if _, err := r.pool.Exec(ctx, `
		UPDATE outbox SET status = 'sent', sent_at = NOW(), last_error = NULL WHERE id = $1
	`, m.ID); err != nil {
		// the row is retried once its in-flight window passes
		logger.WithCtx(ctx).Warn().Err(err).Str("outbox_id", m.ID.String()).Msg("mark sent failed")
		return
	}
	logger.Logger.Info().
		Str("component", "outbox_worker").
		Str("message_id", m.MessageID.String()).
		Str("routing_key", m.RoutingKey).
		Msg("published")
}

func (r *Repository) failOutbox(ctx context.Context, a *audit.Logger, m outboxRow, reason string) {
	next := m.Attempt + 1
	if next >= outboxMaxAttempts {
		_, _ = r.pool.Exec(ctx, `
			UPDATE outbox SET status = 'dead', attempt = $2, last_error = $3 WHERE id = $1
		`, m.ID, next, reason)
		a.OutboxMessageDead(ctx, m.MessageID.String(), m.RoutingKey, next)
		return
	}

	delay := computeNextRetry(next)
	_, _ = r.pool.Exec(ctx, `
		UPDATE outbox
		SET attempt = $2, next_retry_at = NOW() + $3::interval, last_error = $4
		WHERE id = $1
	`, m.ID, next, formatInterval(delay), reason)

	logger.Logger.Warn().
		Str("component", "outbox_worker").
		Str("message_id", m.MessageID.String()).
		Str("routing_key", m.RoutingKey).
		Int("attempt", next).
		Dur("retry_in", delay).
		Str("reason", reason).
		Msg("outbox publish failed; retry scheduled")
}
