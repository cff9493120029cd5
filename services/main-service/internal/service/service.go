package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/baechuer/explore-with-me/services/main-service/internal/audit"
	"github.com/baechuer/explore-with-me/services/main-service/internal/domain"
	appCtx "github.com/baechuer/explore-with-me/services/main-service/internal/pkg/context"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type Clock interface{ Now() time.Time }

// SysClock is the production clock. Timestamps are truncated to seconds because
// that is all the wire format carries.
type SysClock struct{}

func (SysClock) Now() time.Time { return time.Now().UTC().Truncate(time.Second) }

func orNopAudit(a *audit.Logger) *audit.Logger {
	if a == nil {
		return audit.New(zerolog.Nop())
	}
	return a
}

// notFoundAs swaps a store ErrNoRows for a typed NotFound.
func notFoundAs(err error, nf error) error {
	if errors.Is(err, domain.ErrNoRows) {
		return nf
	}
	return err
}

// enqueue writes an outbox row inside tx; the tx commit publishes it.
func enqueue(ctx context.Context, tx domain.Tx, now time.Time, routingKey string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return tx.InsertOutbox(ctx, domain.OutboxMessage{
		MessageID:  uuid.NewString(),
		TraceID:    appCtx.TraceID(ctx),
		RoutingKey: routingKey,
		Payload:    body,
		OccurredAt: now,
	})
}

func userNotFound() error  { return domain.NotFound(domain.ReasonUserNotFound, "user not found") }
func eventNotFound() error { return domain.NotFound(domain.ReasonEventNotFound, "event not found") }
func categoryNotFound() error {
	return domain.NotFound(domain.ReasonCategoryNotFound, "category not found")
}

func clampPage(from, size int) (int, int) {
	if from < 0 {
		from = 0
	}
	if size <= 0 {
		size = 10
	}
	if size > 1000 {
		size = 1000
	}
	return from, size
}
