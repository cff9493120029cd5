package postgres

import (
	"context"

	"github.com/baechuer/explore-with-me/services/main-service/internal/domain"
	"github.com/google/uuid"
)

// InsertOutbox queues a message for the outbox worker. It must run on the same
// tx as the change it announces.
func (q *queries) InsertOutbox(ctx context.Context, m domain.OutboxMessage) error {
	id, err := uuid.Parse(m.MessageID)
	if err != nil {
		id = uuid.New()
	}
	_, err = q.db.Exec(ctx, `
		INSERT INTO outbox (message_id, trace_id, routing_key, payload, occurred_at, status)
		VALUES ($1, $2, $3, $4, $5, 'pending')
	`, id, m.TraceID, m.RoutingKey, m.Payload, m.OccurredAt)
	return mapErr(err)
}
