package domain

import "time"

const (
	RoutingRequestCreated       = "request.created"
	RoutingRequestCanceled      = "request.canceled"
	RoutingRequestStatusUpdated = "request.status_updated"
	RoutingRatingAdded          = "rating.added"
	RoutingRatingRemoved        = "rating.removed"
)

// OutboxMessage is written in the same transaction as the change it announces.
type OutboxMessage struct {
	MessageID  string
	TraceID    string
	RoutingKey string
	Payload    []byte
	OccurredAt time.Time
}
