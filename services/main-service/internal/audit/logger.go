package audit

import (
	"context"

	"github.com/baechuer/explore-with-me/services/main-service/internal/domain"
	appCtx "github.com/baechuer/explore-with-me/services/main-service/internal/pkg/context"
	"github.com/rs/zerolog"
)

// Logger provides structured audit logging for business events
type Logger struct {
	log zerolog.Logger
}

// New creates a new audit logger
func New(log zerolog.Logger) *Logger {
	return &Logger{
		log: log.With().Bool("audit", true).Logger(),
	}
}

// RequestCreated logs admission of a new participation request
func (l *Logger) RequestCreated(ctx context.Context, r domain.Request, decision domain.Decision) {
	l.log.Info().
		Str("action", "request_created").
		Int64("request_id", r.ID).
		Int64("event_id", r.EventID).
		Int64("requester_id", r.RequesterID).
		Str("status", string(r.Status)).
		Str("decision", string(decision)).
		Str("trace_id", appCtx.GetRequestID(ctx)).
		Msg("Participation request created")
}

// RequestCanceled logs a requester canceling their own request
func (l *Logger) RequestCanceled(ctx context.Context, r domain.Request, prev domain.RequestStatus, seatReleased bool) {
	l.log.Info().
		Str("action", "request_canceled").
		Int64("request_id", r.ID).
		Int64("event_id", r.EventID).
		Int64("requester_id", r.RequesterID).
		Str("prev_status", string(prev)).
		Bool("seat_released", seatReleased).
		Str("trace_id", appCtx.GetRequestID(ctx)).
		Msg("Participation request canceled")
}

// RequestsModerated logs an organizer batch decision
func (l *Logger) RequestsModerated(ctx context.Context, eventID, organizerID int64, status domain.ModerationStatus, res domain.ModerationResult) {
	l.log.Info().
		Str("action", "requests_moderated").
		Int64("event_id", eventID).
		Int64("organizer_id", organizerID).
		Str("status", string(status)).
		Int("confirmed", len(res.Confirmed)).
		Int("rejected", len(res.Rejected)).
		Str("trace_id", appCtx.GetRequestID(ctx)).
		Msg("Participation requests moderated")
}

// RatingAdded logs a like/dislike
func (l *Logger) RatingAdded(ctx context.Context, r domain.Rating) {
	l.log.Info().
		Str("action", "rating_added").
		Int64("rating_id", r.ID).
		Int64("rater_id", r.RaterID).
		Str("target", string(r.Target.Kind)).
		Int64("target_id", r.Target.ID).
		Bool("like", r.Like).
		Str("trace_id", appCtx.GetRequestID(ctx)).
		Msg("Rating added")
}

// RatingRemoved logs an un-rate
func (l *Logger) RatingRemoved(ctx context.Context, r domain.Rating) {
	l.log.Info().
		Str("action", "rating_removed").
		Int64("rating_id", r.ID).
		Int64("rater_id", r.RaterID).
		Str("target", string(r.Target.Kind)).
		Int64("target_id", r.Target.ID).
		Str("trace_id", appCtx.GetRequestID(ctx)).
		Msg("Rating removed")
}

// OutboxMessageDead logs when an outbox message is moved to dead status
func (l *Logger) OutboxMessageDead(ctx context.Context, messageID, routingKey string, retries int) {
	l.log.Error().
		Str("action", "outbox_dead").
		Str("message_id", messageID).
		Str("routing_key", routingKey).
		Int("retries", retries).
		Msg("Outbox message moved to dead status")
}
