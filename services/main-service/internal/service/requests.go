package service

import (
	"context"
	"errors"

	"github.com/baechuer/explore-with-me/services/main-service/internal/audit"
	"github.com/baechuer/explore-with-me/services/main-service/internal/domain"
	"github.com/baechuer/explore-with-me/services/main-service/internal/metrics"
)

type RequestService struct {
	store       domain.Store
	audit       *audit.Logger
	clock       Clock
	releaseSeat bool
}

type RequestOption func(*RequestService)

// WithSeatRelease makes canceling a CONFIRMED request give its seat back.
func WithSeatRelease(on bool) RequestOption {
	return func(s *RequestService) { s.releaseSeat = on }
}

func WithRequestClock(c Clock) RequestOption {
	return func(s *RequestService) { s.clock = c }
}

func NewRequestService(store domain.Store, a *audit.Logger, opts ...RequestOption) *RequestService {
	s := &RequestService{store: store, audit: orNopAudit(a), clock: SysClock{}}
	for _, o := range opts {
		o(s)
	}
	return s
}

type requestEvent struct {
	RequestID   int64  `json:"request_id"`
	EventID     int64  `json:"event_id"`
	RequesterID int64  `json:"requester_id"`
	Status      string `json:"status"`
	PrevStatus  string `json:"prev_status,omitempty"`
}

type moderationEvent struct {
	EventID   int64   `json:"event_id"`
	Confirmed []int64 `json:"confirmed"`
	Rejected  []int64 `json:"rejected"`
}

// AddParticipationRequest admits a new participation request. Policy runs under
// the event row lock, so the confirmed count it sees is the one the counter
// update is applied to.
func (s *RequestService) AddParticipationRequest(ctx context.Context, requesterID, eventID int64) (domain.Request, error) {
	var (
		out      domain.Request
		decision domain.Decision
	)
	now := s.clock.Now()

	err := s.store.WithTx(ctx, func(tx domain.Tx) error {
		if _, err := tx.GetUser(ctx, requesterID); err != nil {
			return notFoundAs(err, userNotFound())
		}
		ev, err := tx.GetEventForUpdate(ctx, eventID)
		if err != nil {
			return notFoundAs(err, eventNotFound())
		}

		dup, err := tx.HasActiveRequest(ctx, requesterID, eventID)
		if err != nil {
			return err
		}
		if dup {
			return domain.Conflict(domain.ReasonRequestDuplicate, "request already exists")
		}
		if ev.InitiatorID == requesterID {
			return domain.NotAllowed(domain.ReasonRequestOwnEvent, "initiator cannot request their own event")
		}
		if ev.State != domain.EventPublished {
			return domain.NotAllowed(domain.ReasonEventNotPublished, "event is not published")
		}

		decision = domain.Admit(ev.ParticipantLimit, ev.RequestModeration, ev.ConfirmedRequests)
		if decision == domain.DecisionReject {
			metrics.RecordAdmission(decision)
			return domain.Conflict(domain.ReasonEventFull, "participant limit reached")
		}

		req, err := tx.CreateRequest(ctx, domain.Request{
			EventID:     eventID,
			RequesterID: requesterID,
			Status:      decision.Status(),
			Created:     now,
		})
		if errors.Is(err, domain.ErrUniqueViolation) {
			return domain.Conflict(domain.ReasonRequestDuplicate, "request already exists")
		}
		if err != nil {
			return err
		}
		if req.Status == domain.RequestConfirmed {
			if err := tx.AddConfirmed(ctx, eventID, 1); err != nil {
				return err
			}
		}
		out = req
		return enqueue(ctx, tx, now, domain.RoutingRequestCreated, requestEvent{
			RequestID: req.ID, EventID: eventID, RequesterID: requesterID, Status: string(req.Status),
		})
	})
	if err != nil {
		return domain.Request{}, err
	}

	metrics.RecordAdmission(decision)
	s.audit.RequestCreated(ctx, out, decision)
	return out, nil
}

// CancelParticipationRequest moves the caller's own request to CANCELED.
// Canceling twice is a no-op.
func (s *RequestService) CancelParticipationRequest(ctx context.Context, requesterID, requestID int64) (domain.Request, error) {
	var (
		out      domain.Request
		prev     domain.RequestStatus
		released bool
	)
	now := s.clock.Now()

	err := s.store.WithTx(ctx, func(tx domain.Tx) error {
		if _, err := tx.GetUser(ctx, requesterID); err != nil {
			return notFoundAs(err, userNotFound())
		}
		peek, err := tx.GetRequest(ctx, requestID)
		if err != nil {
			return notFoundAs(err, domain.NotFound(domain.ReasonRequestNotFound, "request not found"))
		}
		if peek.RequesterID != requesterID {
			return domain.NotAllowed(domain.ReasonRequestNotOwner, "request belongs to another user")
		}

		// event before request, same order as admission and moderation
		if _, err := tx.GetEventForUpdate(ctx, peek.EventID); err != nil {
			return notFoundAs(err, eventNotFound())
		}
		locked, err := tx.GetRequestsForUpdate(ctx, []int64{requestID})
		if err != nil {
			return err
		}
		if len(locked) == 0 {
			return domain.NotFound(domain.ReasonRequestNotFound, "request not found")
		}
		req := locked[0]
		prev = req.Status
		if !prev.Active() {
			out = req
			return nil
		}

		if err := tx.UpdateRequestStatus(ctx, []int64{requestID}, domain.RequestCanceled); err != nil {
			return err
		}
		if s.releaseSeat && prev == domain.RequestConfirmed {
			if err := tx.AddConfirmed(ctx, req.EventID, -1); err != nil {
				return err
			}
			released = true
		}
		req.Status = domain.RequestCanceled
		out = req
		return enqueue(ctx, tx, now, domain.RoutingRequestCanceled, requestEvent{
			RequestID: req.ID, EventID: req.EventID, RequesterID: requesterID,
			Status: string(req.Status), PrevStatus: string(prev),
		})
	})
	if err != nil {
		return domain.Request{}, err
	}
	if prev.Active() {
		s.audit.RequestCanceled(ctx, out, prev, released)
	}
	return out, nil
}

// GetParticipationRequests returns every request the user has made, oldest first.
func (s *RequestService) GetParticipationRequests(ctx context.Context, requesterID int64) ([]domain.Request, error) {
	if _, err := s.store.GetUser(ctx, requesterID); err != nil {
		return nil, notFoundAs(err, userNotFound())
	}
	return s.store.ListRequestsByRequester(ctx, requesterID)
}

// GetEventParticipants returns the requests of an event to its initiator.
func (s *RequestService) GetEventParticipants(ctx context.Context, initiatorID, eventID int64) ([]domain.Request, error) {
	if err := s.requireInitiator(ctx, s.store, initiatorID, eventID); err != nil {
		return nil, err
	}
	return s.store.ListRequestsByEvent(ctx, eventID, "")
}

func (s *RequestService) requireInitiator(ctx context.Context, st domain.Tx, initiatorID, eventID int64) error {
	if _, err := st.GetUser(ctx, initiatorID); err != nil {
		return notFoundAs(err, userNotFound())
	}
	ev, err := st.GetEvent(ctx, eventID)
	if err != nil {
		return notFoundAs(err, eventNotFound())
	}
	if ev.InitiatorID != initiatorID {
		return domain.NotAllowed(domain.ReasonEventNotOwner, "only the initiator can see event requests")
	}
	return nil
}

// BulkUpdateStatus applies an organizer verdict to a batch of PENDING requests.
//
// The batch is all-or-nothing: every id must belong to the event and be PENDING,
// and a confirm batch must fit in the free slots. When a confirm batch fills the
// event, all remaining PENDING requests are rejected in the same tx and reported
// under Rejected.
func (s *RequestService) BulkUpdateStatus(ctx context.Context, initiatorID, eventID int64, ids []int64, status domain.ModerationStatus) (domain.ModerationResult, error) {
	ids = uniqueIDs(ids)
	if len(ids) == 0 {
		return domain.ModerationResult{}, domain.Invalid(domain.ReasonValidation, "requestIds must not be empty")
	}
	now := s.clock.Now()
	res := domain.ModerationResult{Confirmed: []domain.Request{}, Rejected: []domain.Request{}}

	err := s.store.WithTx(ctx, func(tx domain.Tx) error {
		if _, err := tx.GetUser(ctx, initiatorID); err != nil {
			return notFoundAs(err, userNotFound())
		}
		ev, err := tx.GetEventForUpdate(ctx, eventID)
		if err != nil {
			return notFoundAs(err, eventNotFound())
		}
		if ev.InitiatorID != initiatorID {
			return domain.NotAllowed(domain.ReasonEventNotOwner, "only the initiator can moderate requests")
		}

		reqs, err := tx.GetRequestsForUpdate(ctx, ids)
		if err != nil {
			return err
		}
		if len(reqs) != len(ids) {
			return domain.NotFound(domain.ReasonRequestNotFound, "request not found")
		}
		for _, r := range reqs {
			if r.EventID != eventID {
				return domain.NotFound(domain.ReasonRequestNotFound, "request does not belong to this event")
			}
			if !r.Status.CanTransitionTo(status.RequestStatus()) {
				return domain.Conflict(domain.ReasonRequestNotPending, "request must have status PENDING")
			}
		}

		if status == domain.ModerationReject {
			if err := tx.UpdateRequestStatus(ctx, ids, domain.RequestRejected); err != nil {
				return err
			}
			res.Rejected = withStatus(reqs, domain.RequestRejected)
			return enqueue(ctx, tx, now, domain.RoutingRequestStatusUpdated, moderationPayload(eventID, res))
		}

		free := domain.FreeSlots(ev.ParticipantLimit, ev.ConfirmedRequests)
		if free == 0 || (free > 0 && len(reqs) > free) {
			return domain.Conflict(domain.ReasonEventFull, "participant limit reached")
		}
		if err := tx.UpdateRequestStatus(ctx, ids, domain.RequestConfirmed); err != nil {
			return err
		}
		if err := tx.AddConfirmed(ctx, eventID, len(reqs)); err != nil {
			return err
		}
		res.Confirmed = withStatus(reqs, domain.RequestConfirmed)

		if ev.ParticipantLimit != 0 && ev.ConfirmedRequests+len(reqs) >= ev.ParticipantLimit {
			rest, err := tx.ListRequestsByEvent(ctx, eventID, domain.RequestPending)
			if err != nil {
				return err
			}
			if len(rest) > 0 {
				restIDs := make([]int64, 0, len(rest))
				for _, r := range rest {
					restIDs = append(restIDs, r.ID)
				}
				if err := tx.UpdateRequestStatus(ctx, restIDs, domain.RequestRejected); err != nil {
					return err
				}
				res.Rejected = withStatus(rest, domain.RequestRejected)
			}
		}
		return enqueue(ctx, tx, now, domain.RoutingRequestStatusUpdated, moderationPayload(eventID, res))
	})
	if err != nil {
		return domain.ModerationResult{}, err
	}

	metrics.RecordModeration(domain.RequestConfirmed, len(res.Confirmed))
	metrics.RecordModeration(domain.RequestRejected, len(res.Rejected))
	s.audit.RequestsModerated(ctx, eventID, initiatorID, status, res)
	return res, nil
}

func moderationPayload(eventID int64, res domain.ModerationResult) moderationEvent {
	return moderationEvent{EventID: eventID, Confirmed: requestIDs(res.Confirmed), Rejected: requestIDs(res.Rejected)}
}

func withStatus(in []domain.Request, st domain.RequestStatus) []domain.Request {
	out := make([]domain.Request, len(in))
	for i, r := range in {
		r.Status = st
		out[i] = r
	}
	return out
}

func requestIDs(in []domain.Request) []int64 {
	out := make([]int64, 0, len(in))
	for _, r := range in {
		out = append(out, r.ID)
	}
	return out
}

func uniqueIDs(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
