package service

import (
	"context"
	"errors"

	"github.com/baechuer/explore-with-me/services/main-service/internal/audit"
	"github.com/baechuer/explore-with-me/services/main-service/internal/domain"
	"github.com/baechuer/explore-with-me/services/main-service/internal/metrics"
)

// RatingService keeps the like/dislike ledger and the denormalized scores on
// events and users in step: each mutation changes both in one tx.
type RatingService struct {
	store domain.Store
	audit *audit.Logger
	clock Clock
}

func NewRatingService(store domain.Store, a *audit.Logger) *RatingService {
	return &RatingService{store: store, audit: orNopAudit(a), clock: SysClock{}}
}

type ratingEvent struct {
	RatingID int64  `json:"rating_id"`
	RaterID  int64  `json:"rater_id"`
	Target   string `json:"target"`
	TargetID int64  `json:"target_id"`
	Like     bool   `json:"like"`
	Delta    int    `json:"delta"`
}

func ratingPayload(r domain.Rating, delta int) ratingEvent {
	return ratingEvent{
		RatingID: r.ID, RaterID: r.RaterID,
		Target: string(r.Target.Kind), TargetID: r.Target.ID,
		Like: r.Like, Delta: delta,
	}
}

// AddEventRating records a like or dislike on an event the rater attended.
func (s *RatingService) AddEventRating(ctx context.Context, raterID, eventID int64, action domain.RatingAction) (domain.Rating, error) {
	return s.add(ctx, raterID, domain.EventTarget(eventID), action, func(tx domain.Tx) error {
		if _, err := tx.GetUser(ctx, raterID); err != nil {
			return notFoundAs(err, userNotFound())
		}
		ev, err := tx.GetEvent(ctx, eventID)
		if err != nil {
			return notFoundAs(err, eventNotFound())
		}
		if ev.InitiatorID == raterID {
			return domain.NotAllowed(domain.ReasonRatingSelf, "initiator cannot rate their own event")
		}
		if ev.State != domain.EventPublished {
			return domain.NotAllowed(domain.ReasonEventNotPublished, "event is not published")
		}
		ok, err := tx.HasConfirmedRequest(ctx, raterID, eventID)
		if err != nil {
			return err
		}
		if !ok {
			return domain.NotAllowed(domain.ReasonRatingNotAttended, "only confirmed participants can rate an event")
		}
		return nil
	})
}

// AddInitiatorRating records a like or dislike on a user whose event the rater attended.
func (s *RatingService) AddInitiatorRating(ctx context.Context, raterID, initiatorID int64, action domain.RatingAction) (domain.Rating, error) {
	return s.add(ctx, raterID, domain.InitiatorTarget(initiatorID), action, func(tx domain.Tx) error {
		if raterID == initiatorID {
			return domain.NotAllowed(domain.ReasonRatingSelf, "users cannot rate themselves")
		}
		if _, err := tx.GetUser(ctx, raterID); err != nil {
			return notFoundAs(err, userNotFound())
		}
		if _, err := tx.GetUser(ctx, initiatorID); err != nil {
			return notFoundAs(err, userNotFound())
		}
		ok, err := tx.HasConfirmedRequestForInitiator(ctx, raterID, initiatorID)
		if err != nil {
			return err
		}
		if !ok {
			return domain.NotAllowed(domain.ReasonRatingNotAttended, "only participants of the initiator's events can rate them")
		}
		return nil
	})
}

func (s *RatingService) add(ctx context.Context, raterID int64, target domain.RatingTarget, action domain.RatingAction, check func(tx domain.Tx) error) (domain.Rating, error) {
	if _, err := domain.ParseRatingAction(string(action)); err != nil {
		return domain.Rating{}, err
	}
	var out domain.Rating

	err := s.store.WithTx(ctx, func(tx domain.Tx) error {
		if err := check(tx); err != nil {
			return err
		}
		r, err := tx.CreateRating(ctx, domain.Rating{RaterID: raterID, Target: target, Like: action.Like()})
		if errors.Is(err, domain.ErrUniqueViolation) {
			return domain.Conflict(domain.ReasonRatingDuplicate, "rating already exists")
		}
		if err != nil {
			return err
		}
		if err := s.adjust(ctx, tx, target, r.Delta()); err != nil {
			return err
		}
		out = r
		return enqueue(ctx, tx, s.clock.Now(), domain.RoutingRatingAdded, ratingPayload(r, r.Delta()))
	})
	if err != nil {
		return domain.Rating{}, err
	}

	metrics.RecordRating(target.Kind, "add")
	s.audit.RatingAdded(ctx, out)
	return out, nil
}

// DeleteEventRating removes the rater's rating on an event and reverses its delta.
func (s *RatingService) DeleteEventRating(ctx context.Context, raterID, eventID int64) error {
	return s.remove(ctx, raterID, domain.EventTarget(eventID))
}

// DeleteInitiatorRating removes the rater's rating on an initiator and reverses its delta.
func (s *RatingService) DeleteInitiatorRating(ctx context.Context, raterID, initiatorID int64) error {
	return s.remove(ctx, raterID, domain.InitiatorTarget(initiatorID))
}

func (s *RatingService) remove(ctx context.Context, raterID int64, target domain.RatingTarget) error {
	var removed domain.Rating

	err := s.store.WithTx(ctx, func(tx domain.Tx) error {
		r, err := tx.GetRating(ctx, raterID, target)
		if err != nil {
			return notFoundAs(err, domain.NotFound(domain.ReasonRatingNotFound, "rating not found"))
		}
		if err := tx.DeleteRating(ctx, r.ID); err != nil {
			return notFoundAs(err, domain.NotFound(domain.ReasonRatingNotFound, "rating not found"))
		}
		if err := s.adjust(ctx, tx, target, -r.Delta()); err != nil {
			return err
		}
		removed = r
		return enqueue(ctx, tx, s.clock.Now(), domain.RoutingRatingRemoved, ratingPayload(r, -r.Delta()))
	})
	if err != nil {
		return err
	}

	metrics.RecordRating(target.Kind, "remove")
	s.audit.RatingRemoved(ctx, removed)
	return nil
}

func (s *RatingService) adjust(ctx context.Context, tx domain.Tx, target domain.RatingTarget, delta int) error {
	switch target.Kind {
	case domain.TargetEvent:
		return notFoundAs(tx.AdjustEventRating(ctx, target.ID, delta), eventNotFound())
	case domain.TargetInitiator:
		return notFoundAs(tx.AdjustUserRating(ctx, target.ID, delta), userNotFound())
	}
	return domain.Invalid(domain.ReasonValidation, "unknown rating target")
}
