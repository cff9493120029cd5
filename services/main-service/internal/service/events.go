package service

import (
	"context"
	"sort"

	"github.com/baechuer/explore-with-me/services/main-service/internal/domain"
)

type EventService struct {
	store domain.Store
	views *ViewCounter
	clock Clock
}

func NewEventService(store domain.Store, views *ViewCounter, clock Clock) *EventService {
	if clock == nil {
		clock = SysClock{}
	}
	return &EventService{store: store, views: views, clock: clock}
}

func (s *EventService) CreateEvent(ctx context.Context, initiatorID int64, n domain.NewEvent) (domain.EventView, error) {
	if _, err := s.store.GetUser(ctx, initiatorID); err != nil {
		return domain.EventView{}, notFoundAs(err, userNotFound())
	}
	if _, err := s.store.GetCategory(ctx, n.CategoryID); err != nil {
		return domain.EventView{}, notFoundAs(err, categoryNotFound())
	}
	ev, err := n.Build(initiatorID, s.clock.Now())
	if err != nil {
		return domain.EventView{}, err
	}
	ev, err = s.store.CreateEvent(ctx, ev)
	if err != nil {
		return domain.EventView{}, err
	}
	return domain.EventView{Event: ev}, nil
}

func (s *EventService) UpdateEventByUser(ctx context.Context, initiatorID, eventID int64, u domain.UserEventUpdate) (domain.EventView, error) {
	var out domain.Event
	err := s.store.WithTx(ctx, func(tx domain.Tx) error {
		if _, err := tx.GetUser(ctx, initiatorID); err != nil {
			return notFoundAs(err, userNotFound())
		}
		ev, err := tx.GetEventForUpdate(ctx, eventID)
		if err != nil {
			return notFoundAs(err, eventNotFound())
		}
		if ev.InitiatorID != initiatorID {
			return domain.NotAllowed(domain.ReasonEventNotOwner, "only the initiator can change the event")
		}
		if err := checkCategory(ctx, tx, u.CategoryID); err != nil {
			return err
		}
		next, err := ev.ApplyUserUpdate(u, s.clock.Now())
		if err != nil {
			return err
		}
		if err := tx.UpdateEvent(ctx, next); err != nil {
			return err
		}
		out = next
		return nil
	})
	if err != nil {
		return domain.EventView{}, err
	}
	return s.one(ctx, out), nil
}

func (s *EventService) UpdateEventByAdmin(ctx context.Context, eventID int64, u domain.AdminEventUpdate) (domain.EventView, error) {
	var out domain.Event
	err := s.store.WithTx(ctx, func(tx domain.Tx) error {
		ev, err := tx.GetEventForUpdate(ctx, eventID)
		if err != nil {
			return notFoundAs(err, eventNotFound())
		}
		if err := checkCategory(ctx, tx, u.CategoryID); err != nil {
			return err
		}
		next, err := ev.ApplyAdminUpdate(u, s.clock.Now())
		if err != nil {
			return err
		}
		if err := tx.UpdateEvent(ctx, next); err != nil {
			return err
		}
		out = next
		return nil
	})
	if err != nil {
		return domain.EventView{}, err
	}
	return s.one(ctx, out), nil
}

func checkCategory(ctx context.Context, tx domain.Tx, id *int32) error {
	if id == nil {
		return nil
	}
	_, err := tx.GetCategory(ctx, *id)
	return notFoundAs(err, categoryNotFound())
}

func (s *EventService) ListUserEvents(ctx context.Context, initiatorID int64, from, size int) ([]domain.EventView, error) {
	if _, err := s.store.GetUser(ctx, initiatorID); err != nil {
		return nil, notFoundAs(err, userNotFound())
	}
	from, size = clampPage(from, size)
	events, err := s.store.ListEventsByInitiator(ctx, initiatorID, from, size)
	if err != nil {
		return nil, err
	}
	return s.views.Annotate(ctx, events), nil
}

func (s *EventService) GetUserEvent(ctx context.Context, initiatorID, eventID int64) (domain.EventView, error) {
	if _, err := s.store.GetUser(ctx, initiatorID); err != nil {
		return domain.EventView{}, notFoundAs(err, userNotFound())
	}
	ev, err := s.store.GetEvent(ctx, eventID)
	if err != nil {
		return domain.EventView{}, notFoundAs(err, eventNotFound())
	}
	if ev.InitiatorID != initiatorID {
		// other users' events are invisible here, not forbidden
		return domain.EventView{}, eventNotFound()
	}
	return s.one(ctx, ev), nil
}

func (s *EventService) SearchAdminEvents(ctx context.Context, f domain.EventFilter) ([]domain.EventView, error) {
	if err := checkRange(f); err != nil {
		return nil, err
	}
	f.Text, f.Paid, f.OnlyAvailable, f.Sort = "", nil, false, domain.SortNone
	f.From, f.Size = clampPage(f.From, f.Size)
	events, err := s.store.SearchEvents(ctx, f)
	if err != nil {
		return nil, err
	}
	return s.views.Annotate(ctx, events), nil
}

// GetPublishedEvent returns a PUBLISHED event; any other state reads as not found.
func (s *EventService) GetPublishedEvent(ctx context.Context, eventID int64, visit Visit) (domain.EventView, error) {
	ev, err := s.store.GetEvent(ctx, eventID)
	if err != nil {
		return domain.EventView{}, notFoundAs(err, eventNotFound())
	}
	if ev.State != domain.EventPublished {
		return domain.EventView{}, eventNotFound()
	}
	s.views.RecordHit(ctx, visit)
	return s.one(ctx, ev), nil
}

// ListPublishedEvents runs the public catalogue query. Without a range only
// future events are listed.
func (s *EventService) ListPublishedEvents(ctx context.Context, f domain.EventFilter, visit Visit) ([]domain.EventView, error) {
	if err := checkRange(f); err != nil {
		return nil, err
	}
	if f.RangeStart == nil && f.RangeEnd == nil {
		now := s.clock.Now()
		f.RangeStart = &now
	}
	f.UserIDs = nil
	f.States = []domain.EventState{domain.EventPublished}
	f.From, f.Size = clampPage(f.From, f.Size)

	s.views.RecordHit(ctx, visit)

	if f.Sort != domain.SortViews {
		events, err := s.store.SearchEvents(ctx, f)
		if err != nil {
			return nil, err
		}
		return s.views.Annotate(ctx, events), nil
	}

	// views live in another service, so paging happens after sorting here
	from, size := f.From, f.Size
	f.From, f.Size = 0, 0
	events, err := s.store.SearchEvents(ctx, f)
	if err != nil {
		return nil, err
	}
	all := s.views.Annotate(ctx, events)
	sort.SliceStable(all, func(i, j int) bool { return all[i].Views > all[j].Views })
	if from >= len(all) {
		return []domain.EventView{}, nil
	}
	end := from + size
	if end > len(all) {
		end = len(all)
	}
	return all[from:end], nil
}

func checkRange(f domain.EventFilter) error {
	if f.RangeStart != nil && f.RangeEnd != nil && f.RangeStart.After(*f.RangeEnd) {
		return domain.Invalid(domain.ReasonValidation, "rangeStart must not be after rangeEnd")
	}
	return nil
}

func (s *EventService) one(ctx context.Context, ev domain.Event) domain.EventView {
	return s.views.Annotate(ctx, []domain.Event{ev})[0]
}
