package domain

import (
	"strings"
	"time"
)

// TimeLayout is the wire format for timestamps at every external boundary.
const TimeLayout = "2006-01-02 15:04:05"

type EventState string

const (
	EventPending   EventState = "PENDING"
	EventPublished EventState = "PUBLISHED"
	EventCanceled  EventState = "CANCELED"
)

func (s EventState) Valid() bool {
	return s == EventPending || s == EventPublished || s == EventCanceled
}

func ParseEventState(s string) (EventState, error) {
	st := EventState(strings.ToUpper(strings.TrimSpace(s)))
	if !st.Valid() {
		return "", Invalid(ReasonValidation, "unknown event state: "+s)
	}
	return st, nil
}

type Location struct {
	Lat float64
	Lon float64
}

type Event struct {
	ID                int64
	Title             string
	Annotation        string
	Description       string
	CategoryID        int32
	InitiatorID       int64
	Location          Location
	EventDate         time.Time
	CreatedOn         time.Time
	PublishedOn       *time.Time
	Paid              bool
	ParticipantLimit  int
	RequestModeration bool
	State             EventState
	ConfirmedRequests int
	Rating            int
}

// NewEvent is the creation payload; ids and counters are assigned by the store.
type NewEvent struct {
	Title             string
	Annotation        string
	Description       string
	CategoryID        int32
	Location          Location
	EventDate         time.Time
	Paid              bool
	ParticipantLimit  int
	RequestModeration bool
}

const (
	minLeadForUser  = 2 * time.Hour
	minLeadForAdmin = 1 * time.Hour
)

// Build validates the payload and returns the PENDING snapshot to persist.
func (n NewEvent) Build(initiatorID int64, now time.Time) (Event, error) {
	if strings.TrimSpace(n.Title) == "" || strings.TrimSpace(n.Annotation) == "" || strings.TrimSpace(n.Description) == "" {
		return Event{}, Invalid(ReasonValidation, "title, annotation and description are required")
	}
	if n.ParticipantLimit < 0 {
		return Event{}, Invalid(ReasonValidation, "participantLimit must be >= 0 (0 means unlimited)")
	}
	if n.EventDate.Before(now.Add(minLeadForUser)) {
		return Event{}, Invalid(ReasonEventDateTooSoon, "eventDate must be at least 2 hours from now")
	}
	return Event{
		Title:             strings.TrimSpace(n.Title),
		Annotation:        strings.TrimSpace(n.Annotation),
		Description:       strings.TrimSpace(n.Description),
		CategoryID:        n.CategoryID,
		InitiatorID:       initiatorID,
		Location:          n.Location,
		EventDate:         n.EventDate,
		CreatedOn:         now,
		Paid:              n.Paid,
		ParticipantLimit:  n.ParticipantLimit,
		RequestModeration: n.RequestModeration,
		State:             EventPending,
	}, nil
}

// EventPatch holds the optional fields shared by user and admin updates.
type EventPatch struct {
	Title             *string
	Annotation        *string
	Description       *string
	CategoryID        *int32
	Location          *Location
	EventDate         *time.Time
	Paid              *bool
	ParticipantLimit  *int
	RequestModeration *bool
}

func (p EventPatch) applyTo(e Event) (Event, error) {
	if p.Title != nil {
		if strings.TrimSpace(*p.Title) == "" {
			return e, Invalid(ReasonValidation, "title must be non-empty")
		}
		e.Title = strings.TrimSpace(*p.Title)
	}
	if p.Annotation != nil {
		if strings.TrimSpace(*p.Annotation) == "" {
			return e, Invalid(ReasonValidation, "annotation must be non-empty")
		}
		e.Annotation = strings.TrimSpace(*p.Annotation)
	}
	if p.Description != nil {
		if strings.TrimSpace(*p.Description) == "" {
			return e, Invalid(ReasonValidation, "description must be non-empty")
		}
		e.Description = strings.TrimSpace(*p.Description)
	}
	if p.CategoryID != nil {
		e.CategoryID = *p.CategoryID
	}
	if p.Location != nil {
		e.Location = *p.Location
	}
	if p.EventDate != nil {
		e.EventDate = *p.EventDate
	}
	if p.Paid != nil {
		e.Paid = *p.Paid
	}
	if p.ParticipantLimit != nil {
		if *p.ParticipantLimit < 0 {
			return e, Invalid(ReasonValidation, "participantLimit must be >= 0")
		}
		e.ParticipantLimit = *p.ParticipantLimit
	}
	if p.RequestModeration != nil {
		e.RequestModeration = *p.RequestModeration
	}
	return e, nil
}

// checkLimit keeps confirmedRequests <= participantLimit for limited events.
func (e Event) checkLimit() error {
	if e.ParticipantLimit != 0 && e.ParticipantLimit < e.ConfirmedRequests {
		return Conflict(ReasonEventLimitTooLow, "participantLimit is below the number of confirmed requests")
	}
	return nil
}

// UserStateAction is the set of state changes an initiator may request.
// It is a distinct type from AdminStateAction so the two cannot be mixed.
type UserStateAction string

const (
	UserSendToReview UserStateAction = "SEND_TO_REVIEW"
	UserCancelReview UserStateAction = "CANCEL_REVIEW"
)

func ParseUserStateAction(s string) (UserStateAction, error) {
	switch a := UserStateAction(strings.ToUpper(strings.TrimSpace(s))); a {
	case UserSendToReview, UserCancelReview:
		return a, nil
	}
	return "", Invalid(ReasonValidation, "unknown user state action: "+s)
}

// AdminStateAction is the set of state changes available to administrators.
type AdminStateAction string

const (
	AdminPublishEvent AdminStateAction = "PUBLISH_EVENT"
	AdminRejectEvent  AdminStateAction = "REJECT_EVENT"
)

func ParseAdminStateAction(s string) (AdminStateAction, error) {
	switch a := AdminStateAction(strings.ToUpper(strings.TrimSpace(s))); a {
	case AdminPublishEvent, AdminRejectEvent:
		return a, nil
	}
	return "", Invalid(ReasonValidation, "unknown admin state action: "+s)
}

type UserEventUpdate struct {
	EventPatch
	StateAction *UserStateAction
}

type AdminEventUpdate struct {
	EventPatch
	StateAction *AdminStateAction
}

// ApplyUserUpdate returns the updated snapshot; e is left untouched on error.
func (e Event) ApplyUserUpdate(u UserEventUpdate, now time.Time) (Event, error) {
	if e.State == EventPublished {
		return e, NotAllowed(ReasonEventPublished, "published events cannot be changed")
	}
	out, err := u.applyTo(e)
	if err != nil {
		return e, err
	}
	if err := out.checkLimit(); err != nil {
		return e, err
	}
	if u.EventDate != nil && out.EventDate.Before(now.Add(minLeadForUser)) {
		return e, Invalid(ReasonEventDateTooSoon, "eventDate must be at least 2 hours from now")
	}
	if u.StateAction != nil {
		switch *u.StateAction {
		case UserSendToReview:
			out.State = EventPending
		case UserCancelReview:
			out.State = EventCanceled
		}
	}
	return out, nil
}

// ApplyAdminUpdate returns the updated snapshot; e is left untouched on error.
func (e Event) ApplyAdminUpdate(u AdminEventUpdate, now time.Time) (Event, error) {
	out, err := u.applyTo(e)
	if err != nil {
		return e, err
	}
	if err := out.checkLimit(); err != nil {
		return e, err
	}
	if u.EventDate != nil && out.EventDate.Before(now.Add(minLeadForAdmin)) {
		return e, Invalid(ReasonEventDateTooSoon, "eventDate must be at least 1 hour from now")
	}
	if u.StateAction == nil {
		return out, nil
	}
	switch *u.StateAction {
	case AdminPublishEvent:
		if e.State != EventPending {
			return e, NotAllowed(ReasonEventStateConflict, "only pending events can be published")
		}
		if out.EventDate.Before(now.Add(minLeadForAdmin)) {
			return e, NotAllowed(ReasonEventDateTooSoon, "event starts in less than 1 hour")
		}
		t := now
		out.State = EventPublished
		out.PublishedOn = &t
	case AdminRejectEvent:
		if e.State == EventPublished {
			return e, NotAllowed(ReasonEventStateConflict, "published events cannot be rejected")
		}
		out.State = EventCanceled
	}
	return out, nil
}

// EventFilter drives both admin search and the public listing.
type EventFilter struct {
	Text          string
	UserIDs       []int64
	States        []EventState
	CategoryIDs   []int32
	Paid          *bool
	RangeStart    *time.Time
	RangeEnd      *time.Time
	OnlyAvailable bool
	Sort          EventSort
	From          int
	Size          int
}

type EventSort string

const (
	SortNone      EventSort = ""
	SortEventDate EventSort = "EVENT_DATE"
	SortViews     EventSort = "VIEWS"
	SortRating    EventSort = "RATING"
)

func ParseEventSort(s string) (EventSort, error) {
	switch v := EventSort(strings.ToUpper(strings.TrimSpace(s))); v {
	case SortNone, SortEventDate, SortViews, SortRating:
		return v, nil
	}
	return "", Invalid(ReasonValidation, "sort must be one of EVENT_DATE, VIEWS, RATING")
}

// EventView is an event annotated with its view count for read paths.
type EventView struct {
	Event
	Views int64
}
