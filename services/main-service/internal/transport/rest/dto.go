package rest

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"

	"github.com/baechuer/explore-with-me/services/main-service/internal/domain"
	"github.com/baechuer/explore-with-me/services/main-service/internal/service"
)

// wireTime is a timestamp in domain.TimeLayout, interpreted as UTC.
type wireTime struct {
	time.Time
}

func (t wireTime) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.UTC().Format(domain.TimeLayout))
}

func (t *wireTime) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	v, err := time.ParseInLocation(domain.TimeLayout, strings.TrimSpace(s), time.UTC)
	if err != nil {
		return domain.Invalid(domain.ReasonValidation, "timestamps must look like "+domain.TimeLayout)
	}
	t.Time = v
	return nil
}

func wirePtr(t *time.Time) *wireTime {
	if t == nil {
		return nil
	}
	return &wireTime{Time: *t}
}

func timePtr(t *wireTime) *time.Time {
	if t == nil {
		return nil
	}
	v := t.Time
	return &v
}

// ---- requests ----

type newUserReq struct {
	Name  string `json:"name" validate:"required,min=2,max=250"`
	Email string `json:"email" validate:"required,email,max=254"`
}

type categoryReq struct {
	Name string `json:"name" validate:"required,max=50"`
}

type locationDto struct {
	Lat float64 `json:"lat" validate:"gte=-90,lte=90"`
	Lon float64 `json:"lon" validate:"gte=-180,lte=180"`
}

type newEventReq struct {
	Title             string       `json:"title" validate:"required,min=3,max=120"`
	Annotation        string       `json:"annotation" validate:"required,min=20,max=2000"`
	Description       string       `json:"description" validate:"required,min=20,max=7000"`
	Category          int32        `json:"category" validate:"required,gt=0"`
	Location          *locationDto `json:"location" validate:"required"`
	EventDate         *wireTime    `json:"eventDate" validate:"required"`
	Paid              bool         `json:"paid"`
	ParticipantLimit  int          `json:"participantLimit" validate:"gte=0"`
	RequestModeration *bool        `json:"requestModeration"`
}

func (r newEventReq) toDomain() domain.NewEvent {
	moderation := true
	if r.RequestModeration != nil {
		moderation = *r.RequestModeration
	}
	return domain.NewEvent{
		Title:             r.Title,
		Annotation:        r.Annotation,
		Description:       r.Description,
		CategoryID:        r.Category,
		Location:          domain.Location{Lat: r.Location.Lat, Lon: r.Location.Lon},
		EventDate:         r.EventDate.Time,
		Paid:              r.Paid,
		ParticipantLimit:  r.ParticipantLimit,
		RequestModeration: moderation,
	}
}

type updateEventReq struct {
	Title             *string      `json:"title" validate:"omitempty,min=3,max=120"`
	Annotation        *string      `json:"annotation" validate:"omitempty,min=20,max=2000"`
	Description       *string      `json:"description" validate:"omitempty,min=20,max=7000"`
	Category          *int32       `json:"category" validate:"omitempty,gt=0"`
	Location          *locationDto `json:"location"`
	EventDate         *wireTime    `json:"eventDate"`
	Paid              *bool        `json:"paid"`
	ParticipantLimit  *int         `json:"participantLimit" validate:"omitempty,gte=0"`
	RequestModeration *bool        `json:"requestModeration"`
	StateAction       *string      `json:"stateAction"`
}

func (r updateEventReq) patch() domain.EventPatch {
	p := domain.EventPatch{
		Title:             r.Title,
		Annotation:        r.Annotation,
		Description:       r.Description,
		CategoryID:        r.Category,
		EventDate:         timePtr(r.EventDate),
		Paid:              r.Paid,
		ParticipantLimit:  r.ParticipantLimit,
		RequestModeration: r.RequestModeration,
	}
	if r.Location != nil {
		p.Location = &domain.Location{Lat: r.Location.Lat, Lon: r.Location.Lon}
	}
	return p
}

func (r updateEventReq) userUpdate() (domain.UserEventUpdate, error) {
	u := domain.UserEventUpdate{EventPatch: r.patch()}
	if r.StateAction != nil {
		a, err := domain.ParseUserStateAction(*r.StateAction)
		if err != nil {
			return u, err
		}
		u.StateAction = &a
	}
	return u, nil
}

func (r updateEventReq) adminUpdate() (domain.AdminEventUpdate, error) {
	u := domain.AdminEventUpdate{EventPatch: r.patch()}
	if r.StateAction != nil {
		a, err := domain.ParseAdminStateAction(*r.StateAction)
		if err != nil {
			return u, err
		}
		u.StateAction = &a
	}
	return u, nil
}

type statusUpdateReq struct {
	RequestIDs []int64 `json:"requestIds" validate:"required,min=1"`
	Status     string  `json:"status" validate:"required"`
}

type newCompilationReq struct {
	Events []int64 `json:"events"`
	Pinned bool    `json:"pinned"`
	Title  string  `json:"title" validate:"required,max=50"`
}

type updateCompilationReq struct {
	Events *[]int64 `json:"events"`
	Pinned *bool    `json:"pinned"`
	Title  *string  `json:"title" validate:"omitempty,min=1,max=50"`
}

// ---- responses ----

type userDto struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Rating int    `json:"rating"`
}

func toUserDto(u domain.User) userDto {
	return userDto{ID: u.ID, Name: u.Name, Email: u.Email, Rating: u.Rating}
}

type categoryDto struct {
	ID   int32  `json:"id"`
	Name string `json:"name"`
}

func toCategoryDto(c domain.Category) categoryDto {
	return categoryDto{ID: c.ID, Name: c.Name}
}

type eventDto struct {
	ID                int64       `json:"id"`
	Title             string      `json:"title"`
	Annotation        string      `json:"annotation"`
	Description       string      `json:"description"`
	Category          int32       `json:"category"`
	Initiator         int64       `json:"initiator"`
	Location          locationDto `json:"location"`
	EventDate         wireTime    `json:"eventDate"`
	CreatedOn         wireTime    `json:"createdOn"`
	PublishedOn       *wireTime   `json:"publishedOn"`
	Paid              bool        `json:"paid"`
	ParticipantLimit  int         `json:"participantLimit"`
	RequestModeration bool        `json:"requestModeration"`
	State             string      `json:"state"`
	ConfirmedRequests int         `json:"confirmedRequests"`
	Views             int64       `json:"views"`
	Rating            int         `json:"rating"`
}

func toEventDto(v domain.EventView) eventDto {
	return eventDto{
		ID:                v.ID,
		Title:             v.Title,
		Annotation:        v.Annotation,
		Description:       v.Description,
		Category:          v.CategoryID,
		Initiator:         v.InitiatorID,
		Location:          locationDto{Lat: v.Location.Lat, Lon: v.Location.Lon},
		EventDate:         wireTime{Time: v.EventDate},
		CreatedOn:         wireTime{Time: v.CreatedOn},
		PublishedOn:       wirePtr(v.PublishedOn),
		Paid:              v.Paid,
		ParticipantLimit:  v.ParticipantLimit,
		RequestModeration: v.RequestModeration,
		State:             string(v.State),
		ConfirmedRequests: v.ConfirmedRequests,
		Views:             v.Views,
		Rating:            v.Rating,
	}
}

func toEventDtos(in []domain.EventView) []eventDto {
	out := make([]eventDto, 0, len(in))
	for _, v := range in {
		out = append(out, toEventDto(v))
	}
	return out
}

type requestDto struct {
	ID        int64    `json:"id"`
	Event     int64    `json:"event"`
	Requester int64    `json:"requester"`
	Status    string   `json:"status"`
	Created   wireTime `json:"created"`
}

func toRequestDto(r domain.Request) requestDto {
	return requestDto{
		ID:        r.ID,
		Event:     r.EventID,
		Requester: r.RequesterID,
		Status:    string(r.Status),
		Created:   wireTime{Time: r.Created},
	}
}

func toRequestDtos(in []domain.Request) []requestDto {
	out := make([]requestDto, 0, len(in))
	for _, r := range in {
		out = append(out, toRequestDto(r))
	}
	return out
}

type statusUpdateResultDto struct {
	ConfirmedRequests []requestDto `json:"confirmedRequests"`
	RejectedRequests  []requestDto `json:"rejectedRequests"`
}

type ratingDto struct {
	ID       int64  `json:"id"`
	Rater    int64  `json:"rater"`
	Target   string `json:"target"`
	TargetID int64  `json:"targetId"`
	Action   string `json:"action"`
}

func toRatingDto(r domain.Rating) ratingDto {
	action := domain.RatingDislike
	if r.Like {
		action = domain.RatingLike
	}
	return ratingDto{
		ID:       r.ID,
		Rater:    r.RaterID,
		Target:   string(r.Target.Kind),
		TargetID: r.Target.ID,
		Action:   string(action),
	}
}

type compilationDto struct {
	ID     int32      `json:"id"`
	Title  string     `json:"title"`
	Pinned bool       `json:"pinned"`
	Events []eventDto `json:"events"`
}

func toCompilationDto(c service.CompilationView) compilationDto {
	return compilationDto{
		ID:     c.ID,
		Title:  c.Title,
		Pinned: c.Pinned,
		Events: toEventDtos(c.Events),
	}
}
