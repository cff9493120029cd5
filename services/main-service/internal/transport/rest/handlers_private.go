package rest

import (
	"context"
	"net/http"

	"github.com/baechuer/explore-with-me/services/main-service/internal/domain"
	"github.com/baechuer/explore-with-me/services/main-service/internal/transport/rest/response"
)

// Routes under /users/{userId}. The caller is identified by the path only.

func (h *Handler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	userID, err := pathInt64(r, "userId")
	if err != nil {
		handleErr(w, r, err)
		return
	}
	var req newEventReq
	if err := decodeBody(r, &req); err != nil {
		handleErr(w, r, err)
		return
	}
	ev, err := h.events.CreateEvent(r.Context(), userID, req.toDomain())
	if err != nil {
		handleErr(w, r, err)
		return
	}
	response.Created(w, toEventDto(ev))
}

func (h *Handler) ListUserEvents(w http.ResponseWriter, r *http.Request) {
	userID, err := pathInt64(r, "userId")
	if err != nil {
		handleErr(w, r, err)
		return
	}
	from, size, err := parsePage(r)
	if err != nil {
		handleErr(w, r, err)
		return
	}
	events, err := h.events.ListUserEvents(r.Context(), userID, from, size)
	if err != nil {
		handleErr(w, r, err)
		return
	}
	response.OK(w, toEventDtos(events))
}

func (h *Handler) GetUserEvent(w http.ResponseWriter, r *http.Request) {
	userID, eventID, ok := userAndEvent(w, r)
	if !ok {
		return
	}
	ev, err := h.events.GetUserEvent(r.Context(), userID, eventID)
	if err != nil {
		handleErr(w, r, err)
		return
	}
	response.OK(w, toEventDto(ev))
}

func (h *Handler) UpdateUserEvent(w http.ResponseWriter, r *http.Request) {
	userID, eventID, ok := userAndEvent(w, r)
	if !ok {
		return
	}
	var req updateEventReq
	if err := decodeBody(r, &req); err != nil {
		handleErr(w, r, err)
		return
	}
	u, err := req.userUpdate()
	if err != nil {
		handleErr(w, r, err)
		return
	}
	ev, err := h.events.UpdateEventByUser(r.Context(), userID, eventID, u)
	if err != nil {
		handleErr(w, r, err)
		return
	}
	response.OK(w, toEventDto(ev))
}

func (h *Handler) GetEventParticipants(w http.ResponseWriter, r *http.Request) {
	userID, eventID, ok := userAndEvent(w, r)
	if !ok {
		return
	}
	reqs, err := h.requests.GetEventParticipants(r.Context(), userID, eventID)
	if err != nil {
		handleErr(w, r, err)
		return
	}
	response.OK(w, toRequestDtos(reqs))
}

func (h *Handler) UpdateRequestStatuses(w http.ResponseWriter, r *http.Request) {
	userID, eventID, ok := userAndEvent(w, r)
	if !ok {
		return
	}
	var req statusUpdateReq
	if err := decodeBody(r, &req); err != nil {
		handleErr(w, r, err)
		return
	}
	status, err := domain.ParseModerationStatus(req.Status)
	if err != nil {
		handleErr(w, r, err)
		return
	}
	res, err := h.requests.BulkUpdateStatus(r.Context(), userID, eventID, req.RequestIDs, status)
	if err != nil {
		handleErr(w, r, err)
		return
	}
	response.OK(w, statusUpdateResultDto{
		ConfirmedRequests: toRequestDtos(res.Confirmed),
		RejectedRequests:  toRequestDtos(res.Rejected),
	})
}

func (h *Handler) ListUserRequests(w http.ResponseWriter, r *http.Request) {
	userID, err := pathInt64(r, "userId")
	if err != nil {
		handleErr(w, r, err)
		return
	}
	reqs, err := h.requests.GetParticipationRequests(r.Context(), userID)
	if err != nil {
		handleErr(w, r, err)
		return
	}
	response.OK(w, toRequestDtos(reqs))
}

func (h *Handler) AddRequest(w http.ResponseWriter, r *http.Request) {
	userID, err := pathInt64(r, "userId")
	if err != nil {
		handleErr(w, r, err)
		return
	}
	eventID, err := queryInt64(r, "eventId")
	if err != nil {
		handleErr(w, r, err)
		return
	}
	req, err := h.requests.AddParticipationRequest(r.Context(), userID, eventID)
	if err != nil {
		handleErr(w, r, err)
		return
	}
	response.Created(w, toRequestDto(req))
}

func (h *Handler) CancelRequest(w http.ResponseWriter, r *http.Request) {
	userID, err := pathInt64(r, "userId")
	if err != nil {
		handleErr(w, r, err)
		return
	}
	requestID, err := pathInt64(r, "requestId")
	if err != nil {
		handleErr(w, r, err)
		return
	}
	req, err := h.requests.CancelParticipationRequest(r.Context(), userID, requestID)
	if err != nil {
		handleErr(w, r, err)
		return
	}
	response.OK(w, toRequestDto(req))
}

func (h *Handler) RateEvent(w http.ResponseWriter, r *http.Request) {
	h.rate(w, r, "eventId", h.ratings.AddEventRating)
}

func (h *Handler) RateInitiator(w http.ResponseWriter, r *http.Request) {
	h.rate(w, r, "initiatorId", h.ratings.AddInitiatorRating)
}

func (h *Handler) UnrateEvent(w http.ResponseWriter, r *http.Request) {
	h.unrate(w, r, "eventId", h.ratings.DeleteEventRating)
}

func (h *Handler) UnrateInitiator(w http.ResponseWriter, r *http.Request) {
	h.unrate(w, r, "initiatorId", h.ratings.DeleteInitiatorRating)
}

type addRatingFn func(ctx context.Context, raterID, targetID int64, action domain.RatingAction) (domain.Rating, error)

type deleteRatingFn func(ctx context.Context, raterID, targetID int64) error

func (h *Handler) rate(w http.ResponseWriter, r *http.Request, param string, add addRatingFn) {
	userID, err := pathInt64(r, "userId")
	if err != nil {
		handleErr(w, r, err)
		return
	}
	targetID, err := pathInt64(r, param)
	if err != nil {
		handleErr(w, r, err)
		return
	}
	action, err := domain.ParseRatingAction(r.URL.Query().Get("action"))
	if err != nil {
		handleErr(w, r, err)
		return
	}
	rt, err := add(r.Context(), userID, targetID, action)
	if err != nil {
		handleErr(w, r, err)
		return
	}
	response.Created(w, toRatingDto(rt))
}

func (h *Handler) unrate(w http.ResponseWriter, r *http.Request, param string, del deleteRatingFn) {
	userID, err := pathInt64(r, "userId")
	if err != nil {
		handleErr(w, r, err)
		return
	}
	targetID, err := pathInt64(r, param)
	if err != nil {
		handleErr(w, r, err)
		return
	}
	if err := del(r.Context(), userID, targetID); err != nil {
		handleErr(w, r, err)
		return
	}
	response.NoContent(w)
}

func userAndEvent(w http.ResponseWriter, r *http.Request) (int64, int64, bool) {
	userID, err := pathInt64(r, "userId")
	if err != nil {
		handleErr(w, r, err)
		return 0, 0, false
	}
	eventID, err := pathInt64(r, "eventId")
	if err != nil {
		handleErr(w, r, err)
		return 0, 0, false
	}
	return userID, eventID, true
}
