package rest

import (
	"net/http"

	"github.com/baechuer/explore-with-me/services/main-service/internal/domain"
	"github.com/baechuer/explore-with-me/services/main-service/internal/transport/rest/response"
)

func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req newUserReq
	if err := decodeBody(r, &req); err != nil {
		handleErr(w, r, err)
		return
	}
	u, err := h.users.CreateUser(r.Context(), req.Name, req.Email)
	if err != nil {
		handleErr(w, r, err)
		return
	}
	response.Created(w, toUserDto(u))
}

func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	ids, err := int64List(r, "ids")
	if err != nil {
		handleErr(w, r, err)
		return
	}
	from, size, err := parsePage(r)
	if err != nil {
		handleErr(w, r, err)
		return
	}
	users, err := h.users.ListUsers(r.Context(), ids, from, size)
	if err != nil {
		handleErr(w, r, err)
		return
	}
	out := make([]userDto, 0, len(users))
	for _, u := range users {
		out = append(out, toUserDto(u))
	}
	response.OK(w, out)
}

func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathInt64(r, "userId")
	if err != nil {
		handleErr(w, r, err)
		return
	}
	if err := h.users.DeleteUser(r.Context(), id); err != nil {
		handleErr(w, r, err)
		return
	}
	response.NoContent(w)
}

func (h *Handler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryReq
	if err := decodeBody(r, &req); err != nil {
		handleErr(w, r, err)
		return
	}
	c, err := h.categories.CreateCategory(r.Context(), req.Name)
	if err != nil {
		handleErr(w, r, err)
		return
	}
	response.Created(w, toCategoryDto(c))
}

func (h *Handler) RenameCategory(w http.ResponseWriter, r *http.Request) {
	id, err := pathInt32(r, "catId")
	if err != nil {
		handleErr(w, r, err)
		return
	}
	var req categoryReq
	if err := decodeBody(r, &req); err != nil {
		handleErr(w, r, err)
		return
	}
	c, err := h.categories.RenameCategory(r.Context(), id, req.Name)
	if err != nil {
		handleErr(w, r, err)
		return
	}
	response.OK(w, toCategoryDto(c))
}

func (h *Handler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, err := pathInt32(r, "catId")
	if err != nil {
		handleErr(w, r, err)
		return
	}
	if err := h.categories.DeleteCategory(r.Context(), id); err != nil {
		handleErr(w, r, err)
		return
	}
	response.NoContent(w)
}

func (h *Handler) SearchAdminEvents(w http.ResponseWriter, r *http.Request) {
	var f domain.EventFilter
	var err error
	if f.UserIDs, err = int64List(r, "users"); err != nil {
		handleErr(w, r, err)
		return
	}
	for _, s := range listParam(r, "states") {
		st, err := domain.ParseEventState(s)
		if err != nil {
			handleErr(w, r, err)
			return
		}
		f.States = append(f.States, st)
	}
	if f.CategoryIDs, err = int32List(r, "categories"); err != nil {
		handleErr(w, r, err)
		return
	}
	if f.RangeStart, err = timeParam(r, "rangeStart"); err != nil {
		handleErr(w, r, err)
		return
	}
	if f.RangeEnd, err = timeParam(r, "rangeEnd"); err != nil {
		handleErr(w, r, err)
		return
	}
	if f.From, f.Size, err = parsePage(r); err != nil {
		handleErr(w, r, err)
		return
	}

	events, err := h.events.SearchAdminEvents(r.Context(), f)
	if err != nil {
		handleErr(w, r, err)
		return
	}
	response.OK(w, toEventDtos(events))
}

func (h *Handler) UpdateEventByAdmin(w http.ResponseWriter, r *http.Request) {
	eventID, err := pathInt64(r, "eventId")
	if err != nil {
		handleErr(w, r, err)
		return
	}
	var req updateEventReq
	if err := decodeBody(r, &req); err != nil {
		handleErr(w, r, err)
		return
	}
	u, err := req.adminUpdate()
	if err != nil {
		handleErr(w, r, err)
		return
	}
	ev, err := h.events.UpdateEventByAdmin(r.Context(), eventID, u)
	if err != nil {
		handleErr(w, r, err)
		return
	}
	response.OK(w, toEventDto(ev))
}

func (h *Handler) CreateCompilation(w http.ResponseWriter, r *http.Request) {
	var req newCompilationReq
	if err := decodeBody(r, &req); err != nil {
		handleErr(w, r, err)
		return
	}
	c, err := h.compilations.CreateCompilation(r.Context(), domain.Compilation{
		Title:    req.Title,
		Pinned:   req.Pinned,
		EventIDs: req.Events,
	})
	if err != nil {
		handleErr(w, r, err)
		return
	}
	response.Created(w, toCompilationDto(c))
}

func (h *Handler) UpdateCompilation(w http.ResponseWriter, r *http.Request) {
	id, err := pathInt32(r, "compId")
	if err != nil {
		handleErr(w, r, err)
		return
	}
	var req updateCompilationReq
	if err := decodeBody(r, &req); err != nil {
		handleErr(w, r, err)
		return
	}
	c, err := h.compilations.UpdateCompilation(r.Context(), id, domain.CompilationPatch{
		Title:    req.Title,
		Pinned:   req.Pinned,
		EventIDs: req.Events,
	})
	if err != nil {
		handleErr(w, r, err)
		return
	}
	response.OK(w, toCompilationDto(c))
}

func (h *Handler) DeleteCompilation(w http.ResponseWriter, r *http.Request) {
	id, err := pathInt32(r, "compId")
	if err != nil {
		handleErr(w, r, err)
		return
	}
	if err := h.compilations.DeleteCompilation(r.Context(), id); err != nil {
		handleErr(w, r, err)
		return
	}
	response.NoContent(w)
}
