package rest

import (
	"net/http"
	"strings"

	"github.com/baechuer/explore-with-me/services/main-service/internal/domain"
	"github.com/baechuer/explore-with-me/services/main-service/internal/transport/rest/response"
)

// ListPublishedEvents serves GET /events. Every call is recorded as a hit.
func (h *Handler) ListPublishedEvents(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := domain.EventFilter{Text: strings.TrimSpace(q.Get("text"))}

	var err error
	if f.CategoryIDs, err = int32List(r, "categories"); err != nil {
		handleErr(w, r, err)
		return
	}
	if f.Paid, err = boolParam(r, "paid"); err != nil {
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
	onlyAvailable, err := boolParam(r, "onlyAvailable")
	if err != nil {
		handleErr(w, r, err)
		return
	}
	f.OnlyAvailable = onlyAvailable != nil && *onlyAvailable
	if f.Sort, err = domain.ParseEventSort(q.Get("sort")); err != nil {
		handleErr(w, r, err)
		return
	}
	if f.From, f.Size, err = parsePage(r); err != nil {
		handleErr(w, r, err)
		return
	}

	events, err := h.events.ListPublishedEvents(r.Context(), f, visitFrom(r))
	if err != nil {
		handleErr(w, r, err)
		return
	}
	response.OK(w, toEventDtos(events))
}

func (h *Handler) GetPublishedEvent(w http.ResponseWriter, r *http.Request) {
	id, err := pathInt64(r, "id")
	if err != nil {
		handleErr(w, r, err)
		return
	}
	ev, err := h.events.GetPublishedEvent(r.Context(), id, visitFrom(r))
	if err != nil {
		handleErr(w, r, err)
		return
	}
	response.OK(w, toEventDto(ev))
}

func (h *Handler) ListCategories(w http.ResponseWriter, r *http.Request) {
	from, size, err := parsePage(r)
	if err != nil {
		handleErr(w, r, err)
		return
	}
	cats, err := h.categories.ListCategories(r.Context(), from, size)
	if err != nil {
		handleErr(w, r, err)
		return
	}
	out := make([]categoryDto, 0, len(cats))
	for _, c := range cats {
		out = append(out, toCategoryDto(c))
	}
	response.OK(w, out)
}

func (h *Handler) GetCategory(w http.ResponseWriter, r *http.Request) {
	id, err := pathInt32(r, "catId")
	if err != nil {
		handleErr(w, r, err)
		return
	}
	c, err := h.categories.GetCategory(r.Context(), id)
	if err != nil {
		handleErr(w, r, err)
		return
	}
	response.OK(w, toCategoryDto(c))
}

func (h *Handler) ListCompilations(w http.ResponseWriter, r *http.Request) {
	pinned, err := boolParam(r, "pinned")
	if err != nil {
		handleErr(w, r, err)
		return
	}
	from, size, err := parsePage(r)
	if err != nil {
		handleErr(w, r, err)
		return
	}
	comps, err := h.compilations.ListCompilations(r.Context(), pinned, from, size)
	if err != nil {
		handleErr(w, r, err)
		return
	}
	out := make([]compilationDto, 0, len(comps))
	for _, c := range comps {
		out = append(out, toCompilationDto(c))
	}
	response.OK(w, out)
}

func (h *Handler) GetCompilation(w http.ResponseWriter, r *http.Request) {
	id, err := pathInt32(r, "compId")
	if err != nil {
		handleErr(w, r, err)
		return
	}
	c, err := h.compilations.GetCompilation(r.Context(), id)
	if err != nil {
		handleErr(w, r, err)
		return
	}
	response.OK(w, toCompilationDto(c))
}
