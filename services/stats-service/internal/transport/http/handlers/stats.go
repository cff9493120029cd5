package handlers

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/baechuer/explore-with-me/services/stats-service/internal/application/stats"
	"github.com/baechuer/explore-with-me/services/stats-service/internal/domain"
	"github.com/baechuer/explore-with-me/services/stats-service/internal/transport/http/dto"
	"github.com/baechuer/explore-with-me/services/stats-service/internal/transport/http/response"
	"github.com/baechuer/explore-with-me/services/stats-service/internal/transport/http/validate"
)

type StatsService interface {
	Hit(ctx context.Context, h domain.Hit) (domain.Hit, error)
	Stats(ctx context.Context, q stats.StatsQuery) ([]domain.ViewStats, error)
}

type StatsHandler struct {
	svc StatsService
}

func NewStatsHandler(svc StatsService) *StatsHandler {
	return &StatsHandler{svc: svc}
}

// POST /hit
func (h *StatsHandler) Hit(w http.ResponseWriter, r *http.Request) {
	var req dto.HitReq
	if err := validate.Body(r, &req); err != nil {
		response.Err(w, r, err)
		return
	}
	hit, err := req.ToDomain()
	if err != nil {
		response.Err(w, r, err)
		return
	}

	saved, err := h.svc.Hit(r.Context(), hit)
	if err != nil {
		response.Err(w, r, err)
		return
	}
	response.JSON(w, http.StatusCreated, dto.FromHit(saved))
}

// GET /stats?start=&end=&uris=&unique=
func (h *StatsHandler) Stats(w http.ResponseWriter, r *http.Request) {
	q, err := parseStatsQuery(r)
	if err != nil {
		response.Err(w, r, err)
		return
	}

	out, err := h.svc.Stats(r.Context(), q)
	if err != nil {
		response.Err(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, dto.FromViewStats(out))
}

func parseStatsQuery(r *http.Request) (stats.StatsQuery, error) {
	qs := r.URL.Query()

	start, err := requiredTime(qs.Get("start"), "start")
	if err != nil {
		return stats.StatsQuery{}, err
	}
	end, err := requiredTime(qs.Get("end"), "end")
	if err != nil {
		return stats.StatsQuery{}, err
	}

	q := stats.StatsQuery{Start: start, End: end}

	// both ?uris=a&uris=b and ?uris=a,b are accepted
	for _, raw := range qs["uris"] {
		for _, u := range strings.Split(raw, ",") {
			if u = strings.TrimSpace(u); u != "" {
				q.URIs = append(q.URIs, u)
			}
		}
	}

	if raw := strings.TrimSpace(qs.Get("unique")); raw != "" {
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return stats.StatsQuery{}, domain.ErrInvalidMeta("unique must be a boolean",
				map[string]string{"field": "unique"})
		}
		q.Unique = b
	}
	return q, nil
}

func requiredTime(raw, field string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, domain.ErrInvalidMeta(field+" is required", map[string]string{"field": field})
	}
	t, err := dto.ParseTime(raw)
	if err != nil {
		return time.Time{}, domain.ErrInvalidMeta(field+" must use layout "+domain.TimeLayout,
			map[string]string{"field": field})
	}
	return t, nil
}
