package service

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/baechuer/explore-with-me/services/main-service/internal/domain"
	"github.com/baechuer/explore-with-me/services/main-service/internal/metrics"
	"github.com/baechuer/explore-with-me/services/main-service/internal/pkg/logger"
)

// ViewCounter records visits with the stats collector and reads unique-IP view
// counts back for events. A collector outage degrades views to 0, it never
// fails the read.
type ViewCounter struct {
	stats domain.StatsClient
	cache domain.ViewsCache
	app   string
	ttl   time.Duration
	clock Clock
}

func NewViewCounter(stats domain.StatsClient, cache domain.ViewsCache, app string, ttl time.Duration, clock Clock) *ViewCounter {
	if clock == nil {
		clock = SysClock{}
	}
	return &ViewCounter{stats: stats, cache: cache, app: app, ttl: ttl, clock: clock}
}

// Visit identifies the caller of a public read.
type Visit struct {
	URI string
	IP  string
}

func EventURI(id int64) string { return "/events/" + strconv.FormatInt(id, 10) }

// EventIDFromURI parses the trailing path segment of uri as an event id.
func EventIDFromURI(uri string) (int64, bool) {
	uri = strings.TrimRight(uri, "/")
	i := strings.LastIndexByte(uri, '/')
	if i < 0 || i == len(uri)-1 {
		return 0, false
	}
	id, err := strconv.ParseInt(uri[i+1:], 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func (v *ViewCounter) RecordHit(ctx context.Context, visit Visit) {
	if v == nil || v.stats == nil || visit.URI == "" {
		return
	}
	err := v.stats.Hit(ctx, domain.Hit{App: v.app, URI: visit.URI, IP: visit.IP, Timestamp: v.clock.Now()})
	if err != nil {
		metrics.RecordStatsError("hit")
		logger.WithCtx(ctx).Warn().Err(err).Str("uri", visit.URI).Msg("stats hit failed")
	}
}

// Annotate attaches view counts to events, preserving order.
func (v *ViewCounter) Annotate(ctx context.Context, events []domain.Event) []domain.EventView {
	out := make([]domain.EventView, len(events))
	for i, e := range events {
		out[i] = domain.EventView{Event: e}
	}
	if v == nil || len(events) == 0 {
		return out
	}

	views := v.lookup(ctx, events)
	for i := range out {
		out[i].Views = views[out[i].ID]
	}
	return out
}

func (v *ViewCounter) lookup(ctx context.Context, events []domain.Event) map[int64]int64 {
	ids := make([]int64, 0, len(events))
	for _, e := range events {
		ids = append(ids, e.ID)
	}

	views := map[int64]int64{}
	if v.cache != nil {
		cached, err := v.cache.GetViews(ctx, ids)
		if err != nil {
			logger.WithCtx(ctx).Debug().Err(err).Msg("views cache read failed")
		}
		for id, n := range cached {
			views[id] = n
		}
	}

	if v.stats == nil {
		return views
	}

	// One query per event. Unique counting is per query, so a shared query
	// would tie each event's count to the rest of the batch.
	fresh := make(map[int64]int64)
	for _, e := range events {
		if _, ok := views[e.ID]; ok {
			continue
		}
		n, err := v.fetch(ctx, e)
		if err != nil {
			metrics.RecordStatsError("stats")
			logger.WithCtx(ctx).Warn().Err(err).Int64("event_id", e.ID).Msg("stats lookup failed")
			break
		}
		fresh[e.ID] = n
		views[e.ID] = n
	}

	if v.cache != nil && v.ttl > 0 && len(fresh) > 0 {
		if err := v.cache.SetViews(ctx, fresh, v.ttl); err != nil {
			logger.WithCtx(ctx).Debug().Err(err).Msg("views cache write failed")
		}
	}
	return views
}

func (v *ViewCounter) fetch(ctx context.Context, e domain.Event) (int64, error) {
	stats, err := v.stats.Stats(ctx, visibleSince(e), v.clock.Now(), []string{EventURI(e.ID)}, true)
	if err != nil {
		return 0, err
	}
	var n int64
	for _, s := range stats {
		if id, ok := EventIDFromURI(s.URI); ok && id == e.ID {
			n += s.Hits
		}
	}
	return n, nil
}

func visibleSince(e domain.Event) time.Time {
	if e.PublishedOn != nil {
		return *e.PublishedOn
	}
	return e.CreatedOn
}
