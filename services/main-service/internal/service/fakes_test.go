package service

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/baechuer/explore-with-me/services/main-service/internal/domain"
)

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

// memState is the whole database; WithTx runs on a clone and swaps it in on commit.
type memState struct {
	seq        int64
	users      map[int64]domain.User
	categories map[int32]domain.Category
	events     map[int64]domain.Event
	requests   map[int64]domain.Request
	ratings    map[int64]domain.Rating
	comps      map[int32]domain.Compilation
	outbox     []domain.OutboxMessage
}

func newMemState() *memState {
	return &memState{
		users:      map[int64]domain.User{},
		categories: map[int32]domain.Category{},
		events:     map[int64]domain.Event{},
		requests:   map[int64]domain.Request{},
		ratings:    map[int64]domain.Rating{},
		comps:      map[int32]domain.Compilation{},
	}
}

func (s *memState) clone() *memState {
	c := newMemState()
	c.seq = s.seq
	for k, v := range s.users {
		c.users[k] = v
	}
	for k, v := range s.categories {
		c.categories[k] = v
	}
	for k, v := range s.events {
		c.events[k] = v
	}
	for k, v := range s.requests {
		c.requests[k] = v
	}
	for k, v := range s.ratings {
		c.ratings[k] = v
	}
	for k, v := range s.comps {
		v.EventIDs = append([]int64(nil), v.EventIDs...)
		c.comps[k] = v
	}
	c.outbox = append([]domain.OutboxMessage(nil), s.outbox...)
	return c
}

func (s *memState) next() int64 {
	s.seq++
	return s.seq
}

type memHooks struct {
	outboxErr error
}

type memTx struct {
	st    *memState
	hooks *memHooks
}

// memStore serializes transactions with one mutex, which is stricter than row
// locks but gives the same per-event guarantee.
type memStore struct {
	memTx
	mu sync.Mutex
}

func newMemStore() *memStore {
	return &memStore{memTx: memTx{st: newMemState(), hooks: &memHooks{}}}
}

func (m *memStore) WithTx(ctx context.Context, fn func(tx domain.Tx) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	snap := m.st.clone()
	if err := fn(&memTx{st: snap, hooks: m.hooks}); err != nil {
		return err
	}
	*m.st = *snap
	return nil
}

func (m *memStore) snapshot() *memState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.st.clone()
}

// seed helpers

func (m *memStore) addUser(name string) int64 {
	id := m.st.next()
	m.st.users[id] = domain.User{ID: id, Name: name, Email: strings.ToLower(name) + "@example.com"}
	return id
}

func (m *memStore) addCategory(name string) int32 {
	id := int32(m.st.next())
	m.st.categories[id] = domain.Category{ID: id, Name: name}
	return id
}

func (m *memStore) addEvent(initiatorID int64, limit int, moderation bool, state domain.EventState) int64 {
	id := m.st.next()
	var pub *time.Time
	if state == domain.EventPublished {
		t := testNow.Add(-time.Hour)
		pub = &t
	}
	m.st.events[id] = domain.Event{
		ID:                id,
		Title:             fmt.Sprintf("event %d", id),
		Annotation:        "annotation",
		Description:       "description",
		InitiatorID:       initiatorID,
		EventDate:         testNow.Add(72 * time.Hour),
		CreatedOn:         testNow.Add(-24 * time.Hour),
		PublishedOn:       pub,
		ParticipantLimit:  limit,
		RequestModeration: moderation,
		State:             state,
	}
	return id
}

func (m *memStore) addRequest(eventID, requesterID int64, st domain.RequestStatus) int64 {
	id := m.st.next()
	m.st.requests[id] = domain.Request{ID: id, EventID: eventID, RequesterID: requesterID, Status: st, Created: testNow}
	if st == domain.RequestConfirmed {
		e := m.st.events[eventID]
		e.ConfirmedRequests++
		m.st.events[eventID] = e
	}
	return id
}

func (m *memStore) event(id int64) domain.Event     { return m.snapshot().events[id] }
func (m *memStore) user(id int64) domain.User       { return m.snapshot().users[id] }
func (m *memStore) request(id int64) domain.Request { return m.snapshot().requests[id] }
func (m *memStore) outboxKeys() []string {
	var keys []string
	for _, o := range m.snapshot().outbox {
		keys = append(keys, o.RoutingKey)
	}
	return keys
}

// users

func (t *memTx) CreateUser(_ context.Context, u domain.User) (domain.User, error) {
	for _, x := range t.st.users {
		if x.Email == u.Email {
			return domain.User{}, domain.ErrUniqueViolation
		}
	}
	u.ID = t.st.next()
	t.st.users[u.ID] = u
	return u, nil
}

func (t *memTx) GetUser(_ context.Context, id int64) (domain.User, error) {
	u, ok := t.st.users[id]
	if !ok {
		return domain.User{}, domain.ErrNoRows
	}
	return u, nil
}

func (t *memTx) ListUsers(_ context.Context, ids []int64, from, size int) ([]domain.User, error) {
	var out []domain.User
	want := map[int64]bool{}
	for _, id := range ids {
		want[id] = true
	}
	for _, u := range t.st.users {
		if len(ids) == 0 || want[u.ID] {
			out = append(out, u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return page(out, from, size), nil
}

func (t *memTx) DeleteUser(_ context.Context, id int64) error {
	if _, ok := t.st.users[id]; !ok {
		return domain.ErrNoRows
	}
	delete(t.st.users, id)
	return nil
}

func (t *memTx) AdjustUserRating(_ context.Context, id int64, delta int) error {
	u, ok := t.st.users[id]
	if !ok {
		return domain.ErrNoRows
	}
	u.Rating += delta
	t.st.users[id] = u
	return nil
}

// categories

func (t *memTx) CreateCategory(_ context.Context, name string) (domain.Category, error) {
	for _, c := range t.st.categories {
		if c.Name == name {
			return domain.Category{}, domain.ErrUniqueViolation
		}
	}
	c := domain.Category{ID: int32(t.st.next()), Name: name}
	t.st.categories[c.ID] = c
	return c, nil
}

func (t *memTx) UpdateCategory(_ context.Context, c domain.Category) (domain.Category, error) {
	if _, ok := t.st.categories[c.ID]; !ok {
		return domain.Category{}, domain.ErrNoRows
	}
	for _, x := range t.st.categories {
		if x.ID != c.ID && x.Name == c.Name {
			return domain.Category{}, domain.ErrUniqueViolation
		}
	}
	t.st.categories[c.ID] = c
	return c, nil
}

func (t *memTx) DeleteCategory(_ context.Context, id int32) error {
	if _, ok := t.st.categories[id]; !ok {
		return domain.ErrNoRows
	}
	for _, e := range t.st.events {
		if e.CategoryID == id {
			return domain.ErrFKViolation
		}
	}
	delete(t.st.categories, id)
	return nil
}

func (t *memTx) GetCategory(_ context.Context, id int32) (domain.Category, error) {
	c, ok := t.st.categories[id]
	if !ok {
		return domain.Category{}, domain.ErrNoRows
	}
	return c, nil
}

func (t *memTx) ListCategories(_ context.Context, from, size int) ([]domain.Category, error) {
	var out []domain.Category
	for _, c := range t.st.categories {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return page(out, from, size), nil
}

// events

func (t *memTx) CreateEvent(_ context.Context, e domain.Event) (domain.Event, error) {
	e.ID = t.st.next()
	t.st.events[e.ID] = e
	return e, nil
}

func (t *memTx) GetEvent(_ context.Context, id int64) (domain.Event, error) {
	e, ok := t.st.events[id]
	if !ok {
		return domain.Event{}, domain.ErrNoRows
	}
	return e, nil
}

func (t *memTx) GetEventForUpdate(ctx context.Context, id int64) (domain.Event, error) {
	return t.GetEvent(ctx, id)
}

func (t *memTx) UpdateEvent(_ context.Context, e domain.Event) error {
	cur, ok := t.st.events[e.ID]
	if !ok {
		return domain.ErrNoRows
	}
	// counters are owned by AddConfirmed and AdjustEventRating
	e.ConfirmedRequests, e.Rating = cur.ConfirmedRequests, cur.Rating
	t.st.events[e.ID] = e
	return nil
}

func (t *memTx) AddConfirmed(_ context.Context, eventID int64, delta int) error {
	e, ok := t.st.events[eventID]
	if !ok {
		return domain.ErrNoRows
	}
	e.ConfirmedRequests += delta
	t.st.events[eventID] = e
	return nil
}

func (t *memTx) AdjustEventRating(_ context.Context, eventID int64, delta int) error {
	e, ok := t.st.events[eventID]
	if !ok {
		return domain.ErrNoRows
	}
	e.Rating += delta
	t.st.events[eventID] = e
	return nil
}

func (t *memTx) ListEventsByInitiator(_ context.Context, initiatorID int64, from, size int) ([]domain.Event, error) {
	var out []domain.Event
	for _, e := range t.st.events {
		if e.InitiatorID == initiatorID {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return page(out, from, size), nil
}

func (t *memTx) SearchEvents(_ context.Context, f domain.EventFilter) ([]domain.Event, error) {
	var out []domain.Event
	for _, e := range t.st.events {
		if matches(e, f) {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		switch f.Sort {
		case domain.SortEventDate:
			if !out[i].EventDate.Equal(out[j].EventDate) {
				return out[i].EventDate.Before(out[j].EventDate)
			}
		case domain.SortRating:
			if out[i].Rating != out[j].Rating {
				return out[i].Rating > out[j].Rating
			}
		}
		return out[i].ID < out[j].ID
	})
	return page(out, f.From, f.Size), nil
}

func matches(e domain.Event, f domain.EventFilter) bool {
	if f.Text != "" {
		q := strings.ToLower(f.Text)
		if !strings.Contains(strings.ToLower(e.Annotation), q) && !strings.Contains(strings.ToLower(e.Description), q) {
			return false
		}
	}
	if len(f.UserIDs) > 0 && !containsInt64(f.UserIDs, e.InitiatorID) {
		return false
	}
	if len(f.States) > 0 {
		ok := false
		for _, s := range f.States {
			ok = ok || s == e.State
		}
		if !ok {
			return false
		}
	}
	if len(f.CategoryIDs) > 0 {
		ok := false
		for _, c := range f.CategoryIDs {
			ok = ok || c == e.CategoryID
		}
		if !ok {
			return false
		}
	}
	if f.Paid != nil && e.Paid != *f.Paid {
		return false
	}
	if f.RangeStart != nil && e.EventDate.Before(*f.RangeStart) {
		return false
	}
	if f.RangeEnd != nil && e.EventDate.After(*f.RangeEnd) {
		return false
	}
	if f.OnlyAvailable && e.ParticipantLimit != 0 && e.ConfirmedRequests >= e.ParticipantLimit {
		return false
	}
	return true
}

func (t *memTx) GetEventsByIDs(_ context.Context, ids []int64) ([]domain.Event, error) {
	var out []domain.Event
	for _, id := range ids {
		if e, ok := t.st.events[id]; ok {
			out = append(out, e)
		}
	}
	return out, nil
}

// requests

func (t *memTx) CreateRequest(_ context.Context, r domain.Request) (domain.Request, error) {
	for _, x := range t.st.requests {
		if x.EventID == r.EventID && x.RequesterID == r.RequesterID && x.Status.Active() {
			return domain.Request{}, domain.ErrUniqueViolation
		}
	}
	r.ID = t.st.next()
	t.st.requests[r.ID] = r
	return r, nil
}

func (t *memTx) GetRequest(_ context.Context, id int64) (domain.Request, error) {
	r, ok := t.st.requests[id]
	if !ok {
		return domain.Request{}, domain.ErrNoRows
	}
	return r, nil
}

func (t *memTx) GetRequestsForUpdate(_ context.Context, ids []int64) ([]domain.Request, error) {
	var out []domain.Request
	for _, id := range ids {
		if r, ok := t.st.requests[id]; ok {
			out = append(out, r)
		}
	}
	return out, nil
}

func (t *memTx) UpdateRequestStatus(_ context.Context, ids []int64, status domain.RequestStatus) error {
	for _, id := range ids {
		r, ok := t.st.requests[id]
		if !ok {
			return domain.ErrNoRows
		}
		r.Status = status
		t.st.requests[id] = r
	}
	return nil
}

func (t *memTx) HasActiveRequest(_ context.Context, requesterID, eventID int64) (bool, error) {
	for _, r := range t.st.requests {
		if r.RequesterID == requesterID && r.EventID == eventID && r.Status.Active() {
			return true, nil
		}
	}
	return false, nil
}

func (t *memTx) HasConfirmedRequest(_ context.Context, requesterID, eventID int64) (bool, error) {
	for _, r := range t.st.requests {
		if r.RequesterID == requesterID && r.EventID == eventID && r.Status == domain.RequestConfirmed {
			return true, nil
		}
	}
	return false, nil
}

func (t *memTx) HasConfirmedRequestForInitiator(_ context.Context, requesterID, initiatorID int64) (bool, error) {
	for _, r := range t.st.requests {
		if r.RequesterID == requesterID && r.Status == domain.RequestConfirmed && t.st.events[r.EventID].InitiatorID == initiatorID {
			return true, nil
		}
	}
	return false, nil
}

func (t *memTx) ListRequestsByRequester(_ context.Context, requesterID int64) ([]domain.Request, error) {
	return t.requestsWhere(func(r domain.Request) bool { return r.RequesterID == requesterID }), nil
}

func (t *memTx) ListRequestsByEvent(_ context.Context, eventID int64, status domain.RequestStatus) ([]domain.Request, error) {
	return t.requestsWhere(func(r domain.Request) bool {
		return r.EventID == eventID && (status == "" || r.Status == status)
	}), nil
}

func (t *memTx) requestsWhere(keep func(domain.Request) bool) []domain.Request {
	out := []domain.Request{}
	for _, r := range t.st.requests {
		if keep(r) {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// ratings

func (t *memTx) CreateRating(_ context.Context, r domain.Rating) (domain.Rating, error) {
	for _, x := range t.st.ratings {
		if x.RaterID == r.RaterID && x.Target == r.Target {
			return domain.Rating{}, domain.ErrUniqueViolation
		}
	}
	r.ID = t.st.next()
	t.st.ratings[r.ID] = r
	return r, nil
}

func (t *memTx) GetRating(_ context.Context, raterID int64, target domain.RatingTarget) (domain.Rating, error) {
	for _, r := range t.st.ratings {
		if r.RaterID == raterID && r.Target == target {
			return r, nil
		}
	}
	return domain.Rating{}, domain.ErrNoRows
}

func (t *memTx) DeleteRating(_ context.Context, id int64) error {
	if _, ok := t.st.ratings[id]; !ok {
		return domain.ErrNoRows
	}
	delete(t.st.ratings, id)
	return nil
}

// compilations

func (t *memTx) CreateCompilation(_ context.Context, c domain.Compilation) (domain.Compilation, error) {
	for _, x := range t.st.comps {
		if x.Title == c.Title {
			return domain.Compilation{}, domain.ErrUniqueViolation
		}
	}
	c.ID = int32(t.st.next())
	t.st.comps[c.ID] = c
	return c, nil
}

func (t *memTx) UpdateCompilation(_ context.Context, c domain.Compilation) error {
	if _, ok := t.st.comps[c.ID]; !ok {
		return domain.ErrNoRows
	}
	for _, x := range t.st.comps {
		if x.ID != c.ID && x.Title == c.Title {
			return domain.ErrUniqueViolation
		}
	}
	t.st.comps[c.ID] = c
	return nil
}

func (t *memTx) DeleteCompilation(_ context.Context, id int32) error {
	if _, ok := t.st.comps[id]; !ok {
		return domain.ErrNoRows
	}
	delete(t.st.comps, id)
	return nil
}

func (t *memTx) GetCompilation(_ context.Context, id int32) (domain.Compilation, error) {
	c, ok := t.st.comps[id]
	if !ok {
		return domain.Compilation{}, domain.ErrNoRows
	}
	return c, nil
}

func (t *memTx) ListCompilations(_ context.Context, pinned *bool, from, size int) ([]domain.Compilation, error) {
	var out []domain.Compilation
	for _, c := range t.st.comps {
		if pinned == nil || c.Pinned == *pinned {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return page(out, from, size), nil
}

// outbox

func (t *memTx) InsertOutbox(_ context.Context, m domain.OutboxMessage) error {
	if t.hooks.outboxErr != nil {
		return t.hooks.outboxErr
	}
	t.st.outbox = append(t.st.outbox, m)
	return nil
}

func page[T any](in []T, from, size int) []T {
	if from >= len(in) {
		return []T{}
	}
	if size <= 0 || from+size > len(in) {
		return in[from:]
	}
	return in[from : from+size]
}

func containsInt64(xs []int64, v int64) bool {
	for _, x := range xs {
		if x == v {
			return true
		}
	}
	return false
}

// stats collector

type fakeStats struct {
	mu        sync.Mutex
	hits      []domain.Hit
	views     map[string]int64
	statsErr  error
	statsCall int
	// fromHits counts recorded hits instead of views, keeping only the first
	// hit of each ip across the whole query like the collector does.
	fromHits bool
}

func newFakeStats() *fakeStats { return &fakeStats{views: map[string]int64{}} }

func (f *fakeStats) Hit(_ context.Context, h domain.Hit) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.hits = append(f.hits, h)
	return nil
}

func (f *fakeStats) Stats(_ context.Context, _, _ time.Time, uris []string, _ bool) ([]domain.ViewStats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.statsCall++
	if f.statsErr != nil {
		return nil, f.statsErr
	}
	if f.fromHits {
		return f.countHits(uris), nil
	}
	var out []domain.ViewStats
	for _, u := range uris {
		if n, ok := f.views[u]; ok {
			out = append(out, domain.ViewStats{App: "ewm-main-service", URI: u, Hits: n})
		}
	}
	return out, nil
}

func (f *fakeStats) countHits(uris []string) []domain.ViewStats {
	seenIP := map[string]bool{}
	counts := map[string]int64{}
	for _, h := range f.hits {
		if !slices.Contains(uris, h.URI) || seenIP[h.IP] {
			continue
		}
		seenIP[h.IP] = true
		counts[h.URI]++
	}
	out := []domain.ViewStats{}
	for _, u := range uris {
		if n, ok := counts[u]; ok {
			out = append(out, domain.ViewStats{App: "ewm-main-service", URI: u, Hits: n})
		}
	}
	return out
}

type fakeCache struct {
	mu sync.Mutex
	m  map[int64]int64
}

func newFakeCache() *fakeCache { return &fakeCache{m: map[int64]int64{}} }

func (c *fakeCache) GetViews(_ context.Context, ids []int64) (map[int64]int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := map[int64]int64{}
	for _, id := range ids {
		if n, ok := c.m[id]; ok {
			out[id] = n
		}
	}
	return out, nil
}

func (c *fakeCache) SetViews(_ context.Context, views map[int64]int64, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for id, n := range views {
		c.m[id] = n
	}
	return nil
}
