package domain

import (
	"context"
	"time"
)

// Repositories return ErrNoRows for a missing row and ErrUniqueViolation for a
// duplicate key. Services turn both into AppErrors.

type UserStore interface {
	CreateUser(ctx context.Context, u User) (User, error)
	GetUser(ctx context.Context, id int64) (User, error)
	ListUsers(ctx context.Context, ids []int64, from, size int) ([]User, error)
	DeleteUser(ctx context.Context, id int64) error
	AdjustUserRating(ctx context.Context, id int64, delta int) error
}

type CategoryStore interface {
	CreateCategory(ctx context.Context, name string) (Category, error)
	UpdateCategory(ctx context.Context, c Category) (Category, error)
	DeleteCategory(ctx context.Context, id int32) error
	GetCategory(ctx context.Context, id int32) (Category, error)
	ListCategories(ctx context.Context, from, size int) ([]Category, error)
}

type EventStore interface {
	CreateEvent(ctx context.Context, e Event) (Event, error)
	GetEvent(ctx context.Context, id int64) (Event, error)
	// GetEventForUpdate locks the event row until the surrounding tx ends.
	// Every read-decide-write on confirmedRequests goes through it.
	GetEventForUpdate(ctx context.Context, id int64) (Event, error)
	UpdateEvent(ctx context.Context, e Event) error
	AddConfirmed(ctx context.Context, eventID int64, delta int) error
	AdjustEventRating(ctx context.Context, eventID int64, delta int) error
	ListEventsByInitiator(ctx context.Context, initiatorID int64, from, size int) ([]Event, error)
	// SearchEvents applies f; Size <= 0 means no limit.
	SearchEvents(ctx context.Context, f EventFilter) ([]Event, error)
	GetEventsByIDs(ctx context.Context, ids []int64) ([]Event, error)
}

type RequestStore interface {
	CreateRequest(ctx context.Context, r Request) (Request, error)
	GetRequest(ctx context.Context, id int64) (Request, error)
	// GetRequestsForUpdate returns the subset of ids that exist, locked.
	GetRequestsForUpdate(ctx context.Context, ids []int64) ([]Request, error)
	UpdateRequestStatus(ctx context.Context, ids []int64, status RequestStatus) error
	HasActiveRequest(ctx context.Context, requesterID, eventID int64) (bool, error)
	HasConfirmedRequest(ctx context.Context, requesterID, eventID int64) (bool, error)
	HasConfirmedRequestForInitiator(ctx context.Context, requesterID, initiatorID int64) (bool, error)
	ListRequestsByRequester(ctx context.Context, requesterID int64) ([]Request, error)
	// ListRequestsByEvent filters by status when status is non-empty.
	ListRequestsByEvent(ctx context.Context, eventID int64, status RequestStatus) ([]Request, error)
}

type RatingStore interface {
	CreateRating(ctx context.Context, r Rating) (Rating, error)
	GetRating(ctx context.Context, raterID int64, target RatingTarget) (Rating, error)
	DeleteRating(ctx context.Context, id int64) error
}

type CompilationStore interface {
	CreateCompilation(ctx context.Context, c Compilation) (Compilation, error)
	UpdateCompilation(ctx context.Context, c Compilation) error
	DeleteCompilation(ctx context.Context, id int32) error
	GetCompilation(ctx context.Context, id int32) (Compilation, error)
	ListCompilations(ctx context.Context, pinned *bool, from, size int) ([]Compilation, error)
}

type OutboxStore interface {
	InsertOutbox(ctx context.Context, m OutboxMessage) error
}

// Tx is the unit of work: everything done through one Tx commits or rolls back together.
type Tx interface {
	UserStore
	CategoryStore
	EventStore
	RequestStore
	RatingStore
	CompilationStore
	OutboxStore
}

type Store interface {
	Tx
	WithTx(ctx context.Context, fn func(tx Tx) error) error
}

// Hit is one visit record sent to the statistics collector.
type Hit struct {
	App       string
	URI       string
	IP        string
	Timestamp time.Time
}

type ViewStats struct {
	App  string
	URI  string
	Hits int64
}

// StatsClient is the external statistics collector.
type StatsClient interface {
	Hit(ctx context.Context, h Hit) error
	Stats(ctx context.Context, start, end time.Time, uris []string, unique bool) ([]ViewStats, error)
}

// ViewsCache holds recently fetched view counts keyed by event id.
type ViewsCache interface {
	GetViews(ctx context.Context, eventIDs []int64) (map[int64]int64, error)
	SetViews(ctx context.Context, views map[int64]int64, ttl time.Duration) error
}

type CacheRepository interface {
	ViewsCache
	AllowRequest(ctx context.Context, ip string, limit int, window time.Duration) (bool, error)
}
