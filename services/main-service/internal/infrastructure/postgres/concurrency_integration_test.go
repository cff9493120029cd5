//go:build integration
// +build integration

package postgres_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/baechuer/explore-with-me/services/main-service/internal/domain"
	"github.com/baechuer/explore-with-me/services/main-service/internal/service"
	"github.com/stretchr/testify/require"
)

func TestConcurrentAdmission_DoesNotOversellLimit(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	repo, pool := setupRepo(t)
	const limit = 5
	s := seed(t, repo, limit, false)
	svc := service.NewRequestService(repo, nil)

	n := 40
	users := make([]int64, n)
	for i := range users {
		u, err := repo.CreateUser(ctx, domain.User{Name: "u", Email: fmt.Sprintf("u%d@example.com", i)})
		require.NoError(t, err)
		users[i] = u.ID
	}

	var (
		wg    sync.WaitGroup
		mu    sync.Mutex
		ok    int
		other []error
	)
	for _, u := range users {
		wg.Add(1)
		go func(u int64) {
			defer wg.Done()
			_, err := svc.AddParticipationRequest(ctx, u, s.event.ID)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				ok++
			case domain.ReasonOf(err) == domain.ReasonEventFull:
			default:
				other = append(other, err)
			}
		}(u)
	}
	wg.Wait()

	require.Empty(t, other)
	require.Equal(t, limit, ok)

	ev, err := repo.GetEvent(ctx, s.event.ID)
	require.NoError(t, err)
	require.Equal(t, limit, ev.ConfirmedRequests)

	var rows int
	require.NoError(t, pool.QueryRow(ctx, `
		SELECT count(*) FROM participation_requests WHERE event_id = $1 AND status = 'CONFIRMED'
	`, s.event.ID).Scan(&rows))
	require.Equal(t, limit, rows)

	var outbox int
	require.NoError(t, pool.QueryRow(ctx, `SELECT count(*) FROM outbox WHERE routing_key = 'request.created'`).Scan(&outbox))
	require.Equal(t, limit, outbox)
}

func TestConcurrentAdmission_SameUserOneActiveRequest(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	repo, pool := setupRepo(t)
	s := seed(t, repo, 0, true)
	svc := service.NewRequestService(repo, nil)

	n := 20
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.AddParticipationRequest(ctx, s.alice, s.event.ID)
			if err != nil && domain.ReasonOf(err) != domain.ReasonRequestDuplicate {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	var rows int
	require.NoError(t, pool.QueryRow(ctx, `
		SELECT count(*) FROM participation_requests WHERE event_id = $1 AND requester_id = $2
	`, s.event.ID, s.alice).Scan(&rows))
	require.Equal(t, 1, rows)
}

func TestConcurrentRatings_ScoreMatchesLedger(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	repo, _ := setupRepo(t)
	s := seed(t, repo, 0, false)
	requests := service.NewRequestService(repo, nil)
	ratings := service.NewRatingService(repo, nil)

	n := 15
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		u, err := repo.CreateUser(ctx, domain.User{Name: "r", Email: fmt.Sprintf("r%d@example.com", i)})
		require.NoError(t, err)
		_, err = requests.AddParticipationRequest(ctx, u.ID, s.event.ID)
		require.NoError(t, err)

		wg.Add(1)
		go func(rater int64, like bool) {
			defer wg.Done()
			action := domain.RatingDislike
			if like {
				action = domain.RatingLike
			}
			_, _ = ratings.AddEventRating(ctx, rater, s.event.ID, action)
		}(u.ID, i%3 != 0)
	}
	wg.Wait()

	ev, err := repo.GetEvent(ctx, s.event.ID)
	require.NoError(t, err)
	// 10 likes, 5 dislikes
	require.Equal(t, 5, ev.Rating)
}
