package service

import (
	"context"
	"errors"
	"strings"

	"github.com/baechuer/explore-with-me/services/main-service/internal/domain"
)

// CompilationView is a compilation with its events resolved.
type CompilationView struct {
	domain.Compilation
	Events []domain.EventView
}

type CompilationService struct {
	store domain.Store
	views *ViewCounter
}

func NewCompilationService(store domain.Store, views *ViewCounter) *CompilationService {
	return &CompilationService{store: store, views: views}
}

func compilationNotFound() error {
	return domain.NotFound(domain.ReasonCompilationNotFound, "compilation not found")
}

func titleTaken() error {
	return domain.Conflict(domain.ReasonCompilationTaken, "compilation title is taken")
}

func (s *CompilationService) CreateCompilation(ctx context.Context, c domain.Compilation) (CompilationView, error) {
	c.Title = strings.TrimSpace(c.Title)
	if c.Title == "" {
		return CompilationView{}, domain.Invalid(domain.ReasonValidation, "title is required")
	}
	c.EventIDs = uniqueIDs(c.EventIDs)

	var out domain.Compilation
	err := s.store.WithTx(ctx, func(tx domain.Tx) error {
		if err := requireEvents(ctx, tx, c.EventIDs); err != nil {
			return err
		}
		created, err := tx.CreateCompilation(ctx, c)
		if errors.Is(err, domain.ErrUniqueViolation) {
			return titleTaken()
		}
		out = created
		return err
	})
	if err != nil {
		return CompilationView{}, err
	}
	return s.resolve(ctx, []domain.Compilation{out})
}

func (s *CompilationService) UpdateCompilation(ctx context.Context, id int32, p domain.CompilationPatch) (CompilationView, error) {
	var out domain.Compilation
	err := s.store.WithTx(ctx, func(tx domain.Tx) error {
		c, err := tx.GetCompilation(ctx, id)
		if err != nil {
			return notFoundAs(err, compilationNotFound())
		}
		if p.Title != nil {
			t := strings.TrimSpace(*p.Title)
			if t == "" {
				return domain.Invalid(domain.ReasonValidation, "title must be non-empty")
			}
			c.Title = t
		}
		if p.Pinned != nil {
			c.Pinned = *p.Pinned
		}
		if p.EventIDs != nil {
			c.EventIDs = uniqueIDs(*p.EventIDs)
			if err := requireEvents(ctx, tx, c.EventIDs); err != nil {
				return err
			}
		}
		err = tx.UpdateCompilation(ctx, c)
		if errors.Is(err, domain.ErrUniqueViolation) {
			return titleTaken()
		}
		out = c
		return err
	})
	if err != nil {
		return CompilationView{}, err
	}
	return s.resolve(ctx, []domain.Compilation{out})
}

func (s *CompilationService) DeleteCompilation(ctx context.Context, id int32) error {
	return notFoundAs(s.store.DeleteCompilation(ctx, id), compilationNotFound())
}

func (s *CompilationService) GetCompilation(ctx context.Context, id int32) (CompilationView, error) {
	c, err := s.store.GetCompilation(ctx, id)
	if err != nil {
		return CompilationView{}, notFoundAs(err, compilationNotFound())
	}
	return s.resolve(ctx, []domain.Compilation{c})
}

func (s *CompilationService) ListCompilations(ctx context.Context, pinned *bool, from, size int) ([]CompilationView, error) {
	from, size = clampPage(from, size)
	comps, err := s.store.ListCompilations(ctx, pinned, from, size)
	if err != nil {
		return nil, err
	}
	return s.resolveAll(ctx, comps)
}

func requireEvents(ctx context.Context, tx domain.Tx, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	found, err := tx.GetEventsByIDs(ctx, ids)
	if err != nil {
		return err
	}
	if len(found) != len(ids) {
		return eventNotFound()
	}
	return nil
}

func (s *CompilationService) resolve(ctx context.Context, comps []domain.Compilation) (CompilationView, error) {
	out, err := s.resolveAll(ctx, comps)
	if err != nil {
		return CompilationView{}, err
	}
	return out[0], nil
}

// resolveAll loads every referenced event once and annotates views in one stats call.
func (s *CompilationService) resolveAll(ctx context.Context, comps []domain.Compilation) ([]CompilationView, error) {
	var ids []int64
	for _, c := range comps {
		ids = append(ids, c.EventIDs...)
	}
	ids = uniqueIDs(ids)

	byID := map[int64]domain.EventView{}
	if len(ids) > 0 {
		events, err := s.store.GetEventsByIDs(ctx, ids)
		if err != nil {
			return nil, err
		}
		for _, v := range s.views.Annotate(ctx, events) {
			byID[v.ID] = v
		}
	}

	out := make([]CompilationView, 0, len(comps))
	for _, c := range comps {
		cv := CompilationView{Compilation: c, Events: []domain.EventView{}}
		for _, id := range c.EventIDs {
			if v, ok := byID[id]; ok {
				cv.Events = append(cv.Events, v)
			}
		}
		out = append(out, cv)
	}
	return out, nil
}
