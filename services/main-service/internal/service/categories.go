package service

import (
	"context"
	"errors"
	"strings"

	"github.com/baechuer/explore-with-me/services/main-service/internal/domain"
)

type CategoryService struct {
	store domain.Store
}

func NewCategoryService(store domain.Store) *CategoryService {
	return &CategoryService{store: store}
}

func (s *CategoryService) CreateCategory(ctx context.Context, name string) (domain.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.Category{}, domain.Invalid(domain.ReasonValidation, "name is required")
	}
	c, err := s.store.CreateCategory(ctx, name)
	if errors.Is(err, domain.ErrUniqueViolation) {
		return domain.Category{}, domain.Conflict(domain.ReasonCategoryNameTaken, "category name is taken")
	}
	return c, err
}

func (s *CategoryService) RenameCategory(ctx context.Context, id int32, name string) (domain.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.Category{}, domain.Invalid(domain.ReasonValidation, "name is required")
	}
	c, err := s.store.UpdateCategory(ctx, domain.Category{ID: id, Name: name})
	switch {
	case errors.Is(err, domain.ErrNoRows):
		return domain.Category{}, categoryNotFound()
	case errors.Is(err, domain.ErrUniqueViolation):
		return domain.Category{}, domain.Conflict(domain.ReasonCategoryNameTaken, "category name is taken")
	}
	return c, err
}

func (s *CategoryService) DeleteCategory(ctx context.Context, id int32) error {
	err := s.store.DeleteCategory(ctx, id)
	if errors.Is(err, domain.ErrFKViolation) {
		return domain.Conflict(domain.ReasonCategoryInUse, "category has events")
	}
	return notFoundAs(err, categoryNotFound())
}

func (s *CategoryService) GetCategory(ctx context.Context, id int32) (domain.Category, error) {
	c, err := s.store.GetCategory(ctx, id)
	if err != nil {
		return domain.Category{}, notFoundAs(err, categoryNotFound())
	}
	return c, nil
}

func (s *CategoryService) ListCategories(ctx context.Context, from, size int) ([]domain.Category, error) {
	from, size = clampPage(from, size)
	return s.store.ListCategories(ctx, from, size)
}
