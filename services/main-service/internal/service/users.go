package service

import (
	"context"
	"errors"
	"strings"

	"github.com/baechuer/explore-with-me/services/main-service/internal/domain"
)

type UserService struct {
	store domain.Store
}

func NewUserService(store domain.Store) *UserService {
	return &UserService{store: store}
}

func (s *UserService) CreateUser(ctx context.Context, name, email string) (domain.User, error) {
	name, email = strings.TrimSpace(name), strings.ToLower(strings.TrimSpace(email))
	if name == "" || email == "" {
		return domain.User{}, domain.Invalid(domain.ReasonValidation, "name and email are required")
	}
	u, err := s.store.CreateUser(ctx, domain.User{Name: name, Email: email})
	if errors.Is(err, domain.ErrUniqueViolation) {
		return domain.User{}, domain.Conflict(domain.ReasonUserEmailTaken, "email is already registered")
	}
	return u, err
}

// ListUsers returns the given users, or a page of all users when ids is empty.
func (s *UserService) ListUsers(ctx context.Context, ids []int64, from, size int) ([]domain.User, error) {
	from, size = clampPage(from, size)
	return s.store.ListUsers(ctx, ids, from, size)
}

func (s *UserService) DeleteUser(ctx context.Context, id int64) error {
	return notFoundAs(s.store.DeleteUser(ctx, id), userNotFound())
}
