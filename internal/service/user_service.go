package service

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/auth-service/internal/domain"
	"github.com/spec-kit/auth-service/internal/repository"
	apperrors "github.com/spec-kit/auth-service/pkg/util"
)

// UserService covers account listing and profile updates.
type UserService struct {
	users repository.UserRepository
}

// NewUserService builds the service.
func NewUserService(users repository.UserRepository) *UserService {
	return &UserService{users: users}
}

// ListUsers returns one page of accounts plus the total count.
func (s *UserService) ListUsers(ctx context.Context, page, limit int) ([]*domain.User, int64, error) {
	users, err := s.users.List(ctx, page, limit)
	if err != nil {
		return nil, 0, apperrors.NewInternalError(err)
	}
	total, err := s.users.Count(ctx)
	if err != nil {
		return nil, 0, apperrors.NewInternalError(err)
	}
	return users, total, nil
}

// UpdateName changes the caller's display name.
func (s *UserService) UpdateName(ctx context.Context, userID, name string) (*domain.User, error) {
	user, err := s.users.UpdateName(ctx, userID, name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewUnauthorized(apperrors.MsgUserNoLongerExists)
		}
		return nil, apperrors.NewInternalError(err)
	}
	return user, nil
}

// UpdateRole persists a new role for the caller's account.
func (s *UserService) UpdateRole(ctx context.Context, userID string, role domain.UserRole) (*domain.User, error) {
	if !role.Valid() {
		return nil, apperrors.NewBadRequest("Invalid role")
	}
	user, err := s.users.UpdateRole(ctx, userID, role)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewUnauthorized(apperrors.MsgUserNoLongerExists)
		}
		return nil, apperrors.NewInternalError(err)
	}
	return user, nil
}
