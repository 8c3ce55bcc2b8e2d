// Package testutil provides in-memory repository implementations for tests.
package testutil

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/auth-service/internal/domain"
	"github.com/spec-kit/auth-service/internal/repository"
)

// MemoryUserRepository implements repository.UserRepository over a map.
type MemoryUserRepository struct {
	mu    sync.Mutex
	users map[string]*domain.User
}

// NewMemoryUserRepository builds an empty store.
func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{users: make(map[string]*domain.User)}
}

func (r *MemoryUserRepository) Create(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if existing.Email == user.Email {
			return &duplicateKeyError{}
		}
	}
	user.ID = uuid.NewString()
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	clone := *user
	r.users[user.ID] = &clone
	return nil
}

func (r *MemoryUserRepository) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *user
	return &clone, nil
}

func (r *MemoryUserRepository) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if user.Email == email {
			clone := *user
			return &clone, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *MemoryUserRepository) List(_ context.Context, page, limit int) ([]*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	all := make([]*domain.User, 0, len(r.users))
	for _, user := range r.users {
		clone := *user
		all = append(all, &clone)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })

	start := (page - 1) * limit
	if start >= len(all) {
		return nil, nil
	}
	end := start + limit
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], nil
}

func (r *MemoryUserRepository) Count(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.users)), nil
}

func (r *MemoryUserRepository) UpdateName(ctx context.Context, id, name string) (*domain.User, error) {
	return r.mutate(id, func(user *domain.User) { user.Name = name })
}

func (r *MemoryUserRepository) UpdateRole(ctx context.Context, id string, role domain.UserRole) (*domain.User, error) {
	return r.mutate(id, func(user *domain.User) { user.Role = role })
}

func (r *MemoryUserRepository) UpdatePassword(_ context.Context, id, passwordHash string) error {
	_, err := r.mutate(id, func(user *domain.User) { user.PasswordHash = passwordHash })
	return err
}

func (r *MemoryUserRepository) MarkVerified(_ context.Context, id string) error {
	_, err := r.mutate(id, func(user *domain.User) { user.Verified = true })
	return err
}

// Delete removes a user, simulating account deletion behind a live token.
func (r *MemoryUserRepository) Delete(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.users, id)
}

func (r *MemoryUserRepository) mutate(id string, fn func(*domain.User)) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	fn(user)
	user.UpdatedAt = time.Now()
	clone := *user
	return &clone, nil
}

type duplicateKeyError struct{}

func (*duplicateKeyError) Error() string { return "duplicate key value violates unique constraint" }

// MemoryActionTokenRepository implements repository.ActionTokenRepository.
type MemoryActionTokenRepository struct {
	mu     sync.Mutex
	tokens map[string]*repository.ActionToken
}

// NewMemoryActionTokenRepository builds an empty store.
func NewMemoryActionTokenRepository() *MemoryActionTokenRepository {
	return &MemoryActionTokenRepository{tokens: make(map[string]*repository.ActionToken)}
}

func (r *MemoryActionTokenRepository) Create(_ context.Context, token *repository.ActionToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	token.ID = uuid.NewString()
	token.CreatedAt = time.Now()
	clone := *token
	r.tokens[token.ID] = &clone
	return nil
}

func (r *MemoryActionTokenRepository) GetByToken(_ context.Context, tokenStr string, purpose repository.TokenPurpose) (*repository.ActionToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, token := range r.tokens {
		if token.Token == tokenStr && token.Purpose == purpose {
			clone := *token
			return &clone, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *MemoryActionTokenRepository) MarkUsed(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	token, ok := r.tokens[id]
	if !ok {
		return pgx.ErrNoRows
	}
	now := time.Now()
	token.UsedAt = &now
	return nil
}

// LastTokenFor returns the newest stored token for a user and purpose.
// Tests use it in place of reading the emailed link.
func (r *MemoryActionTokenRepository) LastTokenFor(userID string, purpose repository.TokenPurpose) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var newest *repository.ActionToken
	for _, token := range r.tokens {
		if token.UserID != userID || token.Purpose != purpose {
			continue
		}
		if newest == nil || token.CreatedAt.After(newest.CreatedAt) {
			newest = token
		}
	}
	if newest == nil {
		return "", false
	}
	return newest.Token, true
}
