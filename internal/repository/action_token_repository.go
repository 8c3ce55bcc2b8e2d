package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// TokenPurpose distinguishes one-time token flows.
type TokenPurpose string

const (
	PurposeEmailVerification TokenPurpose = "email_verification"
	PurposePasswordReset     TokenPurpose = "password_reset"
)

// ActionToken represents a stored one-time token for email verification or
// password reset.
type ActionToken struct {
	ID        string
	UserID    string
	Purpose   TokenPurpose
	Token     string
	ExpiresAt time.Time
	UsedAt    *time.Time
	CreatedAt time.Time
}

// ActionTokenRepository manages one-time token persistence.
type ActionTokenRepository interface {
	Create(ctx context.Context, token *ActionToken) error
	GetByToken(ctx context.Context, token string, purpose TokenPurpose) (*ActionToken, error)
	MarkUsed(ctx context.Context, id string) error
}

type actionTokenRepository struct {
	pool *pgxpool.Pool
}

// NewActionTokenRepository constructs repository.
func NewActionTokenRepository(pool *pgxpool.Pool) ActionTokenRepository {
	return &actionTokenRepository{pool: pool}
}

func (r *actionTokenRepository) Create(ctx context.Context, token *ActionToken) error {
	const query = `
        INSERT INTO action_tokens (user_id, purpose, token, expires_at)
        VALUES ($1,$2,$3,$4)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		token.UserID,
		token.Purpose,
		token.Token,
		token.ExpiresAt,
	).Scan(&token.ID, &token.CreatedAt)
}

func (r *actionTokenRepository) GetByToken(ctx context.Context, tokenStr string, purpose TokenPurpose) (*ActionToken, error) {
	const query = `
        SELECT id, user_id, purpose, token, expires_at, used_at, created_at
        FROM action_tokens WHERE token=$1 AND purpose=$2`
	var token ActionToken
	if err := r.pool.QueryRow(ctx, query, tokenStr, purpose).Scan(
		&token.ID,
		&token.UserID,
		&token.Purpose,
		&token.Token,
		&token.ExpiresAt,
		&token.UsedAt,
		&token.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &token, nil
}

func (r *actionTokenRepository) MarkUsed(ctx context.Context, id string) error {
	const query = `
        UPDATE action_tokens SET used_at=NOW()
        WHERE id=$1`
	_, err := r.pool.Exec(ctx, query, id)
	return err
}
