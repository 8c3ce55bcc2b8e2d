package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"

	"github.com/spec-kit/auth-service/internal/auth"
	"github.com/spec-kit/auth-service/internal/config"
	"github.com/spec-kit/auth-service/internal/domain"
	"github.com/spec-kit/auth-service/internal/events"
	"github.com/spec-kit/auth-service/internal/repository"
	apperrors "github.com/spec-kit/auth-service/pkg/util"
)

const uniqueViolationCode = "23505"

// AuthService coordinates registration, login and the password flows.
type AuthService struct {
	users      repository.UserRepository
	tokens     repository.ActionTokenRepository
	hasher     *auth.PasswordHasher
	tokenMgr   *auth.TokenManager
	dispatcher events.Dispatcher
	limiter    *LoginLimiter
	logger     *zap.Logger
	actionTTL  time.Duration
}

// AuthDependencies encapsulates requirements for the auth service.
type AuthDependencies struct {
	UserRepo        repository.UserRepository
	ActionTokenRepo repository.ActionTokenRepository
	Hasher          *auth.PasswordHasher
	TokenManager    *auth.TokenManager
	Dispatcher      events.Dispatcher
	Limiter         *LoginLimiter
	Logger          *zap.Logger
}

// NewAuthService builds the service.
func NewAuthService(cfg config.AuthConfig, deps AuthDependencies) *AuthService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		users:      deps.UserRepo,
		tokens:     deps.ActionTokenRepo,
		hasher:     deps.Hasher,
		tokenMgr:   deps.TokenManager,
		dispatcher: deps.Dispatcher,
		limiter:    deps.Limiter,
		logger:     logger,
		actionTTL:  cfg.ActionTokenTTL(),
	}
}

// Register creates a new account with role "user" and a pending email
// verification. No bearer token is issued at registration.
func (s *AuthService) Register(ctx context.Context, name, email, password string) (*domain.User, error) {
	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, apperrors.NewConflict(apperrors.MsgEmailExists)
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.NewInternalError(err)
	}

	hash, err := s.hasher.Hash(ctx, password)
	if err != nil {
		s.logger.Error("password hashing failed", zap.Error(err))
		return nil, apperrors.NewInternalError(err)
	}

	user := &domain.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         domain.RoleUser,
		Verified:     false,
	}
	if err := s.users.Create(ctx, user); err != nil {
		// The unique index on email is the authority; a concurrent
		// registration can slip past the lookup above.
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
			return nil, apperrors.NewConflict(apperrors.MsgEmailExists)
		}
		return nil, apperrors.NewInternalError(err)
	}

	verification := &repository.ActionToken{
		UserID:    user.ID,
		Purpose:   repository.PurposeEmailVerification,
		Token:     uuid.NewString(),
		ExpiresAt: time.Now().Add(s.actionTTL),
	}
	if err := s.tokens.Create(ctx, verification); err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	s.publish(ctx, events.EventUserRegistered, user.ID, events.UserRegisteredPayload{
		Name:              user.Name,
		Email:             user.Email,
		VerificationToken: verification.Token,
	})
	return user, nil
}

// Login authenticates by email and password and issues a bearer token.
// Absent accounts and wrong passwords produce the same error so callers
// cannot probe which emails are registered.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, error) {
	if s.limiter != nil {
		allowed, err := s.limiter.Allow(ctx, email)
		if err != nil {
			s.logger.Warn("login limiter unavailable", zap.Error(err))
		} else if !allowed {
			return "", apperrors.NewTooManyRequests("Too many login attempts")
		}
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", apperrors.NewUnauthorized(apperrors.MsgWrongCredentials)
		}
		return "", apperrors.NewInternalError(err)
	}

	match, err := s.hasher.Verify(ctx, password, user.PasswordHash)
	if err != nil {
		s.logger.Error("password verification failed", zap.Error(err))
		return "", apperrors.NewInternalError(err)
	}
	if !match {
		return "", apperrors.NewUnauthorized(apperrors.MsgWrongCredentials)
	}

	token, _, err := s.tokenMgr.Generate(user.ID, user.Email)
	if err != nil {
		return "", apperrors.NewInternalError(err)
	}
	return token, nil
}

// VerifyEmail consumes a one-time verification token and marks the account
// verified.
func (s *AuthService) VerifyEmail(ctx context.Context, tokenStr string) error {
	token, err := s.consumableToken(ctx, tokenStr, repository.PurposeEmailVerification)
	if err != nil {
		return err
	}

	user, err := s.users.GetByID(ctx, token.UserID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewUnauthorized(apperrors.MsgUserNoLongerExists)
		}
		return apperrors.NewInternalError(err)
	}

	if err := s.users.MarkVerified(ctx, user.ID); err != nil {
		return apperrors.NewInternalError(err)
	}
	if err := s.tokens.MarkUsed(ctx, token.ID); err != nil {
		return apperrors.NewInternalError(err)
	}

	s.publish(ctx, events.EventEmailVerified, user.ID, events.EmailVerifiedPayload{
		Name:  user.Name,
		Email: user.Email,
	})
	return nil
}

// ForgotPassword creates a reset token for the account, if one exists. The
// caller gets no signal either way; only registered emails receive a token.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			s.logger.Debug("password reset requested for unknown email")
			return nil
		}
		return apperrors.NewInternalError(err)
	}

	reset := &repository.ActionToken{
		UserID:    user.ID,
		Purpose:   repository.PurposePasswordReset,
		Token:     uuid.NewString(),
		ExpiresAt: time.Now().Add(s.actionTTL),
	}
	if err := s.tokens.Create(ctx, reset); err != nil {
		return apperrors.NewInternalError(err)
	}

	s.publish(ctx, events.EventPasswordResetRequested, user.ID, events.PasswordResetRequestedPayload{
		Name:       user.Name,
		Email:      user.Email,
		ResetToken: reset.Token,
	})
	return nil
}

// ResetPassword consumes a reset token and stores the new password hash.
func (s *AuthService) ResetPassword(ctx context.Context, tokenStr, newPassword string) error {
	token, err := s.consumableToken(ctx, tokenStr, repository.PurposePasswordReset)
	if err != nil {
		return err
	}

	hash, err := s.hasher.Hash(ctx, newPassword)
	if err != nil {
		s.logger.Error("password hashing failed", zap.Error(err))
		return apperrors.NewInternalError(err)
	}

	if err := s.users.UpdatePassword(ctx, token.UserID, hash); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewUnauthorized(apperrors.MsgUserNoLongerExists)
		}
		return apperrors.NewInternalError(err)
	}
	if err := s.tokens.MarkUsed(ctx, token.ID); err != nil {
		return apperrors.NewInternalError(err)
	}

	s.publish(ctx, events.EventPasswordChanged, token.UserID, events.PasswordChangedPayload{})
	return nil
}

// ChangePassword re-verifies the caller's current password before storing a
// new hash. The bearer token alone is not enough to rotate a password.
func (s *AuthService) ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewUnauthorized(apperrors.MsgInvalidToken)
		}
		return apperrors.NewInternalError(err)
	}

	match, err := s.hasher.Verify(ctx, oldPassword, user.PasswordHash)
	if err != nil {
		s.logger.Error("password verification failed", zap.Error(err))
		return apperrors.NewInternalError(err)
	}
	if !match {
		return apperrors.NewBadRequest("Old password is incorrect")
	}

	hash, err := s.hasher.Hash(ctx, newPassword)
	if err != nil {
		s.logger.Error("password hashing failed", zap.Error(err))
		return apperrors.NewInternalError(err)
	}
	if err := s.users.UpdatePassword(ctx, user.ID, hash); err != nil {
		return apperrors.NewInternalError(err)
	}

	s.publish(ctx, events.EventPasswordChanged, user.ID, events.PasswordChangedPayload{Email: user.Email})
	return nil
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}

func (s *AuthService) consumableToken(ctx context.Context, tokenStr string, purpose repository.TokenPurpose) (*repository.ActionToken, error) {
	token, err := s.tokens.GetByToken(ctx, tokenStr, purpose)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewUnauthorized(apperrors.MsgInvalidToken)
		}
		return nil, apperrors.NewInternalError(err)
	}
	if token.UsedAt != nil || time.Now().After(token.ExpiresAt) {
		return nil, apperrors.NewUnauthorized(apperrors.MsgInvalidToken)
	}
	return token, nil
}

func (s *AuthService) publish(ctx context.Context, eventType events.EventType, userID string, payload interface{}) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		UserID:    userID,
		Timestamp: time.Now(),
		Payload:   payload,
	})
}
