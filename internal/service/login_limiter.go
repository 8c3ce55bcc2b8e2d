package service

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// LoginLimiter throttles login attempts per email over a fixed window,
// backed by Redis INCR/EXPIRE.
type LoginLimiter struct {
	client      *redis.Client
	maxAttempts int
	window      time.Duration
}

// NewLoginLimiter builds the limiter. A nil client disables limiting.
func NewLoginLimiter(client *redis.Client, maxAttempts int, window time.Duration) *LoginLimiter {
	if client == nil || maxAttempts <= 0 || window <= 0 {
		return nil
	}
	return &LoginLimiter{client: client, maxAttempts: maxAttempts, window: window}
}

// Allow records an attempt and reports whether the caller is under the
// limit for the current window.
func (l *LoginLimiter) Allow(ctx context.Context, email string) (bool, error) {
	key := "login_attempts:" + email

	count, err := l.client.Incr(ctx, key).Result()
	if err != nil {
		return true, err
	}
	if count == 1 {
		if err := l.client.Expire(ctx, key, l.window).Err(); err != nil {
			return true, err
		}
	}
	return count <= int64(l.maxAttempts), nil
}
