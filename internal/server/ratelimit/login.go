// Package ratelimit throttles failed logins with a fixed-window counter
// kept in Redis.
package ratelimit

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrUnavailable indicates the Redis backend could not be reached.
var ErrUnavailable = errors.New("login limiter backend unavailable")

type Config struct {
	MaxAttempts int
	Window      time.Duration
}

// LoginLimiter counts failures per key. The window starts at the first
// failure and the counter disappears with it.
type LoginLimiter struct {
	redis  redis.UniversalClient
	config Config
}

func NewLoginLimiter(client redis.UniversalClient, cfg Config) *LoginLimiter {
	return &LoginLimiter{redis: client, config: cfg}
}

// key hashes the identifier so that emails are not stored in Redis.
func (l *LoginLimiter) key(id string) string {
	sum := sha256.Sum256([]byte(id))
	return "edu:login:" + hex.EncodeToString(sum[:16])
}

// Allowed reports whether another attempt may be made for id.
func (l *LoginLimiter) Allowed(ctx context.Context, id string) (bool, error) {
	count, err := l.redis.Get(ctx, l.key(id)).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return true, nil
		}
		return false, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return count < int64(l.config.MaxAttempts), nil
}

// Fail records one failed attempt for id. The counter is created with its
// TTL and incremented in a single MULTI/EXEC, so it can never outlive the
// window.
func (l *LoginLimiter) Fail(ctx context.Context, id string) error {
	k := l.key(id)
	_, err := l.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.SetNX(ctx, k, 0, l.config.Window)
		pipe.Incr(ctx, k)
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

// Reset clears the counter, typically after a successful login.
func (l *LoginLimiter) Reset(ctx context.Context, id string) error {
	if err := l.redis.Del(ctx, l.key(id)).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}
