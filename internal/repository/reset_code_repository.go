package repository

import (
	"context"
	"crypto/subtle"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// ResetCodeRepository stores short-lived password reset codes. Codes expire
// via key TTL and are single-use.
type ResetCodeRepository interface {
	Store(ctx context.Context, email, code string, ttl time.Duration) error
	Verify(ctx context.Context, email, code string) (bool, error)
	Invalidate(ctx context.Context, email string) error
}

type resetCodeRepository struct {
	client *redis.Client
}

// NewResetCodeRepository returns a Redis-backed implementation.
func NewResetCodeRepository(client *redis.Client) ResetCodeRepository {
	return &resetCodeRepository{client: client}
}

func resetKey(email string) string {
	return "pwreset:" + email
}

func (r *resetCodeRepository) Store(ctx context.Context, email, code string, ttl time.Duration) error {
	if r.client == nil {
		return errors.New("redis client not configured")
	}
	return r.client.Set(ctx, resetKey(email), code, ttl).Err()
}

func (r *resetCodeRepository) Verify(ctx context.Context, email, code string) (bool, error) {
	if r.client == nil {
		return false, errors.New("redis client not configured")
	}
	stored, err := r.client.Get(ctx, resetKey(email)).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return subtle.ConstantTimeCompare([]byte(stored), []byte(code)) == 1, nil
}

func (r *resetCodeRepository) Invalidate(ctx context.Context, email string) error {
	if r.client == nil {
		return errors.New("redis client not configured")
	}
	return r.client.Del(ctx, resetKey(email)).Err()
}
