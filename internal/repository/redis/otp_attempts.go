package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

type OTPAttemptRepository struct {
	client *redis.Client
}

func NewOTPAttemptRepository(client *redis.Client) *OTPAttemptRepository {
	return &OTPAttemptRepository{client: client}
}

// Increment bumps the counter under key and returns the new value. The expiry
// is set only when the key is created, so later attempts do not extend it.
func (r *OTPAttemptRepository) Increment(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	if ttl <= 0 {
		ttl = time.Second
	}

	var incr *redis.IntCmd
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, key)
		pipe.ExpireNX(ctx, key, ttl)
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to increment %s: %w", key, err)
	}

	return incr.Val(), nil
}
