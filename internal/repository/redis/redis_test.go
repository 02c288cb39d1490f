//go:build integration

package redis

import (
	"context"
	"os"
	"testing"
	"time"

	"spiceMarket/domain"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T) *redis.Client {
	t.Helper()

	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}

	client := redis.NewClient(&redis.Options{Addr: addr})
	require.NoError(t, client.Ping(context.Background()).Err())
	t.Cleanup(func() { _ = client.Close() })

	return client
}

func newTestRepo(t *testing.T) *CartRepository {
	t.Helper()
	return NewCartRepository(newTestClient(t), time.Minute)
}

func TestCartRepository_RoundTrip(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	id := uuid.NewString()

	empty, err := repo.Load(ctx, id)
	require.NoError(t, err)
	assert.Empty(t, empty.Items)

	cart := domain.NewCart(id)
	cart.Add(1, "250g", 2)
	cart.Add(1, "500g", 1)
	require.NoError(t, repo.Save(ctx, cart))

	loaded, err := repo.Load(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 2, loaded.Quantity(1, "250g"))
	assert.Equal(t, 1, loaded.Quantity(1, "500g"))

	ttl, err := repo.client.TTL(ctx, cartKey(id)).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))

	require.NoError(t, repo.Delete(ctx, id))
	loaded, err = repo.Load(ctx, id)
	require.NoError(t, err)
	assert.Empty(t, loaded.Items)
}

func TestOTPAttemptRepository_Increment(t *testing.T) {
	client := newTestClient(t)
	repo := NewOTPAttemptRepository(client)
	ctx := context.Background()
	key := "otp_attempts:" + uuid.NewString()
	t.Cleanup(func() { client.Del(ctx, key) })

	for want := int64(1); want <= 3; want++ {
		got, err := repo.Increment(ctx, key, time.Minute)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	ttl, err := client.TTL(ctx, key).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))
	assert.LessOrEqual(t, ttl, time.Minute)

	// A longer ttl on a later attempt must not push the expiry out.
	_, err = repo.Increment(ctx, key, time.Hour)
	require.NoError(t, err)
	ttl, err = client.TTL(ctx, key).Result()
	require.NoError(t, err)
	assert.LessOrEqual(t, ttl, time.Minute)
}
