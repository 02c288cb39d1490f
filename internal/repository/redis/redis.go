package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"spiceMarket/domain"

	"github.com/redis/go-redis/v9"
)

type CartRepository struct {
	client *redis.Client
	ttl    time.Duration
}

func NewCartRepository(client *redis.Client, ttl time.Duration) *CartRepository {
	return &CartRepository{
		client: client,
		ttl:    ttl,
	}
}

func cartKey(cartID string) string {
	return fmt.Sprintf("cart:%s", cartID)
}

// Load returns the stored cart, or an empty one when the key is missing or expired.
func (r *CartRepository) Load(ctx context.Context, cartID string) (*domain.Cart, error) {
	val, err := r.client.Get(ctx, cartKey(cartID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domain.NewCart(cartID), nil
		}
		return nil, fmt.Errorf("failed to get cart from redis: %w", err)
	}

	cart := domain.NewCart(cartID)
	if err := json.Unmarshal(val, cart); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cart: %w", err)
	}
	cart.ID = cartID

	return cart, nil
}

// Save writes the whole cart and refreshes its TTL.
func (r *CartRepository) Save(ctx context.Context, cart *domain.Cart) error {
	jsonData, err := json.Marshal(cart)
	if err != nil {
		return fmt.Errorf("failed to marshal cart: %w", err)
	}

	if err := r.client.Set(ctx, cartKey(cart.ID), jsonData, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to store cart in redis: %w", err)
	}

	return nil
}

func (r *CartRepository) Delete(ctx context.Context, cartID string) error {
	if err := r.client.Del(ctx, cartKey(cartID)).Err(); err != nil {
		return fmt.Errorf("failed to delete cart: %w", err)
	}

	return nil
}
