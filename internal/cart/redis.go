package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps session carts as JSON with a sliding TTL, so abandoned
// carts expire on their own.
type RedisStore struct {
	client  *redis.Client
	baseTTL time.Duration
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{
		client:  client,
		baseTTL: 4 * time.Hour,
	}
}

func redisKey(tenantID, sessionID string) string {
	return fmt.Sprintf("cart:%s:%s", tenantID, sessionID)
}

func (r *RedisStore) Get(ctx context.Context, tenantID, sessionID string) (*Cart, error) {
	data, err := r.client.Get(ctx, redisKey(tenantID, sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCartNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}

	var c Cart
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("unmarshal cart failed: %w", err)
	}
	return &c, nil
}

func (r *RedisStore) Save(ctx context.Context, c *Cart) error {
	data, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal cart failed: %w", err)
	}

	// Jitter spreads expirations of carts created in the same rush hour.
	ttl := r.baseTTL + time.Duration(rand.Intn(10))*time.Minute
	if err := r.client.Set(ctx, redisKey(c.TenantID, c.SessionID), data, ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (r *RedisStore) Delete(ctx context.Context, tenantID, sessionID string) error {
	if err := r.client.Del(ctx, redisKey(tenantID, sessionID)).Err(); err != nil {
		return fmt.Errorf("redis del failed: %w", err)
	}
	return nil
}
