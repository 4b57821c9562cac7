package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrMiss is returned when no cached value exists for a key.
var ErrMiss = errors.New("cache miss")

// ListCache caches serialized list pages keyed by entity and query
// signature. Invalidation is wholesale per entity: any write to an
// entity drops every cached page for it.
type ListCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewListCache(addr, password string, db int, ttl time.Duration) (*ListCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed connecting to redis: %w", err)
	}

	return &ListCache{client: client, ttl: ttl}, nil
}

func (c *ListCache) Close() error {
	return c.client.Close()
}

func key(entity, signature string) string {
	return fmt.Sprintf("list:%s:%s", entity, signature)
}

// Get unmarshals the cached page for entity+signature into dest.
// Returns ErrMiss when nothing is cached.
func (c *ListCache) Get(ctx context.Context, entity, signature string, dest interface{}) error {
	raw, err := c.client.Get(ctx, key(entity, signature)).Bytes()
	if errors.Is(err, redis.Nil) {
		return ErrMiss
	}
	if err != nil {
		return fmt.Errorf("failed reading cache: %w", err)
	}
	return json.Unmarshal(raw, dest)
}

// Set stores a list page under entity+signature with the configured TTL.
func (c *ListCache) Set(ctx context.Context, entity, signature string, value interface{}) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed marshaling cache value: %w", err)
	}
	return c.client.Set(ctx, key(entity, signature), raw, c.ttl).Err()
}

// InvalidateEntity deletes every cached page for the entity.
// Uses SCAN rather than KEYS so the server is not blocked.
func (c *ListCache) InvalidateEntity(ctx context.Context, entity string) error {
	pattern := fmt.Sprintf("list:%s:*", entity)
	var cursor uint64
	for {
		keys, next, err := c.client.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			return fmt.Errorf("failed scanning cache keys: %w", err)
		}
		if len(keys) > 0 {
			if err := c.client.Del(ctx, keys...).Err(); err != nil {
				return fmt.Errorf("failed deleting cache keys: %w", err)
			}
		}
		cursor = next
		if cursor == 0 {
			return nil
		}
	}
}
