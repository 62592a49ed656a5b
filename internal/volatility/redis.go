package volatility

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis set keys.
const (
	highKey    = "volatility:high"
	extremeKey = "volatility:extreme"
)

// RedisRegistry is a Registry backed by Redis sets so classifications
// survive agent restarts.
type RedisRegistry struct {
	client *redis.Client
}

// NewRedisRegistry connects to Redis and verifies connectivity.
func NewRedisRegistry(ctx context.Context, addr, password string, db int) (*RedisRegistry, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		MaxRetries:   3,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return &RedisRegistry{client: client}, nil
}

var _ Registry = (*RedisRegistry)(nil)

// Seed adds initial classifications without overwriting existing ones.
func (r *RedisRegistry) Seed(ctx context.Context, high, extreme []string) error {
	if len(high) > 0 {
		if err := r.client.SAdd(ctx, highKey, toAnySlice(high)...).Err(); err != nil {
			return fmt.Errorf("seed high: %w", err)
		}
	}
	if len(extreme) > 0 {
		if err := r.client.SAdd(ctx, extremeKey, toAnySlice(extreme)...).Err(); err != nil {
			return fmt.Errorf("seed extreme: %w", err)
		}
	}
	return nil
}

func (r *RedisRegistry) IsHigh(ctx context.Context, token string) (bool, error) {
	extreme, err := r.IsExtreme(ctx, token)
	if err != nil {
		return false, err
	}
	if extreme {
		return true, nil
	}

	high, err := r.client.SIsMember(ctx, highKey, token).Result()
	if err != nil {
		return false, fmt.Errorf("check high: %w", err)
	}
	return high, nil
}

func (r *RedisRegistry) IsExtreme(ctx context.Context, token string) (bool, error) {
	extreme, err := r.client.SIsMember(ctx, extremeKey, token).Result()
	if err != nil {
		return false, fmt.Errorf("check extreme: %w", err)
	}
	return extreme, nil
}

func (r *RedisRegistry) MarkHigh(ctx context.Context, token string) error {
	if err := r.client.SAdd(ctx, highKey, token).Err(); err != nil {
		return fmt.Errorf("mark high: %w", err)
	}
	return nil
}

func (r *RedisRegistry) MarkExtreme(ctx context.Context, token string) error {
	if err := r.client.SAdd(ctx, extremeKey, token).Err(); err != nil {
		return fmt.Errorf("mark extreme: %w", err)
	}
	return nil
}

// Close releases the underlying connection pool.
func (r *RedisRegistry) Close() error {
	return r.client.Close()
}

func toAnySlice(items []string) []interface{} {
	out := make([]interface{}, len(items))
	for i, item := range items {
		out[i] = item
	}
	return out
}
