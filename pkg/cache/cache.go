// Package cache is a thin JSON cache over Redis.
//
// A nil *Redis (or one whose connection failed) behaves as an always-miss
// cache, so callers never need to special-case a missing Redis.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/shashiranjanraj/stockpile/pkg/metrics"
)

// Redis wraps a go-redis client.
type Redis struct {
	rdb *redis.Client
}

// Connect builds a client for addr and verifies it with a ping.
func Connect(ctx context.Context, addr, password string) (*Redis, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       0,
	})

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("cache: redis ping: %w", err)
	}
	return &Redis{rdb: rdb}, nil
}

// New wraps an existing client.
func New(rdb *redis.Client) *Redis {
	return &Redis{rdb: rdb}
}

// Get unmarshals the value at key into dest.
// Returns true on a hit, false on miss or error.
func (c *Redis) Get(ctx context.Context, key string, dest interface{}) bool {
	if c == nil || c.rdb == nil {
		return false
	}

	val, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		metrics.CacheMisses.WithLabelValues(family(key)).Inc()
		return false
	}
	if err := json.Unmarshal(val, dest); err != nil {
		metrics.CacheMisses.WithLabelValues(family(key)).Inc()
		return false
	}

	metrics.CacheHits.WithLabelValues(family(key)).Inc()
	return true
}

// Set stores value as JSON under key for ttl.
func (c *Redis) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if c == nil || c.rdb == nil {
		return nil
	}

	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, key, data, ttl).Err()
}

// Incr atomically increments the integer at key and returns the new value.
func (c *Redis) Incr(ctx context.Context, key string) (int64, error) {
	if c == nil || c.rdb == nil {
		return 0, nil
	}
	return c.rdb.Incr(ctx, key).Result()
}

// Version returns the integer stored at key, or 0 when it is unset.
func (c *Redis) Version(ctx context.Context, key string) (int64, error) {
	if c == nil || c.rdb == nil {
		return 0, nil
	}
	n, err := c.rdb.Get(ctx, key).Int64()
	if err == redis.Nil {
		return 0, nil
	}
	return n, err
}

// Ping reports whether Redis is reachable.
func (c *Redis) Ping(ctx context.Context) error {
	if c == nil || c.rdb == nil {
		return nil
	}
	return c.rdb.Ping(ctx).Err()
}

func (c *Redis) Close() error {
	if c == nil || c.rdb == nil {
		return nil
	}
	return c.rdb.Close()
}

// family trims a versioned key ("products:all:7") to its label ("products:all")
// so metric cardinality stays flat.
func family(key string) string {
	for i := len(key) - 1; i >= 0; i-- {
		if key[i] == ':' {
			if i+1 < len(key) && isDigits(key[i+1:]) {
				return key[:i]
			}
			break
		}
	}
	return key
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}
