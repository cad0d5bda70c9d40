package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "polybench:cache:"

// RedisBackend stores cache entries in Redis, optionally with a TTL.
type RedisBackend struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisBackend(addr, password string, db int, ttl time.Duration) (*RedisBackend, error) {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return nil, errors.New("cache: empty redis addr")
	}
	if ttl < 0 {
		return nil, fmt.Errorf("cache: negative redis ttl %s", ttl)
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return &RedisBackend{rdb: rdb, ttl: ttl}, nil
}

func (r *RedisBackend) Lookup(ctx context.Context, key string) (json.RawMessage, bool, error) {
	if r == nil || r.rdb == nil {
		return nil, false, errors.New("cache: nil redis backend")
	}
	if ctx == nil {
		return nil, false, errors.New("cache: nil context")
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, false, errors.New("cache: empty key")
	}

	value, err := r.rdb.Get(ctx, redisKeyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("cache: redis lookup: %w", err)
	}
	return value, true, nil
}

func (r *RedisBackend) Store(ctx context.Context, key string, value json.RawMessage) error {
	if r == nil || r.rdb == nil {
		return errors.New("cache: nil redis backend")
	}
	if ctx == nil {
		return errors.New("cache: nil context")
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return errors.New("cache: empty key")
	}
	if len(value) == 0 {
		return errors.New("cache: empty value")
	}

	if err := r.rdb.Set(ctx, redisKeyPrefix+key, []byte(value), r.ttl).Err(); err != nil {
		return fmt.Errorf("cache: redis store: %w", err)
	}
	return nil
}

func (r *RedisBackend) Close() error {
	if r == nil || r.rdb == nil {
		return nil
	}
	return r.rdb.Close()
}
