package kv

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"

	"procuration/pkg/platform/sentinel"
)

var (
	scriptDurationMs = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "procuration_kv_script_duration_ms",
		Help:    "Latency of Lua-backed kv operations in milliseconds",
		Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 25},
	}, []string{"op"})
)

// orScript ORs ARGV[1] into the integer at KEYS[1]. Missing or non-numeric
// values count as 0, which matches how status flags were first written.
var orScript = redis.NewScript(`
local current = tonumber(redis.call('GET', KEYS[1]) or '0') or 0
local updated = bit.bor(current, tonumber(ARGV[1]))
redis.call('SET', KEYS[1], updated)
return updated
`)

// appendUniqueScript pushes ARGV[1] onto KEYS[1] unless it is already a member.
var appendUniqueScript = redis.NewScript(`
if redis.call('LPOS', KEYS[1], ARGV[1]) then
  return 0
end
redis.call('LPUSH', KEYS[1], ARGV[1])
return 1
`)

// RedisStore implements Store on Redis. Each method maps to a single command
// or Lua script, so per-key atomicity holds across instances.
type RedisStore struct {
	client *redis.Client
}

// NewRedis constructs a Redis-backed store. The client lifecycle is managed
// by the caller.
func NewRedis(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// Get reads a string value. A key holding a list has no string value, so it
// reports ErrNotFound the same way the memory store does.
func (s *RedisStore) Get(ctx context.Context, key string) (string, error) {
	v, err := s.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) || isWrongType(err) {
		return "", fmt.Errorf("key %q: %w", key, sentinel.ErrNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("get %q: %w", key, err)
	}
	return v, nil
}

func (s *RedisStore) Set(ctx context.Context, key, value string) error {
	if err := s.client.Set(ctx, key, value, 0).Err(); err != nil {
		return fmt.Errorf("set %q: %w", key, err)
	}
	return nil
}

func (s *RedisStore) SetIfAbsent(ctx context.Context, key, value string) (bool, error) {
	ok, err := s.client.SetNX(ctx, key, value, 0).Result()
	if err != nil {
		return false, fmt.Errorf("setnx %q: %w", key, err)
	}
	return ok, nil
}

func (s *RedisStore) Incr(ctx context.Context, key string) (int64, error) {
	v, err := s.client.Incr(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("incr %q: %w", key, err)
	}
	return v, nil
}

func (s *RedisStore) Or(ctx context.Context, key string, mask int64) (int64, error) {
	start := time.Now()
	defer observeScript("or", start)

	v, err := orScript.Run(ctx, s.client, []string{key}, mask).Int64()
	if err != nil {
		return 0, fmt.Errorf("or %q: %w", key, err)
	}
	return v, nil
}

func (s *RedisStore) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if err := s.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("del %v: %w", keys, err)
	}
	return nil
}

func (s *RedisStore) ListAppend(ctx context.Context, key, value string) (bool, error) {
	start := time.Now()
	defer observeScript("list_append", start)

	added, err := appendUniqueScript.Run(ctx, s.client, []string{key}, value).Int64()
	if err != nil {
		return false, fmt.Errorf("list append %q: %w", key, err)
	}
	return added == 1, nil
}

func (s *RedisStore) List(ctx context.Context, key string) ([]string, error) {
	values, err := s.client.LRange(ctx, key, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("lrange %q: %w", key, err)
	}
	return values, nil
}

func observeScript(op string, start time.Time) {
	scriptDurationMs.WithLabelValues(op).Observe(float64(time.Since(start).Microseconds()) / 1000.0)
}

func isWrongType(err error) bool {
	var rerr redis.Error
	return errors.As(err, &rerr) && strings.HasPrefix(rerr.Error(), "WRONGTYPE")
}
