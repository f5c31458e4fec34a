package bucket

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"procuration/internal/ratelimit/models"
)

// allowScript counts a request in a fixed window that starts with the first
// request. KEYS[1]=counter, ARGV[1]=limit, ARGV[2]=window ms.
// Returns {allowed, count, ttl_ms}. A denied request is not counted.
var allowScript = redis.NewScript(`
local current = tonumber(redis.call('GET', KEYS[1]) or '0')
local limit = tonumber(ARGV[1])
if current >= limit then
  return {0, current, redis.call('PTTL', KEYS[1])}
end
current = redis.call('INCR', KEYS[1])
if current == 1 then
  redis.call('PEXPIRE', KEYS[1], ARGV[2])
end
return {1, current, redis.call('PTTL', KEYS[1])}
`)

// RedisBucketStore implements ports.BucketStore on Redis so the throttle is
// shared by every instance behind the load balancer. The window is fixed
// rather than sliding; at the default 3 per 60s the boundary burst is small.
type RedisBucketStore struct {
	client *redis.Client
	now    func() time.Time
}

func NewRedis(client *redis.Client) *RedisBucketStore {
	return &RedisBucketStore{client: client, now: time.Now}
}

func (s *RedisBucketStore) Allow(ctx context.Context, key string, limit int, window time.Duration) (*models.Result, error) {
	res, err := allowScript.Run(ctx, s.client, []string{key}, limit, window.Milliseconds()).Int64Slice()
	if err != nil {
		return nil, fmt.Errorf("throttle %s: %w", key, err)
	}
	if len(res) != 3 {
		return nil, fmt.Errorf("throttle %s: unexpected script reply %v", key, res)
	}

	now := s.now()
	ttl := time.Duration(res[2]) * time.Millisecond
	if ttl < 0 {
		ttl = window
	}
	resetAt := now.Add(ttl)

	if res[0] == 0 {
		return &models.Result{
			Allowed:    false,
			Limit:      limit,
			ResetAt:    resetAt,
			RetryAfter: models.RetryAfterSeconds(resetAt, now),
		}, nil
	}
	return &models.Result{
		Allowed:   true,
		Limit:     limit,
		Remaining: max(limit-int(res[1]), 0),
		ResetAt:   resetAt,
	}, nil
}

func (s *RedisBucketStore) Reset(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("reset %s: %w", key, err)
	}
	return nil
}

func (s *RedisBucketStore) GetCurrentCount(ctx context.Context, key string) (int, error) {
	n, err := s.client.Get(ctx, key).Int()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("count %s: %w", key, err)
	}
	return n, nil
}
