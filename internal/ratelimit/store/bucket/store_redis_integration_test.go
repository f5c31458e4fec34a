//go:build integration

package bucket_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"procuration/internal/ratelimit/store/bucket"
	"procuration/pkg/testutil/containers"
)

type RedisBucketStoreSuite struct {
	suite.Suite
	redis *containers.RedisContainer
	store *bucket.RedisBucketStore
	ctx   context.Context
}

func TestRedisBucketStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(RedisBucketStoreSuite))
}

func (s *RedisBucketStoreSuite) SetupSuite() {
	s.redis = containers.GetManager().GetRedis(s.T())
	s.store = bucket.NewRedis(s.redis.Client)
	s.ctx = context.Background()
}

func (s *RedisBucketStoreSuite) SetupTest() {
	s.redis.Reset(s.T())
}

func (s *RedisBucketStoreSuite) TestAllow() {
	s.Run("limit then deny", func() {
		for i := range 3 {
			result, err := s.store.Allow(s.ctx, "throttle:submission:1.2.3.4", 3, time.Minute)
			s.Require().NoError(err)
			s.True(result.Allowed)
			s.Equal(2-i, result.Remaining)
		}
		result, err := s.store.Allow(s.ctx, "throttle:submission:1.2.3.4", 3, time.Minute)
		s.Require().NoError(err)
		s.False(result.Allowed)
		s.Positive(result.RetryAfter)

		count, err := s.store.GetCurrentCount(s.ctx, "throttle:submission:1.2.3.4")
		s.Require().NoError(err)
		s.Equal(3, count)
	})

	s.Run("window expiry frees the counter", func() {
		_, err := s.store.Allow(s.ctx, "throttle:submission:5.6.7.8", 1, 200*time.Millisecond)
		s.Require().NoError(err)

		s.Eventually(func() bool {
			result, err := s.store.Allow(s.ctx, "throttle:submission:5.6.7.8", 1, 200*time.Millisecond)
			return err == nil && result.Allowed
		}, 2*time.Second, 50*time.Millisecond)
	})

	s.Run("reset clears", func() {
		_, err := s.store.Allow(s.ctx, "throttle:submission:9.9.9.9", 1, time.Minute)
		s.Require().NoError(err)
		s.Require().NoError(s.store.Reset(s.ctx, "throttle:submission:9.9.9.9"))

		count, err := s.store.GetCurrentCount(s.ctx, "throttle:submission:9.9.9.9")
		s.Require().NoError(err)
		s.Zero(count)
	})
}
