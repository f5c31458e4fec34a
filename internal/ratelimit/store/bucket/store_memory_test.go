package bucket

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"procuration/internal/ratelimit/models"
)

const (
	testLimit  = 3
	testWindow = time.Minute
)

type InMemoryBucketStoreSuite struct {
	suite.Suite
	store *InMemoryBucketStore
	now   time.Time
	ctx   context.Context
}

func TestInMemoryBucketStoreSuite(t *testing.T) {
	suite.Run(t, new(InMemoryBucketStoreSuite))
}

func (s *InMemoryBucketStoreSuite) SetupTest() {
	s.now = time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	s.store = New(WithClock(func() time.Time { return s.now }))
	s.ctx = context.Background()
}

func (s *InMemoryBucketStoreSuite) TestAllow() {
	s.Run("first request allowed", func() {
		result, err := s.store.Allow(s.ctx, "k:first", testLimit, testWindow)
		s.Require().NoError(err)
		s.True(result.Allowed)
		s.Equal(testLimit, result.Limit)
		s.Equal(testLimit-1, result.Remaining)
	})

	s.Run("requests up to limit allowed, next denied", func() {
		var result *models.Result
		var err error
		for range testLimit {
			result, err = s.store.Allow(s.ctx, "k:limit", testLimit, testWindow)
			s.Require().NoError(err)
			s.True(result.Allowed)
		}
		s.Equal(0, result.Remaining)

		result, err = s.store.Allow(s.ctx, "k:limit", testLimit, testWindow)
		s.Require().NoError(err)
		s.False(result.Allowed)
		s.Equal(60, result.RetryAfter)
	})

	s.Run("denied requests are not counted", func() {
		for range testLimit + 5 {
			_, err := s.store.Allow(s.ctx, "k:denied", testLimit, testWindow)
			s.Require().NoError(err)
		}
		count, err := s.store.GetCurrentCount(s.ctx, "k:denied")
		s.Require().NoError(err)
		s.Equal(testLimit, count)
	})
}

func (s *InMemoryBucketStoreSuite) TestSlidingWindow() {
	start := s.now
	for range testLimit {
		_, err := s.store.Allow(s.ctx, "k:slide", testLimit, testWindow)
		s.Require().NoError(err)
		s.now = s.now.Add(10 * time.Second)
	}

	s.Run("still denied before the oldest request leaves the window", func() {
		s.now = start.Add(59 * time.Second)
		result, err := s.store.Allow(s.ctx, "k:slide", testLimit, testWindow)
		s.Require().NoError(err)
		s.False(result.Allowed)
		s.Equal(1, result.RetryAfter)
	})

	s.Run("one slot frees when the oldest request expires", func() {
		s.now = start.Add(61 * time.Second)
		result, err := s.store.Allow(s.ctx, "k:slide", testLimit, testWindow)
		s.Require().NoError(err)
		s.True(result.Allowed)
		s.Equal(0, result.Remaining)
	})
}

func (s *InMemoryBucketStoreSuite) TestReset() {
	for range testLimit {
		_, err := s.store.Allow(s.ctx, "k:reset", testLimit, testWindow)
		s.Require().NoError(err)
	}
	s.Require().NoError(s.store.Reset(s.ctx, "k:reset"))

	result, err := s.store.Allow(s.ctx, "k:reset", testLimit, testWindow)
	s.Require().NoError(err)
	s.True(result.Allowed)
}

func (s *InMemoryBucketStoreSuite) TestConcurrent() {
	limit := 100
	var wg sync.WaitGroup
	var mu sync.Mutex
	allowedCount := 0

	for range 200 {
		wg.Go(func() {
			result, err := s.store.Allow(s.ctx, "k:concurrent", limit, testWindow)
			s.NoError(err)
			if result.Allowed {
				mu.Lock()
				allowedCount++
				mu.Unlock()
			}
		})
	}

	wg.Wait()
	s.Equal(limit, allowedCount)
}
