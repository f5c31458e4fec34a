//go:build integration

package kv_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"procuration/internal/kv"
	"procuration/pkg/platform/sentinel"
	"procuration/pkg/testutil/containers"
)

type RedisStoreSuite struct {
	suite.Suite
	redis  *containers.RedisContainer
	store  *kv.RedisStore
	locker *kv.RedisLocker
}

func TestRedisStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(RedisStoreSuite))
}

func (s *RedisStoreSuite) SetupSuite() {
	mgr := containers.GetManager()
	s.redis = mgr.GetRedis(s.T())
	s.store = kv.NewRedis(s.redis.Client)
	s.locker = kv.NewRedisLocker(s.redis.Client, 5*time.Second)
}

func (s *RedisStoreSuite) SetupTest() {
	s.redis.Reset(s.T())
}

func (s *RedisStoreSuite) TestGetMissing() {
	_, err := s.store.Get(context.Background(), "requests:nope")
	s.Require().ErrorIs(err, sentinel.ErrNotFound)
}

func (s *RedisStoreSuite) TestGetListKey() {
	ctx := context.Background()
	_, err := s.store.ListAppend(ctx, "requests:all", "a@x.com")
	s.Require().NoError(err)

	_, err = s.store.Get(ctx, "requests:all")
	s.Require().ErrorIs(err, sentinel.ErrNotFound)
}

// TestConcurrentIncr verifies INCR hands out every post-increment value once.
func (s *RedisStoreSuite) TestConcurrentIncr() {
	ctx := context.Background()
	const goroutines = 20
	seen := make(chan int64, goroutines)
	var wg sync.WaitGroup
	for range goroutines {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := s.store.Incr(ctx, "requests:a@x.com:changes")
			s.NoError(err)
			seen <- v
		}()
	}
	wg.Wait()
	close(seen)

	values := make(map[int64]bool)
	for v := range seen {
		values[v] = true
	}
	s.Len(values, goroutines)
}

func (s *RedisStoreSuite) TestOrIsIdempotent() {
	ctx := context.Background()
	for range 3 {
		v, err := s.store.Or(ctx, "requests:a@x.com:posted", 1)
		s.Require().NoError(err)
		s.Equal(int64(1), v)
	}
	raw, err := s.store.Get(ctx, "requests:a@x.com:posted")
	s.Require().NoError(err)
	s.Equal("1", raw)
}

func (s *RedisStoreSuite) TestListAppendUnique() {
	ctx := context.Background()
	for _, v := range []string{"a@x.com", "b@x.com", "a@x.com"} {
		_, err := s.store.ListAppend(ctx, "requests:all", v)
		s.Require().NoError(err)
	}
	list, err := s.store.List(ctx, "requests:all")
	s.Require().NoError(err)
	s.Equal([]string{"b@x.com", "a@x.com"}, list)
}

func (s *RedisStoreSuite) TestSetIfAbsent() {
	ctx := context.Background()
	ok, err := s.store.SetIfAbsent(ctx, "requests:a@x.com:date", "1")
	s.Require().NoError(err)
	s.True(ok)
	ok, err = s.store.SetIfAbsent(ctx, "requests:a@x.com:date", "2")
	s.Require().NoError(err)
	s.False(ok)
}

func (s *RedisStoreSuite) TestLockExcludesSecondHolder() {
	ctx := context.Background()
	unlock, err := s.locker.Lock(ctx, "requests:a@x.com")
	s.Require().NoError(err)

	waitCtx, cancel := context.WithTimeout(ctx, 100*time.Millisecond)
	defer cancel()
	_, err = s.locker.Lock(waitCtx, "requests:a@x.com")
	s.Require().ErrorIs(err, context.DeadlineExceeded)

	unlock()
	again, err := s.locker.Lock(ctx, "requests:a@x.com")
	s.Require().NoError(err)
	again()
}
