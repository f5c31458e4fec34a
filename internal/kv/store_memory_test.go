package kv

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/suite"

	"procuration/pkg/platform/sentinel"
)

type MemoryStoreSuite struct {
	suite.Suite
	store *MemoryStore
	ctx   context.Context
}

func TestMemoryStoreSuite(t *testing.T) {
	suite.Run(t, new(MemoryStoreSuite))
}

func (s *MemoryStoreSuite) SetupTest() {
	s.store = NewMemory()
	s.ctx = context.Background()
}

func (s *MemoryStoreSuite) TestGetSet() {
	s.Run("missing key returns ErrNotFound", func() {
		_, err := s.store.Get(s.ctx, "requests:missing")
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("set overwrites", func() {
		s.Require().NoError(s.store.Set(s.ctx, "k", "v1"))
		s.Require().NoError(s.store.Set(s.ctx, "k", "v2"))
		v, err := s.store.Get(s.ctx, "k")
		s.Require().NoError(err)
		s.Equal("v2", v)
	})

	s.Run("set if absent keeps the first value", func() {
		ok, err := s.store.SetIfAbsent(s.ctx, "first", "a")
		s.Require().NoError(err)
		s.True(ok)
		ok, err = s.store.SetIfAbsent(s.ctx, "first", "b")
		s.Require().NoError(err)
		s.False(ok)
		v, _ := s.store.Get(s.ctx, "first")
		s.Equal("a", v)
	})
}

func (s *MemoryStoreSuite) TestIncr() {
	s.Run("absent key starts at zero", func() {
		v, err := s.store.Incr(s.ctx, "counter")
		s.Require().NoError(err)
		s.Equal(int64(1), v)
	})

	s.Run("non-numeric value is invalid state", func() {
		s.Require().NoError(s.store.Set(s.ctx, "word", "abc"))
		_, err := s.store.Incr(s.ctx, "word")
		s.Require().ErrorIs(err, sentinel.ErrInvalidState)
	})

	s.Run("concurrent increments are not lost", func() {
		const goroutines = 50
		var wg sync.WaitGroup
		for range goroutines {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, _ = s.store.Incr(s.ctx, "contended")
			}()
		}
		wg.Wait()
		v, err := s.store.Get(s.ctx, "contended")
		s.Require().NoError(err)
		s.Equal("50", v)
	})
}

func (s *MemoryStoreSuite) TestOr() {
	v, err := s.store.Or(s.ctx, "flags", 1)
	s.Require().NoError(err)
	s.Equal(int64(1), v)

	v, err = s.store.Or(s.ctx, "flags", 1)
	s.Require().NoError(err)
	s.Equal(int64(1), v)

	v, err = s.store.Or(s.ctx, "flags", 4)
	s.Require().NoError(err)
	s.Equal(int64(5), v)
}

func (s *MemoryStoreSuite) TestDelete() {
	s.Require().NoError(s.store.Set(s.ctx, "a", "1"))
	_, err := s.store.ListAppend(s.ctx, "l", "x")
	s.Require().NoError(err)

	s.Require().NoError(s.store.Delete(s.ctx, "a", "l", "never-set"))

	_, err = s.store.Get(s.ctx, "a")
	s.ErrorIs(err, sentinel.ErrNotFound)
	list, err := s.store.List(s.ctx, "l")
	s.Require().NoError(err)
	s.Empty(list)
}

func (s *MemoryStoreSuite) TestListAppend() {
	s.Run("appends are unique and most recent first", func() {
		for _, v := range []string{"a@x.com", "b@x.com", "a@x.com"} {
			_, err := s.store.ListAppend(s.ctx, "requests:all", v)
			s.Require().NoError(err)
		}
		list, err := s.store.List(s.ctx, "requests:all")
		s.Require().NoError(err)
		s.Equal([]string{"b@x.com", "a@x.com"}, list)
	})

	s.Run("reports whether the value was added", func() {
		added, err := s.store.ListAppend(s.ctx, "once", "v")
		s.Require().NoError(err)
		s.True(added)
		added, err = s.store.ListAppend(s.ctx, "once", "v")
		s.Require().NoError(err)
		s.False(added)
	})
}
