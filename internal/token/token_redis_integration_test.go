//go:build integration

package token_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"procuration/internal/kv"
	"procuration/internal/request/models"
	"procuration/internal/token"
	"procuration/pkg/platform/sentinel"
	"procuration/pkg/testutil/containers"
)

type RedisRegistrySuite struct {
	suite.Suite
	redis    *containers.RedisContainer
	store    *kv.RedisStore
	registry *token.Registry
}

func TestRedisRegistrySuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(RedisRegistrySuite))
}

func (s *RedisRegistrySuite) SetupSuite() {
	s.redis = containers.GetManager().GetRedis(s.T())
	s.store = kv.NewRedis(s.redis.Client)
	s.registry = token.New(s.store)
}

func (s *RedisRegistrySuite) SetupTest() {
	s.redis.Reset(s.T())
}

func (s *RedisRegistrySuite) TestResolveUnknown() {
	ctx := context.Background()
	_, err := s.store.ListAppend(ctx, models.RequestersKey, "a@x.com")
	s.Require().NoError(err)

	s.Run("the requesters list is not a token", func() {
		_, err := s.registry.Resolve(ctx, token.KindVerification, "all")
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("a never minted token is not found", func() {
		_, err := s.registry.Resolve(ctx, token.KindConfirmation, "00000000-0000-4000-8000-000000000000")
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("a minted token resolves", func() {
		tok, err := s.registry.Mint(ctx, token.KindVerification, token.Payload{Identity: "a@x.com"})
		s.Require().NoError(err)

		p, err := s.registry.Resolve(ctx, token.KindVerification, tok)
		s.Require().NoError(err)
		s.Equal("a@x.com", p.Identity)
	})
}
