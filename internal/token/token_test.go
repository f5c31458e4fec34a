package token

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/suite"

	"procuration/internal/kv"
	dErrors "procuration/pkg/domain-errors"
	"procuration/pkg/platform/sentinel"
)

type RegistrySuite struct {
	suite.Suite
	store    *kv.MemoryStore
	registry *Registry
	ctx      context.Context
}

func TestRegistrySuite(t *testing.T) {
	suite.Run(t, new(RegistrySuite))
}

func (s *RegistrySuite) SetupTest() {
	s.store = kv.NewMemory()
	s.registry = New(s.store)
	s.ctx = context.Background()
}

func (s *RegistrySuite) TestMintResolve() {
	s.Run("resolve returns the minted payload", func() {
		tok, err := s.registry.Mint(s.ctx, KindVerification, Payload{Identity: "a@x.com"})
		s.Require().NoError(err)

		p, err := s.registry.Resolve(s.ctx, KindVerification, tok)
		s.Require().NoError(err)
		s.Equal("a@x.com", p.Identity)
	})

	s.Run("resolution is repeatable", func() {
		tok, err := s.registry.Mint(s.ctx, KindConfirmation, Payload{Identity: "a@x.com"})
		s.Require().NoError(err)

		for range 3 {
			p, err := s.registry.Resolve(s.ctx, KindConfirmation, tok)
			s.Require().NoError(err)
			s.Equal("a@x.com", p.Identity)
		}
	})

	s.Run("cancellation tokens carry the pair", func() {
		pair := Payload{Identity: "a@x.com", Offer: "proxy@y.com"}
		tok, err := s.registry.Mint(s.ctx, KindCancellation, pair)
		s.Require().NoError(err)

		p, err := s.registry.Resolve(s.ctx, KindCancellation, tok)
		s.Require().NoError(err)
		s.Equal(pair, p)
	})

	s.Run("each mint yields a fresh token and older tokens keep resolving", func() {
		first, err := s.registry.Mint(s.ctx, KindVerification, Payload{Identity: "b@x.com"})
		s.Require().NoError(err)
		second, err := s.registry.Mint(s.ctx, KindVerification, Payload{Identity: "b@x.com"})
		s.Require().NoError(err)
		s.NotEqual(first, second)

		for _, tok := range []string{first, second} {
			p, err := s.registry.Resolve(s.ctx, KindVerification, tok)
			s.Require().NoError(err)
			s.Equal("b@x.com", p.Identity)
		}
	})

	s.Run("verification tokens are stored where the request flow expects them", func() {
		tok, err := s.registry.Mint(s.ctx, KindVerification, Payload{Identity: "c@x.com"})
		s.Require().NoError(err)

		v, err := s.store.Get(s.ctx, "requests:"+tok)
		s.Require().NoError(err)
		s.Equal("c@x.com", v)
	})
}

func (s *RegistrySuite) TestResolveFailures() {
	s.Run("unknown token is not found", func() {
		_, err := s.registry.Resolve(s.ctx, KindVerification, "00000000-0000-4000-8000-000000000000")
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("token of another kind is not found", func() {
		tok, err := s.registry.Mint(s.ctx, KindVerification, Payload{Identity: "a@x.com"})
		s.Require().NoError(err)

		_, err = s.registry.Resolve(s.ctx, KindConfirmation, tok)
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("empty token is not found", func() {
		_, err := s.registry.Resolve(s.ctx, KindVerification, "")
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("token addressing a record key is not found", func() {
		s.Require().NoError(s.store.Set(s.ctx, "requests:a@x.com:valid", "false"))

		_, err := s.registry.Resolve(s.ctx, KindVerification, "a@x.com:valid")
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("reserved names under the request namespace are not found", func() {
		_, err := s.store.ListAppend(s.ctx, "requests:all", "a@x.com")
		s.Require().NoError(err)
		s.Require().NoError(s.store.Set(s.ctx, "requests:confirmations", "a@x.com"))

		for _, tok := range []string{"all", "confirmations", "cancellations"} {
			_, err := s.registry.Resolve(s.ctx, KindVerification, tok)
			s.Require().ErrorIs(err, sentinel.ErrNotFound, tok)
		}
	})

	s.Run("corrupt cancellation payload is invalid state", func() {
		s.Require().NoError(s.store.Set(s.ctx, "requests:cancellations:broken", "not-json"))

		_, err := s.registry.Resolve(s.ctx, KindCancellation, "broken")
		s.Require().ErrorIs(err, sentinel.ErrInvalidState)
	})
}

func (s *RegistrySuite) TestMintValidation() {
	s.Run("identity is required", func() {
		_, err := s.registry.Mint(s.ctx, KindVerification, Payload{})
		s.True(dErrors.HasCode(err, dErrors.CodeInvariantViolation))
	})

	s.Run("cancellation requires the offer", func() {
		_, err := s.registry.Mint(s.ctx, KindCancellation, Payload{Identity: "a@x.com"})
		s.True(dErrors.HasCode(err, dErrors.CodeInvariantViolation))
	})

	s.Run("verification rejects an offer", func() {
		_, err := s.registry.Mint(s.ctx, KindVerification, Payload{Identity: "a@x.com", Offer: "b@x.com"})
		s.True(dErrors.HasCode(err, dErrors.CodeInvariantViolation))
	})

	s.Run("unknown kind", func() {
		_, err := s.registry.Mint(s.ctx, Kind("magic"), Payload{Identity: "a@x.com"})
		s.True(dErrors.HasCode(err, dErrors.CodeInvariantViolation))
	})
}

func (s *RegistrySuite) TestWithGenerator() {
	var n atomic.Int64
	registry := New(s.store, WithGenerator(func() string {
		return fmt.Sprintf("tok-%d", n.Add(1))
	}))

	tok, err := registry.Mint(s.ctx, KindConfirmation, Payload{Identity: "a@x.com"})
	s.Require().NoError(err)
	s.Equal("tok-1", tok)
}
