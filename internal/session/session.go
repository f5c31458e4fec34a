// Package session issues and validates the signed session proving that the
// bearer opened a verification link for an identity.
package session

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	dErrors "procuration/pkg/domain-errors"
)

const issuer = "procuration"

// Claims are the session token claims. Subject is the identity.
type Claims struct {
	jwt.RegisteredClaims
}

// Service signs sessions with HS256.
type Service struct {
	signingKey []byte
	ttl        time.Duration
	now        func() time.Time
}

type Option func(*Service)

// WithClock replaces time.Now for validation.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

func New(signingKey string, ttl time.Duration, opts ...Option) *Service {
	s := &Service{
		signingKey: []byte(signingKey),
		ttl:        ttl,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// TTL is the lifetime of issued sessions.
func (s *Service) TTL() time.Duration {
	return s.ttl
}

// Issue signs a session for identity starting at now.
func (s *Service) Issue(identity string, now time.Time) (string, error) {
	if identity == "" {
		return "", dErrors.New(dErrors.CodeInvariantViolation, "session identity is required")
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   identity,
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
			ID:        uuid.NewString(),
		},
	})
	signed, err := token.SignedString(s.signingKey)
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to sign session")
	}
	return signed, nil
}

// Validate returns the identity a session is scoped to.
func (s *Service) Validate(tokenString string) (string, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenUnverifiable
		}
		return s.signingKey, nil
	},
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", dErrors.New(dErrors.CodeUnauthorized, "session has expired")
		}
		return "", dErrors.New(dErrors.CodeUnauthorized, "invalid session")
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid || claims.Subject == "" {
		return "", dErrors.New(dErrors.CodeUnauthorized, "invalid session claims")
	}
	return claims.Subject, nil
}
