package session

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "procuration/pkg/domain-errors"
)

var now = time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

func newService(at time.Time) *Service {
	return New("test-signing-key", time.Hour, WithClock(func() time.Time { return at }))
}

func TestIssueValidate(t *testing.T) {
	svc := newService(now.Add(time.Minute))

	token, err := svc.Issue("a@x.com", now)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	identity, err := svc.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", identity)
}

func TestValidateFailures(t *testing.T) {
	t.Run("expired", func(t *testing.T) {
		token, err := newService(now).Issue("a@x.com", now)
		require.NoError(t, err)

		_, err = newService(now.Add(2 * time.Hour)).Validate(token)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
		assert.Contains(t, err.Error(), "expired")
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := newService(now).Validate("invalid-token-string")
		assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	t.Run("other signing key", func(t *testing.T) {
		other := New("another-key", time.Hour, WithClock(func() time.Time { return now }))
		token, err := other.Issue("a@x.com", now)
		require.NoError(t, err)

		_, err = newService(now).Validate(token)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	t.Run("unsigned token", func(t *testing.T) {
		token := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "a@x.com",
			Issuer:    issuer,
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		}})
		signed, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)

		_, err = newService(now).Validate(signed)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})
}

func TestIssueRequiresIdentity(t *testing.T) {
	_, err := newService(now).Issue("", now)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))
}
