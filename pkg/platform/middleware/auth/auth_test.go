package auth

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"procuration/pkg/requestcontext"
	"procuration/pkg/testutil"
)

type stubValidator map[string]string

func (v stubValidator) Validate(tok string) (string, error) {
	if identity, ok := v[tok]; ok {
		return identity, nil
	}
	return "", errors.New("invalid session")
}

func TestLoadSession(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	var seen string
	handler := LoadSession(stubValidator{"good": "a@example.fr"}, "sid", logger)(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			seen = requestcontext.Identity(r.Context())
		}),
	)

	testutil.Given(t, "a valid session cookie", func(t *testing.T) {
		req := testutil.WithSessionCookie(httptest.NewRequest(http.MethodGet, "/etape-2", nil), "sid", "good")
		testutil.DoRequest(handler, req)
		testutil.Then(t, "the request is scoped to its identity", func(t *testing.T) {
			assert.Equal(t, "a@example.fr", seen)
		})
	})

	testutil.Given(t, "a forged session cookie", func(t *testing.T) {
		req := testutil.WithSessionCookie(httptest.NewRequest(http.MethodGet, "/etape-2", nil), "sid", "forged")
		testutil.DoRequest(handler, req)
		testutil.Then(t, "the request stays anonymous", func(t *testing.T) {
			assert.Empty(t, seen)
		})
	})

	testutil.Given(t, "no cookie", func(t *testing.T) {
		testutil.DoRequest(handler, httptest.NewRequest(http.MethodGet, "/etape-2", nil))
		testutil.Then(t, "the request stays anonymous", func(t *testing.T) {
			assert.Empty(t, seen)
		})
	})
}

func TestSetSessionCookie(t *testing.T) {
	rr := httptest.NewRecorder()
	SetSessionCookie(rr, "sid", "token", 3600, true)

	cookie := testutil.CookieNamed(rr.Result(), "sid")
	if assert.NotNil(t, cookie) {
		assert.Equal(t, "token", cookie.Value)
		assert.True(t, cookie.HttpOnly)
		assert.True(t, cookie.Secure)
		assert.Equal(t, http.SameSiteLaxMode, cookie.SameSite)
		assert.Equal(t, 3600, cookie.MaxAge)
	}
}
