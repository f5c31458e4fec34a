package httputil

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "procuration/pkg/domain-errors"
)

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	return body
}

func TestWriteError(t *testing.T) {
	t.Run("coded errors carry their message", func(t *testing.T) {
		w := httptest.NewRecorder()
		err := fmt.Errorf("choose locality: %w", dErrors.New(dErrors.CodeChangeLimitExceeded, "locality already changed 3 times"))

		WriteError(w, err)

		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
		body := decodeBody(t, w)
		assert.Equal(t, "change_limit_exceeded", body["error"])
		assert.Equal(t, "locality already changed 3 times", body["error_description"])
	})

	t.Run("internal errors hide their message", func(t *testing.T) {
		w := httptest.NewRecorder()

		WriteError(w, dErrors.New(dErrors.CodeInternal, "redis: connection refused"))

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		body := decodeBody(t, w)
		assert.Equal(t, "internal_error", body["error"])
		assert.NotContains(t, body, "error_description")
	})

	t.Run("plain errors are internal", func(t *testing.T) {
		w := httptest.NewRecorder()

		WriteError(w, errors.New("boom"))

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Equal(t, "internal_error", decodeBody(t, w)["error"])
	})
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		code dErrors.Code
		want int
	}{
		{dErrors.CodeBadRequest, http.StatusBadRequest},
		{dErrors.CodeInvalidInput, http.StatusBadRequest},
		{dErrors.CodeInvariantViolation, http.StatusBadRequest},
		{dErrors.CodeThrottled, http.StatusTooManyRequests},
		{dErrors.CodeInvalidToken, http.StatusUnauthorized},
		{dErrors.CodeUnauthorized, http.StatusUnauthorized},
		{dErrors.CodeUnknownLocality, http.StatusUnprocessableEntity},
		{dErrors.CodeChangeLimitExceeded, http.StatusConflict},
		{dErrors.CodeAlreadyMatched, http.StatusConflict},
		{dErrors.CodeNotFound, http.StatusNotFound},
		{dErrors.CodeExternalFailure, http.StatusBadGateway},
		{dErrors.CodeInternal, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			assert.Equal(t, tt.want, StatusFor(tt.code))
		})
	}
}

func TestWriteJSON(t *testing.T) {
	t.Run("nil body writes only the status", func(t *testing.T) {
		w := httptest.NewRecorder()

		WriteJSON(w, http.StatusNoContent, nil)

		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Empty(t, w.Body.String())
	})

	t.Run("encodes the value", func(t *testing.T) {
		w := httptest.NewRecorder()

		WriteJSON(w, http.StatusAccepted, map[string]string{"email": "a@b.fr"})

		assert.Equal(t, http.StatusAccepted, w.Code)
		assert.JSONEq(t, `{"email":"a@b.fr"}`, w.Body.String())
	})
}
