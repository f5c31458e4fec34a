package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWithWriter(t *testing.T) {
	t.Run("emits json with attributes", func(t *testing.T) {
		var buf bytes.Buffer
		log := NewWithWriter(&buf, "info")

		log.Info("verification email sent", "email", "a@x.com")

		var entry map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
		assert.Equal(t, "verification email sent", entry["msg"])
		assert.Equal(t, "a@x.com", entry["email"])
	})

	t.Run("filters below configured level", func(t *testing.T) {
		var buf bytes.Buffer
		log := NewWithWriter(&buf, "warn")

		log.Info("dropped")
		assert.Zero(t, buf.Len())
	})

	t.Run("unknown level falls back to info", func(t *testing.T) {
		assert.Equal(t, slog.LevelInfo, parseLevel("chatty"))
		assert.Equal(t, slog.LevelDebug, parseLevel(" DEBUG "))
	})
}
