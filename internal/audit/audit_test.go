package audit

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"procuration/pkg/requestcontext"
)

func TestLogAudit(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	pub := NewMemoryPublisher()
	at := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	ctx := requestcontext.WithRequestID(requestcontext.WithTime(context.Background(), at), "req-1")

	LogAudit(ctx, logger, pub, ActionCancelled, "subject", "a@x.com", "offer", "p@y.com", "with_delete", true)

	events := pub.Events()
	require.Len(t, events, 1)
	assert.Equal(t, Event{
		Timestamp: at,
		Action:    ActionCancelled,
		Subject:   "a@x.com",
		Offer:     "p@y.com",
		RequestID: "req-1",
	}, events[0])
	assert.Contains(t, buf.String(), `"log_type":"audit"`)
	assert.Contains(t, buf.String(), `"request_id":"req-1"`)
}

func TestLogAuditNilPublisher(t *testing.T) {
	assert.NotPanics(t, func() {
		LogAudit(context.Background(), nil, nil, ActionSubmitted, "subject", "a@x.com")
	})
}

type failingPublisher struct{}

func (failingPublisher) Emit(context.Context, Event) error { return errors.New("broker down") }

func TestBufferedWorker(t *testing.T) {
	t.Run("forwards queued events and drains on shutdown", func(t *testing.T) {
		sink := NewMemoryPublisher()
		buffered := NewBuffered(8)
		worker := NewWorker(sink, buffered, nil)

		require.NoError(t, buffered.Emit(context.Background(), Event{Action: ActionSubmitted}))
		require.NoError(t, buffered.Emit(context.Background(), Event{Action: ActionVerified}))

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		require.NoError(t, worker.Run(ctx))

		assert.ElementsMatch(t, []Action{ActionSubmitted, ActionVerified}, sink.Actions())
	})

	t.Run("full buffer rejects", func(t *testing.T) {
		buffered := NewBuffered(1)
		require.NoError(t, buffered.Emit(context.Background(), Event{Action: ActionSubmitted}))
		assert.ErrorIs(t, buffered.Emit(context.Background(), Event{Action: ActionSubmitted}), ErrBufferFull)
	})

	t.Run("sink failure does not stop the worker", func(t *testing.T) {
		buffered := NewBuffered(2)
		worker := NewWorker(failingPublisher{}, buffered, slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)))
		require.NoError(t, buffered.Emit(context.Background(), Event{Action: ActionSubmitted}))

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		assert.NoError(t, worker.Run(ctx))
	})
}
