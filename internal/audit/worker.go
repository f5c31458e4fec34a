package audit

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

// ErrBufferFull is returned by Buffered.Emit when the queue is saturated.
var ErrBufferFull = errors.New("audit buffer full")

// Buffered decouples request handling from the sink: Emit enqueues and
// returns, Worker drains the queue into the sink.
type Buffered struct {
	inbox chan Event
}

// NewBuffered creates a queue holding up to size pending events.
func NewBuffered(size int) *Buffered {
	return &Buffered{inbox: make(chan Event, size)}
}

func (b *Buffered) Emit(_ context.Context, event Event) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	select {
	case b.inbox <- event:
		return nil
	default:
		return ErrBufferFull
	}
}

// Worker consumes queued audit events and forwards them to a sink. A sink
// failure is logged and the event dropped; audit never fails a transition.
type Worker struct {
	sink   Publisher
	inbox  <-chan Event
	logger *slog.Logger
}

func NewWorker(sink Publisher, buffered *Buffered, logger *slog.Logger) *Worker {
	return &Worker{sink: sink, inbox: buffered.inbox, logger: logger}
}

// Run forwards events until ctx is done, then drains what is already queued.
func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			w.drain()
			return nil
		case event := <-w.inbox:
			w.forward(ctx, event)
		}
	}
}

func (w *Worker) drain() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	for {
		select {
		case event := <-w.inbox:
			w.forward(ctx, event)
		default:
			return
		}
	}
}

func (w *Worker) forward(ctx context.Context, event Event) {
	if err := w.sink.Emit(ctx, event); err != nil && w.logger != nil {
		w.logger.WarnContext(ctx, "failed to forward audit event", "action", event.Action, "error", err)
	}
}
