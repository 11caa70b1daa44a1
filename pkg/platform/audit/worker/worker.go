// Package worker decouples record fan-out from the request path. Services
// enqueue finalized records and a background loop hands them to the
// publisher.
package worker

import (
	"context"
	"fmt"
	"log/slog"

	audit "bizhealth/pkg/platform/audit"
	"bizhealth/pkg/platform/sentinel"
)

// Emitter is the downstream fan-out, usually a *publisher.Publisher.
type Emitter interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Worker buffers events and emits them from Run.
type Worker struct {
	next   Emitter
	inbox  chan audit.Event
	logger *slog.Logger
}

const DefaultBuffer = 256

// NewWorker creates a worker with room for buffer pending events.
func NewWorker(next Emitter, buffer int, logger *slog.Logger) *Worker {
	if buffer <= 0 {
		buffer = DefaultBuffer
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Worker{next: next, inbox: make(chan audit.Event, buffer), logger: logger}
}

// Emit enqueues event without blocking. A full queue drops the event and
// reports ErrUnavailable; the primary audit file is unaffected.
func (w *Worker) Emit(ctx context.Context, event audit.Event) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case w.inbox <- event:
		return nil
	default:
		return fmt.Errorf("audit queue full, dropping %s for %s: %w", event.Kind, event.RunID, sentinel.ErrUnavailable)
	}
}

// Pending reports how many events are waiting.
func (w *Worker) Pending() int {
	return len(w.inbox)
}

// Run emits queued events until ctx is done.
func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case event := <-w.inbox:
			w.emit(ctx, event)
		}
	}
}

// Drain emits whatever is still queued. Call it after Run returns and the
// producers have stopped so accepted records are not lost on shutdown.
func (w *Worker) Drain(ctx context.Context) {
	for {
		select {
		case event := <-w.inbox:
			w.emit(ctx, event)
		default:
			return
		}
	}
}

func (w *Worker) emit(ctx context.Context, event audit.Event) {
	if err := w.next.Emit(ctx, event); err != nil {
		w.logger.WarnContext(ctx, "audit fan-out failed",
			"kind", string(event.Kind),
			"run_id", event.RunID.String(),
			"error", err,
		)
	}
}
