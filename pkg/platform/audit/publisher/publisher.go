// Package publisher fans finalized records out to secondary sinks.
//
// Delivery is synchronous and best-effort per sink: one sink failing never
// stops the others, and callers decide whether the joined error matters.
// Each sink sits behind its own circuit breaker so an unreachable broker or
// cache is not retried on every record.
package publisher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	audit "bizhealth/pkg/platform/audit"
	"bizhealth/pkg/platform/circuit"
)

type sinkEntry struct {
	sink    audit.Sink
	breaker *circuit.Breaker
}

// Publisher delivers events to every registered sink.
type Publisher struct {
	sinks    []sinkEntry
	logger   *slog.Logger
	metrics  *Metrics
	breakers []circuit.Option
	timeout  time.Duration
}

type Option func(*Publisher)

// WithSink registers a sink. Nil sinks are ignored so optional backends can
// be passed unconditionally.
func WithSink(s audit.Sink) Option {
	return func(p *Publisher) {
		if s != nil {
			p.sinks = append(p.sinks, sinkEntry{sink: s})
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(p *Publisher) {
		if logger != nil {
			p.logger = logger
		}
	}
}

func WithMetrics(m *Metrics) Option {
	return func(p *Publisher) {
		p.metrics = m
	}
}

// WithBreakerOptions configures the per-sink circuit breakers.
func WithBreakerOptions(opts ...circuit.Option) Option {
	return func(p *Publisher) {
		p.breakers = append(p.breakers, opts...)
	}
}

// WithSinkTimeout bounds each sink call. Zero disables the bound.
func WithSinkTimeout(d time.Duration) Option {
	return func(p *Publisher) {
		p.timeout = d
	}
}

func NewPublisher(opts ...Option) *Publisher {
	p := &Publisher{
		logger:  slog.Default(),
		timeout: 5 * time.Second,
	}
	for _, opt := range opts {
		opt(p)
	}
	for i := range p.sinks {
		p.sinks[i].breaker = circuit.New(p.sinks[i].sink.Name(), p.breakers...)
	}
	return p
}

// Sinks returns the registered sink names in delivery order.
func (p *Publisher) Sinks() []string {
	names := make([]string, 0, len(p.sinks))
	for _, e := range p.sinks {
		names = append(names, e.sink.Name())
	}
	return names
}

// Emit delivers event to every sink and returns the joined sink failures.
// Sinks whose breaker is open are skipped and reported as unavailable.
func (p *Publisher) Emit(ctx context.Context, event audit.Event) error {
	if !event.Kind.IsValid() {
		return fmt.Errorf("emit: unsupported kind %q", event.Kind)
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	var errs []error
	kind := string(event.Kind)
	for _, e := range p.sinks {
		name := e.sink.Name()
		if !e.breaker.Allow() {
			p.metrics.incSkipped(name, kind)
			errs = append(errs, fmt.Errorf("sink %s: %w", name, ErrSinkOpen))
			continue
		}

		err := p.publishOne(ctx, e.sink, event)
		if err != nil {
			_, change := e.breaker.RecordFailure()
			p.metrics.incFailure(name, kind)
			if change.Opened {
				p.metrics.setBreakerOpen(name, true)
				p.logger.WarnContext(ctx, "audit sink breaker opened", "sink", name)
			}
			p.logger.ErrorContext(ctx, "audit sink publish failed",
				"sink", name,
				"kind", kind,
				"run_id", event.RunID.String(),
				"error", err,
			)
			errs = append(errs, fmt.Errorf("sink %s: %w", name, err))
			continue
		}

		_, change := e.breaker.RecordSuccess()
		if change.Closed {
			p.metrics.setBreakerOpen(name, false)
			p.logger.InfoContext(ctx, "audit sink breaker closed", "sink", name)
		}
		p.metrics.incPublished(name, kind)
	}
	return errors.Join(errs...)
}

func (p *Publisher) publishOne(ctx context.Context, s audit.Sink, event audit.Event) error {
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}
	return s.Publish(ctx, event)
}

// ErrSinkOpen marks a sink skipped because its breaker is open.
var ErrSinkOpen = errors.New("sink circuit open")
