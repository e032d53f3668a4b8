// Package ops records routine form activity. Tracking never blocks or fails
// the caller: events are sampled, buffered and written by a background loop,
// and dropped when the buffer is full or the store is failing.
package ops

import (
	"context"
	"log/slog"
	"time"

	audit "demandas/pkg/platform/audit"
)

const defaultBufferSize = 256

// Drop reasons reported in metrics.
const (
	DropSampled    = "sampled"
	DropBufferFull = "buffer_full"
	DropCircuit    = "circuit_open"
	DropPersist    = "persist_failed"
)

// Tracker emits operational events.
type Tracker struct {
	store   audit.Store
	inbox   chan audit.Event
	sampler *Sampler
	breaker *CircuitBreaker
	logger  *slog.Logger
	metrics *Metrics
	now     func() time.Time
}

// Option configures a Tracker.
type Option func(*Tracker)

func WithSampler(s *Sampler) Option                { return func(t *Tracker) { t.sampler = s } }
func WithCircuitBreaker(cb *CircuitBreaker) Option { return func(t *Tracker) { t.breaker = cb } }
func WithLogger(l *slog.Logger) Option             { return func(t *Tracker) { t.logger = l } }
func WithMetrics(m *Metrics) Option                { return func(t *Tracker) { t.metrics = m } }

// WithBufferSize sets how many events may wait for the background loop.
func WithBufferSize(n int) Option {
	return func(t *Tracker) {
		if n > 0 {
			t.inbox = make(chan audit.Event, n)
		}
	}
}

// New builds a Tracker. Call Run to start writing.
func New(store audit.Store, opts ...Option) *Tracker {
	t := &Tracker{
		store:   store,
		inbox:   make(chan audit.Event, defaultBufferSize),
		sampler: NewSampler(1),
		breaker: NewCircuitBreaker(5, time.Minute),
		logger:  slog.Default(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Track queues an event. It returns immediately.
func (t *Tracker) Track(_ context.Context, event audit.Event) {
	if !t.sampler.ShouldSample(event.Action) {
		t.metrics.IncDropped(DropSampled)
		return
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = t.now()
	}
	event.Category = audit.CategoryOperations
	select {
	case t.inbox <- event:
	default:
		t.metrics.IncDropped(DropBufferFull)
	}
}

// Run writes queued events until ctx is cancelled, then drains what is left.
func (t *Tracker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			t.drain(context.WithoutCancel(ctx))
			return ctx.Err()
		case event := <-t.inbox:
			t.persist(ctx, event)
		}
	}
}

func (t *Tracker) drain(ctx context.Context) {
	for {
		select {
		case event := <-t.inbox:
			t.persist(ctx, event)
		default:
			return
		}
	}
}

func (t *Tracker) persist(ctx context.Context, event audit.Event) {
	if !t.breaker.Allow() {
		t.metrics.IncDropped(DropCircuit)
		return
	}
	if err := t.store.Append(ctx, event); err != nil {
		open := t.breaker.RecordFailure()
		t.metrics.SetCircuitBreakerState(open)
		t.metrics.IncDropped(DropPersist)
		t.logger.WarnContext(ctx, "ops audit event dropped",
			"action", event.Action,
			"request_id", event.RequestID,
			"error", err,
		)
		return
	}
	t.breaker.RecordSuccess()
	t.metrics.SetCircuitBreakerState(false)
	t.metrics.IncTracked()
}
