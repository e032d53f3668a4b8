// Package compliance writes audit events that change the legal record.
//
// Emit is synchronous and fail-closed: the event is written to the outbox,
// normally in the same transaction as the document change, and a failed
// write must fail the operation that produced it.
package compliance

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	audit "demandas/pkg/platform/audit"
)

// Publisher emits compliance events with fail-closed semantics.
type Publisher struct {
	store   audit.Store
	logger  *slog.Logger
	metrics *Metrics
	now     func() time.Time
}

// Option configures the Publisher.
type Option func(*Publisher)

// WithLogger sets a logger for error reporting.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Publisher) {
		p.logger = logger
	}
}

// WithMetrics sets the metrics collector.
func WithMetrics(m *Metrics) Option {
	return func(p *Publisher) {
		p.metrics = m
	}
}

// New creates a compliance publisher over an outbox-backed store.
func New(store audit.Store, opts ...Option) *Publisher {
	p := &Publisher{store: store, now: time.Now}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Emit writes the event and returns the store error, if any.
func (p *Publisher) Emit(ctx context.Context, event audit.Event) error {
	start := p.now()

	if event.AnalystID.IsNil() {
		return fmt.Errorf("compliance event requires AnalystID")
	}
	if event.DocumentID.IsNil() {
		return fmt.Errorf("compliance event requires DocumentID")
	}
	if event.Action == "" {
		return fmt.Errorf("compliance event requires Action")
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = start
	}
	event.Category = audit.CategoryCompliance

	if err := p.store.Append(ctx, event); err != nil {
		p.metrics.IncPersistFailures()
		if p.logger != nil {
			p.logger.ErrorContext(ctx, "CRITICAL: compliance audit failed",
				"action", event.Action,
				"document_id", event.DocumentID,
				"request_id", event.RequestID,
				"error", err,
			)
		}
		return fmt.Errorf("compliance audit persistence failed: %w", err)
	}

	p.metrics.ObservePersistDuration(p.now().Sub(start).Seconds())
	p.metrics.IncEventsEmitted()
	return nil
}
