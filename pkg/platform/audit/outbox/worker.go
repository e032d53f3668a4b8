// Package outbox ships audit events from the Postgres outbox to Kafka.
package outbox

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	audit "demandas/pkg/platform/audit"
	"demandas/pkg/platform/audit/store/postgres"
	"demandas/pkg/platform/circuit"
)

const (
	defaultInterval  = time.Second
	defaultBatchSize = 100
	// probeEvery is how many ticks pass between attempts while the breaker
	// is open.
	probeEvery = 10
)

// Source reads and acknowledges outbox entries.
type Source interface {
	Pending(ctx context.Context, limit int) ([]postgres.Entry, error)
	MarkPublished(ctx context.Context, ids []uuid.UUID) error
}

// TxRunner runs fn in one transaction so locked rows stay locked until
// they are marked.
type TxRunner interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Worker polls the outbox on an interval.
type Worker struct {
	source    Source
	publisher audit.Publisher
	tx        TxRunner
	logger    *slog.Logger
	interval  time.Duration
	batchSize int
	breaker   *circuit.Breaker
	ticks     int
}

type Option func(*Worker)

func WithInterval(d time.Duration) Option {
	return func(w *Worker) {
		if d > 0 {
			w.interval = d
		}
	}
}

func WithBatchSize(n int) Option {
	return func(w *Worker) {
		if n > 0 {
			w.batchSize = n
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(w *Worker) { w.logger = l }
}

func WithBreaker(b *circuit.Breaker) Option {
	return func(w *Worker) {
		if b != nil {
			w.breaker = b
		}
	}
}

func NewWorker(source Source, publisher audit.Publisher, tx TxRunner, opts ...Option) *Worker {
	w := &Worker{
		source:    source,
		publisher: publisher,
		tx:        tx,
		logger:    slog.Default(),
		interval:  defaultInterval,
		batchSize: defaultBatchSize,
		breaker:   circuit.New("audit-outbox"),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run drains the outbox until ctx is cancelled. Publish failures are
// logged and retried on a later tick.
func (w *Worker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			w.tick(ctx)
		}
	}
}

// tick drains full batches until the outbox runs dry or a batch fails.
// While the breaker is open only every probeEvery-th tick tries at all.
func (w *Worker) tick(ctx context.Context) {
	w.ticks++
	if w.breaker.IsOpen() && w.ticks%probeEvery != 0 {
		return
	}
	for {
		n, err := w.Drain(ctx)
		if err != nil {
			if _, change := w.breaker.RecordFailure(); change.Opened {
				w.logger.WarnContext(ctx, "outbox circuit opened", "breaker", w.breaker.Name())
			}
			w.logger.ErrorContext(ctx, "outbox publish failed", "error", err)
			return
		}
		if _, change := w.breaker.RecordSuccess(); change.Closed {
			w.logger.InfoContext(ctx, "outbox circuit closed", "breaker", w.breaker.Name())
		}
		if n < w.batchSize {
			return
		}
	}
}

// Drain publishes one batch and reports how many entries it shipped.
func (w *Worker) Drain(ctx context.Context) (int, error) {
	var shipped int
	err := w.tx.RunInTx(ctx, func(ctx context.Context) error {
		entries, err := w.source.Pending(ctx, w.batchSize)
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			return nil
		}
		events := make([]audit.Event, len(entries))
		ids := make([]uuid.UUID, len(entries))
		for i, e := range entries {
			events[i] = e.Event
			ids[i] = e.ID
		}
		if err := w.publisher.Publish(ctx, events...); err != nil {
			return err
		}
		if err := w.source.MarkPublished(ctx, ids); err != nil {
			return err
		}
		shipped = len(entries)
		return nil
	})
	return shipped, err
}
