// Package outbox relays project events committed to the outbox table onto
// the event bus.
package outbox

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/web-lizzard/review-genie/internal/project/metrics"
	"github.com/web-lizzard/review-genie/internal/project/ports"
)

const (
	defaultPollInterval = 2 * time.Second
	defaultBatchSize    = 100
)

// Relay polls unpublished outbox rows and hands them to a publisher. Delivery
// is at-least-once: a crash between Publish and MarkPublished resends the batch.
type Relay struct {
	store     ports.OutboxStore
	publisher ports.EventPublisher
	interval  time.Duration
	batchSize int
	logger    *slog.Logger
	metrics   *metrics.Metrics
}

type Option func(*Relay)

func WithPollInterval(d time.Duration) Option {
	return func(r *Relay) {
		if d > 0 {
			r.interval = d
		}
	}
}

func WithBatchSize(n int) Option {
	return func(r *Relay) {
		if n > 0 {
			r.batchSize = n
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(r *Relay) {
		if logger != nil {
			r.logger = logger
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(r *Relay) {
		r.metrics = m
	}
}

func NewRelay(store ports.OutboxStore, publisher ports.EventPublisher, opts ...Option) *Relay {
	r := &Relay{
		store:     store,
		publisher: publisher,
		interval:  defaultPollInterval,
		batchSize: defaultBatchSize,
		logger:    slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run flushes on every tick until ctx is cancelled. Flush failures are logged
// and retried on the next tick.
func (r *Relay) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.logger.InfoContext(ctx, "outbox relay started", "interval", r.interval.String())
	for {
		if _, err := r.Flush(ctx); err != nil && ctx.Err() == nil {
			r.metrics.IncrementOutboxFailure()
			r.logger.ErrorContext(ctx, "outbox flush failed", "error", err)
		}
		select {
		case <-ctx.Done():
			r.logger.InfoContext(ctx, "outbox relay stopped")
			return nil
		case <-ticker.C:
		}
	}
}

// Flush publishes one batch and returns how many messages were delivered.
func (r *Relay) Flush(ctx context.Context) (int, error) {
	messages, err := r.store.FetchUnpublished(ctx, r.batchSize)
	if err != nil {
		return 0, fmt.Errorf("fetch outbox: %w", err)
	}
	if len(messages) == 0 {
		return 0, nil
	}

	if err := r.publisher.Publish(ctx, messages); err != nil {
		return 0, fmt.Errorf("publish outbox batch: %w", err)
	}

	ids := make([]uuid.UUID, len(messages))
	for i, m := range messages {
		ids[i] = m.ID
	}
	if err := r.store.MarkPublished(ctx, ids); err != nil {
		return 0, fmt.Errorf("mark outbox published: %w", err)
	}

	r.metrics.AddOutboxPublished(len(messages))
	r.logger.DebugContext(ctx, "outbox batch published", "count", len(messages))
	return len(messages), nil
}
