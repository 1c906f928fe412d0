package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for project onboarding.
type Metrics struct {
	// Onboarding outcomes by result token ("created", "project_already_exists", ...)
	CreateOutcome *prometheus.CounterVec

	CreateLatency prometheus.Histogram

	// Remote verification latency by provider and result ("found", "missing", "error")
	VerifyLatency *prometheus.HistogramVec

	VerificationCacheHits   prometheus.Counter
	VerificationCacheMisses prometheus.Counter

	OutboxPublished prometheus.Counter
	OutboxFailures  prometheus.Counter
}

// New creates a Metrics instance registered on the default registry.
func New() *Metrics {
	return NewWithRegisterer(prometheus.DefaultRegisterer)
}

// NewWithRegisterer registers metrics on reg. Tests pass a fresh registry so
// repeated construction does not panic on duplicate registration.
func NewWithRegisterer(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		CreateOutcome: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "review_genie_project_create_total",
			Help: "Total project creation attempts by outcome",
		}, []string{"outcome"}),

		CreateLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "review_genie_project_create_duration_seconds",
			Help:    "Duration of project creation including remote verification",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}),

		VerifyLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "review_genie_remote_verification_duration_seconds",
			Help:    "Duration of remote repository verification calls",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}, []string{"provider", "result"}),

		VerificationCacheHits: factory.NewCounter(prometheus.CounterOpts{
			Name: "review_genie_verification_cache_hits_total",
			Help: "Remote verification results served from cache",
		}),

		VerificationCacheMisses: factory.NewCounter(prometheus.CounterOpts{
			Name: "review_genie_verification_cache_misses_total",
			Help: "Remote verification lookups that missed the cache",
		}),

		OutboxPublished: factory.NewCounter(prometheus.CounterOpts{
			Name: "review_genie_outbox_published_total",
			Help: "Outbox messages delivered to the event bus",
		}),

		OutboxFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "review_genie_outbox_publish_failures_total",
			Help: "Failed outbox relay batches",
		}),
	}
}

func (m *Metrics) IncrementCreateOutcome(outcome string) {
	if m != nil {
		m.CreateOutcome.WithLabelValues(outcome).Inc()
	}
}

func (m *Metrics) ObserveCreateLatency(start time.Time) {
	if m != nil {
		m.CreateLatency.Observe(time.Since(start).Seconds())
	}
}

func (m *Metrics) ObserveVerifyLatency(provider, result string, d time.Duration) {
	if m != nil {
		m.VerifyLatency.WithLabelValues(provider, result).Observe(d.Seconds())
	}
}

func (m *Metrics) IncrementCacheHit() {
	if m != nil {
		m.VerificationCacheHits.Inc()
	}
}

func (m *Metrics) IncrementCacheMiss() {
	if m != nil {
		m.VerificationCacheMisses.Inc()
	}
}

func (m *Metrics) AddOutboxPublished(n int) {
	if m != nil {
		m.OutboxPublished.Add(float64(n))
	}
}

func (m *Metrics) IncrementOutboxFailure() {
	if m != nil {
		m.OutboxFailures.Inc()
	}
}
