// Package health serves liveness and readiness endpoints.
package health

import (
	"context"
	"net/http"
	"slices"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"

	"github.com/web-lizzard/review-genie/pkg/platform/httputil"
)

const (
	ServiceName    = "review-genie-backend"
	ServiceVersion = "0.1.0"

	defaultCheckTimeout = 2 * time.Second
)

// Check reports whether a dependency is reachable.
type Check func(ctx context.Context) error

type Handler struct {
	names   []string
	checks  map[string]Check
	timeout time.Duration
	now     func() time.Time
}

type Option func(*Handler)

// WithCheck registers a named readiness check.
func WithCheck(name string, check Check) Option {
	return func(h *Handler) {
		if check == nil {
			return
		}
		if _, exists := h.checks[name]; !exists {
			h.names = append(h.names, name)
		}
		h.checks[name] = check
	}
}

func WithTimeout(d time.Duration) Option {
	return func(h *Handler) {
		if d > 0 {
			h.timeout = d
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(h *Handler) {
		h.now = now
	}
}

func New(opts ...Option) *Handler {
	h := &Handler{
		checks:  make(map[string]Check),
		timeout: defaultCheckTimeout,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

type LivenessResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Service   string    `json:"service"`
	Version   string    `json:"version"`
}

type ReadinessResponse struct {
	Status  string            `json:"status"`
	Checks  map[string]string `json:"checks"`
	Failing []string          `json:"failing,omitempty"`
}

func (h *Handler) Register(r chi.Router) {
	r.Get("/health", h.HandleLiveness)
	r.Get("/health/ready", h.HandleReadiness)
}

func (h *Handler) HandleLiveness(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, LivenessResponse{
		Status:    "healthy",
		Timestamp: h.now().UTC(),
		Service:   ServiceName,
		Version:   ServiceVersion,
	})
}

// HandleReadiness runs every check concurrently and answers 503 naming the
// failing components when any check errors.
func (h *Handler) HandleReadiness(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var (
		mu      sync.Mutex
		results = make(map[string]string, len(h.names))
		failing []string
		g       errgroup.Group
	)
	for _, name := range h.names {
		check := h.checks[name]
		g.Go(func() error {
			err := check(ctx)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				results[name] = err.Error()
				failing = append(failing, name)
				return nil
			}
			results[name] = "ok"
			return nil
		})
	}
	_ = g.Wait()

	if len(failing) > 0 {
		slices.Sort(failing)
		httputil.WriteJSON(w, http.StatusServiceUnavailable, ReadinessResponse{
			Status:  "unavailable",
			Checks:  results,
			Failing: failing,
		})
		return
	}
	httputil.WriteJSON(w, http.StatusOK, ReadinessResponse{Status: "ready", Checks: results})
}
