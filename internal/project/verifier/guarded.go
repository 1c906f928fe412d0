package verifier

import (
	"context"
	"log/slog"

	"github.com/web-lizzard/review-genie/internal/project/models"
	"github.com/web-lizzard/review-genie/internal/project/ports"
	"github.com/web-lizzard/review-genie/pkg/platform/circuit"
)

// Guarded puts a circuit breaker in front of one provider adapter. Requests
// for other providers bypass the breaker. Only retryable failures count
// against it; a "not found" answer or a credentials problem says nothing
// about provider health.
type Guarded struct {
	provider models.Provider
	next     ports.RemoteRepositoryVerifier
	breaker  *circuit.Breaker
	logger   *slog.Logger
}

func NewGuarded(provider models.Provider, next ports.RemoteRepositoryVerifier, breaker *circuit.Breaker, logger *slog.Logger) *Guarded {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Guarded{provider: provider, next: next, breaker: breaker, logger: logger}
}

func (g *Guarded) Verify(ctx context.Context, ref ports.RepositoryRef) (bool, error) {
	if ref.Provider != g.provider {
		return g.next.Verify(ctx, ref)
	}
	if !g.breaker.Allow() {
		return false, newVerifierError(ErrorProviderOutage, ref.Provider, 0, "circuit open", nil)
	}

	exists, err := g.next.Verify(ctx, ref)
	if err != nil && IsRetryable(err) {
		if _, change := g.breaker.RecordFailure(); change.Opened {
			g.logger.WarnContext(ctx, "verifier circuit opened",
				"breaker", g.breaker.Name(),
				"provider", ref.Provider.String(),
				"error", err,
			)
		}
		return false, err
	}

	if _, change := g.breaker.RecordSuccess(); change.Closed {
		g.logger.InfoContext(ctx, "verifier circuit closed", "breaker", g.breaker.Name())
	}
	return exists, err
}
