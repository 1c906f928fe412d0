package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/web-lizzard/review-genie/internal/health"
	jwttoken "github.com/web-lizzard/review-genie/internal/jwt_token"
	"github.com/web-lizzard/review-genie/internal/platform/config"
	"github.com/web-lizzard/review-genie/internal/platform/kafka"
	httpmetrics "github.com/web-lizzard/review-genie/internal/platform/metrics"
	"github.com/web-lizzard/review-genie/internal/platform/postgres"
	platformredis "github.com/web-lizzard/review-genie/internal/platform/redis"
	"github.com/web-lizzard/review-genie/internal/project/factory"
	"github.com/web-lizzard/review-genie/internal/project/handler"
	"github.com/web-lizzard/review-genie/internal/project/metrics"
	"github.com/web-lizzard/review-genie/internal/project/models"
	"github.com/web-lizzard/review-genie/internal/project/outbox"
	"github.com/web-lizzard/review-genie/internal/project/ports"
	"github.com/web-lizzard/review-genie/internal/project/service"
	"github.com/web-lizzard/review-genie/internal/project/store"
	"github.com/web-lizzard/review-genie/internal/project/verifier"
	"github.com/web-lizzard/review-genie/pkg/platform/circuit"
	authmw "github.com/web-lizzard/review-genie/pkg/platform/middleware/auth"
	"github.com/web-lizzard/review-genie/pkg/platform/middleware/metadata"
	"github.com/web-lizzard/review-genie/pkg/platform/middleware/request"
	"github.com/web-lizzard/review-genie/pkg/platform/middleware/requesttime"
)

const (
	jwtIssuer   = "review-genie"
	jwtAudience = "review-genie-api"
)

// projectStore is what both store implementations provide.
type projectStore interface {
	ports.UnitOfWorkFactory
	ports.ReadRepository
	ports.OutboxStore
	Ping(ctx context.Context) error
}

type application struct {
	router        http.Handler
	relay         *outbox.Relay
	storeKind     string
	publisherKind string
	closers       []func()
}

func (a *application) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

func build(ctx context.Context, cfg config.Config, log *slog.Logger) (_ *application, err error) {
	app := &application{}
	defer func() {
		if err != nil {
			app.close()
		}
	}()

	m := metrics.New()

	projects, err := buildStore(ctx, cfg.Database, log, app)
	if err != nil {
		return nil, err
	}

	redisClient, err := platformredis.New(ctx, cfg.Redis)
	if err != nil {
		return nil, err
	}
	if redisClient != nil {
		app.closers = append(app.closers, func() { _ = redisClient.Close() })
	}

	publisher, err := buildPublisher(ctx, cfg.Kafka, log, app)
	if err != nil {
		return nil, err
	}
	app.relay = outbox.NewRelay(projects, publisher,
		outbox.WithPollInterval(cfg.Outbox.PollInterval),
		outbox.WithBatchSize(cfg.Outbox.BatchSize),
		outbox.WithLogger(log),
		outbox.WithMetrics(m),
	)

	policies, err := factory.NewStaticPoliciesFactory(cfg.Policies.PullRequest, cfg.Policies.RetryLimitType, cfg.Policies.RetryLimitValue)
	if err != nil {
		return nil, fmt.Errorf("default policies: %w", err)
	}

	var verifierCache verifier.ResultCache
	if redisClient != nil {
		verifierCache = verifier.NewRedisCache(redisClient)
	}
	verifiers := buildVerifiers(cfg.Verifier, verifierCache, log, m)

	opts := []service.Option{service.WithLogger(log), service.WithMetrics(m)}
	valueObjects := factory.NewURLBasedValueObjectsFactory()
	creator := service.NewCreateProjectService(valueObjects, factory.NewProjectFactory(valueObjects, policies), verifiers, opts...)
	commands := service.NewCreateProjectCommandHandler(projects, valueObjects, creator, opts...)
	queries := service.NewQueryService(projects, opts...)

	var handlerOpts []handler.Option
	if cfg.Server.JWTSigningKey != "" {
		validator := jwttoken.NewJWTServiceAdapter(jwttoken.NewJWTService(cfg.Server.JWTSigningKey, jwtIssuer, jwtAudience))
		handlerOpts = append(handlerOpts, handler.WithWriteGuards(authmw.RequireAuth(validator, log)))
	} else {
		log.Warn("JWT_SIGNING_KEY not set; project creation is unauthenticated")
	}

	healthOpts := []health.Option{health.WithCheck(app.storeKind, projects.Ping)}
	if redisClient != nil {
		healthOpts = append(healthOpts, health.WithCheck("redis", redisClient.Health))
	}

	app.router = newRouter(log, httpmetrics.New(),
		handler.New(commands, queries, log, handlerOpts...),
		health.New(healthOpts...),
	)
	return app, nil
}

func buildStore(ctx context.Context, cfg config.Database, log *slog.Logger, app *application) (projectStore, error) {
	db, err := postgres.Open(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if db == nil {
		log.Warn("DATABASE_URL not set; using in-memory project store")
		app.storeKind = "memory"
		return store.NewInMemory(), nil
	}
	app.closers = append(app.closers, func() { _ = db.Close() })

	if err := store.Migrate(ctx, db); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	app.storeKind = "postgres"
	return store.NewPostgres(db, store.WithTxTimeout(cfg.TxTimeout)), nil
}

func buildPublisher(ctx context.Context, cfg config.Kafka, log *slog.Logger, app *application) (ports.EventPublisher, error) {
	client, err := kafka.New(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if client == nil {
		app.publisherKind = "log"
		return outbox.NewLogPublisher(log), nil
	}
	app.closers = append(app.closers, client.Close)

	if err := outbox.EnsureTopic(ctx, client, cfg.Topic, 3, 1); err != nil {
		return nil, err
	}
	app.publisherKind = "kafka"
	return outbox.NewKafkaPublisher(client, cfg.Topic), nil
}

// buildVerifiers returns one verifier per provider: HTTP client, guarded by a
// per-provider breaker, behind the positive-result cache when Redis is
// available. Each layer only acts on its own provider's repositories.
func buildVerifiers(cfg config.Verifier, cache verifier.ResultCache, log *slog.Logger, m *metrics.Metrics) []ports.RemoteRepositoryVerifier {
	httpOpts := func(token string) []verifier.Option {
		opts := []verifier.Option{verifier.WithTimeout(cfg.Timeout)}
		if token != "" {
			opts = append(opts, verifier.WithToken(token))
		}
		return opts
	}
	raw := map[models.Provider]ports.RemoteRepositoryVerifier{
		models.ProviderGitHub:    verifier.NewGitHub(cfg.GitHubAPIURL, httpOpts(cfg.GitHubToken)...),
		models.ProviderGitLab:    verifier.NewGitLab(cfg.GitLabAPIURL, httpOpts(cfg.GitLabToken)...),
		models.ProviderBitbucket: verifier.NewBitbucket(cfg.BitbucketAPIURL, httpOpts("")...),
	}

	out := make([]ports.RemoteRepositoryVerifier, 0, len(raw))
	for _, provider := range models.Providers() {
		breaker := circuit.New(provider.String(),
			circuit.WithFailureThreshold(cfg.BreakerThreshold),
			circuit.WithCooldown(cfg.BreakerCooldown),
		)
		var v ports.RemoteRepositoryVerifier = verifier.NewGuarded(provider, raw[provider], breaker, log)
		if cache != nil {
			v = verifier.NewCached(v, cache,
				verifier.WithCacheProvider(provider),
				verifier.WithCacheTTL(cfg.CacheTTL),
				verifier.WithCacheLogger(log),
				verifier.WithCacheMetrics(m),
			)
		}
		out = append(out, v)
	}
	return out
}

type registrar interface {
	Register(r chi.Router)
}

func newRouter(log *slog.Logger, m *httpmetrics.Metrics, registrars ...registrar) http.Handler {
	r := chi.NewRouter()
	r.Use(request.RequestID)
	r.Use(m.Middleware)
	r.Use(requesttime.Middleware)
	r.Use(metadata.ClientMetadata)
	r.Use(request.Logger(log))
	r.Use(request.Recovery(log))

	r.Handle("/metrics", promhttp.Handler())
	r.Route("/api/v1", func(r chi.Router) {
		for _, reg := range registrars {
			reg.Register(r)
		}
	})
	return r
}
