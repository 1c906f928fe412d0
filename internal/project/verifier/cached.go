package verifier

import (
	"context"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"github.com/web-lizzard/review-genie/internal/project/metrics"
	"github.com/web-lizzard/review-genie/internal/project/models"
	"github.com/web-lizzard/review-genie/internal/project/ports"
)

const (
	DefaultCacheTTL = 10 * time.Minute
	cacheKeyPrefix  = "review_genie:verified:"
)

// ResultCache remembers repositories that were confirmed to exist.
type ResultCache interface {
	Contains(ctx context.Context, key string) (bool, error)
	Remember(ctx context.Context, key string, ttl time.Duration) error
}

// RedisCache stores confirmations as expiring marker keys.
type RedisCache struct {
	client redis.Cmdable
}

func NewRedisCache(client redis.Cmdable) *RedisCache {
	return &RedisCache{client: client}
}

func (c *RedisCache) Contains(ctx context.Context, key string) (bool, error) {
	n, err := c.client.Exists(ctx, key).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (c *RedisCache) Remember(ctx context.Context, key string, ttl time.Duration) error {
	return c.client.Set(ctx, key, "1", ttl).Err()
}

// Cached short-circuits verification for recently confirmed repositories and
// collapses concurrent lookups of the same repository into one provider call.
// Only positive answers are cached; a missing repository is re-checked every time.
type Cached struct {
	next     ports.RemoteRepositoryVerifier
	provider models.Provider
	cache    ResultCache
	ttl      time.Duration
	group    singleflight.Group
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

type CachedOption func(*Cached)

func WithCacheTTL(ttl time.Duration) CachedOption {
	return func(c *Cached) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

func WithCacheLogger(logger *slog.Logger) CachedOption {
	return func(c *Cached) {
		if logger != nil {
			c.logger = logger
		}
	}
}

func WithCacheMetrics(m *metrics.Metrics) CachedOption {
	return func(c *Cached) {
		c.metrics = m
	}
}

// WithCacheProvider scopes the cache to the provider the wrapped adapter
// serves. Repositories of other providers go straight to the adapter.
func WithCacheProvider(p models.Provider) CachedOption {
	return func(c *Cached) {
		c.provider = p
	}
}

func NewCached(next ports.RemoteRepositoryVerifier, cache ResultCache, opts ...CachedOption) *Cached {
	c := &Cached{
		next:   next,
		cache:  cache,
		ttl:    DefaultCacheTTL,
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func cacheKey(ref ports.RepositoryRef) string {
	return cacheKeyPrefix + ref.Provider.String() + ":" + ref.Owner.String() + ":" + ref.RepositoryID.String()
}

func (c *Cached) Verify(ctx context.Context, ref ports.RepositoryRef) (bool, error) {
	if c.provider != "" && ref.Provider != c.provider {
		return c.next.Verify(ctx, ref)
	}
	key := cacheKey(ref)

	hit, err := c.cache.Contains(ctx, key)
	if err != nil {
		// Cache trouble degrades to a direct provider call.
		c.logger.WarnContext(ctx, "verification cache read failed", "error", err, "key", key)
	} else if hit {
		c.metrics.IncrementCacheHit()
		return true, nil
	}
	c.metrics.IncrementCacheMiss()

	// The shared call outlives any single caller; the adapter's own client
	// timeout bounds it.
	shared := context.WithoutCancel(ctx)
	ch := c.group.DoChan(key, func() (any, error) {
		exists, err := c.next.Verify(shared, ref)
		if err != nil || !exists {
			return exists, err
		}
		if err := c.cache.Remember(shared, key, c.ttl); err != nil {
			c.logger.WarnContext(shared, "verification cache write failed", "error", err, "key", key)
		}
		return true, nil
	})

	select {
	case <-ctx.Done():
		return false, newVerifierError(ErrorTimeout, ref.Provider, 0, "verification abandoned by caller", ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			return false, res.Err
		}
		return res.Val.(bool), nil
	}
}
