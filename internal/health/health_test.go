package health

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/web-lizzard/review-genie/pkg/testutil"
)

func router(opts ...Option) http.Handler {
	r := chi.NewRouter()
	New(opts...).Register(r)
	return r
}

func TestLiveness(t *testing.T) {
	now := time.Date(2026, 5, 4, 8, 30, 0, 0, time.UTC)
	rr := testutil.DoRequest(router(WithClock(func() time.Time { return now })),
		testutil.NewJSONRequest(t, http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	resp := testutil.DecodeJSON[LivenessResponse](t, rr)
	assert.Equal(t, "healthy", resp.Status)
	assert.Equal(t, "review-genie-backend", resp.Service)
	assert.Equal(t, "0.1.0", resp.Version)
	assert.True(t, now.Equal(resp.Timestamp))
}

func TestReadiness(t *testing.T) {
	ok := func(context.Context) error { return nil }

	t.Run("no checks configured is ready", func(t *testing.T) {
		rr := testutil.DoRequest(router(), testutil.NewJSONRequest(t, http.MethodGet, "/health/ready", nil))
		assert.Equal(t, http.StatusOK, rr.Code)
	})

	t.Run("all checks pass", func(t *testing.T) {
		rr := testutil.DoRequest(router(WithCheck("postgres", ok), WithCheck("redis", ok)),
			testutil.NewJSONRequest(t, http.MethodGet, "/health/ready", nil))

		require.Equal(t, http.StatusOK, rr.Code)
		resp := testutil.DecodeJSON[ReadinessResponse](t, rr)
		assert.Equal(t, "ready", resp.Status)
		assert.Equal(t, map[string]string{"postgres": "ok", "redis": "ok"}, resp.Checks)
	})

	t.Run("failing components are named", func(t *testing.T) {
		down := func(context.Context) error { return errors.New("connection refused") }
		rr := testutil.DoRequest(router(WithCheck("redis", down), WithCheck("postgres", ok)),
			testutil.NewJSONRequest(t, http.MethodGet, "/health/ready", nil))

		require.Equal(t, http.StatusServiceUnavailable, rr.Code)
		resp := testutil.DecodeJSON[ReadinessResponse](t, rr)
		assert.Equal(t, "unavailable", resp.Status)
		assert.Equal(t, []string{"redis"}, resp.Failing)
		assert.Equal(t, "connection refused", resp.Checks["redis"])
	})

	t.Run("slow check is cut off by the timeout", func(t *testing.T) {
		slow := func(ctx context.Context) error {
			<-ctx.Done()
			return ctx.Err()
		}
		rr := testutil.DoRequest(router(WithCheck("postgres", slow), WithTimeout(20*time.Millisecond)),
			testutil.NewJSONRequest(t, http.MethodGet, "/health/ready", nil))

		assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
	})
}
