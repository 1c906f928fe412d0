//go:build integration

package postgres_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/web-lizzard/review-genie/internal/platform/config"
	"github.com/web-lizzard/review-genie/internal/platform/postgres"
	"github.com/web-lizzard/review-genie/pkg/testutil/containers"
)

func TestOpenWithBothDrivers(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	pg := containers.GetManager().GetPostgres(t)

	for _, driver := range []string{"postgres", "pgx"} {
		t.Run(driver, func(t *testing.T) {
			db, err := postgres.Open(context.Background(), config.Database{URL: pg.DSN, Driver: driver, MaxOpenConns: 4})
			require.NoError(t, err)
			defer db.Close()

			var one int
			require.NoError(t, db.QueryRow("SELECT 1").Scan(&one))
			assert.Equal(t, 1, one)
		})
	}
}
