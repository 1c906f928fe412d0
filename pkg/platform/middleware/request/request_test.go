package request

import (
	"bytes"
	"log/slog"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/web-lizzard/review-genie/pkg/requestcontext"
	"github.com/web-lizzard/review-genie/pkg/testutil"
)

func echoRequestID(seen *string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*seen = requestcontext.RequestID(r.Context())
		w.WriteHeader(http.StatusAccepted)
	})
}

func TestRequestID(t *testing.T) {
	t.Run("propagates caller id", func(t *testing.T) {
		var seen string
		req := testutil.NewJSONRequest(t, http.MethodGet, "/", nil)
		req.Header.Set(HeaderRequestID, "req-123")

		rr := testutil.DoRequest(RequestID(echoRequestID(&seen)), req)
		assert.Equal(t, "req-123", seen)
		assert.Equal(t, "req-123", rr.Header().Get(HeaderRequestID))
	})

	t.Run("assigns a uuid when absent", func(t *testing.T) {
		var seen string
		rr := testutil.DoRequest(RequestID(echoRequestID(&seen)), testutil.NewJSONRequest(t, http.MethodGet, "/", nil))
		_, err := uuid.Parse(seen)
		require.NoError(t, err)
		assert.Equal(t, seen, rr.Header().Get(HeaderRequestID))
	})
}

func TestLoggerAndRecovery(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	boom := http.HandlerFunc(func(http.ResponseWriter, *http.Request) { panic("boom") })

	chain := RequestID(Logger(logger)(Recovery(logger)(boom)))
	rr := testutil.DoRequest(chain, testutil.NewJSONRequest(t, http.MethodPost, "/api/v1/projects", nil))

	testutil.AssertStatusAndError(t, rr, http.StatusInternalServerError, "internal_error")
	out := buf.String()
	assert.Contains(t, out, `"msg":"panic recovered"`)
	assert.Contains(t, out, `"msg":"http_request"`)
	assert.Contains(t, out, `"status":500`)
	assert.Contains(t, out, `"path":"/api/v1/projects"`)
}

func TestLoggerUsesContextRequestID(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	ok := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusCreated) })

	req := testutil.WithRequestID(testutil.NewJSONRequest(t, http.MethodPost, "/api/v1/projects", nil), "req-9")
	testutil.DoRequest(Logger(logger)(ok), req)

	assert.Contains(t, buf.String(), `"request_id":"req-9"`)
	assert.Contains(t, buf.String(), `"status":201`)
}
