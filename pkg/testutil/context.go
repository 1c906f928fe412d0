package testutil

import (
	"net/http"

	"github.com/web-lizzard/review-genie/pkg/requestcontext"
)

// WithRequestID attaches a request id to the request context, as the
// RequestID middleware would.
func WithRequestID(req *http.Request, requestID string) *http.Request {
	return req.WithContext(requestcontext.WithRequestID(req.Context(), requestID))
}
