package verifier

import (
	"errors"
	"fmt"

	"github.com/web-lizzard/review-genie/internal/project/models"
	dErrors "github.com/web-lizzard/review-genie/pkg/domain-errors"
)

// ErrorCategory is the normalized failure taxonomy for provider calls.
type ErrorCategory string

const (
	ErrorTimeout        ErrorCategory = "timeout"
	ErrorRateLimited    ErrorCategory = "rate_limited"
	ErrorProviderOutage ErrorCategory = "provider_outage"
	ErrorAuthentication ErrorCategory = "authentication"
	ErrorBadStatus      ErrorCategory = "bad_status"
)

// ReasonVerificationFailed is the status token surfaced to API clients when a
// provider could not answer.
const ReasonVerificationFailed = "remote_verification_failed"

// VerifierError describes an operational failure talking to a provider.
type VerifierError struct {
	Category   ErrorCategory
	Provider   models.Provider
	StatusCode int
	Message    string
	Underlying error
	Retryable  bool
}

func (e *VerifierError) Error() string {
	if e.Underlying != nil {
		return fmt.Sprintf("verifier %s [%s]: %s: %v", e.Provider, e.Category, e.Message, e.Underlying)
	}
	return fmt.Sprintf("verifier %s [%s]: %s", e.Provider, e.Category, e.Message)
}

func (e *VerifierError) Unwrap() error {
	return e.Underlying
}

// newVerifierError wraps the failure in a coded error so transports can map
// it without knowing about verifiers.
func newVerifierError(category ErrorCategory, provider models.Provider, status int, msg string, underlying error) error {
	detail := &VerifierError{
		Category:   category,
		Provider:   provider,
		StatusCode: status,
		Message:    msg,
		Underlying: underlying,
		Retryable:  category == ErrorTimeout || category == ErrorRateLimited || category == ErrorProviderOutage,
	}
	return &dErrors.Error{
		Code:    codeFor(category),
		Reason:  ReasonVerificationFailed,
		Message: fmt.Sprintf("Could not verify repository on provider '%s'", provider),
		Err:     detail,
	}
}

func codeFor(category ErrorCategory) dErrors.Code {
	switch category {
	case ErrorTimeout:
		return dErrors.CodeTimeout
	case ErrorRateLimited, ErrorProviderOutage:
		return dErrors.CodeUnavailable
	default:
		return dErrors.CodeInternal
	}
}

// IsRetryable reports whether err is a transient provider failure.
func IsRetryable(err error) bool {
	var ve *VerifierError
	if errors.As(err, &ve) {
		return ve.Retryable
	}
	return false
}

// CategoryOf extracts the failure category, or "" for foreign errors.
func CategoryOf(err error) ErrorCategory {
	var ve *VerifierError
	if errors.As(err, &ve) {
		return ve.Category
	}
	return ""
}
