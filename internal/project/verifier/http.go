// Package verifier holds RemoteRepositoryVerifier adapters for the hosting
// providers plus caching and circuit-breaking decorators.
package verifier

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"github.com/web-lizzard/review-genie/internal/project/models"
	"github.com/web-lizzard/review-genie/internal/project/ports"
)

const (
	defaultTimeout = 5 * time.Second
	userAgent      = "review-genie"
)

type Option func(*config)

type config struct {
	token      string
	timeout    time.Duration
	httpClient *http.Client
}

// WithToken authenticates requests with a bearer access token.
func WithToken(token string) Option {
	return func(c *config) {
		c.token = strings.TrimSpace(token)
	}
}

func WithTimeout(d time.Duration) Option {
	return func(c *config) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithHTTPClient replaces the base client. Its transport is still wrapped
// with the token source when a token is configured.
func WithHTTPClient(client *http.Client) Option {
	return func(c *config) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// httpVerifier is the provider-agnostic core: one GET, status interpreted
// as 200 found, 404 missing, anything else a categorized failure.
type httpVerifier struct {
	provider models.Provider
	baseURL  string
	endpoint func(ref ports.RepositoryRef) string
	client   *http.Client
}

func newHTTPVerifier(provider models.Provider, baseURL string, endpoint func(ports.RepositoryRef) string, opts []Option) *httpVerifier {
	cfg := config{timeout: defaultTimeout}
	for _, opt := range opts {
		opt(&cfg)
	}

	base := cfg.httpClient
	if base == nil {
		base = &http.Client{}
	}
	client := &http.Client{
		Transport:     base.Transport,
		CheckRedirect: base.CheckRedirect,
		Jar:           base.Jar,
		Timeout:       cfg.timeout,
	}
	if cfg.token != "" {
		client.Transport = &oauth2.Transport{
			Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.token, TokenType: "Bearer"}),
			Base:   base.Transport,
		}
	}

	return &httpVerifier{
		provider: provider,
		baseURL:  strings.TrimRight(baseURL, "/"),
		endpoint: endpoint,
		client:   client,
	}
}

func (v *httpVerifier) Verify(ctx context.Context, ref ports.RepositoryRef) (bool, error) {
	if ref.Provider != v.provider {
		return false, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, v.baseURL+v.endpoint(ref), nil)
	if err != nil {
		return false, newVerifierError(ErrorBadStatus, v.provider, 0, "build request", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := v.client.Do(req)
	if err != nil {
		if isTimeout(ctx, err) {
			return false, newVerifierError(ErrorTimeout, v.provider, 0, "request timed out", err)
		}
		return false, newVerifierError(ErrorProviderOutage, v.provider, 0, "request failed", err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
		_ = resp.Body.Close()
	}()

	switch {
	case resp.StatusCode == http.StatusOK:
		return true, nil
	case resp.StatusCode == http.StatusNotFound:
		return false, nil
	case resp.StatusCode == http.StatusTooManyRequests,
		resp.StatusCode == http.StatusForbidden && resp.Header.Get("X-RateLimit-Remaining") == "0":
		return false, newVerifierError(ErrorRateLimited, v.provider, resp.StatusCode, "rate limited", nil)
	case resp.StatusCode == http.StatusUnauthorized, resp.StatusCode == http.StatusForbidden:
		return false, newVerifierError(ErrorAuthentication, v.provider, resp.StatusCode, "credentials rejected", nil)
	case resp.StatusCode >= http.StatusInternalServerError:
		return false, newVerifierError(ErrorProviderOutage, v.provider, resp.StatusCode,
			fmt.Sprintf("unexpected status %d", resp.StatusCode), nil)
	default:
		return false, newVerifierError(ErrorBadStatus, v.provider, resp.StatusCode,
			fmt.Sprintf("unexpected status %d", resp.StatusCode), nil)
	}
}

func isTimeout(ctx context.Context, err error) bool {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
