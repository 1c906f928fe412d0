package verifier

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/web-lizzard/review-genie/internal/project/models"
	"github.com/web-lizzard/review-genie/internal/project/ports"
	dErrors "github.com/web-lizzard/review-genie/pkg/domain-errors"
)

func ref(t *testing.T, provider models.Provider, owner, repo string) ports.RepositoryRef {
	t.Helper()
	o, err := models.NewOwner(owner)
	require.NoError(t, err)
	r, err := models.NewRepositoryID(repo)
	require.NoError(t, err)
	return ports.RepositoryRef{Provider: provider, Owner: o, RepositoryID: r}
}

func TestProviderEndpoints(t *testing.T) {
	tests := []struct {
		name     string
		provider models.Provider
		build    func(base string) ports.RemoteRepositoryVerifier
		wantPath string
	}{
		{
			name:     "github",
			provider: models.ProviderGitHub,
			build:    func(base string) ports.RemoteRepositoryVerifier { return NewGitHub(base) },
			wantPath: "/repos/acme/widgets",
		},
		{
			name:     "gitlab escapes the namespace path",
			provider: models.ProviderGitLab,
			build:    func(base string) ports.RemoteRepositoryVerifier { return NewGitLab(base) },
			wantPath: "/projects/acme%2Fwidgets",
		},
		{
			name:     "bitbucket",
			provider: models.ProviderBitbucket,
			build:    func(base string) ports.RemoteRepositoryVerifier { return NewBitbucket(base) },
			wantPath: "/repositories/acme/widgets",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotPath string
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotPath = r.URL.EscapedPath()
				assert.Equal(t, "review-genie", r.Header.Get("User-Agent"))
				w.WriteHeader(http.StatusOK)
			}))
			defer srv.Close()

			exists, err := tt.build(srv.URL).Verify(context.Background(), ref(t, tt.provider, "acme", "widgets"))
			require.NoError(t, err)
			assert.True(t, exists)
			assert.Equal(t, tt.wantPath, gotPath)
		})
	}
}

func TestHTTPVerifierStatusInterpretation(t *testing.T) {
	tests := []struct {
		name         string
		status       int
		header       map[string]string
		wantExists   bool
		wantCategory ErrorCategory
		wantCode     dErrors.Code
	}{
		{name: "ok means found", status: http.StatusOK, wantExists: true},
		{name: "not found means missing", status: http.StatusNotFound},
		{name: "unauthorized", status: http.StatusUnauthorized, wantCategory: ErrorAuthentication, wantCode: dErrors.CodeInternal},
		{name: "forbidden", status: http.StatusForbidden, wantCategory: ErrorAuthentication, wantCode: dErrors.CodeInternal},
		{
			name:         "forbidden with exhausted quota",
			status:       http.StatusForbidden,
			header:       map[string]string{"X-RateLimit-Remaining": "0"},
			wantCategory: ErrorRateLimited,
			wantCode:     dErrors.CodeUnavailable,
		},
		{name: "too many requests", status: http.StatusTooManyRequests, wantCategory: ErrorRateLimited, wantCode: dErrors.CodeUnavailable},
		{name: "server error", status: http.StatusBadGateway, wantCategory: ErrorProviderOutage, wantCode: dErrors.CodeUnavailable},
		{name: "unexpected status", status: http.StatusMovedPermanently, wantCategory: ErrorBadStatus, wantCode: dErrors.CodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				for k, v := range tt.header {
					w.Header().Set(k, v)
				}
				w.WriteHeader(tt.status)
			}))
			defer srv.Close()

			client := &http.Client{CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			}}
			v := NewGitHub(srv.URL, WithHTTPClient(client))
			exists, err := v.Verify(context.Background(), ref(t, models.ProviderGitHub, "acme", "widgets"))

			assert.Equal(t, tt.wantExists, exists)
			if tt.wantCategory == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tt.wantCategory, CategoryOf(err))
			assert.True(t, dErrors.HasCode(err, tt.wantCode))
			assert.Equal(t, ReasonVerificationFailed, dErrors.ReasonOf(err))
		})
	}
}

func TestHTTPVerifierSendsToken(t *testing.T) {
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	_, err := NewGitHub(srv.URL, WithToken("s3cret")).
		Verify(context.Background(), ref(t, models.ProviderGitHub, "acme", "widgets"))
	require.NoError(t, err)
	assert.Equal(t, "Bearer s3cret", auth)
}

func TestHTTPVerifierIgnoresOtherProviders(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	exists, err := NewGitHub(srv.URL).Verify(context.Background(), ref(t, models.ProviderGitLab, "acme", "widgets"))
	require.NoError(t, err)
	assert.False(t, exists)
	assert.False(t, called)
}

func TestHTTPVerifierTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		<-release
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()
	defer close(release)

	_, err := NewGitHub(srv.URL, WithTimeout(50*time.Millisecond)).
		Verify(context.Background(), ref(t, models.ProviderGitHub, "acme", "widgets"))
	require.Error(t, err)
	assert.Equal(t, ErrorTimeout, CategoryOf(err))
	assert.True(t, IsRetryable(err))
}
