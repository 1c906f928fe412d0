package verifier

import (
	"net/url"

	"github.com/web-lizzard/review-genie/internal/project/models"
	"github.com/web-lizzard/review-genie/internal/project/ports"
)

const (
	DefaultGitHubAPIURL    = "https://api.github.com"
	DefaultGitLabAPIURL    = "https://gitlab.com/api/v4"
	DefaultBitbucketAPIURL = "https://api.bitbucket.org/2.0"
)

var (
	_ ports.RemoteRepositoryVerifier = (*GitHub)(nil)
	_ ports.RemoteRepositoryVerifier = (*GitLab)(nil)
	_ ports.RemoteRepositoryVerifier = (*Bitbucket)(nil)
	_ ports.RemoteRepositoryVerifier = (*Cached)(nil)
	_ ports.RemoteRepositoryVerifier = (*Guarded)(nil)
)

// GitHub checks GET /repos/{owner}/{repo}.
type GitHub struct{ *httpVerifier }

func NewGitHub(baseURL string, opts ...Option) *GitHub {
	if baseURL == "" {
		baseURL = DefaultGitHubAPIURL
	}
	return &GitHub{newHTTPVerifier(models.ProviderGitHub, baseURL, func(ref ports.RepositoryRef) string {
		return "/repos/" + url.PathEscape(ref.Owner.String()) + "/" + url.PathEscape(ref.RepositoryID.String())
	}, opts)}
}

// GitLab checks GET /projects/{owner%2Frepo}; the path is a single escaped segment.
type GitLab struct{ *httpVerifier }

func NewGitLab(baseURL string, opts ...Option) *GitLab {
	if baseURL == "" {
		baseURL = DefaultGitLabAPIURL
	}
	return &GitLab{newHTTPVerifier(models.ProviderGitLab, baseURL, func(ref ports.RepositoryRef) string {
		return "/projects/" + url.PathEscape(ref.Owner.String()+"/"+ref.RepositoryID.String())
	}, opts)}
}

// Bitbucket checks GET /repositories/{workspace}/{repo_slug}.
type Bitbucket struct{ *httpVerifier }

func NewBitbucket(baseURL string, opts ...Option) *Bitbucket {
	if baseURL == "" {
		baseURL = DefaultBitbucketAPIURL
	}
	return &Bitbucket{newHTTPVerifier(models.ProviderBitbucket, baseURL, func(ref ports.RepositoryRef) string {
		return "/repositories/" + url.PathEscape(ref.Owner.String()) + "/" + url.PathEscape(ref.RepositoryID.String())
	}, opts)}
}
