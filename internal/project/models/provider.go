package models

// Provider is a supported source-code hosting provider.
type Provider string

const (
	ProviderGitHub    Provider = "github"
	ProviderGitLab    Provider = "gitlab"
	ProviderBitbucket Provider = "bitbucket"
)

// Providers lists every supported provider in a stable order.
func Providers() []Provider {
	return []Provider{ProviderGitHub, ProviderGitLab, ProviderBitbucket}
}

// ParseProvider validates a provider token. The token must match exactly;
// callers trim user input at their own boundary.
func ParseProvider(raw string) (Provider, error) {
	p := Provider(raw)
	if !p.IsValid() {
		return "", ErrUnsupportedProvider()
	}
	return p, nil
}

func (p Provider) IsValid() bool {
	switch p {
	case ProviderGitHub, ProviderGitLab, ProviderBitbucket:
		return true
	default:
		return false
	}
}

// Host returns the canonical hostname for the provider.
func (p Provider) Host() string {
	switch p {
	case ProviderGitHub:
		return "github.com"
	case ProviderGitLab:
		return "gitlab.com"
	case ProviderBitbucket:
		return "bitbucket.org"
	default:
		return ""
	}
}

func (p Provider) String() string {
	return string(p)
}

// providerForHost maps an exact hostname to its provider.
func providerForHost(host string) (Provider, bool) {
	for _, p := range Providers() {
		if p.Host() == host {
			return p, true
		}
	}
	return "", false
}
