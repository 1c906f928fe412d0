package models

import (
	"regexp"
	"strings"
)

// Owner segment allows underscores here even though Owner itself does not;
// such URLs parse but fail later with invalid_owner_format.
var repositoryURLPattern = regexp.MustCompile(
	`^https?://(github\.com|gitlab\.com|bitbucket\.org)/([a-zA-Z0-9]([a-zA-Z0-9\-_]*[a-zA-Z0-9])?)/([a-zA-Z0-9]([a-zA-Z0-9\-_.]*[a-zA-Z0-9])?)(?:\.git)?/?$`,
)

// URL is a repository URL on a supported hosting provider.
type URL struct {
	value string
}

// NewURL trims raw and validates it as an http(s) repository URL of the
// form <host>/<owner>/<repository>[.git][/].
func NewURL(raw string) (URL, error) {
	v := strings.TrimSpace(raw)
	if v == "" || !repositoryURLPattern.MatchString(v) {
		return URL{}, ErrInvalidURLFormat()
	}
	return URL{value: v}, nil
}

// Provider returns the hosting provider named by the URL's hostname.
func (u URL) Provider() (Provider, error) {
	m := repositoryURLPattern.FindStringSubmatch(u.value)
	if m == nil {
		return "", ErrInvalidURLFormat()
	}
	p, ok := providerForHost(m[1])
	if !ok {
		return "", ErrInvalidURLFormat()
	}
	return p, nil
}

// OwnerAndRepository returns the raw owner and repository path segments,
// with any trailing ".git" removed from the repository.
func (u URL) OwnerAndRepository() (owner, repository string, err error) {
	m := repositoryURLPattern.FindStringSubmatch(u.value)
	if m == nil {
		return "", "", ErrInvalidURLFormat()
	}
	return m[2], strings.TrimSuffix(m[4], ".git"), nil
}

func (u URL) String() string {
	return u.value
}

func (u URL) Equal(other URL) bool {
	return u.value == other.value
}

func (u URL) IsZero() bool {
	return u.value == ""
}
