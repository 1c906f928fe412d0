package models

import (
	"regexp"
	"strings"
)

var repositoryIDPattern = regexp.MustCompile(`^[a-zA-Z0-9]([a-zA-Z0-9._-]*[a-zA-Z0-9])?$`)

// RepositoryID is a repository name as used by the hosting provider.
type RepositoryID struct {
	value string
}

func NewRepositoryID(raw string) (RepositoryID, error) {
	v := strings.TrimSpace(raw)
	if v == "" {
		return RepositoryID{}, ErrEmptyRepositoryID()
	}
	if !repositoryIDPattern.MatchString(v) {
		return RepositoryID{}, ErrInvalidRepositoryIDFormat()
	}
	return RepositoryID{value: v}, nil
}

func (r RepositoryID) String() string {
	return r.value
}

func (r RepositoryID) Equal(other RepositoryID) bool {
	return r.value == other.value
}

func (r RepositoryID) IsZero() bool {
	return r.value == ""
}
