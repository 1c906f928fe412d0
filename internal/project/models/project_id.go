package models

import "strings"

const projectIDSeparator = ":"

// ProjectID is the natural key of a project: "<provider>:<owner>:<repository>".
type ProjectID struct {
	value string
}

// NewProjectID composes an identifier from already validated parts.
func NewProjectID(provider Provider, owner Owner, repo RepositoryID) (ProjectID, error) {
	return ParseProjectID(strings.Join([]string{provider.String(), owner.String(), repo.String()}, projectIDSeparator))
}

// ParseProjectID validates the composite identifier format.
func ParseProjectID(raw string) (ProjectID, error) {
	parts := strings.Split(raw, projectIDSeparator)
	if len(parts) != 3 {
		return ProjectID{}, ErrInvalidProjectIdentifierFormat()
	}
	if !Provider(parts[0]).IsValid() ||
		!ownerPattern.MatchString(parts[1]) ||
		!repositoryIDPattern.MatchString(parts[2]) {
		return ProjectID{}, ErrInvalidProjectIdentifierFormat()
	}
	return ProjectID{value: raw}, nil
}

// Parts returns the provider, owner and repository segments.
func (id ProjectID) Parts() (provider, owner, repository string) {
	parts := strings.SplitN(id.value, projectIDSeparator, 3)
	if len(parts) != 3 {
		return "", "", ""
	}
	return parts[0], parts[1], parts[2]
}

func (id ProjectID) String() string {
	return id.value
}

func (id ProjectID) Equal(other ProjectID) bool {
	return id.value == other.value
}

func (id ProjectID) IsZero() bool {
	return id.value == ""
}
