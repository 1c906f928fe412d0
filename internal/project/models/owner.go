package models

import (
	"regexp"
	"strings"
)

var ownerPattern = regexp.MustCompile(`^[a-zA-Z0-9]([a-zA-Z0-9-]*[a-zA-Z0-9])?$`)

// Owner is the account or group that owns a repository.
type Owner struct {
	value string
}

func NewOwner(raw string) (Owner, error) {
	v := strings.TrimSpace(raw)
	if v == "" || !ownerPattern.MatchString(v) {
		return Owner{}, ErrInvalidOwnerFormat()
	}
	return Owner{value: v}, nil
}

func (o Owner) String() string {
	return o.value
}

func (o Owner) Equal(other Owner) bool {
	return o.value == other.value
}

func (o Owner) IsZero() bool {
	return o.value == ""
}
