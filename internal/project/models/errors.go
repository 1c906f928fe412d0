package models

import (
	"errors"
	"fmt"

	dErrors "github.com/web-lizzard/review-genie/pkg/domain-errors"
)

// Status is the machine-readable token carried by every project domain failure.
type Status string

const (
	StatusInvalidURLFormat               Status = "invalid_url_format"
	StatusUnsupportedProvider            Status = "unsupported_provider"
	StatusInvalidOwnerFormat             Status = "invalid_owner_format"
	StatusInvalidRepositoryIDFormat      Status = "invalid_repository_id_format"
	StatusEmptyRepositoryID              Status = "empty_repository_id"
	StatusInvalidProjectIdentifierFormat Status = "invalid_project_identifier_format"
	StatusInvalidPolicy                  Status = "invalid_policy"
	StatusEmptyRule                      Status = "empty_rule"
	StatusInvalidRule                    Status = "invalid_rule"
	StatusRemoteRepositoryDoesNotExist   Status = "remote_repository_does_not_exist"
	StatusProjectAlreadyExists           Status = "project_already_exists"
	StatusEntityNotFound                 Status = "entity_not_found"
)

func (s Status) String() string {
	return string(s)
}

// StatusOf returns the domain status carried by err, or "" if none.
func StatusOf(err error) Status {
	return Status(dErrors.ReasonOf(err))
}

// HasStatus reports whether err carries the given domain status.
func HasStatus(err error, status Status) bool {
	return StatusOf(err) == status
}

func domainError(code dErrors.Code, status Status, msg string) *dErrors.Error {
	return dErrors.New(code, msg).WithReason(string(status))
}

func ErrInvalidURLFormat() error {
	return domainError(dErrors.CodeValidation, StatusInvalidURLFormat,
		"Invalid URL format. URL must be a valid GitHub, GitLab, or Bitbucket repository URL with username and project name")
}

func ErrUnsupportedProvider() error {
	return domainError(dErrors.CodeValidation, StatusUnsupportedProvider, "Unsupported provider")
}

func ErrInvalidOwnerFormat() error {
	return domainError(dErrors.CodeValidation, StatusInvalidOwnerFormat, "Invalid owner format")
}

func ErrInvalidRepositoryIDFormat() error {
	return domainError(dErrors.CodeValidation, StatusInvalidRepositoryIDFormat, "Invalid repository ID format")
}

func ErrEmptyRepositoryID() error {
	return domainError(dErrors.CodeValidation, StatusEmptyRepositoryID, "Repository ID cannot be empty")
}

func ErrInvalidProjectIdentifierFormat() error {
	return domainError(dErrors.CodeValidation, StatusInvalidProjectIdentifierFormat, "Invalid project identifier format")
}

func ErrInvalidPolicy(msg string) error {
	return domainError(dErrors.CodeValidation, StatusInvalidPolicy, msg)
}

func ErrEmptyRule() error {
	return domainError(dErrors.CodeValidation, StatusEmptyRule, "Rule cannot be empty")
}

func ErrInvalidRule() error {
	return domainError(dErrors.CodeValidation, StatusInvalidRule, "Rule must fit on a single line")
}

func ErrEntityNotFound() error {
	return domainError(dErrors.CodeNotFound, StatusEntityNotFound, "Entity not found")
}

// ErrProjectAlreadyExists reports a duplicate onboarding attempt for id.
func ErrProjectAlreadyExists(id ProjectID) error {
	return domainError(dErrors.CodeConflict, StatusProjectAlreadyExists,
		fmt.Sprintf("Project '%s' already exists", id))
}

// RemoteRepositoryError identifies the repository no verifier could confirm.
type RemoteRepositoryError struct {
	RepositoryID RepositoryID
	Provider     Provider
}

func (e *RemoteRepositoryError) Error() string {
	return fmt.Sprintf("Remote repository '%s' does not exist on provider '%s'", e.RepositoryID, e.Provider)
}

// ErrRemoteRepositoryDoesNotExist is returned when every verifier answered false.
// The *RemoteRepositoryError is reachable through errors.As.
func ErrRemoteRepositoryDoesNotExist(repoID RepositoryID, provider Provider) error {
	detail := &RemoteRepositoryError{RepositoryID: repoID, Provider: provider}
	return &dErrors.Error{
		Code:    dErrors.CodeUnprocessable,
		Reason:  string(StatusRemoteRepositoryDoesNotExist),
		Message: detail.Error(),
		Err:     detail,
	}
}

// RemoteRepositoryFrom extracts the repository details from err, if present.
func RemoteRepositoryFrom(err error) (*RemoteRepositoryError, bool) {
	var detail *RemoteRepositoryError
	if errors.As(err, &detail) {
		return detail, true
	}
	return nil, false
}
