// Package ports declares the boundaries between project onboarding and its
// collaborators: remote verifiers, the transactional store and the outbox.
package ports

//go:generate mockgen -source=ports.go -destination=mocks/mocks.go -package=mocks

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/web-lizzard/review-genie/internal/project/models"
)

// RepositoryRef addresses a repository on a hosting provider.
type RepositoryRef struct {
	Provider     models.Provider
	Owner        models.Owner
	RepositoryID models.RepositoryID
}

// RemoteRepositoryVerifier confirms a repository exists on its provider.
// A missing repository is (false, nil); errors are reserved for operational
// failures and are propagated by callers, never swallowed.
type RemoteRepositoryVerifier interface {
	Verify(ctx context.Context, ref RepositoryRef) (bool, error)
}

// Specification is a query predicate translated by the persistence boundary.
type Specification interface {
	specification()
}

// ProjectAlreadyExistsSpecification matches a stored project with the same identity.
type ProjectAlreadyExistsSpecification struct {
	ProjectID    models.ProjectID
	RepositoryID models.RepositoryID
}

func (ProjectAlreadyExistsSpecification) specification() {}

// UnitOfWork is one transactional scope. Rollback after Commit is a no-op,
// so callers may always defer it.
type UnitOfWork interface {
	Exists(ctx context.Context, spec Specification) (bool, error)
	Save(ctx context.Context, project *models.Project) error
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// UnitOfWorkFactory opens a new transactional scope.
type UnitOfWorkFactory interface {
	Begin(ctx context.Context) (UnitOfWork, error)
}

// Filter narrows FindAll. Zero values mean "no constraint".
type Filter struct {
	Providers []models.Provider
	Limit     int
}

// ReadRepository serves read paths outside creation.
// FindOne returns sentinel.ErrNotFound when the project is absent.
type ReadRepository interface {
	FindOne(ctx context.Context, id models.ProjectID) (*models.Project, error)
	FindAll(ctx context.Context, filter Filter) ([]*models.Project, error)
}

// OutboxMessage is a serialized domain event awaiting publication.
type OutboxMessage struct {
	ID            uuid.UUID
	AggregateType string
	AggregateID   string
	EventType     string
	Payload       []byte
	CreatedAt     time.Time
}

// OutboxStore exposes pending outbox rows to the relay.
type OutboxStore interface {
	FetchUnpublished(ctx context.Context, limit int) ([]OutboxMessage, error)
	MarkPublished(ctx context.Context, ids []uuid.UUID) error
}

// EventPublisher delivers outbox messages to the event bus.
type EventPublisher interface {
	Publish(ctx context.Context, messages []OutboxMessage) error
}
