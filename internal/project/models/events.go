package models

import (
	"time"

	"github.com/google/uuid"
)

// Event is a fact recorded by the Project aggregate.
type Event interface {
	EventID() uuid.UUID
	EventType() string
	OccurredAt() time.Time
	AggregateID() string
}

// BaseEvent carries the identity and timestamp shared by all events.
type BaseEvent struct {
	ID       uuid.UUID `json:"id"`
	Occurred time.Time `json:"occurred_at"`
}

func newBaseEvent(now time.Time) BaseEvent {
	return BaseEvent{ID: uuid.New(), Occurred: now.UTC()}
}

func (e BaseEvent) EventID() uuid.UUID {
	return e.ID
}

func (e BaseEvent) OccurredAt() time.Time {
	return e.Occurred
}

const EventTypeProjectCreated = "project.created"

// ProjectCreated is recorded when a project is onboarded.
type ProjectCreated struct {
	BaseEvent
	ProjectID    string `json:"project_id"`
	Provider     string `json:"provider"`
	Owner        string `json:"owner"`
	RepositoryID string `json:"repository_id"`
	URL          string `json:"url"`
}

func (ProjectCreated) EventType() string {
	return EventTypeProjectCreated
}

func (e ProjectCreated) AggregateID() string {
	return e.ProjectID
}
