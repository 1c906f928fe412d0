package factory

import (
	"time"

	"github.com/web-lizzard/review-genie/internal/project/models"
)

// ProjectFactory assembles Project aggregates from raw input. It performs no
// existence or uniqueness checks.
type ProjectFactory struct {
	valueObjects ValueObjectsFactory
	policies     PoliciesFactory
	clock        func() time.Time
}

type Option func(*ProjectFactory)

// WithClock overrides the time source used for omitted timestamps.
func WithClock(clock func() time.Time) Option {
	return func(f *ProjectFactory) {
		if clock != nil {
			f.clock = clock
		}
	}
}

func NewProjectFactory(valueObjects ValueObjectsFactory, policies PoliciesFactory, opts ...Option) *ProjectFactory {
	f := &ProjectFactory{
		valueObjects: valueObjects,
		policies:     policies,
		clock:        time.Now,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Create builds a new project. Nil timestamps default to the factory clock.
func (f *ProjectFactory) Create(rawURL string, rules []string, createdAt, updatedAt *time.Time) (*models.Project, error) {
	url, err := models.NewURL(rawURL)
	if err != nil {
		return nil, err
	}
	components, err := f.valueObjects.Create(url)
	if err != nil {
		return nil, err
	}
	ruleSet, err := models.NewRules(rules)
	if err != nil {
		return nil, err
	}

	now := f.clock().UTC()
	created, updated := now, now
	if createdAt != nil {
		created = *createdAt
	}
	if updatedAt != nil {
		updated = *updatedAt
	}

	return models.NewProject(models.ProjectParams{
		ID:           components.ProjectID,
		RepositoryID: components.RepositoryID,
		Provider:     components.Provider,
		Owner:        components.Owner,
		Policies:     f.policies.CreatePolicies(),
		Rules:        ruleSet,
		URL:          url,
		CreatedAt:    created,
		UpdatedAt:    updated,
	})
}
