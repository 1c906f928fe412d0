package factory

import "github.com/web-lizzard/review-genie/internal/project/models"

// Components is the identity bundle derived from a repository URL.
type Components struct {
	ProjectID    models.ProjectID
	RepositoryID models.RepositoryID
	Provider     models.Provider
	Owner        models.Owner
}

// ValueObjectsFactory derives project identity components.
type ValueObjectsFactory interface {
	Create(url models.URL) (Components, error)
}

// URLBasedValueObjectsFactory derives identity purely from URL segments.
type URLBasedValueObjectsFactory struct{}

func NewURLBasedValueObjectsFactory() URLBasedValueObjectsFactory {
	return URLBasedValueObjectsFactory{}
}

func (URLBasedValueObjectsFactory) Create(url models.URL) (Components, error) {
	provider, err := url.Provider()
	if err != nil {
		return Components{}, err
	}
	rawOwner, rawRepo, err := url.OwnerAndRepository()
	if err != nil {
		return Components{}, err
	}
	owner, err := models.NewOwner(rawOwner)
	if err != nil {
		return Components{}, err
	}
	repo, err := models.NewRepositoryID(rawRepo)
	if err != nil {
		return Components{}, err
	}
	id, err := models.NewProjectID(provider, owner, repo)
	if err != nil {
		return Components{}, err
	}
	return Components{
		ProjectID:    id,
		RepositoryID: repo,
		Provider:     provider,
		Owner:        owner,
	}, nil
}
