package service

import (
	"context"
	"errors"

	"github.com/web-lizzard/review-genie/internal/project/models"
	"github.com/web-lizzard/review-genie/internal/project/ports"
	dErrors "github.com/web-lizzard/review-genie/pkg/domain-errors"
	"github.com/web-lizzard/review-genie/pkg/platform/sentinel"
)

const maxListLimit = 200

// QueryService serves read paths over onboarded projects.
type QueryService struct {
	projects ports.ReadRepository
	opts     options
}

func NewQueryService(projects ports.ReadRepository, opts ...Option) *QueryService {
	return &QueryService{projects: projects, opts: applyOptions(opts)}
}

// GetProject resolves a "provider:owner:repository" identifier.
func (s *QueryService) GetProject(ctx context.Context, rawID string) (*models.Project, error) {
	id, err := models.ParseProjectID(rawID)
	if err != nil {
		return nil, err
	}
	project, err := s.projects.FindOne(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, models.ErrEntityNotFound()
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load project")
	}
	return project, nil
}

// ListProjects returns projects ordered by creation time, newest first.
func (s *QueryService) ListProjects(ctx context.Context, filter ports.Filter) ([]*models.Project, error) {
	if filter.Limit <= 0 || filter.Limit > maxListLimit {
		filter.Limit = maxListLimit
	}
	projects, err := s.projects.FindAll(ctx, filter)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list projects")
	}
	s.opts.logger.DebugContext(ctx, "projects_listed", "count", len(projects))
	return projects, nil
}
