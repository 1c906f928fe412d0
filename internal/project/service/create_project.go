package service

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/web-lizzard/review-genie/internal/project/factory"
	"github.com/web-lizzard/review-genie/internal/project/models"
	"github.com/web-lizzard/review-genie/internal/project/ports"
)

// CreateProjectService confirms a repository exists remotely and assembles
// the Project aggregate. It does not persist anything.
type CreateProjectService struct {
	valueObjects factory.ValueObjectsFactory
	projects     *factory.ProjectFactory
	verifiers    []ports.RemoteRepositoryVerifier
	opts         options
}

// NewCreateProjectService keeps verifiers in the given order; the first one
// to confirm the repository wins.
func NewCreateProjectService(
	valueObjects factory.ValueObjectsFactory,
	projects *factory.ProjectFactory,
	verifiers []ports.RemoteRepositoryVerifier,
	opts ...Option,
) *CreateProjectService {
	return &CreateProjectService{
		valueObjects: valueObjects,
		projects:     projects,
		verifiers:    append([]ports.RemoteRepositoryVerifier(nil), verifiers...),
		opts:         applyOptions(opts),
	}
}

func (s *CreateProjectService) Create(ctx context.Context, rawURL string, rules []string) (project *models.Project, err error) {
	ctx, span := s.opts.tracer.Start(ctx, "project.create")
	defer func() { endSpan(span, err) }()

	url, err := models.NewURL(rawURL)
	if err != nil {
		return nil, err
	}
	components, err := s.valueObjects.Create(url)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(
		attribute.String("project.id", components.ProjectID.String()),
		attribute.String("project.provider", components.Provider.String()),
	)

	if err := s.verifyRemote(ctx, components); err != nil {
		return nil, err
	}

	return s.projects.Create(rawURL, rules, nil, nil)
}

func (s *CreateProjectService) verifyRemote(ctx context.Context, c factory.Components) error {
	ref := ports.RepositoryRef{
		Provider:     c.Provider,
		Owner:        c.Owner,
		RepositoryID: c.RepositoryID,
	}
	for i, v := range s.verifiers {
		start := time.Now()
		exists, err := v.Verify(ctx, ref)
		s.opts.logger.DebugContext(ctx, "remote_verification_attempt",
			"verifier", i,
			"provider", c.Provider.String(),
			"repository_id", c.RepositoryID.String(),
			"exists", exists,
			"error", err,
		)
		if err != nil {
			s.opts.metrics.ObserveVerifyLatency(c.Provider.String(), "error", time.Since(start))
			return err
		}
		if exists {
			s.opts.metrics.ObserveVerifyLatency(c.Provider.String(), "found", time.Since(start))
			return nil
		}
		s.opts.metrics.ObserveVerifyLatency(c.Provider.String(), "missing", time.Since(start))
	}
	return models.ErrRemoteRepositoryDoesNotExist(c.RepositoryID, c.Provider)
}
