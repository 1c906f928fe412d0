package service

import (
	"context"
	"time"

	"github.com/web-lizzard/review-genie/internal/project/factory"
	"github.com/web-lizzard/review-genie/internal/project/models"
	"github.com/web-lizzard/review-genie/internal/project/ports"
	dErrors "github.com/web-lizzard/review-genie/pkg/domain-errors"
	"github.com/web-lizzard/review-genie/pkg/requestcontext"
)

// CreateProjectCommand is the onboarding request. Project identity is
// derived from URL alone.
type CreateProjectCommand struct {
	URL   string
	Rules []string
}

// CreateProjectCommandHandler runs duplicate check, creation and save inside
// one unit of work.
type CreateProjectCommandHandler struct {
	uow          ports.UnitOfWorkFactory
	valueObjects factory.ValueObjectsFactory
	creator      *CreateProjectService
	opts         options
}

func NewCreateProjectCommandHandler(
	uow ports.UnitOfWorkFactory,
	valueObjects factory.ValueObjectsFactory,
	creator *CreateProjectService,
	opts ...Option,
) *CreateProjectCommandHandler {
	return &CreateProjectCommandHandler{
		uow:          uow,
		valueObjects: valueObjects,
		creator:      creator,
		opts:         applyOptions(opts),
	}
}

// Handle onboards the repository named by cmd.URL. The unit of work is rolled
// back on every path that does not reach Commit.
func (h *CreateProjectCommandHandler) Handle(ctx context.Context, cmd CreateProjectCommand) (project *models.Project, err error) {
	start := time.Now()
	ctx, span := h.opts.tracer.Start(ctx, "project.handle_create")
	defer func() {
		h.opts.metrics.ObserveCreateLatency(start)
		h.opts.metrics.IncrementCreateOutcome(outcomeOf(err))
		endSpan(span, err)
	}()

	url, err := models.NewURL(cmd.URL)
	if err != nil {
		return nil, err
	}
	components, err := h.valueObjects.Create(url)
	if err != nil {
		return nil, err
	}

	uow, err := h.uow.Begin(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to begin unit of work")
	}
	committed := false
	defer func() {
		if committed {
			return
		}
		if rbErr := uow.Rollback(ctx); rbErr != nil {
			h.opts.logger.WarnContext(ctx, "unit of work rollback failed",
				"error", rbErr,
				"project_id", components.ProjectID.String(),
			)
		}
	}()

	exists, err := uow.Exists(ctx, ports.ProjectAlreadyExistsSpecification{
		ProjectID:    components.ProjectID,
		RepositoryID: components.RepositoryID,
	})
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to check project existence")
	}
	if exists {
		return nil, models.ErrProjectAlreadyExists(components.ProjectID)
	}

	project, err = h.creator.Create(ctx, cmd.URL, cmd.Rules)
	if err != nil {
		return nil, err
	}

	if err := uow.Save(ctx, project); err != nil {
		return nil, persistenceError(err, "failed to save project")
	}
	if err := uow.Commit(ctx); err != nil {
		return nil, persistenceError(err, "failed to commit project")
	}
	committed = true

	h.opts.logger.InfoContext(ctx, "project_created",
		"project_id", project.ID().String(),
		"provider", project.Provider().String(),
		"rules", project.Rules().Len(),
		"request_id", requestcontext.RequestID(ctx),
		"subject", requestcontext.Subject(ctx),
	)
	return project, nil
}

// persistenceError keeps domain failures raised by the store (the uniqueness
// backstop) and wraps everything else as internal.
func persistenceError(err error, msg string) error {
	if models.StatusOf(err) != "" {
		return err
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, msg)
}

func outcomeOf(err error) string {
	if err == nil {
		return "created"
	}
	if status := models.StatusOf(err); status != "" {
		return status.String()
	}
	return string(dErrors.CodeOf(err))
}
