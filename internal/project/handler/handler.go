// Package handler exposes project onboarding over HTTP.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/web-lizzard/review-genie/internal/project/models"
	"github.com/web-lizzard/review-genie/internal/project/ports"
	"github.com/web-lizzard/review-genie/internal/project/service"
	dErrors "github.com/web-lizzard/review-genie/pkg/domain-errors"
	"github.com/web-lizzard/review-genie/pkg/platform/httputil"
	"github.com/web-lizzard/review-genie/pkg/requestcontext"
)

// CommandHandler onboards a project.
type CommandHandler interface {
	Handle(ctx context.Context, cmd service.CreateProjectCommand) (*models.Project, error)
}

// Queries serves the read endpoints.
type Queries interface {
	GetProject(ctx context.Context, rawID string) (*models.Project, error)
	ListProjects(ctx context.Context, filter ports.Filter) ([]*models.Project, error)
}

// Handler wires project endpoints to the project services.
type Handler struct {
	commands    CommandHandler
	queries     Queries
	logger      *slog.Logger
	writeGuards []func(http.Handler) http.Handler
}

type Option func(*Handler)

// WithWriteGuards adds middleware that only wraps mutating routes.
func WithWriteGuards(mw ...func(http.Handler) http.Handler) Option {
	return func(h *Handler) {
		h.writeGuards = append(h.writeGuards, mw...)
	}
}

func New(commands CommandHandler, queries Queries, logger *slog.Logger, opts ...Option) *Handler {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	h := &Handler{commands: commands, queries: queries, logger: logger}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Register mounts project endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/projects", h.HandleList)
	r.Get("/projects/{projectID}", h.HandleGet)
	r.Group(func(r chi.Router) {
		r.Use(h.writeGuards...)
		r.Post("/projects", h.HandleCreate)
	})
}

// HandleCreate handles POST /projects.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := requestcontext.Now(ctx)

	req, ok := httputil.DecodeAndPrepare[CreateProjectRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	project, err := h.commands.Handle(ctx, service.CreateProjectCommand{URL: req.URL, Rules: req.Rules})
	if err != nil {
		h.logFailure(ctx, "project onboarding failed", requestID, err, "url", req.URL)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "project onboarded",
		"request_id", requestID,
		"project_id", project.ID().String(),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	w.Header().Set("Location", "/api/v1/projects/"+project.ID().String())
	httputil.WriteJSON(w, http.StatusCreated, FromProject(project))
}

// HandleGet handles GET /projects/{projectID}.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	rawID := chi.URLParam(r, "projectID")

	project, err := h.queries.GetProject(ctx, rawID)
	if err != nil {
		h.logFailure(ctx, "project lookup failed", requestID, err, "project_id", rawID)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromProject(project))
}

// HandleList handles GET /projects.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	filter, err := parseListFilter(r.URL.Query())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	projects, err := h.queries.ListProjects(ctx, filter)
	if err != nil {
		h.logFailure(ctx, "project listing failed", requestID, err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromProjects(projects))
}

// logFailure logs client errors at warn and everything else at error.
func (h *Handler) logFailure(ctx context.Context, msg, requestID string, err error, attrs ...any) {
	args := append([]any{"request_id", requestID, "error", err}, attrs...)
	switch dErrors.CodeOf(err) {
	case dErrors.CodeInternal, dErrors.CodeUnavailable, dErrors.CodeTimeout:
		h.logger.ErrorContext(ctx, msg, args...)
	default:
		h.logger.WarnContext(ctx, msg, args...)
	}
}
