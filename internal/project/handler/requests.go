package handler

import (
	"strconv"
	"strings"

	"github.com/web-lizzard/review-genie/internal/project/models"
	"github.com/web-lizzard/review-genie/internal/project/ports"
	dErrors "github.com/web-lizzard/review-genie/pkg/domain-errors"
)

const maxURLLength = 500

// CreateProjectRequest is the body of POST /projects.
type CreateProjectRequest struct {
	URL   string   `json:"url"`
	Rules []string `json:"rules"`
}

// Normalize trims the URL. Rules are left as sent so blank entries are
// rejected by the domain rather than silently dropped.
func (r *CreateProjectRequest) Normalize() {
	r.URL = strings.TrimSpace(r.URL)
}

// Validate checks shape only; URL semantics are checked by the domain.
func (r *CreateProjectRequest) Validate() error {
	if r.URL == "" {
		return dErrors.New(dErrors.CodeValidation, "url is required").WithReason(models.StatusInvalidURLFormat.String())
	}
	if len(r.URL) > maxURLLength {
		return models.ErrInvalidURLFormat()
	}
	return nil
}

// parseListFilter reads ?provider=github&provider=gitlab (or comma separated)
// and ?limit=N.
func parseListFilter(query map[string][]string) (ports.Filter, error) {
	var filter ports.Filter
	for _, raw := range query["provider"] {
		for _, part := range strings.Split(raw, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			provider, err := models.ParseProvider(part)
			if err != nil {
				return ports.Filter{}, err
			}
			filter.Providers = append(filter.Providers, provider)
		}
	}
	if raw := strings.TrimSpace(first(query["limit"])); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 {
			return ports.Filter{}, dErrors.New(dErrors.CodeValidation, "limit must be a positive integer")
		}
		filter.Limit = limit
	}
	return filter, nil
}

func first(values []string) string {
	if len(values) == 0 {
		return ""
	}
	return values[0]
}
