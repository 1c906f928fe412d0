package handler

import (
	"time"

	"github.com/web-lizzard/review-genie/internal/project/models"
)

// ProjectResponse is the JSON representation of an onboarded project.
type ProjectResponse struct {
	ProjectID    string           `json:"project_id"`
	RepositoryID string           `json:"repository_id"`
	Provider     string           `json:"provider"`
	Owner        string           `json:"owner"`
	URL          string           `json:"url"`
	Policies     PoliciesResponse `json:"policies"`
	Rules        []string         `json:"rules"`
	CreatedAt    time.Time        `json:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at"`
}

type PoliciesResponse struct {
	PullRequestPolicy string `json:"pull_request_policy"`
	RetryLimitType    string `json:"retry_limit_type"`
	RetryLimitValue   int    `json:"retry_limit_value"`
}

// ProjectListResponse wraps GET /projects results.
type ProjectListResponse struct {
	Projects []ProjectResponse `json:"projects"`
	Count    int               `json:"count"`
}

func FromProject(p *models.Project) ProjectResponse {
	policies := p.Policies()
	return ProjectResponse{
		ProjectID:    p.ID().String(),
		RepositoryID: p.RepositoryID().String(),
		Provider:     p.Provider().String(),
		Owner:        p.Owner().String(),
		URL:          p.URL().String(),
		Policies: PoliciesResponse{
			PullRequestPolicy: policies.PullRequestPolicy().String(),
			RetryLimitType:    policies.RetryLimitType().String(),
			RetryLimitValue:   policies.RetryLimitValue(),
		},
		Rules:     p.Rules().Items(),
		CreatedAt: p.CreatedAt(),
		UpdatedAt: p.UpdatedAt(),
	}
}

func FromProjects(projects []*models.Project) ProjectListResponse {
	out := make([]ProjectResponse, 0, len(projects))
	for _, p := range projects {
		out = append(out, FromProject(p))
	}
	return ProjectListResponse{Projects: out, Count: len(out)}
}
