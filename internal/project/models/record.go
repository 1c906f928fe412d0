package models

import "time"

// Record is the flat storage form of a Project.
type Record struct {
	ProjectID         string
	RepositoryID      string
	Provider          string
	PullRequestPolicy string
	RetryLimitType    string
	RetryLimitValue   int
	Owner             string
	URL               string
	RulesText         string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// ToRecord flattens a project for persistence.
func ToRecord(p *Project) Record {
	return Record{
		ProjectID:         p.id.String(),
		RepositoryID:      p.repositoryID.String(),
		Provider:          p.provider.String(),
		PullRequestPolicy: p.policies.PullRequestPolicy().String(),
		RetryLimitType:    p.policies.RetryLimitType().String(),
		RetryLimitValue:   p.policies.RetryLimitValue(),
		Owner:             p.owner.String(),
		URL:               p.url.String(),
		RulesText:         p.rules.Text(),
		CreatedAt:         p.createdAt,
		UpdatedAt:         p.updatedAt,
	}
}

// FromRecord rebuilds a project, re-validating every field.
func FromRecord(r Record) (*Project, error) {
	id, err := ParseProjectID(r.ProjectID)
	if err != nil {
		return nil, err
	}
	repoID, err := NewRepositoryID(r.RepositoryID)
	if err != nil {
		return nil, err
	}
	provider, err := ParseProvider(r.Provider)
	if err != nil {
		return nil, err
	}
	policies, err := ParsePolicies(r.PullRequestPolicy, r.RetryLimitType, r.RetryLimitValue)
	if err != nil {
		return nil, err
	}
	owner, err := NewOwner(r.Owner)
	if err != nil {
		return nil, err
	}
	url, err := NewURL(r.URL)
	if err != nil {
		return nil, err
	}
	return ReconstituteProject(ProjectParams{
		ID:           id,
		RepositoryID: repoID,
		Provider:     provider,
		Owner:        owner,
		Policies:     policies,
		Rules:        ParseRulesText(r.RulesText),
		URL:          url,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	})
}
