package factory

import "github.com/web-lizzard/review-genie/internal/project/models"

// PoliciesFactory supplies the policies applied to newly created projects.
type PoliciesFactory interface {
	CreatePolicies() models.Policies
}

// DefaultPoliciesFactory analyzes every pull request and retries twice.
type DefaultPoliciesFactory struct{}

func (DefaultPoliciesFactory) CreatePolicies() models.Policies {
	p, err := models.NewPolicies(models.PullRequestPolicyAll, models.RetryLimitCount, 2)
	if err != nil {
		panic(err) // constants above are always valid
	}
	return p
}

// StaticPoliciesFactory returns a fixed, pre-validated Policies value.
type StaticPoliciesFactory struct {
	policies models.Policies
}

// NewStaticPoliciesFactory validates the configured defaults once at startup.
func NewStaticPoliciesFactory(pullRequest, retryType string, retryValue int) (*StaticPoliciesFactory, error) {
	p, err := models.ParsePolicies(pullRequest, retryType, retryValue)
	if err != nil {
		return nil, err
	}
	return &StaticPoliciesFactory{policies: p}, nil
}

func (f *StaticPoliciesFactory) CreatePolicies() models.Policies {
	return f.policies
}
