package models

import "fmt"

// PullRequestPolicy decides which pull requests get analyzed.
type PullRequestPolicy string

const (
	PullRequestPolicyAll            PullRequestPolicy = "all"
	PullRequestPolicyNone           PullRequestPolicy = "none"
	PullRequestPolicyMainBranchOnly PullRequestPolicy = "main_branch_only"
)

func ParsePullRequestPolicy(raw string) (PullRequestPolicy, error) {
	p := PullRequestPolicy(raw)
	switch p {
	case PullRequestPolicyAll, PullRequestPolicyNone, PullRequestPolicyMainBranchOnly:
		return p, nil
	default:
		return "", ErrInvalidPolicy(fmt.Sprintf("Unknown pull request policy '%s'", raw))
	}
}

func (p PullRequestPolicy) String() string {
	return string(p)
}

// RetryLimitType selects how RetryLimitValue is interpreted.
type RetryLimitType string

const (
	// RetryLimitCount limits analyses by number of attempts.
	RetryLimitCount RetryLimitType = "count"
	// RetryLimitTime limits analyses by a time window.
	RetryLimitTime RetryLimitType = "time"
)

func ParseRetryLimitType(raw string) (RetryLimitType, error) {
	t := RetryLimitType(raw)
	switch t {
	case RetryLimitCount, RetryLimitTime:
		return t, nil
	default:
		return "", ErrInvalidPolicy(fmt.Sprintf("Unknown retry limit type '%s'", raw))
	}
}

func (t RetryLimitType) String() string {
	return string(t)
}

// Policies controls analysis creation for a project.
type Policies struct {
	pullRequest     PullRequestPolicy
	retryLimitType  RetryLimitType
	retryLimitValue int
}

func NewPolicies(pullRequest PullRequestPolicy, retryType RetryLimitType, retryValue int) (Policies, error) {
	if _, err := ParsePullRequestPolicy(string(pullRequest)); err != nil {
		return Policies{}, err
	}
	if _, err := ParseRetryLimitType(string(retryType)); err != nil {
		return Policies{}, err
	}
	if retryValue < 0 {
		return Policies{}, ErrInvalidPolicy("Retry limit value cannot be negative")
	}
	return Policies{
		pullRequest:     pullRequest,
		retryLimitType:  retryType,
		retryLimitValue: retryValue,
	}, nil
}

// ParsePolicies builds Policies from their stored string forms.
func ParsePolicies(pullRequest, retryType string, retryValue int) (Policies, error) {
	pr, err := ParsePullRequestPolicy(pullRequest)
	if err != nil {
		return Policies{}, err
	}
	rt, err := ParseRetryLimitType(retryType)
	if err != nil {
		return Policies{}, err
	}
	return NewPolicies(pr, rt, retryValue)
}

func (p Policies) PullRequestPolicy() PullRequestPolicy {
	return p.pullRequest
}

func (p Policies) RetryLimitType() RetryLimitType {
	return p.retryLimitType
}

func (p Policies) RetryLimitValue() int {
	return p.retryLimitValue
}

func (p Policies) Equal(other Policies) bool {
	return p == other
}
