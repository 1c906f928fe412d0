package models

import "time"

// Project is the aggregate root for an onboarded repository.
//
// Invariants:
//   - every attribute passed its own constructor
//   - the provider, owner and repository segments of ID match the typed fields
//   - CreatedAt is immutable; no update operations exist on the aggregate
type Project struct {
	id           ProjectID
	repositoryID RepositoryID
	provider     Provider
	owner        Owner
	policies     Policies
	rules        Rules
	url          URL
	createdAt    time.Time
	updatedAt    time.Time

	events []Event
}

// ProjectParams groups the validated parts of a new Project.
type ProjectParams struct {
	ID           ProjectID
	RepositoryID RepositoryID
	Provider     Provider
	Owner        Owner
	Policies     Policies
	Rules        Rules
	URL          URL
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// NewProject assembles a new aggregate and records ProjectCreated.
func NewProject(p ProjectParams) (*Project, error) {
	project, err := assemble(p)
	if err != nil {
		return nil, err
	}
	project.record(ProjectCreated{
		BaseEvent:    newBaseEvent(p.CreatedAt),
		ProjectID:    p.ID.String(),
		Provider:     p.Provider.String(),
		Owner:        p.Owner.String(),
		RepositoryID: p.RepositoryID.String(),
		URL:          p.URL.String(),
	})
	return project, nil
}

// ReconstituteProject rebuilds a stored aggregate without recording events.
func ReconstituteProject(p ProjectParams) (*Project, error) {
	return assemble(p)
}

func assemble(p ProjectParams) (*Project, error) {
	if p.ID.IsZero() || p.RepositoryID.IsZero() || p.Owner.IsZero() || p.URL.IsZero() || !p.Provider.IsValid() {
		return nil, ErrInvalidProjectIdentifierFormat()
	}
	provider, owner, repo := p.ID.Parts()
	if provider != p.Provider.String() || owner != p.Owner.String() || repo != p.RepositoryID.String() {
		return nil, ErrInvalidProjectIdentifierFormat()
	}
	return &Project{
		id:           p.ID,
		repositoryID: p.RepositoryID,
		provider:     p.Provider,
		owner:        p.Owner,
		policies:     p.Policies,
		rules:        p.Rules,
		url:          p.URL,
		createdAt:    p.CreatedAt,
		updatedAt:    p.UpdatedAt,
	}, nil
}

func (p *Project) ID() ProjectID              { return p.id }
func (p *Project) RepositoryID() RepositoryID { return p.repositoryID }
func (p *Project) Provider() Provider         { return p.provider }
func (p *Project) Owner() Owner               { return p.owner }
func (p *Project) Policies() Policies         { return p.policies }
func (p *Project) Rules() Rules               { return p.rules }
func (p *Project) URL() URL                   { return p.url }
func (p *Project) CreatedAt() time.Time       { return p.createdAt }
func (p *Project) UpdatedAt() time.Time       { return p.updatedAt }

// Equal compares projects by identity.
func (p *Project) Equal(other *Project) bool {
	if p == nil || other == nil {
		return p == other
	}
	return p.id.Equal(other.id)
}

// Events returns the recorded, not yet pulled, events.
func (p *Project) Events() []Event {
	out := make([]Event, len(p.events))
	copy(out, p.events)
	return out
}

// PullEvents returns the recorded events and clears them.
func (p *Project) PullEvents() []Event {
	out := p.events
	p.events = nil
	return out
}

func (p *Project) record(e Event) {
	p.events = append(p.events, e)
}
