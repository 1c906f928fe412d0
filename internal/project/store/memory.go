package store

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/web-lizzard/review-genie/internal/project/models"
	"github.com/web-lizzard/review-genie/internal/project/ports"
	"github.com/web-lizzard/review-genie/pkg/platform/sentinel"
)

// InMemory keeps projects and their outbox in process memory. Writes are
// staged per unit of work and applied under the store lock on commit.
type InMemory struct {
	mu        sync.RWMutex
	projects  map[string]*models.Project
	outbox    []ports.OutboxMessage
	published map[uuid.UUID]bool
}

func NewInMemory() *InMemory {
	return &InMemory{
		projects:  make(map[string]*models.Project),
		published: make(map[uuid.UUID]bool),
	}
}

func (s *InMemory) Begin(ctx context.Context) (ports.UnitOfWork, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &memoryUnitOfWork{store: s}, nil
}

func (s *InMemory) FindOne(_ context.Context, id models.ProjectID) (*models.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.projects[id.String()]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return p, nil
}

func (s *InMemory) FindAll(_ context.Context, filter ports.Filter) ([]*models.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Project, 0, len(s.projects))
	for _, p := range s.projects {
		if len(filter.Providers) > 0 && !slices.Contains(filter.Providers, p.Provider()) {
			continue
		}
		out = append(out, p)
	}
	slices.SortFunc(out, func(a, b *models.Project) int {
		if c := b.CreatedAt().Compare(a.CreatedAt()); c != 0 {
			return c
		}
		return strings.Compare(a.ID().String(), b.ID().String())
	})
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (s *InMemory) FetchUnpublished(_ context.Context, limit int) ([]ports.OutboxMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []ports.OutboxMessage
	for _, m := range s.outbox {
		if s.published[m.ID] {
			continue
		}
		out = append(out, m)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (s *InMemory) MarkPublished(_ context.Context, ids []uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range ids {
		s.published[id] = true
	}
	return nil
}

// Ping satisfies the readiness checker.
func (s *InMemory) Ping(context.Context) error {
	return nil
}

type memoryUnitOfWork struct {
	store  *InMemory
	staged []*models.Project
	events []ports.OutboxMessage
	done   bool
}

func (u *memoryUnitOfWork) Exists(ctx context.Context, spec ports.Specification) (bool, error) {
	if u.done {
		return false, sentinel.ErrTxDone
	}
	switch sp := spec.(type) {
	case ports.ProjectAlreadyExistsSpecification:
		for _, p := range u.staged {
			if p.ID().Equal(sp.ProjectID) {
				return true, nil
			}
		}
		_, err := u.store.FindOne(ctx, sp.ProjectID)
		return err == nil, nil
	default:
		return false, fmt.Errorf("unsupported specification %T", spec)
	}
}

func (u *memoryUnitOfWork) Save(_ context.Context, project *models.Project) error {
	if u.done {
		return sentinel.ErrTxDone
	}
	messages, err := outboxMessages(project)
	if err != nil {
		return err
	}
	u.staged = append(u.staged, project)
	u.events = append(u.events, messages...)
	return nil
}

// Commit re-checks uniqueness under the store lock so two units of work that
// both saw "absent" cannot both land.
func (u *memoryUnitOfWork) Commit(_ context.Context) error {
	if u.done {
		return sentinel.ErrTxDone
	}
	s := u.store
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range u.staged {
		if _, exists := s.projects[p.ID().String()]; exists {
			return models.ErrProjectAlreadyExists(p.ID())
		}
	}
	for _, p := range u.staged {
		s.projects[p.ID().String()] = p
	}
	s.outbox = append(s.outbox, u.events...)
	u.done = true
	return nil
}

func (u *memoryUnitOfWork) Rollback(_ context.Context) error {
	if u.done {
		return nil
	}
	u.staged = nil
	u.events = nil
	u.done = true
	return nil
}
