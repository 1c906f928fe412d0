package store

import (
	"context"
	"encoding/json"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"github.com/web-lizzard/review-genie/internal/project/factory"
	"github.com/web-lizzard/review-genie/internal/project/models"
	"github.com/web-lizzard/review-genie/internal/project/ports"
	"github.com/web-lizzard/review-genie/pkg/platform/sentinel"
)

type InMemoryStoreSuite struct {
	suite.Suite
	store   *InMemory
	ctx     context.Context
	factory *factory.ProjectFactory
	now     time.Time
}

func TestInMemoryStoreSuite(t *testing.T) {
	suite.Run(t, new(InMemoryStoreSuite))
}

func (s *InMemoryStoreSuite) SetupTest() {
	s.store = NewInMemory()
	s.ctx = context.Background()
	s.now = time.Date(2026, 5, 4, 8, 30, 0, 0, time.UTC)
	s.factory = factory.NewProjectFactory(
		factory.NewURLBasedValueObjectsFactory(),
		factory.DefaultPoliciesFactory{},
		factory.WithClock(func() time.Time { return s.now }),
	)
}

func (s *InMemoryStoreSuite) newProject(rawURL string) *models.Project {
	p, err := s.factory.Create(rawURL, []string{"Be kind"}, nil, nil)
	s.Require().NoError(err)
	return p
}

func (s *InMemoryStoreSuite) existsSpec(p *models.Project) ports.ProjectAlreadyExistsSpecification {
	return ports.ProjectAlreadyExistsSpecification{ProjectID: p.ID(), RepositoryID: p.RepositoryID()}
}

func (s *InMemoryStoreSuite) commit(p *models.Project) {
	uow, err := s.store.Begin(s.ctx)
	s.Require().NoError(err)
	s.Require().NoError(uow.Save(s.ctx, p))
	s.Require().NoError(uow.Commit(s.ctx))
}

// TestUnitOfWork verifies staged writes only become visible on commit.
func (s *InMemoryStoreSuite) TestUnitOfWork() {
	s.Run("commit makes the project visible", func() {
		p := s.newProject("https://github.com/acme/widgets")
		s.commit(p)

		found, err := s.store.FindOne(s.ctx, p.ID())
		s.Require().NoError(err)
		s.True(p.Equal(found))
	})

	s.Run("rollback discards staged writes", func() {
		p := s.newProject("https://gitlab.com/acme/gadgets")
		uow, err := s.store.Begin(s.ctx)
		s.Require().NoError(err)
		s.Require().NoError(uow.Save(s.ctx, p))
		s.Require().NoError(uow.Rollback(s.ctx))

		_, err = s.store.FindOne(s.ctx, p.ID())
		s.ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("rollback after commit is a no-op", func() {
		p := s.newProject("https://bitbucket.org/acme/tools")
		uow, err := s.store.Begin(s.ctx)
		s.Require().NoError(err)
		s.Require().NoError(uow.Save(s.ctx, p))
		s.Require().NoError(uow.Commit(s.ctx))
		s.NoError(uow.Rollback(s.ctx))

		_, err = s.store.FindOne(s.ctx, p.ID())
		s.NoError(err)
	})

	s.Run("finished unit of work rejects further use", func() {
		uow, err := s.store.Begin(s.ctx)
		s.Require().NoError(err)
		s.Require().NoError(uow.Rollback(s.ctx))

		s.ErrorIs(uow.Save(s.ctx, s.newProject("https://github.com/acme/late")), sentinel.ErrTxDone)
		s.ErrorIs(uow.Commit(s.ctx), sentinel.ErrTxDone)
	})
}

func (s *InMemoryStoreSuite) TestExists() {
	p := s.newProject("https://github.com/acme/widgets")

	uow, err := s.store.Begin(s.ctx)
	s.Require().NoError(err)
	exists, err := uow.Exists(s.ctx, s.existsSpec(p))
	s.Require().NoError(err)
	s.False(exists)
	s.Require().NoError(uow.Rollback(s.ctx))

	s.commit(p)

	uow, err = s.store.Begin(s.ctx)
	s.Require().NoError(err)
	defer func() { _ = uow.Rollback(s.ctx) }()
	exists, err = uow.Exists(s.ctx, s.existsSpec(p))
	s.Require().NoError(err)
	s.True(exists)
}

// TestConcurrentCommitCollision verifies that units of work racing on the same
// identity result in exactly one committed project.
func (s *InMemoryStoreSuite) TestConcurrentCommitCollision() {
	const workers = 20
	var wg sync.WaitGroup
	var committed, conflicts atomic.Int32

	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p := s.newProject("https://github.com/acme/widgets")
			uow, err := s.store.Begin(s.ctx)
			if err != nil {
				return
			}
			defer func() { _ = uow.Rollback(s.ctx) }()
			if err := uow.Save(s.ctx, p); err != nil {
				return
			}
			err = uow.Commit(s.ctx)
			switch {
			case err == nil:
				committed.Add(1)
			case models.HasStatus(err, models.StatusProjectAlreadyExists):
				conflicts.Add(1)
			}
		}()
	}
	wg.Wait()

	s.Equal(int32(1), committed.Load())
	s.Equal(int32(workers-1), conflicts.Load())
}

func (s *InMemoryStoreSuite) TestFindAll() {
	older := s.newProject("https://github.com/acme/widgets")
	s.now = s.now.Add(time.Hour)
	newer := s.newProject("https://gitlab.com/acme/gadgets")
	s.commit(older)
	s.commit(newer)

	s.Run("newest first without filter", func() {
		all, err := s.store.FindAll(s.ctx, ports.Filter{})
		s.Require().NoError(err)
		s.Require().Len(all, 2)
		s.Equal(newer.ID(), all[0].ID())
	})

	s.Run("provider filter", func() {
		got, err := s.store.FindAll(s.ctx, ports.Filter{Providers: []models.Provider{models.ProviderGitHub}})
		s.Require().NoError(err)
		s.Require().Len(got, 1)
		s.Equal(older.ID(), got[0].ID())
	})

	s.Run("limit", func() {
		got, err := s.store.FindAll(s.ctx, ports.Filter{Limit: 1})
		s.Require().NoError(err)
		s.Len(got, 1)
	})
}

func (s *InMemoryStoreSuite) TestOutbox() {
	p := s.newProject("https://github.com/acme/widgets")
	s.commit(p)

	pending, err := s.store.FetchUnpublished(s.ctx, 10)
	s.Require().NoError(err)
	s.Require().Len(pending, 1)
	s.Equal(models.EventTypeProjectCreated, pending[0].EventType)
	s.Equal("github:acme:widgets", pending[0].AggregateID)

	var payload map[string]any
	s.Require().NoError(json.Unmarshal(pending[0].Payload, &payload))
	s.Equal("widgets", payload["repository_id"])

	s.Require().NoError(s.store.MarkPublished(s.ctx, []uuid.UUID{pending[0].ID}))
	pending, err = s.store.FetchUnpublished(s.ctx, 10)
	s.Require().NoError(err)
	s.Empty(pending)
}
