package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"github.com/web-lizzard/review-genie/internal/project/factory"
	"github.com/web-lizzard/review-genie/internal/project/models"
	"github.com/web-lizzard/review-genie/internal/project/ports"
	"github.com/web-lizzard/review-genie/internal/project/ports/mocks"
)

// =============================================================================
// CreateProjectService Test Suite
// =============================================================================
// Verifier ordering, short-circuiting and exhaustion are only observable with
// call-level expectations, so the verifiers are gomock doubles.

type CreateProjectServiceSuite struct {
	suite.Suite
	ctrl    *gomock.Controller
	now     time.Time
	logger  *slog.Logger
	factory *factory.ProjectFactory
}

func TestCreateProjectServiceSuite(t *testing.T) {
	suite.Run(t, new(CreateProjectServiceSuite))
}

func (s *CreateProjectServiceSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.now = time.Date(2026, 5, 4, 8, 30, 0, 0, time.UTC)
	s.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	s.factory = factory.NewProjectFactory(
		factory.NewURLBasedValueObjectsFactory(),
		factory.DefaultPoliciesFactory{},
		factory.WithClock(func() time.Time { return s.now }),
	)
}

func (s *CreateProjectServiceSuite) newService(verifiers ...ports.RemoteRepositoryVerifier) *CreateProjectService {
	return NewCreateProjectService(
		factory.NewURLBasedValueObjectsFactory(),
		s.factory,
		verifiers,
		WithLogger(s.logger),
	)
}

func widgetsRef() ports.RepositoryRef {
	owner, _ := models.NewOwner("acme")
	repo, _ := models.NewRepositoryID("widgets")
	return ports.RepositoryRef{Provider: models.ProviderGitHub, Owner: owner, RepositoryID: repo}
}

func (s *CreateProjectServiceSuite) TestCreate() {
	ctx := context.Background()

	s.Run("confirmed repository yields aggregate with defaults", func() {
		v := mocks.NewMockRemoteRepositoryVerifier(s.ctrl)
		v.EXPECT().Verify(gomock.Any(), widgetsRef()).Return(true, nil)

		p, err := s.newService(v).Create(ctx, "https://github.com/acme/widgets", []string{"Be kind"})
		s.Require().NoError(err)
		s.Equal("github:acme:widgets", p.ID().String())
		s.Equal(models.ProviderGitHub, p.Provider())
		s.Equal("acme", p.Owner().String())
		s.Equal("widgets", p.RepositoryID().String())
		s.Equal([]string{"Be kind"}, p.Rules().Items())
		s.Equal(models.PullRequestPolicyAll, p.Policies().PullRequestPolicy())
		s.Equal(models.RetryLimitCount, p.Policies().RetryLimitType())
		s.Equal(2, p.Policies().RetryLimitValue())
		s.Equal(s.now, p.CreatedAt())
	})

	s.Run("empty rules list stays empty", func() {
		v := mocks.NewMockRemoteRepositoryVerifier(s.ctrl)
		v.EXPECT().Verify(gomock.Any(), gomock.Any()).Return(true, nil)

		p, err := s.newService(v).Create(ctx, "https://github.com/acme/widgets", []string{})
		s.Require().NoError(err)
		s.Equal(0, p.Rules().Len())
		s.Equal("", p.Rules().Text())
	})

	s.Run("unsupported host fails before any verifier", func() {
		v := mocks.NewMockRemoteRepositoryVerifier(s.ctrl)
		v.EXPECT().Verify(gomock.Any(), gomock.Any()).Times(0)

		_, err := s.newService(v).Create(ctx, "https://example.com/acme/widgets", nil)
		s.True(models.HasStatus(err, models.StatusInvalidURLFormat))
	})

	s.Run("invalid owner fails before any verifier", func() {
		v := mocks.NewMockRemoteRepositoryVerifier(s.ctrl)
		v.EXPECT().Verify(gomock.Any(), gomock.Any()).Times(0)

		_, err := s.newService(v).Create(ctx, "https://github.com/test_user/repo", nil)
		s.True(models.HasStatus(err, models.StatusInvalidOwnerFormat))
	})

	s.Run("blank rule fails after verification", func() {
		v := mocks.NewMockRemoteRepositoryVerifier(s.ctrl)
		v.EXPECT().Verify(gomock.Any(), gomock.Any()).Return(true, nil)

		_, err := s.newService(v).Create(ctx, "https://github.com/acme/widgets", []string{"  "})
		s.True(models.HasStatus(err, models.StatusEmptyRule))
	})
}

// =============================================================================
// Verifier Ordering
// =============================================================================

func (s *CreateProjectServiceSuite) TestVerifierOrdering() {
	ctx := context.Background()

	s.Run("first confirming verifier wins and later ones are skipped", func() {
		v1 := mocks.NewMockRemoteRepositoryVerifier(s.ctrl)
		v2 := mocks.NewMockRemoteRepositoryVerifier(s.ctrl)
		v3 := mocks.NewMockRemoteRepositoryVerifier(s.ctrl)
		gomock.InOrder(
			v1.EXPECT().Verify(gomock.Any(), gomock.Any()).Return(false, nil),
			v2.EXPECT().Verify(gomock.Any(), gomock.Any()).Return(true, nil),
		)
		v3.EXPECT().Verify(gomock.Any(), gomock.Any()).Times(0)

		_, err := s.newService(v1, v2, v3).Create(ctx, "https://github.com/acme/widgets", nil)
		s.NoError(err)
	})

	s.Run("all verifiers declining reports missing repository", func() {
		v1 := mocks.NewMockRemoteRepositoryVerifier(s.ctrl)
		v2 := mocks.NewMockRemoteRepositoryVerifier(s.ctrl)
		v1.EXPECT().Verify(gomock.Any(), gomock.Any()).Return(false, nil)
		v2.EXPECT().Verify(gomock.Any(), gomock.Any()).Return(false, nil)

		_, err := s.newService(v1, v2).Create(ctx, "https://github.com/acme/widgets", nil)
		s.True(models.HasStatus(err, models.StatusRemoteRepositoryDoesNotExist))
		detail, ok := models.RemoteRepositoryFrom(err)
		s.Require().True(ok)
		s.Equal("widgets", detail.RepositoryID.String())
		s.Equal(models.ProviderGitHub, detail.Provider)
	})

	s.Run("no verifiers reports missing repository", func() {
		_, err := s.newService().Create(ctx, "https://github.com/acme/widgets", nil)
		s.True(models.HasStatus(err, models.StatusRemoteRepositoryDoesNotExist))
	})

	s.Run("verifier error propagates unchanged", func() {
		boom := errors.New("connection reset")
		v1 := mocks.NewMockRemoteRepositoryVerifier(s.ctrl)
		v2 := mocks.NewMockRemoteRepositoryVerifier(s.ctrl)
		v1.EXPECT().Verify(gomock.Any(), gomock.Any()).Return(false, boom)
		v2.EXPECT().Verify(gomock.Any(), gomock.Any()).Times(0)

		_, err := s.newService(v1, v2).Create(ctx, "https://github.com/acme/widgets", nil)
		s.Same(boom, err)
	})
}
