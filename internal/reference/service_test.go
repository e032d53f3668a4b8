package reference

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"demandas/internal/form/models"
	dErrors "demandas/pkg/domain-errors"
)

type ServiceSuite struct {
	suite.Suite
	service *Service
	ctx     context.Context
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.service = New(nil)
	s.ctx = context.Background()
}

func (s *ServiceSuite) TestSubjects() {
	s.Run("known type lists its subjects", func() {
		subjects, err := s.service.Subjects(s.ctx, models.DocumentTypeOficio)
		s.Require().NoError(err)
		s.Contains(subjects, "Encaminhamento de decisão judicial")
	})

	s.Run("media has no subjects", func() {
		subjects, err := s.service.Subjects(s.ctx, models.DocumentTypeMidia)
		s.Require().NoError(err)
		s.Empty(subjects)
	})

	s.Run("unknown type is not found", func() {
		_, err := s.service.Subjects(s.ctx, "Memorando")
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

func (s *ServiceSuite) TestPool() {
	s.Run("recipients are flattened", func() {
		pool, err := s.service.Pool(s.ctx, PoolRecipients)
		s.Require().NoError(err)
		s.Equal("Banco do Brasil S.A.", pool[0].DisplayName)
	})

	s.Run("addressing is not a flat pool", func() {
		_, err := s.service.Pool(s.ctx, PoolAddressing)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("returned pools are copies", func() {
		pool, err := s.service.Pool(s.ctx, PoolCourts)
		s.Require().NoError(err)
		pool[0].DisplayName = "changed"

		again, err := s.service.Pool(s.ctx, PoolCourts)
		s.Require().NoError(err)
		s.NotEqual("changed", again[0].DisplayName)
	})
}

func (s *ServiceSuite) TestAddressing() {
	s.Len(s.service.Addressing(s.ctx, &models.SearchableValue{ID: 1, DisplayName: "Banco do Brasil S.A."}), 2)
	s.Empty(s.service.Addressing(s.ctx, &models.SearchableValue{ID: 3}))
	s.Empty(s.service.Addressing(s.ctx, &models.SearchableValue{DisplayName: "Banco do Brasil S.A."}))
	s.Empty(s.service.Addressing(s.ctx, nil))
}

func (s *ServiceSuite) TestBootstrap() {
	b, err := s.service.Bootstrap(s.ctx)
	s.Require().NoError(err)
	s.Len(b.DocumentTypes, 3)
	for _, name := range PoolNames() {
		s.NotEmpty(b.Pools[name], name)
	}
}

func TestNumberedDropsDuplicates(t *testing.T) {
	got := numbered(" CD ", "DVD", "CD", "")
	if len(got) != 2 || got[0] != (models.SearchableValue{ID: 1, DisplayName: "CD"}) || got[1].ID != 2 {
		t.Fatalf("unexpected pool: %+v", got)
	}
}
