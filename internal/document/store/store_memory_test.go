package store

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"demandas/internal/document/models"
	formmodels "demandas/internal/form/models"
	id "demandas/pkg/domain"
	"demandas/pkg/platform/sentinel"
)

type MemoryStoreSuite struct {
	suite.Suite
	store *InMemoryStore
	ctx   context.Context
}

func TestMemoryStoreSuite(t *testing.T) {
	suite.Run(t, new(MemoryStoreSuite))
}

func (s *MemoryStoreSuite) SetupTest() {
	s.store = NewInMemory()
	s.ctx = context.Background()
}

func newDocument() *models.Document {
	form := formmodels.NewForm(id.DemandaID(uuid.New()))
	form.DocumentType = formmodels.DocumentTypeMidia
	return models.New(id.NewDocumentID(), form, nil, id.AnalystID(uuid.New()), time.Now())
}

func (s *MemoryStoreSuite) TestCreateAndFind() {
	doc := newDocument()
	s.Require().NoError(s.store.Create(s.ctx, doc))
	s.ErrorIs(s.store.Create(s.ctx, doc), sentinel.ErrConflict)

	found, err := s.store.FindByID(s.ctx, doc.ID)
	s.Require().NoError(err)
	s.Equal(doc, found)

	_, err = s.store.FindByID(s.ctx, id.NewDocumentID())
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *MemoryStoreSuite) TestUpdateChecksVersion() {
	doc := newDocument()
	s.Require().NoError(s.store.Create(s.ctx, doc))

	stale, err := s.store.FindByID(s.ctx, doc.ID)
	s.Require().NoError(err)

	doc.ApplyRevision(doc.Content.Form, nil, doc.CreatedBy, time.Now())
	s.Require().NoError(s.store.Update(s.ctx, doc))

	stale.ApplyRevision(stale.Content.Form, nil, stale.CreatedBy, time.Now())
	s.ErrorIs(s.store.Update(s.ctx, stale), sentinel.ErrConflict)

	s.ErrorIs(s.store.Update(s.ctx, newDocument()), sentinel.ErrNotFound)
}
