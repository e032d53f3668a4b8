package service

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	docmodels "demandas/internal/document/models"
	docstore "demandas/internal/document/store"
	"demandas/internal/form/combobox"
	"demandas/internal/form/models"
	"demandas/internal/form/session"
	formstore "demandas/internal/form/store"
	"demandas/internal/reference"
	id "demandas/pkg/domain"
	dErrors "demandas/pkg/domain-errors"
	audit "demandas/pkg/platform/audit"
	"demandas/pkg/platform/audit/publishers/compliance"
	auditmemory "demandas/pkg/platform/audit/store/memory"
	"demandas/pkg/requestcontext"
)

type recordingTracker struct {
	mu     sync.Mutex
	events []audit.Event
}

func (t *recordingTracker) Track(_ context.Context, e audit.Event) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.events = append(t.events, e)
}

func (t *recordingTracker) actions() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]string, len(t.events))
	for i, e := range t.events {
		out[i] = e.Action
	}
	return out
}

// gatedDocuments holds every Create until the expected number of callers
// have arrived, so concurrent submits overlap inside the store.
type gatedDocuments struct {
	*docstore.InMemoryStore
	mu      sync.Mutex
	arrived int
	want    int
	release chan struct{}
}

func newGatedDocuments(want int) *gatedDocuments {
	return &gatedDocuments{InMemoryStore: docstore.NewInMemory(), want: want, release: make(chan struct{})}
}

func (g *gatedDocuments) Create(ctx context.Context, doc *docmodels.Document) error {
	g.mu.Lock()
	g.arrived++
	if g.arrived == g.want {
		close(g.release)
	}
	g.mu.Unlock()
	select {
	case <-g.release:
	case <-time.After(time.Second):
	}
	return g.InMemoryStore.Create(ctx, doc)
}

type ServiceSuite struct {
	suite.Suite
	ctx       context.Context
	analyst   id.AnalystID
	demanda   id.DemandaID
	service   *Service
	documents *docstore.InMemoryStore
	audit     *auditmemory.InMemoryStore
	ops       *recordingTracker
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.analyst = id.AnalystID(uuid.New())
	s.demanda = id.DemandaID(uuid.New())
	s.ctx = requestcontext.WithAnalystID(context.Background(), s.analyst)
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	s.ctx = requestcontext.WithTime(s.ctx, now)
	s.ctx = requestcontext.WithRequestID(s.ctx, "req-1")

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	engine := session.DefaultEngine()
	s.documents = docstore.NewInMemory()
	s.audit = auditmemory.NewInMemoryStore()
	s.ops = &recordingTracker{}
	s.service = New(
		formstore.NewInMemory(engine, formstore.WithClock(func() time.Time { return now })),
		s.documents,
		reference.New(reference.StaticCatalog()),
		WithEngine(engine),
		WithLogger(logger),
		WithAuditPublisher(compliance.New(s.audit)),
		WithOpsTracker(s.ops),
	)
}

func (s *ServiceSuite) open() id.FormID {
	out, err := s.service.Open(s.ctx, s.demanda, nil)
	s.Require().NoError(err)
	return out.Session.ID
}

func (s *ServiceSuite) apply(formID id.FormID, cmd Command) *Outcome {
	out, err := s.service.Apply(s.ctx, formID, cmd)
	s.Require().NoError(err, cmd.Name())
	return out
}

// pick searches a lookup field and commits the first match with the keyboard.
func (s *ServiceSuite) pick(formID id.FormID, key combobox.FieldKey, query string) *Outcome {
	out := s.apply(formID, Search{Key: key, Query: query})
	s.Require().True(out.Combobox.IsOpen, "no match for %q", query)
	s.apply(formID, PressKey{Key: key, Pressed: combobox.KeyArrowDown})
	return s.apply(formID, PressKey{Key: key, Pressed: combobox.KeyEnter})
}

func (s *ServiceSuite) fillMediaDocument(formID id.FormID) {
	s.apply(formID, SetField{Key: combobox.Key(models.FieldDocumentType), Value: models.DocumentTypeMidia})
	s.apply(formID, SetField{Key: combobox.Key(models.FieldNumber), Value: "12/2026"})
	s.pick(formID, combobox.Key(models.FieldAnalyst), "joao")
	s.pick(formID, combobox.Key(models.FieldRecipient), "claro")
	s.pick(formID, combobox.Key(models.FieldMediaType), "dvd")
	s.apply(formID, SetField{Key: combobox.Key(models.FieldMediaIdentifier), Value: "DVD-0042"})
}

func (s *ServiceSuite) TestOpenRequiresAnalyst() {
	_, err := s.service.Open(context.Background(), s.demanda, nil)
	s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func (s *ServiceSuite) TestOpenStartsBlankForm() {
	out, err := s.service.Open(s.ctx, s.demanda, nil)
	s.Require().NoError(err)
	s.Equal(s.demanda, out.Session.Form.DemandaID)
	s.Equal(s.analyst, out.Session.AnalystID)
	s.False(out.Session.Editing)
	s.Len(out.Session.Form.Research, 1)
	s.Equal([]string{string(audit.EventFormOpened)}, s.ops.actions())
}

func (s *ServiceSuite) TestSessionsArePrivateToTheirAnalyst() {
	formID := s.open()
	other := requestcontext.WithAnalystID(s.ctx, id.AnalystID(uuid.New()))

	_, err := s.service.Get(other, formID)
	s.True(dErrors.HasCode(err, dErrors.CodeForbidden))

	_, err = s.service.Apply(other, formID, AddResearchRow{})
	s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
}

func (s *ServiceSuite) TestUnknownSession() {
	_, err := s.service.Get(s.ctx, id.NewFormID())
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}

func (s *ServiceSuite) TestCommitReturnsFocusIntent() {
	formID := s.open()
	out := s.pick(formID, combobox.Key(models.FieldAnalyst), "marcia")

	s.Require().NotNil(out.Key)
	s.True(out.Key.Committed)
	s.Require().NotNil(out.Intent)
	s.Equal(combobox.IntentFocus, out.Intent.Kind)
	s.Equal("Márcia Conceição", out.Session.Form.Analyst.DisplayName)
	s.NotZero(out.Session.Form.Analyst.ID)

	again, err := s.service.Get(s.ctx, formID)
	s.Require().NoError(err)
	s.Nil(again.Session.Combobox.Pending, "intent is delivered once")
}

func (s *ServiceSuite) TestAddressingFollowsRecipient() {
	formID := s.open()
	s.pick(formID, combobox.Key(models.FieldRecipient), "banco do brasil")

	out := s.apply(formID, Search{Key: combobox.Key(models.FieldAddressing), Query: "juridica"})
	s.Require().Len(out.Combobox.Results, 1)
	s.Equal("Diretoria Jurídica", out.Combobox.Results[0].DisplayName)

	s.apply(formID, PressKey{Key: combobox.Key(models.FieldAddressing), Pressed: combobox.KeyArrowDown})
	s.apply(formID, PressKey{Key: combobox.Key(models.FieldAddressing), Pressed: combobox.KeyEnter})

	out = s.pick(formID, combobox.Key(models.FieldRecipient), "caixa")
	s.Nil(out.Session.Form.Addressing, "a new recipient clears addressing")
}

func (s *ServiceSuite) TestAmendingCreatesRetificationRecords() {
	formID := s.open()
	s.apply(formID, SetField{Key: combobox.Key(models.FieldDocumentType), Value: models.DocumentTypeOficio})
	s.apply(formID, SetField{Key: combobox.Key(models.FieldSubject), Value: "Encaminhamento de decisão judicial"})

	out := s.apply(formID, SetAmended{Amended: true})
	s.Require().NotNil(out.Change)
	s.Require().Len(out.Change.Added, 1)
	first := out.Change.Added[0]

	out = s.apply(formID, SetFurtherAmended{RecordID: first, Amended: true})
	s.Len(out.Session.Records, 2)

	out = s.apply(formID, SetAmended{Amended: false})
	s.Len(out.Change.Removed, 2)
	s.Empty(out.Session.Records)
}

func (s *ServiceSuite) TestValidateReportsFirstMissingField() {
	formID := s.open()
	out, err := s.service.Validate(s.ctx, formID)
	s.Require().NoError(err)
	s.Require().NotNil(out.Validation)
	s.False(out.Validation.OK)
	s.Equal(`O campo "Tipo de documento" é obrigatório.`, out.Validation.Message)
	s.Require().Len(out.Notifications, 1)
	s.Equal(models.SeverityWarning, out.Notifications[0].Severity)
	s.Equal(3*time.Second, out.Notifications[0].Duration)
}

func (s *ServiceSuite) TestSubmitRejectsInvalidForm() {
	formID := s.open()
	out, err := s.service.Submit(s.ctx, formID)
	s.Require().NoError(err)
	s.False(out.Validation.OK)
	s.Nil(out.Document)
	s.Contains(s.ops.actions(), string(audit.EventSubmissionRejected))

	recent, err := s.audit.ListRecent(s.ctx, 0)
	s.Require().NoError(err)
	s.Empty(recent)
}

func (s *ServiceSuite) TestSubmitCreatesThenUpdatesDocument() {
	formID := s.open()
	s.fillMediaDocument(formID)

	out, err := s.service.Submit(s.ctx, formID)
	s.Require().NoError(err)
	s.Require().True(out.Validation.OK, out.Validation.Message)
	s.Require().NotNil(out.Document)
	s.Equal(1, out.Document.Version)
	s.True(out.Session.Editing)
	s.Equal(out.Document.ID, out.Session.Form.DocumentID)
	s.Require().Len(out.Notifications, 1)
	s.Equal(msgDocumentCreated, out.Notifications[0].Message)

	docID := out.Document.ID
	s.apply(formID, SetField{Key: combobox.Key(models.FieldNumber), Value: "13/2026"})
	out, err = s.service.Submit(s.ctx, formID)
	s.Require().NoError(err)
	s.Equal(2, out.Document.Version)
	s.Equal(msgDocumentUpdated, out.Notifications[0].Message)

	stored, err := s.documents.FindByID(s.ctx, docID)
	s.Require().NoError(err)
	s.Equal("13/2026", stored.Number)

	events, err := s.audit.ListByDocument(s.ctx, docID)
	s.Require().NoError(err)
	s.Require().Len(events, 2)
	s.Equal(string(audit.EventDocumentCreated), events[0].Action)
	s.Equal(string(audit.EventDocumentUpdated), events[1].Action)
	s.Equal("req-1", events[0].RequestID)
}

func (s *ServiceSuite) TestConcurrentSubmitsCreateOneDocument() {
	documents := newGatedDocuments(2)
	s.service.documents = documents
	formID := s.open()
	s.fillMediaDocument(formID)

	var wg sync.WaitGroup
	outs := make([]*Outcome, 2)
	errs := make([]error, 2)
	for i := range 2 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			outs[i], errs[i] = s.service.Submit(s.ctx, formID)
		}()
	}
	wg.Wait()

	var saved []id.DocumentID
	for i := range 2 {
		if errs[i] != nil {
			s.True(dErrors.HasCode(errs[i], dErrors.CodeConflict), errs[i].Error())
			continue
		}
		s.Require().NotNil(outs[i].Document)
		saved = append(saved, outs[i].Document.ID)
	}
	s.Require().Len(saved, 1)

	stored, err := documents.FindByID(s.ctx, saved[0])
	s.Require().NoError(err)
	s.Equal(1, stored.Version)

	events, err := s.audit.ListRecent(s.ctx, 0)
	s.Require().NoError(err)
	s.Require().Len(events, 1)
	s.Equal(string(audit.EventDocumentCreated), events[0].Action)

	sess, err := s.service.Get(s.ctx, formID)
	s.Require().NoError(err)
	s.Equal(saved[0], sess.Session.Form.DocumentID)
}

func (s *ServiceSuite) TestOpenExistingDocumentLoadsIt() {
	formID := s.open()
	s.fillMediaDocument(formID)
	out, err := s.service.Submit(s.ctx, formID)
	s.Require().NoError(err)
	docID := out.Document.ID

	edit, err := s.service.Open(s.ctx, s.demanda, &docID)
	s.Require().NoError(err)
	s.True(edit.Session.Editing)
	s.Equal("12/2026", edit.Session.Form.Number)
	s.Equal("DVD-0042", edit.Session.Form.Media.Identifier)
	s.True(edit.Session.Rule.Section3.Visible)

	_, err = s.service.Open(s.ctx, id.DemandaID(uuid.New()), &docID)
	s.True(dErrors.HasCode(err, dErrors.CodeConflict))
}

func (s *ServiceSuite) TestDiscard() {
	formID := s.open()
	s.Require().NoError(s.service.Discard(s.ctx, formID))

	_, err := s.service.Get(s.ctx, formID)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	s.Contains(s.ops.actions(), string(audit.EventFormDiscarded))
}
