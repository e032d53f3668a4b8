// Package service orchestrates form sessions: it loads a session from the
// store, applies one analyst action to it, persists the result and turns
// outcomes into notifications. Submitting writes the document and its
// compliance audit event in one transaction.
package service

import (
	"context"
	"errors"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	docmodels "demandas/internal/document/models"
	"demandas/internal/form/combobox"
	"demandas/internal/form/metrics"
	"demandas/internal/form/models"
	"demandas/internal/form/notify"
	"demandas/internal/form/retification"
	"demandas/internal/form/session"
	"demandas/internal/form/validation"
	id "demandas/pkg/domain"
	dErrors "demandas/pkg/domain-errors"
	audit "demandas/pkg/platform/audit"
	"demandas/pkg/platform/sentinel"
	"demandas/pkg/requestcontext"
)

type SessionStore interface {
	Create(ctx context.Context, sess *session.Session) error
	FindByID(ctx context.Context, formID id.FormID) (*session.Session, error)
	Execute(ctx context.Context, formID id.FormID, fn func(*session.Session) error) (*session.Session, error)
	Delete(ctx context.Context, formID id.FormID) error
}

type DocumentStore interface {
	Create(ctx context.Context, doc *docmodels.Document) error
	Update(ctx context.Context, doc *docmodels.Document) error
	FindByID(ctx context.Context, docID id.DocumentID) (*docmodels.Document, error)
}

// Catalog supplies the candidates of lookup fields.
type Catalog interface {
	Pool(ctx context.Context, name string) ([]models.SearchableValue, error)
	Addressing(ctx context.Context, recipient *models.SearchableValue) []models.SearchableValue
}

type TxRunner interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

type OpsTracker interface {
	Track(ctx context.Context, event audit.Event)
}

// Outcome is what an operation hands back to the transport layer.
type Outcome struct {
	Session       session.Snapshot
	Notifications []notify.Notification
	Intent        *combobox.Intent
	Change        *retification.Change
	Combobox      *combobox.State
	Key           *combobox.KeyResult
	Validation    *validation.Result
	Document      *docmodels.Document
}

// Service orchestrates form sessions.
type Service struct {
	sessions  SessionStore
	documents DocumentStore
	catalog   Catalog
	engine    *session.Engine
	tx        TxRunner
	auditor   AuditPublisher
	ops       OpsTracker
	sink      notify.Sink
	policy    notify.Policy
	logger    *slog.Logger
	metrics   *metrics.Metrics
	tracer    trace.Tracer
}

type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithEngine(engine *session.Engine) Option {
	return func(s *Service) {
		s.engine = engine
	}
}

func WithTxRunner(tx TxRunner) Option {
	return func(s *Service) {
		s.tx = tx
	}
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(s *Service) {
		s.auditor = publisher
	}
}

func WithOpsTracker(tracker OpsTracker) Option {
	return func(s *Service) {
		s.ops = tracker
	}
}

// WithNotificationSink adds a sink that sees every notification besides the
// response.
func WithNotificationSink(sink notify.Sink) Option {
	return func(s *Service) {
		s.sink = sink
	}
}

func WithNotificationPolicy(policy notify.Policy) Option {
	return func(s *Service) {
		s.policy = policy
	}
}

// New constructs a Service.
func New(sessions SessionStore, documents DocumentStore, catalog Catalog, opts ...Option) *Service {
	s := &Service{
		sessions:  sessions,
		documents: documents,
		catalog:   catalog,
		tx:        noopTx{},
		logger:    slog.Default(),
		tracer:    otel.Tracer("demandas/form"),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.engine == nil {
		s.engine = session.DefaultEngine()
	}
	return s
}

// Open starts a form session for a demanda. With a document id the session
// edits that document; stored values are loaded as they are.
func (s *Service) Open(ctx context.Context, demandaID id.DemandaID, documentID *id.DocumentID) (_ *Outcome, err error) {
	ctx, span := s.tracer.Start(ctx, "form.Open", trace.WithAttributes(
		attribute.String("demanda_id", demandaID.String()),
	))
	defer func() { endSpan(span, err) }()

	analyst := requestcontext.AnalystID(ctx)
	if analyst.IsNil() {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "analyst not authenticated")
	}
	if demandaID.IsNil() {
		return nil, dErrors.New(dErrors.CodeBadRequest, "demanda id is required")
	}

	now := requestcontext.Now(ctx)
	sess := session.New(id.NewFormID(), demandaID, analyst, s.engine, now)
	mode := "new"
	if documentID != nil {
		doc, err := s.documents.FindByID(ctx, *documentID)
		if err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				return nil, dErrors.New(dErrors.CodeNotFound, "document not found")
			}
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load document")
		}
		if doc.DemandaID != demandaID {
			return nil, dErrors.New(dErrors.CodeConflict, "document belongs to another demanda")
		}
		sess.Load(doc.Content.Form, doc.Content.Retifications)
		mode = "edit"
	}

	if err := s.sessions.Create(ctx, sess); err != nil {
		return nil, s.storeError(err)
	}
	span.SetAttributes(attribute.String("form_id", sess.ID.String()), attribute.String("mode", mode))
	s.metrics.IncrementSessionsOpened(mode)
	s.track(ctx, audit.EventFormOpened, sess, "")
	s.logger.InfoContext(ctx, "form session opened",
		"form_id", sess.ID,
		"demanda_id", demandaID,
		"mode", mode,
		"request_id", requestcontext.RequestID(ctx),
	)
	return &Outcome{Session: sess.Snapshot(), Notifications: []notify.Notification{}}, nil
}

// Get returns the current state of a session.
func (s *Service) Get(ctx context.Context, formID id.FormID) (*Outcome, error) {
	sess, err := s.load(ctx, formID)
	if err != nil {
		return nil, err
	}
	return &Outcome{Session: sess.Snapshot(), Notifications: []notify.Notification{}}, nil
}

// Apply runs one command against a session and stores the result.
func (s *Service) Apply(ctx context.Context, formID id.FormID, cmd Command) (_ *Outcome, err error) {
	ctx, span := s.tracer.Start(ctx, "form.Apply", trace.WithAttributes(
		attribute.String("form_id", formID.String()),
		attribute.String("command", cmd.Name()),
	))
	defer func() {
		s.metrics.IncrementCommand(cmd.Name(), err)
		endSpan(span, err)
	}()

	analyst := requestcontext.AnalystID(ctx)
	now := requestcontext.Now(ctx)
	var out *Outcome
	sess, err := s.sessions.Execute(ctx, formID, func(sess *session.Session) error {
		if err := authorize(sess, analyst); err != nil {
			return err
		}
		out = &Outcome{}
		if err := cmd.apply(ctx, s, sess, out); err != nil {
			return err
		}
		if intent, ok := sess.TakeIntent(); ok {
			out.Intent = &intent
		}
		sess.Touch(now)
		return nil
	})
	if err != nil {
		return nil, s.storeError(err)
	}
	out.Session = sess.Snapshot()
	out.Notifications = []notify.Notification{}
	return out, nil
}

// Discard drops a session without saving.
func (s *Service) Discard(ctx context.Context, formID id.FormID) error {
	sess, err := s.load(ctx, formID)
	if err != nil {
		return err
	}
	if err := s.sessions.Delete(ctx, formID); err != nil {
		return s.storeError(err)
	}
	s.track(ctx, audit.EventFormDiscarded, sess, "")
	return nil
}

func (s *Service) load(ctx context.Context, formID id.FormID) (*session.Session, error) {
	sess, err := s.sessions.FindByID(ctx, formID)
	if err != nil {
		return nil, s.storeError(err)
	}
	if err := authorize(sess, requestcontext.AnalystID(ctx)); err != nil {
		return nil, err
	}
	return sess, nil
}

// authorize keeps a session private to the analyst who opened it.
func authorize(sess *session.Session, analyst id.AnalystID) error {
	if analyst.IsNil() {
		return dErrors.New(dErrors.CodeUnauthorized, "analyst not authenticated")
	}
	if sess.AnalystID != analyst {
		return dErrors.New(dErrors.CodeForbidden, "form session belongs to another analyst")
	}
	return nil
}

// storeError translates store sentinels. Domain errors raised inside an
// Execute callback pass through unchanged.
func (s *Service) storeError(err error) error {
	var de *dErrors.Error
	switch {
	case errors.As(err, &de):
		return err
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.New(dErrors.CodeNotFound, "form session not found")
	case errors.Is(err, sentinel.ErrExpired):
		return dErrors.New(dErrors.CodeNotFound, "form session expired")
	case errors.Is(err, sentinel.ErrConflict):
		return dErrors.New(dErrors.CodeConflict, "form session was changed by another request")
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, "form session store failed")
	}
}

func (s *Service) notify(ctx context.Context, out *Outcome, message string, severity models.Severity) {
	n := s.policy.New(message, severity)
	out.Notifications = append(out.Notifications, n)
	if s.sink != nil {
		s.sink.Notify(ctx, n)
	}
}

func (s *Service) track(ctx context.Context, action audit.AuditEvent, sess *session.Session, reason string) {
	if s.ops == nil {
		return
	}
	s.ops.Track(ctx, audit.Event{
		Action:     string(action),
		AnalystID:  sess.AnalystID,
		DemandaID:  sess.Form.DemandaID,
		DocumentID: sess.Form.DocumentID,
		FormID:     sess.ID,
		Subject:    classification(sess.Form),
		Reason:     reason,
		RequestID:  requestcontext.RequestID(ctx),
	})
}

func classification(f models.Form) string {
	if f.Subject == "" {
		return f.DocumentType
	}
	return f.DocumentType + "|" + f.Subject
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, string(dErrors.CodeOf(err)))
	}
	span.End()
}

type noopTx struct{}

func (noopTx) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}
