package service

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	docmodels "demandas/internal/document/models"
	"demandas/internal/form/models"
	"demandas/internal/form/notify"
	"demandas/internal/form/session"
	"demandas/internal/form/validation"
	id "demandas/pkg/domain"
	dErrors "demandas/pkg/domain-errors"
	audit "demandas/pkg/platform/audit"
	"demandas/pkg/platform/sentinel"
	"demandas/pkg/requestcontext"
)

const (
	msgFormValid       = "Formulário válido."
	msgDocumentCreated = "Documento salvo com sucesso."
	msgDocumentUpdated = "Documento atualizado com sucesso."
)

// Validate checks whether the form may be submitted. A failed pass is a
// normal outcome reported through Validation and a notification.
func (s *Service) Validate(ctx context.Context, formID id.FormID) (_ *Outcome, err error) {
	ctx, span := s.tracer.Start(ctx, "form.Validate", trace.WithAttributes(
		attribute.String("form_id", formID.String()),
	))
	defer func() { endSpan(span, err) }()

	sess, err := s.load(ctx, formID)
	if err != nil {
		return nil, err
	}
	out := &Outcome{Session: sess.Snapshot(), Notifications: []notify.Notification{}}
	result := s.validate(ctx, sess)
	out.Validation = &result
	if result.OK {
		s.notify(ctx, out, msgFormValid, models.SeveritySuccess)
	} else {
		s.notify(ctx, out, result.Message, result.Severity)
	}
	return out, nil
}

// Submit validates the form and saves it as a document. The document and
// its compliance audit event are written in one transaction.
func (s *Service) Submit(ctx context.Context, formID id.FormID) (_ *Outcome, err error) {
	start := time.Now()
	ctx, span := s.tracer.Start(ctx, "form.Submit", trace.WithAttributes(
		attribute.String("form_id", formID.String()),
	))
	defer func() {
		s.metrics.ObserveSubmitLatency(time.Since(start))
		endSpan(span, err)
	}()

	sess, err := s.load(ctx, formID)
	if err != nil {
		return nil, err
	}
	out := &Outcome{Notifications: []notify.Notification{}}
	result := s.validate(ctx, sess)
	out.Validation = &result
	if !result.OK {
		s.metrics.IncrementSubmission("rejected")
		s.track(ctx, audit.EventSubmissionRejected, sess, result.Message)
		s.notify(ctx, out, result.Message, result.Severity)
		out.Session = sess.Snapshot()
		return out, nil
	}

	now := requestcontext.Now(ctx)
	sess, err = s.reserveDocument(ctx, formID)
	if err != nil {
		return nil, err
	}
	doc, created, err := s.persist(ctx, sess, now)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.String("document_id", doc.ID.String()), attribute.Int("version", doc.Version))

	sess, err = s.sessions.Execute(ctx, formID, func(sess *session.Session) error {
		sess.Form.DocumentID = doc.ID
		sess.Editing = true
		sess.Touch(now)
		return nil
	})
	if err != nil {
		// The document is saved; only the session bookkeeping failed.
		s.logger.WarnContext(ctx, "form session not updated after submit",
			"form_id", formID,
			"document_id", doc.ID,
			"error", err,
		)
		return nil, s.storeError(err)
	}

	out.Session = sess.Snapshot()
	out.Document = doc
	if created {
		s.metrics.IncrementSubmission("created")
		s.notify(ctx, out, msgDocumentCreated, models.SeveritySuccess)
	} else {
		s.metrics.IncrementSubmission("updated")
		s.notify(ctx, out, msgDocumentUpdated, models.SeveritySuccess)
	}
	s.logger.InfoContext(ctx, "document submitted",
		"form_id", formID,
		"document_id", doc.ID,
		"version", doc.Version,
		"request_id", requestcontext.RequestID(ctx),
	)
	return out, nil
}

func (s *Service) validate(ctx context.Context, sess *session.Session) validation.Result {
	result := sess.Validate(requestcontext.Now(ctx), s.addressingRequired(ctx, sess.Form))
	switch {
	case result.OK:
		s.metrics.IncrementValidation("ok")
	default:
		s.metrics.IncrementValidation(string(result.Severity))
	}
	return result
}

// addressingRequired reports whether the chosen recipient offers addressing
// options the analyst must pick from.
func (s *Service) addressingRequired(ctx context.Context, form models.Form) bool {
	if form.IsCircular() || form.Recipient == nil {
		return false
	}
	return len(s.catalog.Addressing(ctx, form.Recipient)) > 0
}

// reserveDocument assigns the document id under the session lock, so
// concurrent submits of a new form all target the same document and the
// store admits only one create.
func (s *Service) reserveDocument(ctx context.Context, formID id.FormID) (*session.Session, error) {
	sess, err := s.sessions.Execute(ctx, formID, func(sess *session.Session) error {
		if sess.Form.DocumentID.IsNil() {
			sess.Form.DocumentID = id.NewDocumentID()
		}
		return nil
	})
	if err != nil {
		return nil, s.storeError(err)
	}
	return sess, nil
}

// persist creates the reserved document unless the session already edits a
// stored one.
func (s *Service) persist(ctx context.Context, sess *session.Session, now time.Time) (*docmodels.Document, bool, error) {
	var (
		doc     *docmodels.Document
		created bool
	)
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		action := audit.EventDocumentUpdated
		if !sess.Editing {
			doc = docmodels.New(sess.Form.DocumentID, sess.Form, sess.Records(), sess.AnalystID, now)
			if err := s.documents.Create(ctx, doc); err != nil {
				return err
			}
			created = true
			action = audit.EventDocumentCreated
		} else {
			existing, err := s.documents.FindByID(ctx, sess.Form.DocumentID)
			if err != nil {
				return err
			}
			existing.ApplyRevision(sess.Form, sess.Records(), sess.AnalystID, now)
			if err := s.documents.Update(ctx, existing); err != nil {
				return err
			}
			doc = existing
		}
		if s.auditor == nil {
			return nil
		}
		return s.auditor.Emit(ctx, audit.Event{
			Action:     string(action),
			Timestamp:  now,
			AnalystID:  sess.AnalystID,
			DemandaID:  doc.DemandaID,
			DocumentID: doc.ID,
			FormID:     sess.ID,
			Subject:    classification(sess.Form),
			RequestID:  requestcontext.RequestID(ctx),
		})
	})
	if err != nil {
		switch {
		case errors.Is(err, sentinel.ErrNotFound):
			return nil, false, dErrors.New(dErrors.CodeNotFound, "document not found")
		case errors.Is(err, sentinel.ErrConflict):
			return nil, false, dErrors.New(dErrors.CodeConflict, "document was changed by another submission")
		case dErrors.HasCode(err, dErrors.CodeTimeout):
			return nil, false, err
		default:
			return nil, false, dErrors.Wrap(err, dErrors.CodeInternal, "failed to save document")
		}
	}
	return doc, created, nil
}
