// Package audit records who did what to which document.
package audit

import (
	"context"
	"time"

	id "demandas/pkg/domain"
)

// EventCategory classifies audit events by retention and delivery needs.
type EventCategory string

const (
	// CategoryCompliance covers events that change the legal record. They
	// are written fail-closed in the same transaction as the change.
	CategoryCompliance EventCategory = "compliance"

	// CategoryOperations covers routine activity. It may be sampled and is
	// dropped rather than failing the request.
	CategoryOperations EventCategory = "operations"
)

// Event is emitted from domain logic to capture key actions.
type Event struct {
	ID         string        `json:"id"`
	Category   EventCategory `json:"category"`
	Timestamp  time.Time     `json:"timestamp"`
	Action     string        `json:"action"`
	AnalystID  id.AnalystID  `json:"analyst_id"`
	DemandaID  id.DemandaID  `json:"demanda_id"`
	DocumentID id.DocumentID `json:"document_id"`
	FormID     id.FormID     `json:"form_id"`
	// Subject is the document classification, e.g. "Ofício|Outros".
	Subject   string `json:"subject,omitempty"`
	Reason    string `json:"reason,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

type AuditEvent string

const (
	EventDocumentCreated    AuditEvent = "document_created"
	EventDocumentUpdated    AuditEvent = "document_updated"
	EventSubmissionRejected AuditEvent = "submission_rejected"
	EventFormOpened         AuditEvent = "form_opened"
	EventFormDiscarded      AuditEvent = "form_discarded"
)

var eventCategories = map[AuditEvent]EventCategory{
	EventDocumentCreated: CategoryCompliance,
	EventDocumentUpdated: CategoryCompliance,

	EventSubmissionRejected: CategoryOperations,
	EventFormOpened:         CategoryOperations,
	EventFormDiscarded:      CategoryOperations,
}

// Category returns the EventCategory for this audit event.
// Unknown events default to CategoryOperations.
func (e AuditEvent) Category() EventCategory {
	if cat, ok := eventCategories[e]; ok {
		return cat
	}
	return CategoryOperations
}

// Store persists audit events.
type Store interface {
	Append(ctx context.Context, event Event) error
}

// Publisher ships events to a downstream log.
type Publisher interface {
	Publish(ctx context.Context, events ...Event) error
}
