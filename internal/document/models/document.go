// Package models defines the persisted document produced by a form.
package models

import (
	"time"

	formmodels "demandas/internal/form/models"
	"demandas/internal/form/retification"
	id "demandas/pkg/domain"
)

// Document is a submitted form. Content holds the form as the analyst left
// it; the top-level fields are copies used for indexing.
type Document struct {
	ID           id.DocumentID
	DemandaID    id.DemandaID
	DocumentType string
	Subject      string
	Number       string
	Content      Content
	Version      int
	CreatedBy    id.AnalystID
	UpdatedBy    id.AnalystID
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Content is the JSON payload of a document.
type Content struct {
	Form          formmodels.Form       `json:"form"`
	Retifications []retification.Record `json:"retifications"`
}

// New builds version 1 of a document from a validated form.
func New(docID id.DocumentID, form formmodels.Form, records []retification.Record, analyst id.AnalystID, now time.Time) *Document {
	form = form.Clone()
	form.DocumentID = docID
	return &Document{
		ID:           docID,
		DemandaID:    form.DemandaID,
		DocumentType: form.DocumentType,
		Subject:      form.Subject,
		Number:       form.Number,
		Content:      Content{Form: form, Retifications: append([]retification.Record{}, records...)},
		Version:      1,
		CreatedBy:    analyst,
		UpdatedBy:    analyst,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// ApplyRevision replaces the content with a newer form and bumps the version.
func (d *Document) ApplyRevision(form formmodels.Form, records []retification.Record, analyst id.AnalystID, now time.Time) {
	form = form.Clone()
	form.DocumentID = d.ID
	d.DemandaID = form.DemandaID
	d.DocumentType = form.DocumentType
	d.Subject = form.Subject
	d.Number = form.Number
	d.Content = Content{Form: form, Retifications: append([]retification.Record{}, records...)}
	d.Version++
	d.UpdatedBy = analyst
	d.UpdatedAt = now
}
