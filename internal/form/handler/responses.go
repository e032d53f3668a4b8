package handler

import (
	"time"

	"demandas/internal/form/combobox"
	"demandas/internal/form/models"
	"demandas/internal/form/notify"
	"demandas/internal/form/retification"
	"demandas/internal/form/sections"
	"demandas/internal/form/service"
	"demandas/internal/form/validation"
)

// FormResponse is the session view every form endpoint returns, together
// with what the last operation produced.
type FormResponse struct {
	ID            string                   `json:"id"`
	Form          models.Form              `json:"form"`
	Sections      sections.SectionRule     `json:"sections"`
	Retifications []retification.Record    `json:"retifications"`
	Comboboxes    []combobox.FieldSnapshot `json:"comboboxes"`
	Editing       bool                     `json:"editing"`
	UpdatedAt     time.Time                `json:"updated_at"`

	Notifications []notify.Notification `json:"notifications"`
	Intent        *combobox.Intent      `json:"intent,omitempty"`
	Change        *retification.Change  `json:"change,omitempty"`
	Combobox      *combobox.State       `json:"combobox,omitempty"`
	Key           *combobox.KeyResult   `json:"key,omitempty"`
	Validation    *validation.Result    `json:"validation,omitempty"`
	Document      *DocumentResponse     `json:"document,omitempty"`
}

// DocumentResponse describes the document a submission wrote.
type DocumentResponse struct {
	ID        string    `json:"id"`
	Version   int       `json:"version"`
	UpdatedAt time.Time `json:"updated_at"`
}

// FromOutcome converts a service outcome to an HTTP response.
func FromOutcome(out *service.Outcome) *FormResponse {
	snap := out.Session
	resp := &FormResponse{
		ID:            snap.ID.String(),
		Form:          snap.Form,
		Sections:      snap.Rule,
		Retifications: snap.Records,
		Comboboxes:    snap.Combobox.Fields,
		Editing:       snap.Editing,
		UpdatedAt:     snap.UpdatedAt,
		Notifications: out.Notifications,
		Intent:        out.Intent,
		Change:        out.Change,
		Combobox:      out.Combobox,
		Key:           out.Key,
		Validation:    out.Validation,
	}
	if resp.Retifications == nil {
		resp.Retifications = []retification.Record{}
	}
	if resp.Comboboxes == nil {
		resp.Comboboxes = []combobox.FieldSnapshot{}
	}
	if resp.Notifications == nil {
		resp.Notifications = []notify.Notification{}
	}
	if out.Document != nil {
		resp.Document = &DocumentResponse{
			ID:        out.Document.ID.String(),
			Version:   out.Document.Version,
			UpdatedAt: out.Document.UpdatedAt,
		}
	}
	return resp
}
