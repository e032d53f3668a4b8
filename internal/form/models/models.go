// Package models holds the value types shared by the form engine packages.
package models

import (
	"strings"

	id "demandas/pkg/domain"
)

// Document types with behaviour attached to them. Other types come from the
// reference catalog and are plain strings.
const (
	DocumentTypeOficio         = "Ofício"
	DocumentTypeOficioCircular = "Ofício Circular"
	DocumentTypeMidia          = "Mídia"
)

// SearchableValue is the value of a lookup field. ID 0 marks free text that
// was typed but never resolved to a catalog entry.
type SearchableValue struct {
	ID          int    `json:"id"`
	DisplayName string `json:"display_name"`
}

// FreeText builds an unresolved value from typed input.
func FreeText(text string) SearchableValue {
	return SearchableValue{DisplayName: text}
}

// IsFreeText reports whether the value was typed rather than picked.
func (v SearchableValue) IsFreeText() bool {
	return v.ID == 0
}

// IsBlank reports whether nothing meaningful was entered.
func (v *SearchableValue) IsBlank() bool {
	return v == nil || strings.TrimSpace(v.DisplayName) == ""
}

// Decision is section 2: the judicial decision a document forwards.
type Decision struct {
	Authority   *SearchableValue `json:"authority,omitempty"`
	Court       *SearchableValue `json:"court,omitempty"`
	SigningDate string           `json:"signing_date"`
	Amended     bool             `json:"amended"`
}

// Media is section 3: the physical media handed over with a "Mídia" document.
type Media struct {
	Type       *SearchableValue `json:"type,omitempty"`
	Identifier string           `json:"identifier"`
	Summary    string           `json:"summary"`
}

// ResearchRow is one line of section 4.
type ResearchRow struct {
	IdentifierType *SearchableValue `json:"identifier_type,omitempty"`
	Identifier     string           `json:"identifier"`
}

// Form is the editable snapshot of a document being authored. Retification
// records are owned by the chain manager and are not part of this struct.
type Form struct {
	DemandaID    id.DemandaID      `json:"demanda_id"`
	DocumentID   id.DocumentID     `json:"document_id"`
	DocumentType string            `json:"document_type"`
	Subject      string            `json:"subject"`
	Number       string            `json:"number"`
	Analyst      *SearchableValue  `json:"analyst,omitempty"`
	Recipient    *SearchableValue  `json:"recipient,omitempty"`
	Addressing   *SearchableValue  `json:"addressing,omitempty"`
	Recipients   []SearchableValue `json:"recipients,omitempty"`
	Decision     Decision          `json:"decision"`
	Media        Media             `json:"media"`
	Research     []ResearchRow     `json:"research"`
}

// IsCircular reports whether the document addresses several recipients.
func (f *Form) IsCircular() bool {
	return f.DocumentType == DocumentTypeOficioCircular
}

// NewForm returns a blank form with the single research row the UI always shows.
func NewForm(demandaID id.DemandaID) Form {
	return Form{
		DemandaID: demandaID,
		Research:  []ResearchRow{{}},
	}
}

func cloneValue(v *SearchableValue) *SearchableValue {
	if v == nil {
		return nil
	}
	cp := *v
	return &cp
}

// Clone returns a deep copy of the form.
func (f Form) Clone() Form {
	out := f
	out.Analyst = cloneValue(f.Analyst)
	out.Recipient = cloneValue(f.Recipient)
	out.Addressing = cloneValue(f.Addressing)
	if f.Recipients != nil {
		out.Recipients = append([]SearchableValue(nil), f.Recipients...)
	}
	out.Decision.Authority = cloneValue(f.Decision.Authority)
	out.Decision.Court = cloneValue(f.Decision.Court)
	out.Media.Type = cloneValue(f.Media.Type)
	out.Research = make([]ResearchRow, len(f.Research))
	for i, row := range f.Research {
		out.Research[i] = ResearchRow{IdentifierType: cloneValue(row.IdentifierType), Identifier: row.Identifier}
	}
	return out
}
