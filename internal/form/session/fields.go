package session

import (
	"strconv"
	"strings"

	"demandas/internal/form/combobox"
	"demandas/internal/form/models"
	"demandas/internal/form/retification"
	"demandas/internal/form/sections"
	dErrors "demandas/pkg/domain-errors"
)

// SetDocumentType changes the document type and recomputes the sections.
// Switching between single and multiple recipients drops the recipient
// fields of the other shape.
func (s *Session) SetDocumentType(docType string) {
	docType = strings.TrimSpace(docType)
	wasCircular := s.Form.IsCircular()
	s.Form.DocumentType = docType
	if docType == models.DocumentTypeMidia {
		s.Form.Subject = ""
	}
	if wasCircular != s.Form.IsCircular() {
		s.clearRecipients()
	}
	s.resolve(sections.ModeEdit)
}

// SetSubject changes the subject and recomputes the sections.
func (s *Session) SetSubject(subject string) {
	s.Form.Subject = strings.TrimSpace(subject)
	s.resolve(sections.ModeEdit)
}

func (s *Session) resolve(mode sections.Mode) {
	s.Rule = s.engine.Resolver.Resolve(s.Form.DocumentType, s.Form.Subject, mode, s)
}

func (s *Session) clearRecipients() {
	s.Form.Recipient = nil
	s.Form.Addressing = nil
	s.Form.Recipients = nil
	s.combo.Reset(combobox.Key(models.FieldRecipient))
	s.combo.Reset(combobox.Key(models.FieldAddressing))
}

// SetField sets a plain text field. Signing dates of retification records
// are addressed with the record id as group; research identifiers with the
// row index.
func (s *Session) SetField(key combobox.FieldKey, value string) error {
	switch key.Base {
	case models.FieldNumber:
		s.Form.Number = value
	case models.FieldSigningDate:
		if key.Group != "" {
			return s.UpdateRecordDate(retification.RecordID(key.Group), value)
		}
		if err := s.requireSection2(); err != nil {
			return err
		}
		s.Form.Decision.SigningDate = strings.TrimSpace(value)
	case models.FieldMediaIdentifier:
		if !s.Rule.Section3.Visible {
			return errSectionHidden("media")
		}
		s.Form.Media.Identifier = value
	case models.FieldMediaSummary:
		if !s.Rule.Section3.Visible {
			return errSectionHidden("media")
		}
		s.Form.Media.Summary = value
	case models.FieldResearchIdentifier:
		row, err := s.researchRow(key.Group)
		if err != nil {
			return err
		}
		row.Identifier = value
	case models.FieldDocumentType:
		s.SetDocumentType(value)
	case models.FieldSubject:
		s.SetSubject(value)
	default:
		return dErrors.New(dErrors.CodeInvalidInput, "unknown field: "+key.Base)
	}
	return nil
}

// setLookup stores the value of a lookup field. Typed text arrives as a
// free-text value; committed candidates carry their catalog id.
func (s *Session) setLookup(key combobox.FieldKey, v *models.SearchableValue, committed bool) error {
	switch key.Base {
	case models.FieldAnalyst:
		s.Form.Analyst = v
	case models.FieldRecipient:
		if s.Form.IsCircular() {
			if committed {
				s.addRecipient(*v)
			}
			return nil
		}
		if !sameValue(s.Form.Recipient, v) {
			s.Form.Addressing = nil
			s.combo.Reset(combobox.Key(models.FieldAddressing))
		}
		s.Form.Recipient = v
	case models.FieldAddressing:
		if s.Form.IsCircular() {
			return dErrors.New(dErrors.CodeValidation, "circular documents have no addressing")
		}
		s.Form.Addressing = v
	case models.FieldAuthority:
		if key.Group != "" {
			return s.chain.UpdateField(retification.RecordID(key.Group), retification.SetAuthority(v))
		}
		if err := s.requireSection2(); err != nil {
			return err
		}
		s.Form.Decision.Authority = v
	case models.FieldCourt:
		if key.Group != "" {
			return s.chain.UpdateField(retification.RecordID(key.Group), retification.SetCourt(v))
		}
		if err := s.requireSection2(); err != nil {
			return err
		}
		s.Form.Decision.Court = v
	case models.FieldMediaType:
		if !s.Rule.Section3.Visible {
			return errSectionHidden("media")
		}
		s.Form.Media.Type = v
	case models.FieldIdentifierType:
		row, err := s.researchRow(key.Group)
		if err != nil {
			return err
		}
		row.IdentifierType = v
	default:
		return dErrors.New(dErrors.CodeInvalidInput, "unknown lookup field: "+key.Base)
	}
	return nil
}

func (s *Session) bindLookups() {
	commit := func(key combobox.FieldKey, c combobox.Candidate) error {
		return s.setLookup(key, &c, true)
	}
	for _, base := range []string{
		models.FieldAnalyst,
		models.FieldRecipient,
		models.FieldAddressing,
		models.FieldAuthority,
		models.FieldCourt,
		models.FieldMediaType,
		models.FieldIdentifierType,
	} {
		s.combo.Bind(base, commit)
	}
}

func (s *Session) requireSection2() error {
	if !s.Rule.Section2.Visible {
		return errSectionHidden("decision")
	}
	return nil
}

func (s *Session) researchRow(group string) (*models.ResearchRow, error) {
	if !s.Rule.Section4.Visible {
		return nil, errSectionHidden("research")
	}
	i, err := strconv.Atoi(group)
	if err != nil || i < 0 || i >= len(s.Form.Research) {
		return nil, dErrors.New(dErrors.CodeNotFound, "research row not found")
	}
	return &s.Form.Research[i], nil
}

func rowGroup(i int) string {
	return strconv.Itoa(i)
}

func sameValue(a, b *models.SearchableValue) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func errSectionHidden(section string) error {
	return dErrors.New(dErrors.CodeValidation, section+" section is not visible")
}
