package session

import (
	"demandas/internal/form/models"
	dErrors "demandas/pkg/domain-errors"
)

// AddResearchRow appends a blank research row.
func (s *Session) AddResearchRow() error {
	if !s.Rule.Section4.Visible {
		return errSectionHidden("research")
	}
	s.Form.Research = append(s.Form.Research, models.ResearchRow{})
	return nil
}

// RemoveResearchRow deletes a research row. Removing the only row leaves a
// blank one in its place.
func (s *Session) RemoveResearchRow(index int) error {
	if !s.Rule.Section4.Visible {
		return errSectionHidden("research")
	}
	if index < 0 || index >= len(s.Form.Research) {
		return dErrors.New(dErrors.CodeNotFound, "research row not found")
	}
	// Lookup state is keyed by row index, so every row from index on moves.
	for i := index; i < len(s.Form.Research); i++ {
		s.combo.DisposeGroup(rowGroup(i))
	}
	s.Form.Research = append(s.Form.Research[:index], s.Form.Research[index+1:]...)
	if len(s.Form.Research) == 0 {
		s.Form.Research = []models.ResearchRow{{}}
	}
	return nil
}

func (s *Session) addRecipient(v models.SearchableValue) {
	if v.IsBlank() {
		return
	}
	for _, existing := range s.Form.Recipients {
		if existing == v {
			return
		}
	}
	s.Form.Recipients = append(s.Form.Recipients, v)
}

// RemoveRecipient deletes an entry of a circular document's recipient list.
func (s *Session) RemoveRecipient(index int) error {
	if !s.Form.IsCircular() {
		return dErrors.New(dErrors.CodeValidation, "document has a single recipient")
	}
	if index < 0 || index >= len(s.Form.Recipients) {
		return dErrors.New(dErrors.CodeNotFound, "recipient not found")
	}
	s.Form.Recipients = append(s.Form.Recipients[:index], s.Form.Recipients[index+1:]...)
	return nil
}
