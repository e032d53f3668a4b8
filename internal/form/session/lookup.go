package session

import (
	"strings"

	"demandas/internal/form/combobox"
	"demandas/internal/form/models"
)

// Search records typed text in a lookup field and filters pool with it.
// The text is kept as a free-text value until a candidate is committed; an
// emptied input clears the value. In circular documents the recipient input
// only searches, values are added to the list on commit.
func (s *Session) Search(key combobox.FieldKey, query string, pool []models.SearchableValue) (combobox.State, error) {
	var typed *models.SearchableValue
	if strings.TrimSpace(query) != "" {
		v := models.FreeText(query)
		typed = &v
	}
	if err := s.setLookup(key, typed, false); err != nil {
		return combobox.State{}, err
	}
	return s.combo.Search(key, query, pool), nil
}

// HandleKey forwards a key press to the lookup field.
func (s *Session) HandleKey(key combobox.FieldKey, name string) (combobox.KeyResult, error) {
	res, err := s.combo.HandleKey(key, name)
	if err != nil {
		return combobox.KeyResult{}, err
	}
	if res.Committed {
		s.afterCommit(key)
	}
	return res, nil
}

// Select commits the candidate at index, as a click on the list does.
func (s *Session) Select(key combobox.FieldKey, index int) (bool, error) {
	if !s.combo.Highlight(key, index) {
		return false, nil
	}
	ok, err := s.combo.Commit(key)
	if err != nil || !ok {
		return ok, err
	}
	s.afterCommit(key)
	return true, nil
}

// Focus records that a lookup input received focus.
func (s *Session) Focus(key combobox.FieldKey) {
	s.combo.Focus(key)
}

// afterCommit empties the recipient input of circular documents so the next
// recipient can be typed.
func (s *Session) afterCommit(key combobox.FieldKey) {
	if key.Base == models.FieldRecipient && s.Form.IsCircular() {
		s.combo.Reset(key)
	}
}
