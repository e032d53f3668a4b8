package session

import (
	"time"

	"demandas/internal/form/combobox"
	"demandas/internal/form/models"
	"demandas/internal/form/retification"
	"demandas/internal/form/sections"
	"demandas/internal/form/validation"
)

// Validate checks whether the form may be submitted. addressingRequired
// tells whether the chosen recipient offers addressing options.
func (s *Session) Validate(today time.Time, addressingRequired bool) validation.Result {
	return s.engine.Validator.Validate(validation.Input{
		Form:               s.Form.Clone(),
		Rule:               s.Rule,
		Chain:              s.chain.Records(),
		AddressingRequired: addressingRequired,
		Today:              today,
	})
}

// Load replaces the form with a persisted document. Sections are resolved
// without clearing so stored values survive even if the rule table changed
// since they were saved.
func (s *Session) Load(form models.Form, records []retification.Record) {
	s.combo = combobox.New()
	s.bindLookups()
	s.Form = form.Clone()
	if len(s.Form.Research) == 0 {
		s.Form.Research = []models.ResearchRow{{}}
	}
	s.chain = retification.Restore(records)
	s.Editing = true
	s.resolve(sections.ModeLoad)
}
