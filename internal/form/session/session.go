// Package session holds the server-side state of one document being edited:
// the form snapshot, its section rule, the retification chain and the state
// of every lookup field. A Session is owned by one request at a time; the
// store serialises access.
package session

import (
	"time"

	"demandas/internal/form/combobox"
	"demandas/internal/form/models"
	"demandas/internal/form/retification"
	"demandas/internal/form/sections"
	"demandas/internal/form/validation"
	id "demandas/pkg/domain"
)

// Engine bundles the stateless collaborators a session calls into.
type Engine struct {
	Resolver  *sections.Resolver
	Validator *validation.Validator
}

// DefaultEngine uses the built-in rule table and the wall clock.
func DefaultEngine() *Engine {
	return &Engine{
		Resolver:  sections.NewResolver(sections.DefaultRuleTable()),
		Validator: validation.New(),
	}
}

// Session is one form being authored.
type Session struct {
	ID        id.FormID
	AnalystID id.AnalystID
	Form      models.Form
	Rule      sections.SectionRule
	// Editing is set when the session was opened from a persisted document.
	Editing   bool
	CreatedAt time.Time
	UpdatedAt time.Time

	chain  *retification.Chain
	combo  *combobox.Controller
	engine *Engine
}

// New starts a blank form for a demanda.
func New(formID id.FormID, demandaID id.DemandaID, analystID id.AnalystID, engine *Engine, now time.Time) *Session {
	s := &Session{
		ID:        formID,
		AnalystID: analystID,
		Form:      models.NewForm(demandaID),
		CreatedAt: now,
		UpdatedAt: now,
		chain:     retification.NewChain(),
		combo:     combobox.New(),
	}
	s.attach(engine)
	return s
}

func (s *Session) attach(engine *Engine) {
	if engine == nil {
		engine = DefaultEngine()
	}
	s.engine = engine
	s.bindLookups()
}

// Records returns the retification chain in order.
func (s *Session) Records() []retification.Record {
	return s.chain.Records()
}

// Combobox returns the state of a lookup field.
func (s *Session) Combobox(key combobox.FieldKey) combobox.State {
	return s.combo.State(key)
}

// OpenCombobox returns the lookup field whose list is open, if any.
func (s *Session) OpenCombobox() (combobox.FieldKey, bool) {
	return s.combo.OpenKey()
}

// TakeIntent returns and clears the pending UI intent.
func (s *Session) TakeIntent() (combobox.Intent, bool) {
	return s.combo.TakePending()
}

// Touch records a modification time.
func (s *Session) Touch(now time.Time) {
	s.UpdatedAt = now
}

// ClearDecision empties every section 2 field.
func (s *Session) ClearDecision() {
	s.Form.Decision = models.Decision{}
	s.combo.Reset(combobox.Key(models.FieldAuthority))
	s.combo.Reset(combobox.Key(models.FieldCourt))
}

// DiscardChain drops every retification record together with the lookup
// state of its fields.
func (s *Session) DiscardChain() {
	for _, rid := range s.chain.Reset() {
		s.combo.DisposeGroup(string(rid))
	}
}

// ClearMedia empties section 3.
func (s *Session) ClearMedia() {
	s.Form.Media = models.Media{}
	s.combo.Reset(combobox.Key(models.FieldMediaType))
}

// ResetResearch leaves section 4 with a single blank row.
func (s *Session) ResetResearch() {
	for i := range s.Form.Research {
		s.combo.DisposeGroup(rowGroup(i))
	}
	s.Form.Research = []models.ResearchRow{{}}
}

var _ sections.Clearer = (*Session)(nil)
