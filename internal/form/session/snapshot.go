package session

import (
	"time"

	"demandas/internal/form/combobox"
	"demandas/internal/form/models"
	"demandas/internal/form/retification"
	"demandas/internal/form/sections"
	id "demandas/pkg/domain"
)

// Snapshot is the persisted form of a Session.
type Snapshot struct {
	ID        id.FormID             `json:"id"`
	AnalystID id.AnalystID          `json:"analyst_id"`
	Form      models.Form           `json:"form"`
	Rule      sections.SectionRule  `json:"rule"`
	Records   []retification.Record `json:"records"`
	Combobox  combobox.Snapshot     `json:"combobox"`
	Editing   bool                  `json:"editing"`
	CreatedAt time.Time             `json:"created_at"`
	UpdatedAt time.Time             `json:"updated_at"`
}

// Snapshot captures the session state.
func (s *Session) Snapshot() Snapshot {
	return Snapshot{
		ID:        s.ID,
		AnalystID: s.AnalystID,
		Form:      s.Form.Clone(),
		Rule:      s.Rule,
		Records:   s.chain.Records(),
		Combobox:  s.combo.Snapshot(),
		Editing:   s.Editing,
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	}
}

// Restore rebuilds a session from a snapshot.
func Restore(snap Snapshot, engine *Engine) *Session {
	s := &Session{
		ID:        snap.ID,
		AnalystID: snap.AnalystID,
		Form:      snap.Form.Clone(),
		Rule:      snap.Rule,
		Editing:   snap.Editing,
		CreatedAt: snap.CreatedAt,
		UpdatedAt: snap.UpdatedAt,
		chain:     retification.Restore(snap.Records),
		combo:     combobox.Restore(snap.Combobox),
	}
	if len(s.Form.Research) == 0 {
		s.Form.Research = []models.ResearchRow{{}}
	}
	s.attach(engine)
	return s
}

// Clone returns an independent copy.
func (s *Session) Clone() *Session {
	return Restore(s.Snapshot(), s.engine)
}
