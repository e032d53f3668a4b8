package service

import (
	"context"

	"demandas/internal/form/combobox"
	"demandas/internal/form/models"
	"demandas/internal/form/retification"
	"demandas/internal/form/session"
	"demandas/internal/reference"
)

// Command is one analyst action on a form session.
type Command interface {
	Name() string
	apply(ctx context.Context, s *Service, sess *session.Session, out *Outcome) error
}

// SetField sets a text field, the document type or the subject.
type SetField struct {
	Key   combobox.FieldKey
	Value string
}

func (SetField) Name() string { return "set_field" }

func (c SetField) apply(_ context.Context, _ *Service, sess *session.Session, _ *Outcome) error {
	return sess.SetField(c.Key, c.Value)
}

// SetAmended flags the base decision as amended or not.
type SetAmended struct {
	Amended bool
}

func (SetAmended) Name() string { return "set_amended" }

func (c SetAmended) apply(_ context.Context, _ *Service, sess *session.Session, out *Outcome) error {
	change, err := sess.SetBaseAmended(c.Amended)
	if err != nil {
		return err
	}
	out.Change = &change
	return nil
}

// SetFurtherAmended flags a retification record as amended in turn.
type SetFurtherAmended struct {
	RecordID retification.RecordID
	Amended  bool
}

func (SetFurtherAmended) Name() string { return "set_further_amended" }

func (c SetFurtherAmended) apply(_ context.Context, _ *Service, sess *session.Session, out *Outcome) error {
	change, err := sess.SetFurtherAmended(c.RecordID, c.Amended)
	if err != nil {
		return err
	}
	out.Change = &change
	return nil
}

// UpdateRecordDate sets the signing date of a retification record.
type UpdateRecordDate struct {
	RecordID    retification.RecordID
	SigningDate string
}

func (UpdateRecordDate) Name() string { return "update_record_date" }

func (c UpdateRecordDate) apply(_ context.Context, _ *Service, sess *session.Session, _ *Outcome) error {
	return sess.UpdateRecordDate(c.RecordID, c.SigningDate)
}

// Search types into a lookup field.
type Search struct {
	Key   combobox.FieldKey
	Query string
}

func (Search) Name() string { return "search" }

func (c Search) apply(ctx context.Context, s *Service, sess *session.Session, out *Outcome) error {
	pool, err := s.pool(ctx, sess, c.Key)
	if err != nil {
		return err
	}
	state, err := sess.Search(c.Key, c.Query, pool)
	if err != nil {
		return err
	}
	out.Combobox = &state
	return nil
}

// PressKey forwards a key press on a lookup input.
type PressKey struct {
	Key     combobox.FieldKey
	Pressed string
}

func (PressKey) Name() string { return "press_key" }

func (c PressKey) apply(_ context.Context, _ *Service, sess *session.Session, out *Outcome) error {
	res, err := sess.HandleKey(c.Key, c.Pressed)
	if err != nil {
		return err
	}
	state := sess.Combobox(c.Key)
	out.Key = &res
	out.Combobox = &state
	return nil
}

// Select commits the candidate at Index, as a click on the list does.
type Select struct {
	Key   combobox.FieldKey
	Index int
}

func (Select) Name() string { return "select" }

func (c Select) apply(_ context.Context, _ *Service, sess *session.Session, out *Outcome) error {
	committed, err := sess.Select(c.Key, c.Index)
	if err != nil {
		return err
	}
	state := sess.Combobox(c.Key)
	out.Key = &combobox.KeyResult{Handled: committed, Committed: committed}
	out.Combobox = &state
	return nil
}

// Focus records that a lookup input received focus.
type Focus struct {
	Key combobox.FieldKey
}

func (Focus) Name() string { return "focus" }

func (c Focus) apply(_ context.Context, _ *Service, sess *session.Session, _ *Outcome) error {
	sess.Focus(c.Key)
	return nil
}

// AddResearchRow appends a blank research row.
type AddResearchRow struct{}

func (AddResearchRow) Name() string { return "add_research_row" }

func (AddResearchRow) apply(_ context.Context, _ *Service, sess *session.Session, _ *Outcome) error {
	return sess.AddResearchRow()
}

// RemoveResearchRow deletes a research row.
type RemoveResearchRow struct {
	Index int
}

func (RemoveResearchRow) Name() string { return "remove_research_row" }

func (c RemoveResearchRow) apply(_ context.Context, _ *Service, sess *session.Session, _ *Outcome) error {
	return sess.RemoveResearchRow(c.Index)
}

// RemoveRecipient deletes an entry of a circular document's recipient list.
type RemoveRecipient struct {
	Index int
}

func (RemoveRecipient) Name() string { return "remove_recipient" }

func (c RemoveRecipient) apply(_ context.Context, _ *Service, sess *session.Session, _ *Outcome) error {
	return sess.RemoveRecipient(c.Index)
}

// pool returns the candidates of a lookup field. Addressing candidates
// depend on the chosen recipient.
func (s *Service) pool(ctx context.Context, sess *session.Session, key combobox.FieldKey) ([]models.SearchableValue, error) {
	if key.Base == reference.PoolAddressing {
		return s.catalog.Addressing(ctx, sess.Form.Recipient), nil
	}
	return s.catalog.Pool(ctx, key.Base)
}
