package session

import (
	"strings"

	"demandas/internal/form/retification"
	dErrors "demandas/pkg/domain-errors"
)

// SetBaseAmended flags the base decision as amended. Flagging an unamended
// decision creates the first retification record; unflagging discards the
// whole chain.
func (s *Session) SetBaseAmended(flag bool) (retification.Change, error) {
	if err := s.requireSection2(); err != nil {
		return retification.Change{}, err
	}
	if flag == s.Form.Decision.Amended {
		return retification.Change{}, nil
	}
	s.Form.Decision.Amended = flag
	if flag {
		if !s.chain.IsEmpty() {
			return retification.Change{}, nil
		}
		return retification.Change{Added: []retification.RecordID{s.chain.Append()}}, nil
	}
	removed := s.chain.Records()
	s.DiscardChain()
	change := retification.Change{}
	for _, r := range removed {
		change.Removed = append(change.Removed, r.ID)
	}
	return change, nil
}

// SetFurtherAmended toggles the further-amended flag of a record. Records
// dropped by the chain take their lookup state with them.
func (s *Session) SetFurtherAmended(recordID retification.RecordID, flag bool) (retification.Change, error) {
	if err := s.requireAmended(); err != nil {
		return retification.Change{}, err
	}
	change, err := s.chain.SetFurtherAmended(recordID, flag)
	if err != nil {
		return retification.Change{}, err
	}
	for _, rid := range change.Removed {
		s.combo.DisposeGroup(string(rid))
	}
	return change, nil
}

// UpdateRecordDate sets the signing date of a record.
func (s *Session) UpdateRecordDate(recordID retification.RecordID, date string) error {
	if err := s.requireAmended(); err != nil {
		return err
	}
	return s.chain.UpdateField(recordID, retification.SetSigningDate(strings.TrimSpace(date)))
}

func (s *Session) requireAmended() error {
	if err := s.requireSection2(); err != nil {
		return err
	}
	if !s.Form.Decision.Amended {
		return dErrors.New(dErrors.CodeValidation, "decision is not amended")
	}
	return nil
}
