// Package retification manages the chain of amendments ("retificações") of a
// judicial decision.
//
// Invariants:
//   - records are ordered from the first amendment to the latest
//   - record ids are unique and never reused within a chain
//   - a record exists after position i only while record i is flagged as
//     further amended; clearing that flag drops every later record
//   - truncation (SetFurtherAmended false) and Reset are the only removals
package retification

import (
	"fmt"

	"github.com/google/uuid"

	"demandas/internal/form/models"
	dErrors "demandas/pkg/domain-errors"
)

// RecordID identifies a record for its whole lifetime. Per-record UI state
// (lookup fields) is keyed by it.
type RecordID string

// Record is one amending decision.
type Record struct {
	ID                RecordID                `json:"id"`
	Authority         *models.SearchableValue `json:"authority,omitempty"`
	Court             *models.SearchableValue `json:"court,omitempty"`
	SigningDate       string                  `json:"signing_date"`
	WasFurtherAmended bool                    `json:"was_further_amended"`
}

// Label is the name users see for the record at a 1-based position.
func Label(position int) string {
	return fmt.Sprintf("%dª Decisão Retificadora", position)
}

// Change lists the records a mutation created and destroyed, in chain order.
type Change struct {
	Added   []RecordID `json:"added"`
	Removed []RecordID `json:"removed"`
}

// Chain is the ordered amendment list. It is not safe for concurrent use; a
// form session owns exactly one.
type Chain struct {
	records []Record
	newID   func() RecordID
}

// Option configures a Chain.
type Option func(*Chain)

// WithIDGenerator replaces the uuid-based id source.
func WithIDGenerator(fn func() RecordID) Option {
	return func(c *Chain) {
		c.newID = fn
	}
}

// NewChain returns an empty chain.
func NewChain(opts ...Option) *Chain {
	c := &Chain{newID: func() RecordID { return RecordID(uuid.NewString()) }}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Restore rebuilds a chain from persisted records.
func Restore(records []Record, opts ...Option) *Chain {
	c := NewChain(opts...)
	c.records = append([]Record(nil), records...)
	return c
}

// Records returns a copy of the chain in order.
func (c *Chain) Records() []Record {
	return append([]Record(nil), c.records...)
}

func (c *Chain) Len() int {
	return len(c.records)
}

func (c *Chain) IsEmpty() bool {
	return len(c.records) == 0
}

// Find returns the record and its 0-based position.
func (c *Chain) Find(recordID RecordID) (Record, int, bool) {
	for i, r := range c.records {
		if r.ID == recordID {
			return r, i, true
		}
	}
	return Record{}, -1, false
}

// Append pushes a blank record to the tail and returns its id.
func (c *Chain) Append() RecordID {
	rid := c.newID()
	c.records = append(c.records, Record{ID: rid})
	return rid
}

// SetFurtherAmended flags or unflags the record. Flagging the tail appends
// exactly one blank record; unflagging drops every record after it.
func (c *Chain) SetFurtherAmended(recordID RecordID, flag bool) (Change, error) {
	_, pos, ok := c.Find(recordID)
	if !ok {
		return Change{}, errRecordNotFound(recordID)
	}

	c.records[pos].WasFurtherAmended = flag

	var change Change
	if flag {
		if pos == len(c.records)-1 {
			change.Added = append(change.Added, c.Append())
		}
		return change, nil
	}

	for _, dropped := range c.records[pos+1:] {
		change.Removed = append(change.Removed, dropped.ID)
	}
	c.records = c.records[: pos+1 : pos+1]
	return change, nil
}

// Update produces the replacement for a record.
type Update func(Record) Record

// SetAuthority replaces the authority of a record.
func SetAuthority(v *models.SearchableValue) Update {
	return func(r Record) Record {
		r.Authority = copyValue(v)
		return r
	}
}

// SetCourt replaces the court of a record.
func SetCourt(v *models.SearchableValue) Update {
	return func(r Record) Record {
		r.Court = copyValue(v)
		return r
	}
}

// SetSigningDate replaces the signing date (day/month/year text).
func SetSigningDate(date string) Update {
	return func(r Record) Record {
		r.SigningDate = date
		return r
	}
}

// UpdateField replaces one field of a record. The id and the further-amended
// flag cannot be changed through it.
func (c *Chain) UpdateField(recordID RecordID, update Update) error {
	current, pos, ok := c.Find(recordID)
	if !ok {
		return errRecordNotFound(recordID)
	}
	next := update(current)
	next.ID = current.ID
	next.WasFurtherAmended = current.WasFurtherAmended
	c.records[pos] = next
	return nil
}

// Reset discards the whole chain and returns the removed ids.
func (c *Chain) Reset() []RecordID {
	removed := make([]RecordID, 0, len(c.records))
	for _, r := range c.records {
		removed = append(removed, r.ID)
	}
	c.records = nil
	return removed
}

func copyValue(v *models.SearchableValue) *models.SearchableValue {
	if v == nil {
		return nil
	}
	cp := *v
	return &cp
}

func errRecordNotFound(recordID RecordID) error {
	return dErrors.New(dErrors.CodeNotFound, fmt.Sprintf("retification record %s not found", recordID))
}
