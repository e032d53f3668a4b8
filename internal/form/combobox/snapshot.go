package combobox

import (
	"cmp"
	"slices"
)

// FieldSnapshot is the persisted form of one field state.
type FieldSnapshot struct {
	Key   FieldKey `json:"key"`
	State State    `json:"state"`
}

// Snapshot is the serialisable state of a controller. Commit callbacks are
// not part of it; the owner binds them again after Restore.
type Snapshot struct {
	Fields  []FieldSnapshot `json:"fields"`
	Pending *Intent         `json:"pending,omitempty"`
}

// Snapshot captures every field state and the pending intent.
func (c *Controller) Snapshot() Snapshot {
	var snap Snapshot
	c.each(func(key FieldKey, st *State) {
		snap.Fields = append(snap.Fields, FieldSnapshot{Key: key, State: c.State(key)})
	})
	slices.SortFunc(snap.Fields, func(a, b FieldSnapshot) int {
		if n := cmp.Compare(a.Key.Group, b.Key.Group); n != 0 {
			return n
		}
		return cmp.Compare(a.Key.Base, b.Key.Base)
	})
	if c.pending != nil {
		p := *c.pending
		snap.Pending = &p
	}
	return snap
}

// Restore builds a controller from a snapshot.
func Restore(snap Snapshot) *Controller {
	c := New()
	for _, f := range snap.Fields {
		st := c.ensure(f.Key)
		*st = f.State
		if st.Results == nil {
			st.Results = []Candidate{}
		}
	}
	if snap.Pending != nil {
		p := *snap.Pending
		c.pending = &p
	}
	return c
}
