// Package combobox drives the search-as-you-type lookup fields of the form.
//
// Every lookup field, including the authority/court pair each retification
// record brings, gets a State keyed by a structured FieldKey. At most one
// State is open at any time. UI side effects (focus, scroll) are emitted as
// intents through a single pending slot instead of touching the UI directly.
package combobox

import (
	"strings"

	"demandas/internal/form/models"
	"demandas/internal/form/textmatch"
)

// FieldKey identifies a lookup field. Group is empty for the fixed fields of
// the form and holds the owning record id for per-record fields.
type FieldKey struct {
	Base  string `json:"base"`
	Group string `json:"group,omitempty"`
}

// Key builds the key of a fixed field.
func Key(base string) FieldKey {
	return FieldKey{Base: base}
}

// GroupKey builds the key of a field belonging to a group.
func GroupKey(base, group string) FieldKey {
	return FieldKey{Base: base, Group: group}
}

// Candidate is one entry of a lookup result list.
type Candidate = models.SearchableValue

// State is the interaction state of one lookup field.
type State struct {
	Query            string      `json:"query"`
	Results          []Candidate `json:"results"`
	IsOpen           bool        `json:"is_open"`
	HighlightedIndex int         `json:"highlighted_index"`
}

func newState() *State {
	return &State{HighlightedIndex: -1}
}

func (s *State) close() {
	s.IsOpen = false
	s.HighlightedIndex = -1
}

// Direction of a keyboard navigation step.
type Direction int

const (
	Up   Direction = -1
	Down Direction = 1
)

// CommitFunc applies the chosen candidate to the field identified by key.
type CommitFunc func(key FieldKey, c Candidate) error

// Controller owns the State of every lookup field of one form.
// It is not safe for concurrent use.
type Controller struct {
	fields  map[string]*State
	groups  map[string]map[string]*State
	commits map[string]CommitFunc
	pending *Intent
}

// New returns an empty controller.
func New() *Controller {
	return &Controller{
		fields:  make(map[string]*State),
		groups:  make(map[string]map[string]*State),
		commits: make(map[string]CommitFunc),
	}
}

// Bind registers the commit callback for every field with the given base,
// grouped or not.
func (c *Controller) Bind(base string, fn CommitFunc) {
	c.commits[base] = fn
}

func (c *Controller) lookup(key FieldKey) (*State, bool) {
	if key.Group == "" {
		st, ok := c.fields[key.Base]
		return st, ok
	}
	st, ok := c.groups[key.Group][key.Base]
	return st, ok
}

func (c *Controller) ensure(key FieldKey) *State {
	if st, ok := c.lookup(key); ok {
		return st
	}
	st := newState()
	if key.Group == "" {
		c.fields[key.Base] = st
		return st
	}
	group, ok := c.groups[key.Group]
	if !ok {
		group = make(map[string]*State)
		c.groups[key.Group] = group
	}
	group[key.Base] = st
	return st
}

// State returns a copy of the field state. Unknown fields report a closed,
// empty state.
func (c *Controller) State(key FieldKey) State {
	st, ok := c.lookup(key)
	if !ok {
		return *newState()
	}
	cp := *st
	cp.Results = append([]Candidate(nil), st.Results...)
	return cp
}

// OpenKey returns the field whose list is open, if any.
func (c *Controller) OpenKey() (FieldKey, bool) {
	found := FieldKey{}
	open := false
	c.each(func(key FieldKey, st *State) {
		if st.IsOpen {
			found, open = key, true
		}
	})
	return found, open
}

func (c *Controller) each(fn func(FieldKey, *State)) {
	for base, st := range c.fields {
		fn(Key(base), st)
	}
	for group, fields := range c.groups {
		for base, st := range fields {
			fn(GroupKey(base, group), st)
		}
	}
}

// closeOthers closes every list except the one at key. Comparison is by
// exact key identity.
func (c *Controller) closeOthers(key FieldKey) {
	c.each(func(k FieldKey, st *State) {
		if k != key && st.IsOpen {
			st.close()
		}
	})
}

// Search filters pool by query and opens the list when there is something
// to show. Opening a list closes every other one.
func (c *Controller) Search(key FieldKey, query string, pool []Candidate) State {
	st := c.ensure(key)
	st.Query = query
	st.Results = textmatch.FilterFunc(pool, query, func(cand Candidate) string { return cand.DisplayName })
	st.IsOpen = strings.TrimSpace(query) != "" && len(st.Results) > 0
	st.HighlightedIndex = -1
	if st.IsOpen {
		c.closeOthers(key)
	}
	return c.State(key)
}

// Navigate moves the highlight one step, clamped to the result list, and
// asks the UI to scroll the highlighted item into view. Closed or empty
// lists ignore navigation.
func (c *Controller) Navigate(key FieldKey, dir Direction) State {
	st, ok := c.lookup(key)
	if !ok || !st.IsOpen || len(st.Results) == 0 {
		return c.State(key)
	}
	next := st.HighlightedIndex + int(dir)
	if next < 0 {
		next = 0
	}
	if last := len(st.Results) - 1; next > last {
		next = last
	}
	st.HighlightedIndex = next
	c.request(Intent{Kind: IntentScroll, Key: key, Index: next})
	return c.State(key)
}

// Highlight moves the highlight to index, as a pointer hovering an item
// does. It reports false when the list is closed or index is out of range.
func (c *Controller) Highlight(key FieldKey, index int) bool {
	st, ok := c.lookup(key)
	if !ok || !st.IsOpen || index < 0 || index >= len(st.Results) {
		return false
	}
	st.HighlightedIndex = index
	return true
}

// Commit hands the highlighted candidate to the field's commit callback,
// closes the list and schedules focus back to the input. It reports false
// when nothing is highlighted.
func (c *Controller) Commit(key FieldKey) (bool, error) {
	st, ok := c.lookup(key)
	if !ok || st.HighlightedIndex < 0 || st.HighlightedIndex >= len(st.Results) {
		return false, nil
	}
	chosen := st.Results[st.HighlightedIndex]
	if fn, ok := c.commits[key.Base]; ok {
		if err := fn(key, chosen); err != nil {
			return false, err
		}
	}
	st.Query = chosen.DisplayName
	st.close()
	c.request(Intent{Kind: IntentFocus, Key: key, Index: -1})
	return true, nil
}

// Dismiss closes the list and clears the highlight.
func (c *Controller) Dismiss(key FieldKey) {
	if st, ok := c.lookup(key); ok {
		st.close()
	}
}

// Focus records that the input at key received focus, which closes every
// other list. It creates no state, so focusing a field of a disposed group
// does not bring the group back.
func (c *Controller) Focus(key FieldKey) {
	c.closeOthers(key)
}

// Reset clears the query and results of a field, e.g. when the value it
// edits is cleared by a section rule.
func (c *Controller) Reset(key FieldKey) {
	if st, ok := c.lookup(key); ok {
		*st = *newState()
	}
}

// DisposeGroup drops the state of every field in group. A pending intent
// aimed at the group is dropped too.
func (c *Controller) DisposeGroup(group string) {
	delete(c.groups, group)
	if c.pending != nil && c.pending.Key.Group == group {
		c.pending = nil
	}
}

// HasGroup reports whether any field of group has state.
func (c *Controller) HasGroup(group string) bool {
	_, ok := c.groups[group]
	return ok
}
