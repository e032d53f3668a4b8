package sections

// Mode tells the resolver whether the form is being edited or populated
// from a stored document.
type Mode int

const (
	// ModeEdit clears the fields of hidden sections.
	ModeEdit Mode = iota
	// ModeLoad leaves every field untouched so loaded data survives the
	// first resolution.
	ModeLoad
)

// Clearer receives the clearing requests for sections that are hidden.
type Clearer interface {
	// ClearDecision empties authority, court, signing date and the amended flag.
	ClearDecision()
	// DiscardChain drops every retification record.
	DiscardChain()
	// ClearMedia empties the media fields.
	ClearMedia()
	// ResetResearch leaves exactly one blank research row.
	ResetResearch()
}

// Resolver maps (document type, subject) to a SectionRule.
type Resolver struct {
	table *RuleTable
}

// NewResolver builds a resolver over table. A nil table resolves everything
// to hidden.
func NewResolver(table *RuleTable) *Resolver {
	if table == nil {
		table = NewRuleTable(nil)
	}
	return &Resolver{table: table}
}

// Table exposes the rule table the resolver reads.
func (r *Resolver) Table() *RuleTable {
	return r.table
}

// Rule is the pure lookup: undetermined or unknown classifications yield the
// zero rule.
func (r *Resolver) Rule(documentType, subject string) SectionRule {
	key, ok := ClassificationKey(documentType, subject)
	if !ok {
		return SectionRule{}
	}
	rule, _ := r.table.Lookup(key)
	return rule
}

// Resolve computes the rule and, outside ModeLoad, asks clearer to wipe
// every hidden section. Clearing runs on every call, not only on a
// visible-to-hidden transition, so a hidden section can never hold data.
func (r *Resolver) Resolve(documentType, subject string, mode Mode, clearer Clearer) SectionRule {
	rule := r.Rule(documentType, subject)
	if mode == ModeLoad || clearer == nil {
		return rule
	}
	if !rule.Section2.Visible {
		clearer.ClearDecision()
		clearer.DiscardChain()
	}
	if !rule.Section3.Visible {
		clearer.ClearMedia()
	}
	if !rule.Section4.Visible {
		clearer.ResetResearch()
	}
	return rule
}
