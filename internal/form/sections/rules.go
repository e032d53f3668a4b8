// Package sections decides which optional form sections apply to a document
// classification and clears the fields of sections that stop applying.
package sections

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"demandas/internal/form/models"
)

// MediaKey is the classification of every "Mídia" document; subject is
// irrelevant for that type.
const MediaKey = models.DocumentTypeMidia

const keySeparator = "|"

// ClassificationKey derives the rule-table key for a document. ok is false
// when the classification is still undetermined.
func ClassificationKey(documentType, subject string) (key string, ok bool) {
	documentType = strings.TrimSpace(documentType)
	subject = strings.TrimSpace(subject)
	if documentType == models.DocumentTypeMidia {
		return MediaKey, true
	}
	if documentType == "" || subject == "" {
		return "", false
	}
	return documentType + keySeparator + subject, true
}

// Visibility of one section. Both flags are kept: some classifications show
// a section without requiring it.
type Visibility struct {
	Visible  bool `json:"visible" yaml:"visible"`
	Required bool `json:"required" yaml:"required"`
}

// SectionRule is the decision for sections 2 (judicial decision), 3 (media)
// and 4 (research).
type SectionRule struct {
	Section2 Visibility `json:"section2" yaml:"section2"`
	Section3 Visibility `json:"section3" yaml:"section3"`
	Section4 Visibility `json:"section4" yaml:"section4"`
}

// RuleTable maps classification keys to rules. Keys absent from the table
// resolve to the zero SectionRule (everything hidden).
type RuleTable struct {
	rules map[string]SectionRule
}

// NewRuleTable copies rules into a table.
func NewRuleTable(rules map[string]SectionRule) *RuleTable {
	cp := make(map[string]SectionRule, len(rules))
	for k, v := range rules {
		cp[k] = v
	}
	return &RuleTable{rules: cp}
}

// Lookup returns the rule for key and whether the key is declared.
func (t *RuleTable) Lookup(key string) (SectionRule, bool) {
	rule, ok := t.rules[key]
	return rule, ok
}

// Keys returns the declared keys in sorted order.
func (t *RuleTable) Keys() []string {
	keys := make([]string, 0, len(t.rules))
	for k := range t.rules {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// ruleFile is the YAML layout:
//
//	rules:
//	  - document_type: Ofício
//	    subject: Encaminhamento de decisão judicial
//	    section2: {visible: true, required: true}
//	    section3: {visible: false, required: false}
//	    section4: {visible: true, required: true}
type ruleFile struct {
	Rules []ruleEntry `yaml:"rules"`
}

type ruleEntry struct {
	DocumentType string      `yaml:"document_type"`
	Subject      string      `yaml:"subject"`
	Section2     *Visibility `yaml:"section2"`
	Section3     *Visibility `yaml:"section3"`
	Section4     *Visibility `yaml:"section4"`
}

// LoadRuleTable parses a YAML rule table. Every entry must carry all three
// sections; a missing section is an error rather than an implicit default.
func LoadRuleTable(r io.Reader) (*RuleTable, error) {
	var file ruleFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil {
		return nil, fmt.Errorf("decode rule table: %w", err)
	}

	rules := make(map[string]SectionRule, len(file.Rules))
	for i, e := range file.Rules {
		key, ok := ClassificationKey(e.DocumentType, e.Subject)
		if !ok {
			return nil, fmt.Errorf("rule %d: document_type and subject are required", i+1)
		}
		if e.Section2 == nil || e.Section3 == nil || e.Section4 == nil {
			return nil, fmt.Errorf("rule %d (%s): section2, section3 and section4 must all be declared", i+1, key)
		}
		if _, dup := rules[key]; dup {
			return nil, fmt.Errorf("rule %d: duplicate classification %q", i+1, key)
		}
		for n, v := range map[int]*Visibility{2: e.Section2, 3: e.Section3, 4: e.Section4} {
			if v.Required && !v.Visible {
				return nil, fmt.Errorf("rule %d (%s): section%d cannot be required while hidden", i+1, key, n)
			}
		}
		rules[key] = SectionRule{Section2: *e.Section2, Section3: *e.Section3, Section4: *e.Section4}
	}
	return NewRuleTable(rules), nil
}

// LoadRuleTableFile reads a YAML rule table from disk.
func LoadRuleTableFile(path string) (*RuleTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open rule table: %w", err)
	}
	defer f.Close()
	return LoadRuleTable(f)
}

var (
	shown    = Visibility{Visible: true, Required: true}
	optional = Visibility{Visible: true, Required: false}
	hidden   = Visibility{}
)

// DefaultRuleTable is the table shipped with the service.
func DefaultRuleTable() *RuleTable {
	oficio := func(subject string) string { return models.DocumentTypeOficio + keySeparator + subject }
	circular := func(subject string) string { return models.DocumentTypeOficioCircular + keySeparator + subject }

	return NewRuleTable(map[string]SectionRule{
		MediaKey: {Section2: hidden, Section3: shown, Section4: hidden},

		oficio("Encaminhamento de decisão judicial"):   {Section2: shown, Section3: hidden, Section4: shown},
		oficio("Requisição de dados cadastrais"):       {Section2: hidden, Section3: hidden, Section4: shown},
		oficio("Reiteração de ofício"):                 {Section2: shown, Section3: hidden, Section4: hidden},
		oficio("Comunicação de descumprimento"):        {Section2: shown, Section3: hidden, Section4: hidden},
		oficio("Outros"):                               {Section2: optional, Section3: hidden, Section4: optional},
		circular("Encaminhamento de decisão judicial"): {Section2: shown, Section3: hidden, Section4: shown},
		circular("Outros"):                             {Section2: optional, Section3: hidden, Section4: optional},
	})
}
