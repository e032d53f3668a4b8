// Package validation decides whether a form may be submitted.
//
// Validation runs in two ordered phases and stops at the first failure:
// chain consistency (error severity) and then a declared sequence of
// required-field checks (warning severity). The form is never modified.
package validation

import (
	"errors"
	"fmt"
	"time"

	"demandas/internal/form/combobox"
	"demandas/internal/form/models"
	"demandas/internal/form/retification"
	"demandas/internal/form/sections"
)

// Input is everything a validation pass looks at.
type Input struct {
	Form  models.Form
	Rule  sections.SectionRule
	Chain []retification.Record
	// AddressingRequired is set when the chosen recipient has structured
	// addressing options to pick from.
	AddressingRequired bool
	Today              time.Time
}

// Result is the outcome of a pass. Failed passes carry exactly one message.
type Result struct {
	OK        bool               `json:"ok"`
	Message   string             `json:"message,omitempty"`
	Severity  models.Severity    `json:"severity,omitempty"`
	FocusHint *combobox.FieldKey `json:"focus_hint,omitempty"`
	Err       error              `json:"-"`
}

// MissingFieldError reports the first required field left blank.
type MissingFieldError struct {
	Field string
	Label string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("O campo \"%s\" é obrigatório.", e.Label)
}

// Validator runs the checks.
type Validator struct {
	now func() time.Time
}

// Option configures a Validator.
type Option func(*Validator)

// WithClock sets the clock used when Input.Today is zero.
func WithClock(now func() time.Time) Option {
	return func(v *Validator) {
		v.now = now
	}
}

// New builds a Validator.
func New(opts ...Option) *Validator {
	v := &Validator{now: time.Now}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Validate runs both phases and returns the first failure.
func (v *Validator) Validate(in Input) Result {
	today := in.Today
	if today.IsZero() {
		today = v.now()
	}

	if in.Rule.Section2.Visible {
		err := retification.ValidateChain(in.Form.Decision.SigningDate, in.Form.Decision.Amended, in.Chain, today)
		if err != nil {
			return chainFailure(err, in.Chain)
		}
	}

	for _, c := range checksFor(in) {
		if !c.missing() {
			continue
		}
		err := &MissingFieldError{Field: c.key.Base, Label: c.label}
		hint := c.key
		return Result{
			Message:   err.Error(),
			Severity:  models.SeverityWarning,
			FocusHint: &hint,
			Err:       err,
		}
	}
	return Result{OK: true}
}

func chainFailure(err error, chain []retification.Record) Result {
	res := Result{Message: err.Error(), Severity: models.SeverityError, Err: err}
	var ce *retification.ChainError
	if errors.As(err, &ce) && ce.Index >= 1 && ce.Index <= len(chain) {
		hint := combobox.GroupKey(models.FieldSigningDate, string(chain[ce.Index-1].ID))
		res.FocusHint = &hint
	}
	return res
}
