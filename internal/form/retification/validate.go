package retification

import (
	"fmt"
	"strings"
	"time"
)

// BaseDecisionLabel names the anchor of the chain in messages.
const BaseDecisionLabel = "decisão judicial"

const dateLayout = "2/1/2006"

// Violation classifies a chain validation failure.
type Violation string

const (
	InvalidDate      Violation = "invalid_date"
	FutureDate       Violation = "future_date"
	NotAfterPrevious Violation = "not_after_previous"
)

// ChainError reports the first violation found, with the 1-based position of
// the offending record.
type ChainError struct {
	Kind          Violation
	Index         int
	PreviousLabel string
}

func (e *ChainError) Error() string {
	label := Label(e.Index)
	switch e.Kind {
	case InvalidDate:
		return fmt.Sprintf("A data de assinatura da %s é inválida.", label)
	case FutureDate:
		return fmt.Sprintf("A data de assinatura da %s não pode ser posterior à data de hoje.", label)
	case NotAfterPrevious:
		return fmt.Sprintf("A data de assinatura da %s deve ser posterior à data da %s.", label, e.PreviousLabel)
	default:
		return fmt.Sprintf("%s: %s", label, e.Kind)
	}
}

// ParseDate parses a day/month/year date. It rejects dates that do not exist
// on the calendar, such as 31/02.
func ParseDate(s string) (time.Time, error) {
	return time.Parse(dateLayout, strings.TrimSpace(s))
}

// FormatDate renders t as dd/mm/yyyy.
func FormatDate(t time.Time) string {
	return t.Format("02/01/2006")
}

// ValidateChain checks that signing dates strictly increase from the base
// decision through the last record and that none is after today. Records
// with a blank date are skipped; completeness is checked elsewhere. It is a
// no-op unless the base decision is flagged as amended.
func ValidateChain(baseDate string, baseWasAmended bool, records []Record, today time.Time) error {
	if !baseWasAmended || len(records) == 0 {
		return nil
	}

	limit := civilDay(today)
	var previous time.Time
	hasPrevious := false
	if strings.TrimSpace(baseDate) != "" {
		if d, err := ParseDate(baseDate); err == nil {
			previous, hasPrevious = d, true
		}
	}
	previousLabel := BaseDecisionLabel

	for i, r := range records {
		index := i + 1
		if strings.TrimSpace(r.SigningDate) == "" {
			continue
		}
		date, err := ParseDate(r.SigningDate)
		if err != nil {
			return &ChainError{Kind: InvalidDate, Index: index}
		}
		if date.After(limit) {
			return &ChainError{Kind: FutureDate, Index: index}
		}
		if hasPrevious && !date.After(previous) {
			return &ChainError{Kind: NotAfterPrevious, Index: index, PreviousLabel: previousLabel}
		}
		previous, hasPrevious = date, true
		previousLabel = Label(index)
	}
	return nil
}

// civilDay drops the clock part of t, keeping the calendar day t has in its
// own location.
func civilDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
