// Package textmatch implements the accent- and case-insensitive multi-word
// matching used by every lookup field of the document form.
package textmatch

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Normalize decomposes s, drops combining marks and lowercases the result,
// so "Goiânia" and "GOIANIA" both become "goiania".
func Normalize(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)))
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	return strings.ToLower(out)
}

// Matches reports whether every whitespace-separated token of query occurs
// somewhere in item. Token order and adjacency are irrelevant. A blank query
// matches everything.
func Matches(item, query string) bool {
	tokens := strings.Fields(Normalize(query))
	if len(tokens) == 0 {
		return true
	}
	return matchTokens(Normalize(item), tokens)
}

func matchTokens(normalizedItem string, tokens []string) bool {
	for _, tok := range tokens {
		if !strings.Contains(normalizedItem, tok) {
			return false
		}
	}
	return true
}

// Filter returns the items of pool matching query, preserving pool order.
func Filter(pool []string, query string) []string {
	return FilterFunc(pool, query, func(s string) string { return s })
}

// FilterFunc is Filter for structured candidates; text extracts the string
// each candidate is matched on.
func FilterFunc[T any](pool []T, query string, text func(T) string) []T {
	tokens := strings.Fields(Normalize(query))
	out := make([]T, 0, len(pool))
	for _, item := range pool {
		if len(tokens) == 0 || matchTokens(Normalize(text(item)), tokens) {
			out = append(out, item)
		}
	}
	return out
}
