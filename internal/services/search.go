package services

import (
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Fold lower-cases s and strips diacritics so "JOÃO" matches "joao".
func Fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}
	return strings.ToLower(strings.TrimSpace(folded))
}

// matchesAny reports whether the folded query occurs in any of the values.
// An empty query matches everything.
func matchesAny(query string, values ...string) bool {
	if query == "" {
		return true
	}
	for _, value := range values {
		if strings.Contains(Fold(value), query) {
			return true
		}
	}
	return false
}

// DateRange bounds a listing by calendar day, both ends inclusive. A zero
// bound is open.
type DateRange struct {
	From time.Time
	To   time.Time
}

// ParseDateRange reads two optional YYYY-MM-DD values.
func ParseDateRange(from, to string) (DateRange, error) {
	var r DateRange
	var violations Violations
	if strings.TrimSpace(from) != "" {
		parsed, ok := parseDate(from)
		if !ok {
			violations.add("from", "Start date is invalid")
		}
		r.From = parsed
	}
	if strings.TrimSpace(to) != "" {
		parsed, ok := parseDate(to)
		if !ok {
			violations.add("to", "End date is invalid")
		}
		r.To = parsed
	}
	if violations.OK() && !r.From.IsZero() && !r.To.IsZero() && r.From.After(r.To) {
		violations.add("from", "Start date must not be after end date")
	}
	if !violations.OK() {
		return DateRange{}, ErrInvalid("Invalid date range", violations)
	}
	return r, nil
}

func (r DateRange) Contains(t time.Time) bool {
	day := civilDate(t)
	if !r.From.IsZero() && day.Before(r.From) {
		return false
	}
	if !r.To.IsZero() && day.After(r.To) {
		return false
	}
	return true
}
