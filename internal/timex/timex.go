// Package timex classifies textual date expressions as definite calendar
// dates or ambiguous/partial expressions.
package timex

import (
	"strings"
	"time"
)

// dateLayouts are the concrete calendar layouts accepted as definite dates.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"01/02/2006",
	"1/2/2006",
	"January 2, 2006",
	"January 2 2006",
	"Jan 2, 2006",
	"Jan 2 2006",
	"2 January 2006",
	"2006-01-02 15:04",
}

var weekdays = map[string]struct{}{
	"monday": {}, "tuesday": {}, "wednesday": {}, "thursday": {},
	"friday": {}, "saturday": {}, "sunday": {},
}

var months = map[string]struct{}{
	"january": {}, "february": {}, "march": {}, "april": {},
	"may": {}, "june": {}, "july": {}, "august": {},
	"september": {}, "october": {}, "november": {}, "december": {},
}

// ParseDate attempts to parse text as one concrete calendar date.
func ParseDate(text string) (time.Time, bool) {
	s := strings.TrimSpace(text)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// IsDefinite reports whether text resolves to exactly one calendar date.
// A bare day of week, a month without a day, a TIMEX partial like
// "XXXX-WXX-5", a range, or unparseable input are all indefinite.
func IsDefinite(text string) bool {
	_, ok := ParseDate(text)
	return ok
}

// IsAmbiguous is the inverse of IsDefinite. The booking waterfall routes
// ambiguous travel dates to the date resolver dialog. Input that is not
// valid calendar syntax at all is treated as ambiguous, never as an error.
func IsAmbiguous(text string) bool {
	return !IsDefinite(text)
}

// DescribesPartialDate reports whether text names a weekday or month
// without pinning a single date. Used only for logging detail; the routing
// decision is IsAmbiguous.
func DescribesPartialDate(text string) bool {
	s := strings.ToLower(strings.TrimSpace(text))
	if _, ok := weekdays[s]; ok {
		return true
	}
	if _, ok := months[s]; ok {
		return true
	}
	// TIMEX partials use X placeholders, e.g. XXXX-WXX-5 or XXXX-09.
	return strings.Contains(strings.ToUpper(s), "XXXX")
}
