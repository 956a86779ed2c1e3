// Package datetime provides date utility functions for the engine's canonical
// day representation.
package datetime

import (
	"strings"
	"time"

	"github.com/buyerboard/finance-engine/pkg/constants"
)

const (
	// DayLayout is the canonical internal day format.
	DayLayout = constants.DayLayout

	// MonthLayout is the format for monthly rollup keys.
	MonthLayout = constants.MonthLayout
)

// dayLayouts are the accepted input dialects, tried in order. Upstream
// exports mix US-style and ISO dates, sometimes with a time suffix.
var dayLayouts = []string{
	constants.DayLayout,
	constants.USDayLayout,
	"2006-01-02T15:04:05Z07:00",
	"2006-01-02 15:04:05",
}

// ParseDay parses a date string in any accepted dialect and truncates it to
// midnight UTC. Returns false when no dialect matches; it never errors, since
// a malformed date must degrade rather than abort a batch.
func ParseDay(value string) (time.Time, bool) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return time.Time{}, false
	}
	for _, layout := range dayLayouts {
		t, err := time.Parse(layout, trimmed)
		if err == nil {
			return Day(t), true
		}
	}
	return time.Time{}, false
}

// Day truncates a time to its calendar day at midnight UTC.
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// SameDay reports whether two times fall on the same calendar day.
func SameDay(a, b time.Time) bool {
	return Day(a).Equal(Day(b))
}

// MonthKey returns the monthly rollup key for a date.
func MonthKey(t time.Time) string {
	return t.Format(MonthLayout)
}

// SameMonth reports whether two times fall in the same calendar month.
func SameMonth(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month()
}

// MustParseDay parses a canonical-format day string and panics on error.
// This is intended for use in tests where the date string is known to be valid.
func MustParseDay(value string) time.Time {
	t, err := time.Parse(DayLayout, value)
	if err != nil {
		panic(err)
	}
	return Day(t)
}
