package core

import (
	"strings"
	"time"
)

// ParsedDate is a date plus a marker telling whether parsing failed and the
// reference instant was substituted. Upstream rows carry dates as strings and
// a malformed one must not abort the dashboard, but callers (and tests) need
// to be able to tell a real same-day record from a defaulted one.
type ParsedDate struct {
	Time     time.Time
	Fallback bool
}

// ParseDate parses s as YYYY-MM-DD or ISO-8601 in the local timezone of now.
// An empty or unparseable string falls back to now with Fallback set; it
// never returns an error.
func ParseDate(s string, now time.Time) ParsedDate {
	s = strings.TrimSpace(s)
	if s == "" {
		return ParsedDate{Time: now, Fallback: true}
	}
	if t, err := time.ParseInLocation("2006-01-02", s, now.Location()); err == nil {
		return ParsedDate{Time: t}
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return ParsedDate{Time: t.In(now.Location())}
	}
	return ParsedDate{Time: now, Fallback: true}
}

// MonthKey returns the calendar year-month of the date as "YYYY-MM",
// evaluated in the date's own location (local, not UTC-shifted).
func (d ParsedDate) MonthKey() string {
	return d.Time.Format("2006-01")
}

// Before reports whether the date falls strictly before the local midnight
// of ref. Used for due-date comparisons: an invoice due "today" is not yet
// overdue.
func (d ParsedDate) Before(ref time.Time) bool {
	midnight := time.Date(ref.Year(), ref.Month(), ref.Day(), 0, 0, 0, 0, ref.Location())
	return d.Time.Before(midnight)
}
