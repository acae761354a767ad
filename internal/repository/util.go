package repository

import (
	"sort"
	"time"
)

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// dayBounds returns the UTC half-open range [start, end) covering the
// calendar day of t in loc.  Timestamps are stored in UTC, so "today" and
// date filters are compared against these bounds rather than DATE().
func dayBounds(t time.Time, loc *time.Location) (time.Time, time.Time) {
	if loc == nil {
		loc = time.UTC
	}
	y, m, d := t.In(loc).Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, loc)
	return start.UTC(), start.AddDate(0, 0, 1).UTC()
}

// parseDay reads a YYYY-MM-DD date as a day in loc.
func parseDay(s string, loc *time.Location) (time.Time, time.Time, bool) {
	if loc == nil {
		loc = time.UTC
	}
	t, err := time.ParseInLocation("2006-01-02", s, loc)
	if err != nil {
		return time.Time{}, time.Time{}, false
	}
	start, end := dayBounds(t, loc)
	return start, end, true
}
