// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

import (
	"sort"
	"time"
)

// DateLayout is the wire and storage form of a calendar date.
const DateLayout = "2006-01-02"

// Day truncates t to its calendar date in t's own location and returns it as
// UTC midnight, so dates compare with Equal regardless of origin.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DayIn returns the calendar date of instant t as seen in loc.
func DayIn(t time.Time, loc *time.Location) time.Time {
	return Day(t.In(loc))
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, s)
}

// FormatDate renders a date as YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// FormatDates renders each date as YYYY-MM-DD.
func FormatDates(dates []time.Time) []string {
	out := make([]string, len(dates))
	for i, d := range dates {
		out[i] = FormatDate(d)
	}
	return out
}

// AddDays moves a date by n calendar days.
func AddDays(t time.Time, n int) time.Time {
	return t.AddDate(0, 0, n)
}

// SortDates normalizes, sorts, and reports whether dates contained duplicates.
func SortDates(dates []time.Time) ([]time.Time, bool) {
	out := make([]time.Time, len(dates))
	for i, d := range dates {
		out[i] = Day(d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	for i := 1; i < len(out); i++ {
		if out[i].Equal(out[i-1]) {
			return out, true
		}
	}
	return out, false
}
