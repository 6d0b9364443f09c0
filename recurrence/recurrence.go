// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package recurrence

import (
	"errors"
	"fmt"
	"time"

	"github.com/goose-ws/PartyPlanner/models"
)

// MaxOptionsPerPoll bounds how many dates a single generated poll may offer.
const MaxOptionsPerPoll = 31

var ErrInvalidRule = errors.New("invalid recurrence rule")

// Validate checks that a rule has every parameter its kind needs.
func Validate(rule models.RecurrenceRule) error {
	if rule.StartDate.IsZero() {
		return fmt.Errorf("%w: start date is required", ErrInvalidRule)
	}
	if rule.OptionsPerPoll < 0 || rule.OptionsPerPoll > MaxOptionsPerPoll {
		return fmt.Errorf("%w: options per poll must be between 1 and %d", ErrInvalidRule, MaxOptionsPerPoll)
	}

	switch rule.Kind {
	case models.RecurrenceDynamic:
		if rule.IntervalDays <= 0 {
			return fmt.Errorf("%w: interval must be a positive number of days, got %d", ErrInvalidRule, rule.IntervalDays)
		}
	case models.RecurrenceStatic:
		if rule.Ordinal < 1 || rule.Ordinal > 5 {
			return fmt.Errorf("%w: weekday ordinal must be 1-5, got %d", ErrInvalidRule, rule.Ordinal)
		}
		if rule.Weekday < time.Sunday || rule.Weekday > time.Saturday {
			return fmt.Errorf("%w: weekday must be 0-6, got %d", ErrInvalidRule, rule.Weekday)
		}
	default:
		return fmt.Errorf("%w: unknown kind %q", ErrInvalidRule, rule.Kind)
	}
	return nil
}

// NextCandidateWindows returns up to count poll windows whose earliest date is
// on or after reference and not already listed in existing (keyed by
// YYYY-MM-DD). Windows are always cut from the rule's start date, so the same
// rule yields the same windows no matter when it is asked.
//
// A window whose earliest date is before reference is skipped whole, even
// when its later dates are still ahead: with two options per poll, asking
// between the first and second date of a window starts at the next window.
func NextCandidateWindows(rule models.RecurrenceRule, reference time.Time, count int, existing map[string]bool) ([][]time.Time, error) {
	if err := Validate(rule); err != nil {
		return nil, err
	}
	if count <= 0 {
		return nil, nil
	}

	ref := models.Day(reference)
	per := rule.PerPoll()
	next := occurrences(rule, ref)

	windows := make([][]time.Time, 0, count)
	for len(windows) < count {
		window := make([]time.Time, per)
		for i := range window {
			window[i] = next()
		}
		if window[0].Before(ref) || existing[models.FormatDate(window[0])] {
			continue
		}
		windows = append(windows, window)
	}
	return windows, nil
}

// occurrences returns an iterator over the rule's session dates in calendar
// order. It may start past the first occurrence but always on a window
// boundary.
func occurrences(rule models.RecurrenceRule, ref time.Time) func() time.Time {
	start := models.Day(rule.StartDate)

	if rule.Kind == models.RecurrenceDynamic {
		k := 0
		if ref.After(start) {
			span := rule.PerPoll() * rule.IntervalDays
			days := int(ref.Sub(start).Hours() / 24)
			k = (days / span) * rule.PerPoll()
		}
		return func() time.Time {
			d := models.AddDays(start, k*rule.IntervalDays)
			k++
			return d
		}
	}

	year, month := start.Year(), start.Month()
	return func() time.Time {
		for {
			d, ok := NthWeekday(year, month, rule.Weekday, rule.Ordinal)
			month++
			if month > time.December {
				month = time.January
				year++
			}
			if ok && !d.Before(start) {
				return d
			}
		}
	}
}

// NthWeekday returns the n-th (1-based) given weekday of a month. ok is false
// when the month has no such day, e.g. a fifth Monday.
func NthWeekday(year int, month time.Month, weekday time.Weekday, n int) (time.Time, bool) {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	offset := (int(weekday) - int(first.Weekday()) + 7) % 7
	d := first.AddDate(0, 0, offset+(n-1)*7)
	if d.Month() != month {
		return time.Time{}, false
	}
	return d, true
}
