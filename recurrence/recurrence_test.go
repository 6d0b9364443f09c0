// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package recurrence

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goose-ws/PartyPlanner/models"
)

func date(s string) time.Time {
	d, err := models.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

func dynamicRule(start string, interval int) models.RecurrenceRule {
	return models.RecurrenceRule{
		Kind:         models.RecurrenceDynamic,
		StartDate:    date(start),
		IntervalDays: interval,
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		rule    models.RecurrenceRule
		wantErr bool
	}{
		{"dynamic ok", dynamicRule("2024-01-04", 14), false},
		{"zero interval", dynamicRule("2024-01-04", 0), true},
		{"negative interval", dynamicRule("2024-01-04", -7), true},
		{"missing start", models.RecurrenceRule{Kind: models.RecurrenceDynamic, IntervalDays: 7}, true},
		{"static ok", models.RecurrenceRule{Kind: models.RecurrenceStatic, StartDate: date("2024-01-01"), Weekday: time.Thursday, Ordinal: 2}, false},
		{"static ordinal zero", models.RecurrenceRule{Kind: models.RecurrenceStatic, StartDate: date("2024-01-01"), Weekday: time.Thursday, Ordinal: 0}, true},
		{"static ordinal six", models.RecurrenceRule{Kind: models.RecurrenceStatic, StartDate: date("2024-01-01"), Weekday: time.Thursday, Ordinal: 6}, true},
		{"static bad weekday", models.RecurrenceRule{Kind: models.RecurrenceStatic, StartDate: date("2024-01-01"), Weekday: 7, Ordinal: 1}, true},
		{"unknown kind", models.RecurrenceRule{Kind: "weekly", StartDate: date("2024-01-01")}, true},
		{"too many options", models.RecurrenceRule{Kind: models.RecurrenceDynamic, StartDate: date("2024-01-01"), IntervalDays: 1, OptionsPerPoll: 40}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.rule)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidRule)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestNextCandidateWindows_DynamicFirstSession(t *testing.T) {
	windows, err := NextCandidateWindows(dynamicRule("2024-01-04", 14), date("2024-01-01"), 1, nil)
	require.NoError(t, err)
	require.Len(t, windows, 1)
	assert.Equal(t, []string{"2024-01-04"}, models.FormatDates(windows[0]))
}

func TestNextCandidateWindows_DynamicSkipsPast(t *testing.T) {
	windows, err := NextCandidateWindows(dynamicRule("2024-01-04", 14), date("2024-02-02"), 3, nil)
	require.NoError(t, err)
	require.Len(t, windows, 3)
	assert.Equal(t, "2024-02-15", models.FormatDate(windows[0][0]))
	assert.Equal(t, "2024-02-29", models.FormatDate(windows[1][0]))
	assert.Equal(t, "2024-03-14", models.FormatDate(windows[2][0]))
}

func TestNextCandidateWindows_ReferenceOnSessionDay(t *testing.T) {
	windows, err := NextCandidateWindows(dynamicRule("2024-01-04", 14), date("2024-01-18"), 1, nil)
	require.NoError(t, err)
	assert.Equal(t, "2024-01-18", models.FormatDate(windows[0][0]))
}

func TestNextCandidateWindows_SkipsExisting(t *testing.T) {
	rule := dynamicRule("2024-01-04", 14)
	first, err := NextCandidateWindows(rule, date("2024-01-01"), 2, nil)
	require.NoError(t, err)

	existing := map[string]bool{}
	for _, w := range first {
		existing[models.FormatDate(w[0])] = true
	}

	second, err := NextCandidateWindows(rule, date("2024-01-05"), 2, existing)
	require.NoError(t, err)
	for _, w := range second {
		assert.False(t, existing[models.FormatDate(w[0])], "window %s regenerated", models.FormatDate(w[0]))
	}
	assert.Equal(t, "2024-02-01", models.FormatDate(second[0][0]))
}

func TestNextCandidateWindows_MultipleOptionsStayAligned(t *testing.T) {
	rule := dynamicRule("2024-01-01", 7)
	rule.OptionsPerPoll = 2

	windows, err := NextCandidateWindows(rule, date("2024-01-01"), 2, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"2024-01-01", "2024-01-08"}, models.FormatDates(windows[0]))
	assert.Equal(t, []string{"2024-01-15", "2024-01-22"}, models.FormatDates(windows[1]))

	// Asking mid-window must not shift the grouping.
	later, err := NextCandidateWindows(rule, date("2024-01-09"), 1, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"2024-01-15", "2024-01-22"}, models.FormatDates(later[0]))

	// A started window is dropped with its remaining date.
	started, err := NextCandidateWindows(rule, date("2024-01-05"), 1, nil)
	require.NoError(t, err)
	require.Len(t, started, 1)
	assert.Equal(t, []string{"2024-01-15", "2024-01-22"}, models.FormatDates(started[0]))
}

func TestNextCandidateWindows_Static(t *testing.T) {
	rule := models.RecurrenceRule{
		Kind:      models.RecurrenceStatic,
		StartDate: date("2024-01-01"),
		Weekday:   time.Thursday,
		Ordinal:   2,
	}

	windows, err := NextCandidateWindows(rule, date("2024-01-12"), 3, nil)
	require.NoError(t, err)
	require.Len(t, windows, 3)
	assert.Equal(t, "2024-02-08", models.FormatDate(windows[0][0]))
	assert.Equal(t, "2024-03-14", models.FormatDate(windows[1][0]))
	assert.Equal(t, "2024-04-11", models.FormatDate(windows[2][0]))
}

func TestNextCandidateWindows_StaticFifthSkipsShortMonths(t *testing.T) {
	rule := models.RecurrenceRule{
		Kind:      models.RecurrenceStatic,
		StartDate: date("2024-01-01"),
		Weekday:   time.Monday,
		Ordinal:   5,
	}

	windows, err := NextCandidateWindows(rule, date("2024-01-01"), 3, nil)
	require.NoError(t, err)
	assert.Equal(t, "2024-01-29", models.FormatDate(windows[0][0]))
	assert.Equal(t, "2024-04-29", models.FormatDate(windows[1][0]))
	assert.Equal(t, "2024-07-29", models.FormatDate(windows[2][0]))
}

func TestNextCandidateWindows_InvalidRule(t *testing.T) {
	_, err := NextCandidateWindows(dynamicRule("2024-01-04", 0), date("2024-01-01"), 1, nil)
	assert.ErrorIs(t, err, ErrInvalidRule)
}

func TestNthWeekday(t *testing.T) {
	d, ok := NthWeekday(2024, time.February, time.Thursday, 1)
	require.True(t, ok)
	assert.Equal(t, "2024-02-01", models.FormatDate(d))

	_, ok = NthWeekday(2024, time.February, time.Monday, 5)
	assert.False(t, ok)
}

func TestDescribe(t *testing.T) {
	start := time.Date(2024, 1, 4, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		name string
		rule models.RecurrenceRule
		want string
	}{
		{"fortnightly", models.RecurrenceRule{Kind: models.RecurrenceDynamic, StartDate: start, IntervalDays: 14}, "every 2 weeks"},
		{"weekly", models.RecurrenceRule{Kind: models.RecurrenceDynamic, StartDate: start, IntervalDays: 7}, "every week"},
		{"odd interval", models.RecurrenceRule{Kind: models.RecurrenceDynamic, StartDate: start, IntervalDays: 10, OptionsPerPoll: 3}, "every 10 days, 3 options per poll"},
		{"static", models.RecurrenceRule{Kind: models.RecurrenceStatic, StartDate: start, Weekday: time.Thursday, Ordinal: 2}, "every 2nd Thursday of the month"},
		{"unknown", models.RecurrenceRule{Kind: "lunar"}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Describe(tt.rule))
		})
	}
}
