// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package recurrence

import (
	"fmt"

	"github.com/dustin/go-humanize"

	"github.com/goose-ws/PartyPlanner/models"
)

// Describe renders a rule as a short human phrase, e.g. "every 2nd Thursday
// of the month" or "every 14 days, 3 options per poll".
func Describe(rule models.RecurrenceRule) string {
	var text string
	switch rule.Kind {
	case models.RecurrenceDynamic:
		switch {
		case rule.IntervalDays == 1:
			text = "every day"
		case rule.IntervalDays == 7:
			text = "every week"
		case rule.IntervalDays%7 == 0:
			text = fmt.Sprintf("every %d weeks", rule.IntervalDays/7)
		default:
			text = fmt.Sprintf("every %d days", rule.IntervalDays)
		}
	case models.RecurrenceStatic:
		text = fmt.Sprintf("every %s %s of the month", humanize.Ordinal(rule.Ordinal), rule.Weekday)
	default:
		return ""
	}
	if per := rule.PerPoll(); per > 1 {
		text += fmt.Sprintf(", %d options per poll", per)
	}
	return text
}
