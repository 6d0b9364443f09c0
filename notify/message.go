// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package notify

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

const displayDate = "Mon Jan 2, 2006"

// Title is the one-line headline for an event.
func Title(ev Event) string {
	session := fmt.Sprintf("%s - Session %d", ev.CampaignName, ev.SessionNumber)
	switch ev.Kind {
	case KindNewPoll:
		return "🎲 New poll: " + session
	case KindResponseWarning:
		return "⏰ Reminder: " + session + " poll"
	case KindDecisionReminder:
		return "📊 Results: " + session
	case KindSessionScheduled:
		return "📅 Scheduled: " + session
	case KindSessionCancelled:
		return "🚫 Cancelled: " + session
	}
	return session
}

// Description is the body text for an event.
func Description(ev Event) string {
	switch ev.Kind {
	case KindNewPoll:
		return newPollText(ev)

	case KindResponseWarning:
		names := make([]string, len(ev.NonResponders))
		for i, r := range ev.NonResponders {
			names[i] = r.Name
		}
		return "**Still waiting on:** " + strings.Join(names, ", ")

	case KindDecisionReminder:
		if len(ev.BestDates) == 0 {
			return "No dates to rank yet."
		}
		if ev.Tied() {
			return fmt.Sprintf("**Tied between:** %s. A date needs to be picked by hand.", joinDates(ev.BestDates))
		}
		return fmt.Sprintf("**Leading date:** %s%s", ev.BestDates[0].Format(displayDate), timeRange(ev))

	case KindSessionScheduled:
		if ev.ChosenDate == nil {
			return ""
		}
		text := fmt.Sprintf("**%s** meets on **%s**%s", ev.CampaignName, ev.ChosenDate.Format(displayDate), timeRange(ev))
		if ev.Timezone != "" {
			text += " " + ev.Timezone
		}
		return text

	case KindSessionCancelled:
		return fmt.Sprintf("No date worked for Session %d.", ev.SessionNumber)
	}
	return ""
}

// Content is the plain message text that carries chat mentions, which chat
// services only honor outside of embeds.
func Content(ev Event) string {
	if ev.Kind != KindResponseWarning {
		return ""
	}
	var mentions []string
	for _, r := range ev.NonResponders {
		if r.MentionID != "" {
			mentions = append(mentions, r.Mention())
		}
	}
	if len(mentions) == 0 {
		return ""
	}
	return strings.Join(mentions, " ") + " please fill in your availability"
}

func newPollText(ev Event) string {
	if len(ev.Dates) == 0 {
		return "A new poll is open."
	}
	first, last := ev.Dates[0], ev.Dates[len(ev.Dates)-1]

	var text string
	if len(ev.Dates) == 1 {
		text = fmt.Sprintf("Vote on your availability for %s", first.Format(displayDate))
	} else {
		text = fmt.Sprintf("Vote on your availability for %d dates between %s and %s",
			len(ev.Dates), first.Format(displayDate), last.Format(displayDate))
	}
	if !ev.CreatedAt.IsZero() {
		text += " (first option " + humanize.RelTime(first, ev.CreatedAt, "ago", "from now") + ")"
	}
	if ev.Recurrence != "" {
		text += "\nSchedule: " + ev.Recurrence
	}
	return text
}

func timeRange(ev Event) string {
	if ev.SessionStart == "" {
		return ""
	}
	if ev.SessionEnd == "" {
		return " at " + ev.SessionStart
	}
	return " at " + ev.SessionStart + "-" + ev.SessionEnd
}

func joinDates(dates []time.Time) string {
	out := make([]string, len(dates))
	for i, d := range dates {
		out[i] = d.Format(displayDate)
	}
	return strings.Join(out, ", ")
}
