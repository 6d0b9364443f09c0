// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package notify

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/goose-ws/PartyPlanner/models"
	"github.com/goose-ws/PartyPlanner/scoring"
)

// Kind identifies what lifecycle occurrence an event reports.
type Kind string

const (
	KindNewPoll          Kind = "new_poll"
	KindResponseWarning  Kind = "response_warning"
	KindDecisionReminder Kind = "decision_reminder"
	KindSessionScheduled Kind = "session_scheduled"
	KindSessionCancelled Kind = "session_cancelled"
)

var eventNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/goose-ws/PartyPlanner/events"))

// EventID is stable for a (kind, poll) pair, so a redelivered event carries
// the same id as the original.
func EventID(kind Kind, pollID string) string {
	return uuid.NewSHA1(eventNamespace, []byte(string(kind)+":"+pollID)).String()
}

type Recipient struct {
	PlayerID  string `json:"player_id"`
	Name      string `json:"name"`
	MentionID string `json:"mention_id,omitempty"`
}

// Mention renders a chat mention when the player has one, else their name.
func (r Recipient) Mention() string {
	if r.MentionID != "" {
		return "<@" + r.MentionID + ">"
	}
	return r.Name
}

type RankedDate struct {
	Date   time.Time `json:"date"`
	Score  int       `json:"score"`
	Vetoed bool      `json:"vetoed,omitempty"`
	Best   bool      `json:"best,omitempty"`
}

// Event is one outbound notification. Which payload fields are set depends on
// Kind: Dates for new polls, NonResponders for warnings, Rankings and
// BestDates for decision reminders, ChosenDate for scheduled sessions.
type Event struct {
	ID            string    `json:"id"`
	Kind          Kind      `json:"kind"`
	CampaignID    string    `json:"campaign_id"`
	CampaignName  string    `json:"campaign_name"`
	PollID        string    `json:"poll_id"`
	PollURL       string    `json:"poll_url,omitempty"`
	SessionNumber int       `json:"session_number"`
	Webhook       string    `json:"-"`
	Timezone      string    `json:"timezone,omitempty"`
	SessionStart  string    `json:"session_time_start,omitempty"`
	SessionEnd    string    `json:"session_time_end,omitempty"`
	Recurrence    string    `json:"recurrence,omitempty"`
	CreatedAt     time.Time `json:"created_at"`

	Dates         []time.Time  `json:"dates,omitempty"`
	NonResponders []Recipient  `json:"non_responders,omitempty"`
	Rankings      []RankedDate `json:"rankings,omitempty"`
	BestDates     []time.Time  `json:"best_dates,omitempty"`
	ChosenDate    *time.Time   `json:"chosen_date,omitempty"`
}

// Tied reports whether a decision reminder found no single best date.
func (e Event) Tied() bool {
	return len(e.BestDates) > 1
}

// Builder turns lifecycle occurrences into events.
type Builder struct {
	// BaseURL prefixes poll links, e.g. https://planner.example.com
	BaseURL string
}

func (b Builder) base(kind Kind, c models.Campaign, p models.Poll, now time.Time) Event {
	ev := Event{
		ID:            EventID(kind, p.ID),
		Kind:          kind,
		CampaignID:    c.ID,
		CampaignName:  c.Name,
		PollID:        p.ID,
		SessionNumber: p.SessionNumber,
		Webhook:       c.Webhook,
		Timezone:      c.Timezone,
		SessionStart:  c.SessionStart,
		SessionEnd:    c.SessionEnd,
		CreatedAt:     now,
	}
	if b.BaseURL != "" && p.Slug != "" {
		ev.PollURL = strings.TrimRight(b.BaseURL, "/") + "/poll/" + p.Slug
	}
	return ev
}

func (b Builder) NewPoll(c models.Campaign, p models.Poll, now time.Time, recurrence string) Event {
	ev := b.base(KindNewPoll, c, p, now)
	ev.Dates = append([]time.Time(nil), p.Dates...)
	ev.Recurrence = recurrence
	return ev
}

func (b Builder) ResponseWarning(c models.Campaign, p models.Poll, nonResponders []models.Player, now time.Time) Event {
	ev := b.base(KindResponseWarning, c, p, now)
	for _, pl := range nonResponders {
		ev.NonResponders = append(ev.NonResponders, Recipient{
			PlayerID:  pl.ID,
			Name:      pl.Name,
			MentionID: pl.MentionID,
		})
	}
	return ev
}

func (b Builder) DecisionReminder(c models.Campaign, p models.Poll, result scoring.Result, now time.Time) Event {
	ev := b.base(KindDecisionReminder, c, p, now)
	for _, ds := range result.Ranked {
		ev.Rankings = append(ev.Rankings, RankedDate{
			Date:   ds.Date,
			Score:  ds.Score,
			Vetoed: ds.Vetoed,
			Best:   ds.Best,
		})
	}
	ev.BestDates = append([]time.Time(nil), result.Best...)
	return ev
}

func (b Builder) SessionScheduled(c models.Campaign, p models.Poll, chosen time.Time, now time.Time) Event {
	ev := b.base(KindSessionScheduled, c, p, now)
	d := models.Day(chosen)
	ev.ChosenDate = &d
	return ev
}

func (b Builder) SessionCancelled(c models.Campaign, p models.Poll, now time.Time) Event {
	return b.base(KindSessionCancelled, c, p, now)
}
