// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package lifecycle

import (
	"errors"
	"fmt"
	"time"

	"github.com/goose-ws/PartyPlanner/models"
)

var (
	ErrInvalidSelection = errors.New("selected date is not a candidate date of the poll")
	ErrAlreadyClosed    = errors.New("poll is already closed")
)

// Transition names a tick-driven state change.
type Transition string

const (
	TransitionResponseWarning  Transition = "response_warning"
	TransitionDecisionReminder Transition = "decision_reminder"
)

// Deadlines are the calendar dates, in the campaign timezone, on which each
// tick-driven transition becomes due.
type Deadlines struct {
	ResponseWarning  time.Time
	DecisionReminder time.Time
}

// DeadlinesFor derives a poll's deadlines from its earliest candidate date.
func DeadlinesFor(poll models.Poll, campaign models.Campaign) Deadlines {
	earliest := poll.Earliest()
	return Deadlines{
		ResponseWarning:  models.AddDays(earliest, -campaign.ResponseWarningOffsetDays),
		DecisionReminder: models.AddDays(earliest, -campaign.DecisionOffsetDays),
	}
}

// Check is the evaluation of one transition against the current time.
type Check struct {
	Transition Transition
	Deadline   time.Time
	Reached    bool
	AlreadyRan bool
}

// Due reports whether the transition should fire now.
func (c Check) Due() bool {
	return c.Reached && !c.AlreadyRan
}

// Evaluate compares now, read in the campaign timezone, against the poll's
// deadlines. Closed polls and polls without dates yield no checks. The
// response warning is always listed before the decision reminder.
func Evaluate(poll models.Poll, campaign models.Campaign, now time.Time) ([]Check, error) {
	if poll.Closed() || len(poll.Dates) == 0 {
		return nil, nil
	}

	loc, err := campaign.Location()
	if err != nil {
		return nil, fmt.Errorf("campaign %s timezone: %w", campaign.ID, err)
	}
	today := models.DayIn(now, loc)
	dl := DeadlinesFor(poll, campaign)

	return []Check{
		{
			Transition: TransitionResponseWarning,
			Deadline:   dl.ResponseWarning,
			Reached:    !today.Before(dl.ResponseWarning),
			AlreadyRan: poll.ResponseWarningSent,
		},
		{
			Transition: TransitionDecisionReminder,
			Deadline:   dl.DecisionReminder,
			Reached:    !today.Before(dl.DecisionReminder),
			AlreadyRan: poll.DecisionReminderSent,
		},
	}, nil
}

// Due returns only the transitions that should fire now.
func Due(poll models.Poll, campaign models.Campaign, now time.Time) ([]Transition, error) {
	checks, err := Evaluate(poll, campaign, now)
	if err != nil {
		return nil, err
	}
	var due []Transition
	for _, c := range checks {
		if c.Due() {
			due = append(due, c.Transition)
		}
	}
	return due, nil
}

// ValidateClose checks a manual close request. A closed poll is rejected
// before the selection is looked at.
func ValidateClose(poll models.Poll, selected time.Time) error {
	if poll.Closed() {
		return ErrAlreadyClosed
	}
	if !poll.HasDate(selected) {
		return fmt.Errorf("%w: %s", ErrInvalidSelection, models.FormatDate(selected))
	}
	return nil
}

// NonResponders lists the players with no recorded response at all.
func NonResponders(players []models.Player, responses []models.Response) []models.Player {
	answered := make(map[string]bool, len(players))
	for _, r := range responses {
		answered[r.PlayerID] = true
	}

	var out []models.Player
	for _, p := range players {
		if !answered[p.ID] {
			out = append(out, p)
		}
	}
	return out
}
