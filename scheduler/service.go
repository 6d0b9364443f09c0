// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/goose-ws/PartyPlanner/auth"
	"github.com/goose-ws/PartyPlanner/lifecycle"
	"github.com/goose-ws/PartyPlanner/models"
	"github.com/goose-ws/PartyPlanner/notify"
	"github.com/goose-ws/PartyPlanner/recurrence"
	"github.com/goose-ws/PartyPlanner/scoring"
)

// Service is the poll lifecycle core. Tick drives the time-based work; the
// other methods are the admin and voting surfaces.
type Service struct {
	repo     Repository
	dispatch *notify.Dispatcher
	builder  notify.Builder
	slugSalt string
	logger   *slog.Logger

	// Clock stamps votes and closes. Tick never uses it.
	Clock func() time.Time

	tickMu sync.Mutex
}

type Options struct {
	// SlugSalt keys the share slugs of generated polls.
	SlugSalt string
	// BaseURL prefixes poll links in notifications.
	BaseURL string
	Logger  *slog.Logger
}

func New(repo Repository, dispatcher *notify.Dispatcher, opts Options) *Service {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if dispatcher == nil {
		dispatcher = notify.NewDispatcher(nil, 0, logger)
	}
	return &Service{
		repo:     repo,
		dispatch: dispatcher,
		builder:  notify.Builder{BaseURL: opts.BaseURL},
		slugSalt: opts.SlugSalt,
		logger:   logger,
		Clock:    time.Now,
	}
}

// TickReport summarizes one tick.
type TickReport struct {
	Campaigns         int
	PollsCreated      int
	ResponseWarnings  int
	DecisionReminders int
	EventsDelivered   int
	Errors            []error
}

func (r TickReport) Err() error {
	return errors.Join(r.Errors...)
}

// Tick runs one evaluation cycle at now: it tops up each active campaign's
// open polls and fires whichever reminders have come due. Ticks never
// overlap. A failing campaign is logged and skipped; the rest still run, and
// the next tick retries it.
func (s *Service) Tick(ctx context.Context, now time.Time) (TickReport, error) {
	s.tickMu.Lock()
	defer s.tickMu.Unlock()

	var report TickReport
	campaigns, err := s.repo.ListActiveCampaigns(ctx)
	if err != nil {
		s.logger.Error("tick: list campaigns failed", "error", err)
		report.Errors = append(report.Errors, err)
		return report, err
	}

	for _, c := range campaigns {
		report.Campaigns++
		if err := s.tickCampaign(ctx, c, now, &report); err != nil {
			s.logger.Error("tick: campaign failed", "campaign_id", c.ID, "error", err)
			report.Errors = append(report.Errors, fmt.Errorf("campaign %s: %w", c.ID, err))
		}
	}

	s.logger.Info("tick completed",
		"now", now,
		"campaigns", report.Campaigns,
		"polls_created", report.PollsCreated,
		"response_warnings", report.ResponseWarnings,
		"decision_reminders", report.DecisionReminders,
		"events_delivered", report.EventsDelivered,
		"errors", len(report.Errors),
	)
	return report, report.Err()
}

func (s *Service) tickCampaign(ctx context.Context, c models.Campaign, now time.Time, report *TickReport) error {
	created, err := s.ensurePolls(ctx, c, now)
	report.PollsCreated += len(created)
	var events []notify.Event
	for _, p := range created {
		events = append(events, s.builder.NewPoll(c, p, now, recurrence.Describe(c.Rule)))
	}
	report.EventsDelivered += s.dispatch.Dispatch(ctx, events...)
	if err != nil {
		return err
	}

	polls, err := s.repo.ListOpenPolls(ctx, c.ID)
	if err != nil {
		return err
	}
	for _, p := range polls {
		if err := s.advance(ctx, c, p, now, report); err != nil {
			return fmt.Errorf("poll %s: %w", p.ID, err)
		}
	}
	return nil
}

// ensurePolls creates the polls a campaign is missing, measured against
// today in the campaign timezone, and returns them.
func (s *Service) ensurePolls(ctx context.Context, c models.Campaign, now time.Time) ([]models.Poll, error) {
	if c.DesiredOpenPolls <= 0 {
		return nil, nil
	}
	loc, err := c.Location()
	if err != nil {
		return nil, fmt.Errorf("timezone: %w", err)
	}
	today := models.DayIn(now, loc)

	polls, err := s.repo.ListPolls(ctx, c.ID)
	if err != nil {
		return nil, err
	}
	existing := make(map[string]bool, len(polls))
	upcoming, session := 0, 0
	for _, p := range polls {
		existing[models.FormatDate(p.Earliest())] = true
		if !p.Closed() && !p.Earliest().Before(today) {
			upcoming++
		}
		if p.SessionNumber >= session {
			session = p.SessionNumber + 1
		}
	}

	shortfall := c.DesiredOpenPolls - upcoming
	if shortfall <= 0 {
		s.logger.Debug("poll generation skipped", "campaign_id", c.ID, "skip", "already_done", "upcoming", upcoming)
		return nil, nil
	}

	windows, err := recurrence.NextCandidateWindows(c.Rule, today, shortfall, existing)
	if err != nil {
		return nil, err
	}

	var created []models.Poll
	for _, dates := range windows {
		p := s.newPoll(c.ID, session, dates, false, now)
		err := s.repo.CreatePoll(ctx, p)
		if errors.Is(err, ErrDuplicateWindow) {
			// a concurrent writer got there first
			s.logger.Info("poll generation skipped",
				"campaign_id", c.ID,
				"earliest_date", models.FormatDate(dates[0]),
				"skip", "already_done",
			)
			continue
		}
		if err != nil {
			return created, fmt.Errorf("create poll: %w", err)
		}
		s.logger.Info("poll created",
			"campaign_id", c.ID,
			"poll_id", p.ID,
			"session_number", p.SessionNumber,
			"earliest_date", models.FormatDate(dates[0]),
		)
		created = append(created, p)
		session++
	}
	return created, nil
}

func (s *Service) newPoll(campaignID string, session int, dates []time.Time, manual bool, now time.Time) models.Poll {
	id := uuid.NewString()
	sorted, _ := models.SortDates(dates)
	return models.Poll{
		ID:            id,
		Slug:          auth.GenerateShareSlug(id, s.slugSalt),
		CampaignID:    campaignID,
		SessionNumber: session,
		Dates:         sorted,
		Status:        models.StatusOpen,
		IsManual:      manual,
		CreatedAt:     now,
	}
}

// advance fires the due reminders of one open poll. Each flag is claimed
// with a conditional write before its event is built, so a concurrent tick
// that loses the claim sends nothing.
func (s *Service) advance(ctx context.Context, c models.Campaign, p models.Poll, now time.Time, report *TickReport) error {
	checks, err := lifecycle.Evaluate(p, c, now)
	if err != nil {
		return err
	}

	var responses []models.Response
	loaded := false
	for _, check := range checks {
		log := s.logger.With("campaign_id", c.ID, "poll_id", p.ID, "transition", check.Transition)
		if !check.Reached {
			continue
		}
		if check.AlreadyRan {
			log.Debug("transition skipped", "skip", "already_done")
			continue
		}

		if !loaded {
			if responses, err = s.repo.ListResponses(ctx, p.ID); err != nil {
				return err
			}
			loaded = true
		}

		var (
			won bool
			ev  *notify.Event
		)
		switch check.Transition {
		case lifecycle.TransitionResponseWarning:
			if won, err = s.repo.MarkResponseWarningSent(ctx, p.ID); err != nil {
				return err
			}
			if !won {
				break
			}
			report.ResponseWarnings++
			if missing := lifecycle.NonResponders(c.Players, responses); len(missing) > 0 {
				e := s.builder.ResponseWarning(c, p, missing, now)
				ev = &e
			}

		case lifecycle.TransitionDecisionReminder:
			if won, err = s.repo.MarkDecisionReminderSent(ctx, p.ID); err != nil {
				return err
			}
			if !won {
				break
			}
			report.DecisionReminders++
			result := scoring.Score(p.Dates, c.Players, responses)
			if result.HasResponses() {
				e := s.builder.DecisionReminder(c, p, result, now)
				ev = &e
			}
		}

		if !won {
			log.Info("transition skipped", "skip", "already_done", "reason", "claimed_concurrently")
			continue
		}
		log.Info("transition fired", "deadline", models.FormatDate(check.Deadline), "notify", ev != nil)
		if ev != nil {
			report.EventsDelivered += s.dispatch.Dispatch(ctx, *ev)
		}
	}
	return nil
}
