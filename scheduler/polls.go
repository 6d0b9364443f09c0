// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package scheduler

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/goose-ws/PartyPlanner/lifecycle"
	"github.com/goose-ws/PartyPlanner/models"
	"github.com/goose-ws/PartyPlanner/scoring"
)

// PollView is everything a voting page shows for one poll.
type PollView struct {
	Poll      models.Poll
	Campaign  models.Campaign
	Responses []models.Response
	Scores    scoring.Result
}

func (s *Service) PollView(ctx context.Context, slug string) (PollView, error) {
	p, err := s.repo.GetPollBySlug(ctx, slug)
	if err != nil {
		return PollView{}, err
	}
	c, err := s.repo.GetCampaign(ctx, p.CampaignID)
	if err != nil {
		return PollView{}, err
	}
	responses, err := s.repo.ListResponses(ctx, p.ID)
	if err != nil {
		return PollView{}, err
	}
	return PollView{
		Poll:      p,
		Campaign:  c,
		Responses: responses,
		Scores:    scoring.Score(p.Dates, c.Players, responses),
	}, nil
}

// PollBySlug resolves a share slug to its poll.
func (s *Service) PollBySlug(ctx context.Context, slug string) (models.Poll, error) {
	return s.repo.GetPollBySlug(ctx, slug)
}

// RecordVote stores a player's vote for one candidate date, replacing any
// earlier vote for that date.
func (s *Service) RecordVote(ctx context.Context, pollID, playerID string, date time.Time, vote models.Vote) error {
	p, c, err := s.votable(ctx, pollID, playerID, date)
	if err != nil {
		return err
	}

	saved, err := s.repo.SaveResponse(ctx, models.Response{
		PollID:    p.ID,
		PlayerID:  playerID,
		Date:      models.Day(date),
		Vote:      vote,
		UpdatedAt: s.Clock(),
	})
	if err != nil {
		return err
	}
	if !saved {
		// closed between the read and the write
		return ErrPollClosed
	}

	s.logger.Info("vote recorded",
		"campaign_id", c.ID,
		"poll_id", p.ID,
		"player_id", playerID,
		"date", models.FormatDate(date),
		"vote", vote,
	)
	return nil
}

// ClearVote removes a player's vote for one candidate date.
func (s *Service) ClearVote(ctx context.Context, pollID, playerID string, date time.Time) error {
	p, _, err := s.votable(ctx, pollID, playerID, date)
	if err != nil {
		return err
	}
	open, err := s.repo.DeleteResponse(ctx, p.ID, playerID, models.Day(date))
	if err != nil {
		return err
	}
	if !open {
		return ErrPollClosed
	}
	s.logger.Info("vote cleared", "poll_id", p.ID, "player_id", playerID, "date", models.FormatDate(date))
	return nil
}

func (s *Service) votable(ctx context.Context, pollID, playerID string, date time.Time) (models.Poll, models.Campaign, error) {
	p, err := s.repo.GetPoll(ctx, pollID)
	if err != nil {
		return models.Poll{}, models.Campaign{}, err
	}
	if p.Closed() {
		return p, models.Campaign{}, ErrPollClosed
	}
	if !p.HasDate(date) {
		return p, models.Campaign{}, fmt.Errorf("%w: %s", ErrUnknownDate, models.FormatDate(date))
	}
	c, err := s.repo.GetCampaign(ctx, p.CampaignID)
	if err != nil {
		return p, c, err
	}
	if _, ok := c.Player(playerID); !ok {
		return p, c, fmt.Errorf("%w: %s", ErrUnknownPlayer, playerID)
	}
	return p, c, nil
}

// ClosePoll decides a poll on one of its candidate dates and announces the
// session.
func (s *Service) ClosePoll(ctx context.Context, pollID string, chosen time.Time) (models.Poll, error) {
	p, err := s.repo.GetPoll(ctx, pollID)
	if err != nil {
		return p, err
	}
	if err := lifecycle.ValidateClose(p, chosen); err != nil {
		return p, err
	}

	day := models.Day(chosen)
	return s.close(ctx, p, &day)
}

// CancelPoll closes a poll without a date, for sessions that could not be
// scheduled.
func (s *Service) CancelPoll(ctx context.Context, pollID string) (models.Poll, error) {
	p, err := s.repo.GetPoll(ctx, pollID)
	if err != nil {
		return p, err
	}
	if p.Closed() {
		return p, lifecycle.ErrAlreadyClosed
	}
	return s.close(ctx, p, nil)
}

func (s *Service) close(ctx context.Context, p models.Poll, decided *time.Time) (models.Poll, error) {
	now := s.Clock()
	ok, err := s.repo.ClosePoll(ctx, p.ID, decided, now)
	if err != nil {
		return p, err
	}
	if !ok {
		return p, lifecycle.ErrAlreadyClosed
	}
	p.Status = models.StatusClosed
	p.DecidedDate = decided

	c, err := s.repo.GetCampaign(ctx, p.CampaignID)
	if err != nil {
		// the close stands; only the announcement is lost
		s.logger.Error("poll closed without announcement", "poll_id", p.ID, "error", err)
		return p, nil
	}

	if decided != nil {
		s.logger.Info("poll closed", "campaign_id", c.ID, "poll_id", p.ID, "decided_date", models.FormatDate(*decided))
		s.dispatch.Dispatch(ctx, s.builder.SessionScheduled(c, p, *decided, now))
	} else {
		s.logger.Info("poll cancelled", "campaign_id", c.ID, "poll_id", p.ID)
		s.dispatch.Dispatch(ctx, s.builder.SessionCancelled(c, p, now))
	}
	return p, nil
}

// CreatePoll opens a poll with hand-picked dates. Its session number follows
// the campaign's latest poll.
func (s *Service) CreatePoll(ctx context.Context, campaignID string, dates []time.Time, announce bool) (models.Poll, error) {
	if len(dates) == 0 {
		return models.Poll{}, fmt.Errorf("%w: at least one date is required", ErrInvalidPoll)
	}
	if _, dup := models.SortDates(dates); dup {
		return models.Poll{}, fmt.Errorf("%w: duplicate dates", ErrInvalidPoll)
	}

	c, err := s.repo.GetCampaign(ctx, campaignID)
	if err != nil {
		return models.Poll{}, err
	}
	polls, err := s.repo.ListPolls(ctx, campaignID)
	if err != nil {
		return models.Poll{}, err
	}
	session := 0
	for _, p := range polls {
		if p.SessionNumber >= session {
			session = p.SessionNumber + 1
		}
	}

	now := s.Clock()
	p := s.newPoll(c.ID, session, dates, true, now)
	if err := s.repo.CreatePoll(ctx, p); err != nil {
		return models.Poll{}, err
	}
	s.logger.Info("poll created", "campaign_id", c.ID, "poll_id", p.ID, "session_number", session, "manual", true)

	if announce {
		s.dispatch.Dispatch(ctx, s.builder.NewPoll(c, p, now, ""))
	}
	return p, nil
}

// ListPolls summarizes every poll of every campaign, most recent session
// first within a campaign.
func (s *Service) ListPolls(ctx context.Context) ([]models.PollSummary, error) {
	campaigns, err := s.repo.ListCampaigns(ctx)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]models.Campaign, len(campaigns))
	for _, c := range campaigns {
		byID[c.ID] = c
	}

	polls, err := s.repo.ListPolls(ctx, "")
	if err != nil {
		return nil, err
	}

	out := make([]models.PollSummary, 0, len(polls))
	for _, p := range polls {
		responses, err := s.repo.ListResponses(ctx, p.ID)
		if err != nil {
			return nil, err
		}
		responded := make(map[string]bool)
		for _, r := range responses {
			responded[r.PlayerID] = true
		}
		c := byID[p.CampaignID]
		out = append(out, models.PollSummary{
			Poll:          p,
			CampaignName:  c.Name,
			PlayerCount:   len(c.Players),
			ResponseCount: len(responded),
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CampaignName != out[j].CampaignName {
			return out[i].CampaignName < out[j].CampaignName
		}
		return out[i].SessionNumber > out[j].SessionNumber
	})
	return out, nil
}
