// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package scheduler

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/goose-ws/PartyPlanner/models"
	"github.com/goose-ws/PartyPlanner/notify"
	"github.com/goose-ws/PartyPlanner/recurrence"
	"github.com/goose-ws/PartyPlanner/scoring"
)

// ValidateCampaign checks a campaign before it is stored. Recurrence
// problems wrap recurrence.ErrInvalidRule, everything else
// ErrInvalidCampaign.
func ValidateCampaign(c models.Campaign) error {
	if strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidCampaign)
	}
	if err := recurrence.Validate(c.Rule); err != nil {
		return err
	}
	if _, err := c.Location(); err != nil {
		return fmt.Errorf("%w: unknown timezone %q", ErrInvalidCampaign, c.Timezone)
	}
	if c.ResponseWarningOffsetDays < 0 || c.DecisionOffsetDays < 0 {
		return fmt.Errorf("%w: reminder offsets cannot be negative", ErrInvalidCampaign)
	}
	if c.DesiredOpenPolls < 0 {
		return fmt.Errorf("%w: polls in advance cannot be negative", ErrInvalidCampaign)
	}

	dms := 0
	names := make(map[string]bool, len(c.Players))
	for _, p := range c.Players {
		name := strings.TrimSpace(p.Name)
		if name == "" {
			return fmt.Errorf("%w: player name is required", ErrInvalidCampaign)
		}
		if names[name] {
			return fmt.Errorf("%w: duplicate player %q", ErrInvalidCampaign, name)
		}
		names[name] = true
		if p.IsDM {
			dms++
		}
	}
	if dms > 1 {
		return fmt.Errorf("%w: only one player can be the DM, got %d", ErrInvalidCampaign, dms)
	}
	return nil
}

// SaveCampaign validates and stores a campaign, then brings an active
// campaign up to its desired number of open polls as of now. c is updated
// with the stored ids. It returns the number of polls created; a failure
// while generating them is logged, not returned.
func (s *Service) SaveCampaign(ctx context.Context, c *models.Campaign, now time.Time) (int, error) {
	c.Rule.StartDate = models.Day(c.Rule.StartDate)
	if err := ValidateCampaign(*c); err != nil {
		return 0, err
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}
	if err := s.repo.SaveCampaign(ctx, c); err != nil {
		return 0, err
	}
	s.logger.Info("campaign saved", "campaign_id", c.ID, "name", c.Name, "active", c.Active, "recurrence", recurrence.Describe(c.Rule))

	if !c.Active {
		return 0, nil
	}

	s.tickMu.Lock()
	defer s.tickMu.Unlock()
	created, err := s.ensurePolls(ctx, *c, now)
	var events []notify.Event
	for _, p := range created {
		events = append(events, s.builder.NewPoll(*c, p, now, recurrence.Describe(c.Rule)))
	}
	s.dispatch.Dispatch(ctx, events...)
	if err != nil {
		// the campaign is stored; the next tick fills the gap
		s.logger.Warn("initial poll generation failed", "campaign_id", c.ID, "error", err)
	}
	return len(created), nil
}

func (s *Service) GetCampaign(ctx context.Context, id string) (models.Campaign, error) {
	return s.repo.GetCampaign(ctx, id)
}

func (s *Service) ListCampaigns(ctx context.Context) ([]models.Campaign, error) {
	return s.repo.ListCampaigns(ctx)
}

// RemoveCampaign deletes a campaign that never had a poll. One with polls is
// deactivated instead, keeping its history; deactivated reports which
// happened.
func (s *Service) RemoveCampaign(ctx context.Context, id string) (deactivated bool, err error) {
	n, err := s.repo.CountPolls(ctx, id)
	if err != nil {
		return false, err
	}
	if n > 0 {
		if err := s.repo.DeactivateCampaign(ctx, id); err != nil {
			return false, err
		}
		s.logger.Info("campaign deactivated", "campaign_id", id, "polls", n)
		return true, nil
	}
	if err := s.repo.DeleteCampaign(ctx, id); err != nil {
		return false, err
	}
	s.logger.Info("campaign deleted", "campaign_id", id)
	return false, nil
}

// CampaignStats reports a campaign's upcoming polls, past sessions and
// attendance as of now.
func (s *Service) CampaignStats(ctx context.Context, id string, now time.Time) (models.CampaignStatsResponse, error) {
	c, err := s.repo.GetCampaign(ctx, id)
	if err != nil {
		return models.CampaignStatsResponse{}, err
	}
	loc, err := c.Location()
	if err != nil {
		loc = time.UTC
	}
	today := models.DayIn(now, loc)

	polls, err := s.repo.ListPolls(ctx, id)
	if err != nil {
		return models.CampaignStatsResponse{}, err
	}

	stats := models.CampaignStatsResponse{
		Campaign:     c,
		ActivePolls:  []models.Poll{},
		PastSessions: []models.Poll{},
	}
	var responses []models.Response
	for _, p := range polls {
		if !p.Closed() {
			stats.ActivePolls = append(stats.ActivePolls, p)
			if stats.NextPoll == nil && !p.Earliest().Before(today) {
				next := p
				stats.NextPoll = &next
			}
			continue
		}
		if p.DecidedDate == nil {
			continue
		}
		stats.PastSessions = append(stats.PastSessions, p)
		rs, err := s.repo.ListResponses(ctx, p.ID)
		if err != nil {
			return models.CampaignStatsResponse{}, err
		}
		responses = append(responses, rs...)
	}

	sort.SliceStable(stats.PastSessions, func(i, j int) bool {
		return stats.PastSessions[i].DecidedDate.After(*stats.PastSessions[j].DecidedDate)
	})
	stats.TotalSessions = len(stats.PastSessions)
	stats.PlayerAttendance = scoring.Attendance(polls, c.Players, responses)
	stats.BestDateInfo = scoring.FavoriteWeekday(polls)
	return stats, nil
}
