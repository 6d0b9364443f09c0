// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package scheduler

import (
	"context"
	"errors"
	"time"

	"github.com/goose-ws/PartyPlanner/models"
)

var (
	ErrUnknownDate     = errors.New("date is not a candidate date of the poll")
	ErrUnknownPlayer   = errors.New("player is not part of the campaign")
	ErrPollClosed      = errors.New("poll is closed")
	ErrInvalidCampaign = errors.New("invalid campaign")
	ErrInvalidPoll     = errors.New("invalid poll")

	// ErrDuplicateWindow is returned by Repository.CreatePoll when the
	// campaign already has a poll starting on the same date.
	ErrDuplicateWindow = errors.New("a poll already exists for this window")
)

// Repository is the persistence the scheduler needs. Every method is atomic
// for the entity it touches. The Mark*, ClosePoll, SaveResponse and
// DeleteResponse methods are conditional writes: they report false, without
// writing, when the poll was not in the state the write requires.
type Repository interface {
	ListCampaigns(ctx context.Context) ([]models.Campaign, error)
	ListActiveCampaigns(ctx context.Context) ([]models.Campaign, error)
	GetCampaign(ctx context.Context, id string) (models.Campaign, error)
	SaveCampaign(ctx context.Context, c *models.Campaign) error
	DeactivateCampaign(ctx context.Context, id string) error
	DeleteCampaign(ctx context.Context, id string) error

	ListPolls(ctx context.Context, campaignID string) ([]models.Poll, error)
	ListOpenPolls(ctx context.Context, campaignID string) ([]models.Poll, error)
	GetPoll(ctx context.Context, id string) (models.Poll, error)
	GetPollBySlug(ctx context.Context, slug string) (models.Poll, error)
	CountPolls(ctx context.Context, campaignID string) (int, error)
	CreatePoll(ctx context.Context, p models.Poll) error
	MarkResponseWarningSent(ctx context.Context, pollID string) (bool, error)
	MarkDecisionReminderSent(ctx context.Context, pollID string) (bool, error)
	ClosePoll(ctx context.Context, pollID string, decided *time.Time, now time.Time) (bool, error)

	ListResponses(ctx context.Context, pollID string) ([]models.Response, error)
	SaveResponse(ctx context.Context, r models.Response) (bool, error)
	DeleteResponse(ctx context.Context, pollID, playerID string, date time.Time) (bool, error)
}
