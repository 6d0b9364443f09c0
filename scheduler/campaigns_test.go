// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package scheduler_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goose-ws/PartyPlanner/lifecycle"
	"github.com/goose-ws/PartyPlanner/models"
	"github.com/goose-ws/PartyPlanner/notify"
	"github.com/goose-ws/PartyPlanner/recurrence"
	"github.com/goose-ws/PartyPlanner/scheduler"
	"github.com/goose-ws/PartyPlanner/store"
	"github.com/goose-ws/PartyPlanner/testutil"
)

func TestValidateCampaign(t *testing.T) {
	tests := []struct {
		name    string
		edit    func(c *models.Campaign)
		wantErr error
	}{
		{"valid", func(c *models.Campaign) {}, nil},
		{"no name", func(c *models.Campaign) { c.Name = " " }, scheduler.ErrInvalidCampaign},
		{"zero interval", func(c *models.Campaign) { c.Rule.IntervalDays = 0 }, recurrence.ErrInvalidRule},
		{"bad ordinal", func(c *models.Campaign) {
			c.Rule = models.RecurrenceRule{Kind: models.RecurrenceStatic, StartDate: c.Rule.StartDate, Weekday: time.Thursday, Ordinal: 6}
		}, recurrence.ErrInvalidRule},
		{"bad timezone", func(c *models.Campaign) { c.Timezone = "Mars/Olympus" }, scheduler.ErrInvalidCampaign},
		{"negative offset", func(c *models.Campaign) { c.DecisionOffsetDays = -1 }, scheduler.ErrInvalidCampaign},
		{"two DMs", func(c *models.Campaign) { c.Players[1].IsDM = true }, scheduler.ErrInvalidCampaign},
		{"duplicate player", func(c *models.Campaign) { c.Players[2].Name = c.Players[1].Name }, scheduler.ErrInvalidCampaign},
		{"no DM", func(c *models.Campaign) { c.Players[0].IsDM = false }, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := testutil.TestCampaign(t)
			tt.edit(&c)
			err := scheduler.ValidateCampaign(c)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestSaveCampaign(t *testing.T) {
	svc, st, rec := newService(t)
	ctx := context.Background()

	t.Run("invalid rule is not stored", func(t *testing.T) {
		c := testutil.TestCampaign(t)
		c.Rule.IntervalDays = -14
		_, err := svc.SaveCampaign(ctx, &c, noon(t, "2024-01-01"))
		require.ErrorIs(t, err, recurrence.ErrInvalidRule)

		all, err := st.ListCampaigns(ctx)
		require.NoError(t, err)
		assert.Empty(t, all)
	})

	t.Run("fills polls", func(t *testing.T) {
		c := testutil.TestCampaign(t)
		c.DesiredOpenPolls = 2
		created, err := svc.SaveCampaign(ctx, &c, noon(t, "2024-01-01"))
		require.NoError(t, err)
		assert.Equal(t, 2, created)
		assert.NotEmpty(t, c.ID)
		for _, p := range c.Players {
			assert.NotEmpty(t, p.ID)
		}
		assert.Equal(t, []notify.Kind{notify.KindNewPoll, notify.KindNewPoll}, rec.Kinds())

		// saving again changes nothing
		created, err = svc.SaveCampaign(ctx, &c, noon(t, "2024-01-01"))
		require.NoError(t, err)
		assert.Equal(t, 0, created)
	})
}

func TestRemoveCampaign(t *testing.T) {
	svc, st, _ := newService(t)
	ctx := context.Background()

	unused := testutil.TestCampaign(t)
	unused.Name = "One Shot"
	unused = testutil.CreateTestCampaign(t, st, unused)
	used := testutil.CreateTestCampaign(t, st, testutil.TestCampaign(t))
	testutil.CreateTestPoll(t, st, used.ID, 0, "2024-02-01")

	deactivated, err := svc.RemoveCampaign(ctx, unused.ID)
	require.NoError(t, err)
	assert.False(t, deactivated)
	_, err = st.GetCampaign(ctx, unused.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)

	deactivated, err = svc.RemoveCampaign(ctx, used.ID)
	require.NoError(t, err)
	assert.True(t, deactivated)
	got, err := st.GetCampaign(ctx, used.ID)
	require.NoError(t, err)
	assert.False(t, got.Active)

	_, err = svc.RemoveCampaign(ctx, "missing")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestClosePoll(t *testing.T) {
	svc, st, rec := newService(t)
	ctx := context.Background()
	c := testutil.TestCampaign(t)
	c.DesiredOpenPolls = 0
	c = testutil.CreateTestCampaign(t, st, c)
	poll := testutil.CreateTestPoll(t, st, c.ID, 4, "2024-02-01", "2024-02-02")

	_, err := svc.ClosePoll(ctx, poll.ID, testutil.Date(t, "2024-02-03"))
	require.ErrorIs(t, err, lifecycle.ErrInvalidSelection)
	stored, err := st.GetPoll(ctx, poll.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusOpen, stored.Status)
	assert.Empty(t, rec.Events())

	closed, err := svc.ClosePoll(ctx, poll.ID, testutil.Date(t, "2024-02-02"))
	require.NoError(t, err)
	assert.True(t, closed.Closed())

	stored, err = st.GetPoll(ctx, poll.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusClosed, stored.Status)
	require.NotNil(t, stored.DecidedDate)
	assert.Equal(t, "2024-02-02", models.FormatDate(*stored.DecidedDate))

	events := rec.Events()
	require.Len(t, events, 1)
	assert.Equal(t, notify.KindSessionScheduled, events[0].Kind)
	require.NotNil(t, events[0].ChosenDate)
	assert.Equal(t, "2024-02-02", models.FormatDate(*events[0].ChosenDate))

	_, err = svc.ClosePoll(ctx, poll.ID, testutil.Date(t, "2024-02-01"))
	assert.ErrorIs(t, err, lifecycle.ErrAlreadyClosed)
	_, err = svc.CancelPoll(ctx, poll.ID)
	assert.ErrorIs(t, err, lifecycle.ErrAlreadyClosed)
	assert.Len(t, rec.Events(), 1)

	// closed polls are no longer ticked
	_, err = svc.Tick(ctx, noon(t, "2024-01-31"))
	require.NoError(t, err)
	assert.Len(t, rec.Events(), 1)
}

func TestCancelPoll(t *testing.T) {
	svc, st, rec := newService(t)
	ctx := context.Background()
	c := testutil.CreateTestCampaign(t, st, testutil.TestCampaign(t))
	poll := testutil.CreateTestPoll(t, st, c.ID, 0, "2024-02-01")

	cancelled, err := svc.CancelPoll(ctx, poll.ID)
	require.NoError(t, err)
	assert.True(t, cancelled.Closed())
	assert.Nil(t, cancelled.DecidedDate)
	assert.Equal(t, []notify.Kind{notify.KindSessionCancelled}, rec.Kinds())
}

func TestCreatePoll(t *testing.T) {
	svc, st, rec := newService(t)
	ctx := context.Background()
	c := testutil.CreateTestCampaign(t, st, testutil.TestCampaign(t))
	testutil.CreateTestPoll(t, st, c.ID, 6, "2024-01-04")

	p, err := svc.CreatePoll(ctx, c.ID, []time.Time{testutil.Date(t, "2024-03-09"), testutil.Date(t, "2024-03-02")}, true)
	require.NoError(t, err)
	assert.Equal(t, 7, p.SessionNumber)
	assert.True(t, p.IsManual)
	assert.Equal(t, []string{"2024-03-02", "2024-03-09"}, models.FormatDates(p.Dates))
	assert.Equal(t, []notify.Kind{notify.KindNewPoll}, rec.Kinds())

	_, err = svc.CreatePoll(ctx, c.ID, []time.Time{testutil.Date(t, "2024-03-02")}, false)
	assert.ErrorIs(t, err, scheduler.ErrDuplicateWindow)

	_, err = svc.CreatePoll(ctx, c.ID, []time.Time{testutil.Date(t, "2024-04-01"), testutil.Date(t, "2024-04-01")}, false)
	assert.ErrorIs(t, err, scheduler.ErrInvalidPoll)

	_, err = svc.CreatePoll(ctx, c.ID, nil, false)
	assert.ErrorIs(t, err, scheduler.ErrInvalidPoll)
}

func TestPollViewAndSummaries(t *testing.T) {
	svc, st, _ := newService(t)
	ctx := context.Background()
	c := testutil.TestCampaign(t)
	c.DesiredOpenPolls = 0
	c = testutil.CreateTestCampaign(t, st, c)
	poll := testutil.CreateTestPoll(t, st, c.ID, 1, "2024-02-01", "2024-02-02")

	// yes + if needed + DM no: vetoed despite summing to 5
	vote(t, svc, poll, c.Players[1], "2024-02-01", models.VoteYes)
	vote(t, svc, poll, c.Players[2], "2024-02-01", models.VoteIfNeeded)
	vote(t, svc, poll, c.Players[0], "2024-02-01", models.VoteNo)
	vote(t, svc, poll, c.Players[1], "2024-02-02", models.VoteMaybe)

	view, err := svc.PollView(ctx, poll.Slug)
	require.NoError(t, err)
	assert.Equal(t, c.Name, view.Campaign.Name)
	assert.Len(t, view.Responses, 4)
	require.Len(t, view.Scores.Ranked, 2)
	assert.Equal(t, "2024-02-02", models.FormatDate(view.Scores.Ranked[0].Date))
	assert.Equal(t, 1, view.Scores.Ranked[0].Score)
	assert.Equal(t, 0, view.Scores.Ranked[1].Score)
	assert.True(t, view.Scores.Ranked[1].Vetoed)

	summaries, err := svc.ListPolls(ctx)
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.Equal(t, 3, summaries[0].ResponseCount)
	assert.Equal(t, 3, summaries[0].PlayerCount)
	assert.Equal(t, c.Name, summaries[0].CampaignName)
}

func TestCampaignStats(t *testing.T) {
	svc, st, _ := newService(t)
	ctx := context.Background()
	c := testutil.TestCampaign(t)
	c.DesiredOpenPolls = 0
	c = testutil.CreateTestCampaign(t, st, c)

	past := testutil.CreateTestPoll(t, st, c.ID, 0, "2024-01-04", "2024-01-05")
	vote(t, svc, past, c.Players[0], "2024-01-04", models.VoteYes)
	vote(t, svc, past, c.Players[1], "2024-01-04", models.VoteIfNeeded)
	vote(t, svc, past, c.Players[2], "2024-01-04", models.VoteNo)
	_, err := svc.ClosePoll(ctx, past.ID, testutil.Date(t, "2024-01-04"))
	require.NoError(t, err)
	next := testutil.CreateTestPoll(t, st, c.ID, 1, "2024-02-01")

	stats, err := svc.CampaignStats(ctx, c.ID, noon(t, "2024-01-20"))
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TotalSessions)
	require.NotNil(t, stats.NextPoll)
	assert.Equal(t, next.ID, stats.NextPoll.ID)
	assert.Len(t, stats.ActivePolls, 1)
	require.NotNil(t, stats.BestDateInfo)
	assert.Equal(t, "Thursday", stats.BestDateInfo.Weekday)

	rates := map[string]float64{}
	for _, a := range stats.PlayerAttendance {
		rates[a.Name] = a.Percentage
	}
	assert.Equal(t, map[string]float64{"Dana": 100, "Alex": 100, "Sam": 0}, rates)
}

func TestRunner(t *testing.T) {
	svc, _, _ := newService(t)

	_, err := scheduler.NewRunner(svc, "not a schedule", nil)
	assert.Error(t, err)

	r, err := scheduler.NewRunner(svc, "", nil)
	require.NoError(t, err)
	r.Start()
	assert.False(t, r.Next().IsZero())

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	assert.NoError(t, r.Stop(ctx))
}
