// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/goose-ws/PartyPlanner/models"
	"github.com/goose-ws/PartyPlanner/notify"
	"github.com/goose-ws/PartyPlanner/testutil"
)

// TestConcurrentVoteSubmissions verifies that simultaneous votes from
// different players all land and none are lost or duplicated.
func TestConcurrentVoteSubmissions(t *testing.T) {
	cfg := testutil.GetTestConfig()
	svc, st, _ := testutil.SetupTestService(t, cfg)
	votingHandler := NewVotingHandler(svc, cfg)

	c := testutil.CreateTestCampaign(t, st, testutil.TestCampaign(t))
	dates := []string{"2024-01-25", "2024-01-26", "2024-01-27"}
	poll := testutil.CreateTestPoll(t, st, c.ID, 0, dates...)

	var successCount atomic.Int32
	var wg sync.WaitGroup

	for _, player := range c.Players {
		for i, date := range dates {
			wg.Add(1)
			go func(playerID, date string, i int) {
				defer wg.Done()
				req := models.VoteRequest{
					PlayerID:     playerID,
					ResponseDate: date,
					Availability: string(models.Votes[i%len(models.Votes)]),
				}
				w := serve(t, "POST /api/polls/{slug}/responses", votingHandler.SubmitVote, "POST", "/api/polls/"+poll.Slug+"/responses", req)
				if w.Code == http.StatusOK {
					successCount.Add(1)
				}
			}(player.ID, date, i)
		}
	}

	wg.Wait()

	want := len(c.Players) * len(dates)
	if int(successCount.Load()) != want {
		t.Errorf("Expected %d successful submissions, got %d", want, successCount.Load())
	}

	responses, err := st.ListResponses(context.Background(), poll.ID)
	if err != nil {
		t.Fatalf("Failed to list responses: %v", err)
	}
	if len(responses) != want {
		t.Errorf("Expected %d responses, got %d", want, len(responses))
	}
}

// TestConcurrentVoteUpdates verifies that one player changing the same
// vote from many goroutines ends with exactly one stored response.
func TestConcurrentVoteUpdates(t *testing.T) {
	cfg := testutil.GetTestConfig()
	svc, st, _ := testutil.SetupTestService(t, cfg)
	votingHandler := NewVotingHandler(svc, cfg)

	c := testutil.CreateTestCampaign(t, st, testutil.TestCampaign(t))
	poll := testutil.CreateTestPoll(t, st, c.ID, 0, "2024-01-25")
	alex := c.Players[1].ID

	numUpdates := 20
	var wg sync.WaitGroup
	for i := 0; i < numUpdates; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			req := models.VoteRequest{
				PlayerID:     alex,
				ResponseDate: "2024-01-25",
				Availability: string(models.Votes[i%len(models.Votes)]),
			}
			serve(t, "POST /api/polls/{slug}/responses", votingHandler.SubmitVote, "POST", "/api/polls/"+poll.Slug+"/responses", req)
		}(i)
	}
	wg.Wait()

	responses, err := st.ListResponses(context.Background(), poll.ID)
	if err != nil {
		t.Fatalf("Failed to list responses: %v", err)
	}
	if len(responses) != 1 {
		t.Errorf("Expected exactly 1 response after concurrent updates, got %d", len(responses))
	}
}

// TestConcurrentCloseAttempts verifies that only one of many simultaneous
// close requests wins and the session is announced once.
func TestConcurrentCloseAttempts(t *testing.T) {
	cfg := testutil.GetTestConfig()
	svc, st, rec := testutil.SetupTestService(t, cfg)
	pollHandler := NewPollHandler(svc, cfg)

	c := testutil.CreateTestCampaign(t, st, testutil.TestCampaign(t))
	poll := testutil.CreateTestPoll(t, st, c.ID, 0, "2024-01-25", "2024-01-26")

	numAttempts := 5
	var successCount, conflictCount atomic.Int32
	var wg sync.WaitGroup

	for i := 0; i < numAttempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			req := models.ClosePollRequest{SelectedDate: "2024-01-26"}
			w := serve(t, "POST /api/polls/{slug}/close", pollHandler.ClosePoll, "POST", "/api/polls/"+poll.Slug+"/close", req)
			switch w.Code {
			case http.StatusOK:
				successCount.Add(1)
			case http.StatusConflict:
				conflictCount.Add(1)
			}
		}()
	}

	wg.Wait()

	if successCount.Load() != 1 {
		t.Errorf("Expected exactly 1 successful close, got %d", successCount.Load())
	}
	if int(conflictCount.Load()) != numAttempts-1 {
		t.Errorf("Expected %d conflicts, got %d", numAttempts-1, conflictCount.Load())
	}

	scheduled := 0
	for _, k := range rec.Kinds() {
		if k == notify.KindSessionScheduled {
			scheduled++
		}
	}
	if scheduled != 1 {
		t.Errorf("Expected 1 session announcement, got %d", scheduled)
	}
}

// TestConcurrentTicks verifies that overlapping manual ticks create each
// poll once and fire each reminder once.
func TestConcurrentTicks(t *testing.T) {
	cfg := testutil.GetTestConfig()
	svc, st, rec := testutil.SetupTestService(t, cfg)
	adminHandler := NewAdminHandler(svc, cfg)

	camp := testutil.TestCampaign(t)
	camp.DesiredOpenPolls = 3
	c := testutil.CreateTestCampaign(t, st, camp)

	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			testutil.MakeRequest(t, adminHandler.Tick, "POST", "/api/tick", models.TickRequest{Now: &now}, nil)
		}()
	}
	wg.Wait()

	polls, err := st.ListPolls(context.Background(), c.ID)
	if err != nil {
		t.Fatalf("Failed to list polls: %v", err)
	}
	if len(polls) != 3 {
		t.Errorf("Expected 3 polls, got %d", len(polls))
	}

	created := 0
	for _, k := range rec.Kinds() {
		if k == notify.KindNewPoll {
			created++
		}
	}
	if created != 3 {
		t.Errorf("Expected 3 new poll notifications, got %d", created)
	}
}
