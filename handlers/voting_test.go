// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goose-ws/PartyPlanner/models"
	"github.com/goose-ws/PartyPlanner/testutil"
)

func TestSubmitVote(t *testing.T) {
	cfg := testutil.GetTestConfig()
	svc, st, _ := testutil.SetupTestService(t, cfg)
	h := NewVotingHandler(svc, cfg)
	c := testutil.CreateTestCampaign(t, st, testutil.TestCampaign(t))
	p := testutil.CreateTestPoll(t, st, c.ID, 0, "2024-01-25", "2024-01-26")
	path := "/api/polls/" + p.Slug + "/responses"
	alex := c.Players[1]

	submit := func(req models.VoteRequest) int {
		return serve(t, "POST /api/polls/{slug}/responses", h.SubmitVote, "POST", path, req).Code
	}

	require.Equal(t, http.StatusOK, submit(models.VoteRequest{PlayerID: alex.ID, ResponseDate: "2024-01-25", Availability: "yes"}))
	// a second vote for the same date replaces the first
	require.Equal(t, http.StatusOK, submit(models.VoteRequest{PlayerID: alex.ID, ResponseDate: "2024-01-25", Availability: "if-needed"}))

	responses, err := st.ListResponses(context.Background(), p.ID)
	require.NoError(t, err)
	require.Len(t, responses, 1)
	assert.Equal(t, models.VoteIfNeeded, responses[0].Vote)
	assert.True(t, testutil.ServiceNow.Equal(responses[0].UpdatedAt))
}

func TestSubmitVote_Rejected(t *testing.T) {
	cfg := testutil.GetTestConfig()
	svc, st, _ := testutil.SetupTestService(t, cfg)
	h := NewVotingHandler(svc, cfg)
	c := testutil.CreateTestCampaign(t, st, testutil.TestCampaign(t))
	p := testutil.CreateTestPoll(t, st, c.ID, 0, "2024-01-25")
	closed := testutil.CreateTestPoll(t, st, c.ID, 1, "2024-02-08")
	_, err := svc.CancelPoll(context.Background(), closed.ID)
	require.NoError(t, err)
	sam := c.Players[2].ID

	tests := []struct {
		name string
		slug string
		req  models.VoteRequest
		want int
	}{
		{"unknown slug", "missing", models.VoteRequest{PlayerID: sam, ResponseDate: "2024-01-25", Availability: "yes"}, http.StatusNotFound},
		{"missing player", p.Slug, models.VoteRequest{ResponseDate: "2024-01-25", Availability: "yes"}, http.StatusBadRequest},
		{"unknown player", p.Slug, models.VoteRequest{PlayerID: "stranger", ResponseDate: "2024-01-25", Availability: "yes"}, http.StatusBadRequest},
		{"bad date", p.Slug, models.VoteRequest{PlayerID: sam, ResponseDate: "Thursday", Availability: "yes"}, http.StatusBadRequest},
		{"date not in poll", p.Slug, models.VoteRequest{PlayerID: sam, ResponseDate: "2024-01-26", Availability: "yes"}, http.StatusBadRequest},
		{"bad availability", p.Slug, models.VoteRequest{PlayerID: sam, ResponseDate: "2024-01-25", Availability: "sure"}, http.StatusBadRequest},
		{"closed poll", closed.Slug, models.VoteRequest{PlayerID: sam, ResponseDate: "2024-02-08", Availability: "yes"}, http.StatusConflict},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serve(t, "POST /api/polls/{slug}/responses", h.SubmitVote, "POST", "/api/polls/"+tt.slug+"/responses", tt.req)
			assert.Equal(t, tt.want, w.Code, w.Body.String())
		})
	}

	responses, err := st.ListResponses(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Empty(t, responses)
}

func TestClearVote(t *testing.T) {
	cfg := testutil.GetTestConfig()
	svc, st, _ := testutil.SetupTestService(t, cfg)
	h := NewVotingHandler(svc, cfg)
	c := testutil.CreateTestCampaign(t, st, testutil.TestCampaign(t))
	p := testutil.CreateTestPoll(t, st, c.ID, 0, "2024-01-25")
	dana := c.Players[0].ID

	require.NoError(t, svc.RecordVote(context.Background(), p.ID, dana, testutil.Date(t, "2024-01-25"), models.VoteNo))

	req := models.VoteRequest{PlayerID: dana, ResponseDate: "2024-01-25"}
	w := serve(t, "DELETE /api/polls/{slug}/responses", h.ClearVote, "DELETE", "/api/polls/"+p.Slug+"/responses", req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	responses, err := st.ListResponses(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Empty(t, responses)
}
