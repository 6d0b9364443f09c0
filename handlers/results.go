// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"

	"github.com/goose-ws/PartyPlanner/cliparse"
	"github.com/goose-ws/PartyPlanner/middleware"
	"github.com/goose-ws/PartyPlanner/models"
	"github.com/goose-ws/PartyPlanner/scheduler"
	"github.com/goose-ws/PartyPlanner/scoring"
)

type ResultsHandler struct {
	svc *scheduler.Service
	cfg cliparse.Config
}

func NewResultsHandler(svc *scheduler.Service, cfg cliparse.Config) *ResultsHandler {
	return &ResultsHandler{svc: svc, cfg: cfg}
}

// GetPoll handles GET /api/polls/{slug}
// Returns the poll, roster, every response and the live ranking. Everyone
// in the group sees everyone's availability.
func (h *ResultsHandler) GetPoll(w http.ResponseWriter, r *http.Request) {
	view, err := h.svc.PollView(r.Context(), r.PathValue("slug"))
	if err != nil {
		serviceError(w, err, "Failed to load poll")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, pollViewResponse(view))
}

func pollViewResponse(view scheduler.PollView) models.PollViewResponse {
	resp := models.PollViewResponse{
		Poll:         view.Poll,
		CampaignName: view.Campaign.Name,
		SessionStart: view.Campaign.SessionStart,
		SessionEnd:   view.Campaign.SessionEnd,
		Timezone:     view.Campaign.Timezone,
		Players:      view.Campaign.Players,
		Dates:        models.FormatDates(view.Poll.Dates),
		Responses:    view.Responses,
		DateScores:   dateScores(view.Scores),
		Tied:         view.Scores.Tied(),
	}
	if resp.Players == nil {
		resp.Players = []models.Player{}
	}
	if resp.Responses == nil {
		resp.Responses = []models.Response{}
	}
	return resp
}

func dateScores(result scoring.Result) []models.DateScoreResponse {
	out := make([]models.DateScoreResponse, len(result.Ranked))
	for i, ds := range result.Ranked {
		out[i] = models.DateScoreResponse{
			Date:      models.FormatDate(ds.Date),
			Score:     ds.Score,
			Vetoed:    ds.Vetoed,
			Best:      ds.Best,
			Breakdown: ds.Breakdown,
		}
	}
	return out
}
