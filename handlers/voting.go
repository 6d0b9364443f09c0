// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"
	"time"

	"github.com/goose-ws/PartyPlanner/cliparse"
	"github.com/goose-ws/PartyPlanner/middleware"
	"github.com/goose-ws/PartyPlanner/models"
	"github.com/goose-ws/PartyPlanner/scheduler"
)

type VotingHandler struct {
	svc *scheduler.Service
	cfg cliparse.Config
}

func NewVotingHandler(svc *scheduler.Service, cfg cliparse.Config) *VotingHandler {
	return &VotingHandler{svc: svc, cfg: cfg}
}

// SubmitVote handles POST /api/polls/{slug}/responses
// A new vote for the same player and date replaces the old one.
func (h *VotingHandler) SubmitVote(w http.ResponseWriter, r *http.Request) {
	poll, req, date, ok := h.parse(w, r)
	if !ok {
		return
	}

	vote, err := models.ParseVote(req.Availability)
	if err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "availability must be yes, if_needed, maybe or no")
		return
	}

	if err := h.svc.RecordVote(r.Context(), poll.ID, req.PlayerID, date, vote); err != nil {
		serviceError(w, err, "Failed to save response")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, models.SuccessResponse{Success: true})
}

// ClearVote handles DELETE /api/polls/{slug}/responses
func (h *VotingHandler) ClearVote(w http.ResponseWriter, r *http.Request) {
	poll, req, date, ok := h.parse(w, r)
	if !ok {
		return
	}

	if err := h.svc.ClearVote(r.Context(), poll.ID, req.PlayerID, date); err != nil {
		serviceError(w, err, "Failed to delete response")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, models.SuccessResponse{Success: true})
}

// parse resolves the poll and reads the vote body. It writes the error
// response itself and reports false on failure.
func (h *VotingHandler) parse(w http.ResponseWriter, r *http.Request) (models.Poll, models.VoteRequest, time.Time, bool) {
	var req models.VoteRequest

	poll, err := h.svc.PollBySlug(r.Context(), r.PathValue("slug"))
	if err != nil {
		serviceError(w, err, "Failed to load poll")
		return poll, req, time.Time{}, false
	}

	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return poll, req, time.Time{}, false
	}
	if req.PlayerID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "player_id is required")
		return poll, req, time.Time{}, false
	}

	date, err := models.ParseDate(req.ResponseDate)
	if err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "response_date must be YYYY-MM-DD")
		return poll, req, time.Time{}, false
	}
	return poll, req, date, true
}
