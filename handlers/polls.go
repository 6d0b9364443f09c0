// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/goose-ws/PartyPlanner/cliparse"
	"github.com/goose-ws/PartyPlanner/middleware"
	"github.com/goose-ws/PartyPlanner/models"
	"github.com/goose-ws/PartyPlanner/scheduler"
)

type PollHandler struct {
	svc *scheduler.Service
	cfg cliparse.Config
}

func NewPollHandler(svc *scheduler.Service, cfg cliparse.Config) *PollHandler {
	return &PollHandler{svc: svc, cfg: cfg}
}

// ListPolls handles GET /api/polls
func (h *PollHandler) ListPolls(w http.ResponseWriter, r *http.Request) {
	polls, err := h.svc.ListPolls(r.Context())
	if err != nil {
		serviceError(w, err, "Failed to list polls")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, polls)
}

// CreatePoll handles POST /api/campaigns/{id}/polls
// Manual polls take any set of dates, not just the recurrence.
func (h *PollHandler) CreatePoll(w http.ResponseWriter, r *http.Request) {
	campaignID := r.PathValue("id")

	var req models.CreatePollRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if len(req.Dates) == 0 {
		middleware.ErrorResponse(w, http.StatusBadRequest, "dates are required")
		return
	}

	dates := make([]time.Time, 0, len(req.Dates))
	for _, s := range req.Dates {
		d, err := models.ParseDate(s)
		if err != nil {
			middleware.ErrorResponse(w, http.StatusBadRequest, "dates must be YYYY-MM-DD")
			return
		}
		dates = append(dates, d)
	}

	poll, err := h.svc.CreatePoll(r.Context(), campaignID, dates, req.SendNotification)
	if err != nil {
		serviceError(w, err, "Failed to create poll")
		return
	}

	middleware.JSONResponse(w, http.StatusCreated, models.CreatedResponse{
		ID:      poll.ID,
		Slug:    poll.Slug,
		Success: true,
	})
}

// ClosePoll handles POST /api/polls/{slug}/close
func (h *PollHandler) ClosePoll(w http.ResponseWriter, r *http.Request) {
	poll, err := h.svc.PollBySlug(r.Context(), r.PathValue("slug"))
	if err != nil {
		serviceError(w, err, "Failed to load poll")
		return
	}

	var req models.ClosePollRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	selected, err := models.ParseDate(req.SelectedDate)
	if err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "selected_date must be YYYY-MM-DD")
		return
	}

	closed, err := h.svc.ClosePoll(r.Context(), poll.ID, selected)
	if err != nil {
		serviceError(w, err, "Failed to close poll")
		return
	}

	slog.Info("poll closed by admin", "poll_id", closed.ID, "selected_date", req.SelectedDate)
	middleware.JSONResponse(w, http.StatusOK, closed)
}

// CancelPoll handles POST /api/polls/{slug}/cancel
func (h *PollHandler) CancelPoll(w http.ResponseWriter, r *http.Request) {
	poll, err := h.svc.PollBySlug(r.Context(), r.PathValue("slug"))
	if err != nil {
		serviceError(w, err, "Failed to load poll")
		return
	}

	cancelled, err := h.svc.CancelPoll(r.Context(), poll.ID)
	if err != nil {
		serviceError(w, err, "Failed to cancel poll")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, cancelled)
}
