// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"
	"time"

	"github.com/goose-ws/PartyPlanner/auth"
	"github.com/goose-ws/PartyPlanner/cliparse"
	"github.com/goose-ws/PartyPlanner/middleware"
	"github.com/goose-ws/PartyPlanner/models"
	"github.com/goose-ws/PartyPlanner/scheduler"
)

type AdminHandler struct {
	svc *scheduler.Service
	cfg cliparse.Config
}

func NewAdminHandler(svc *scheduler.Service, cfg cliparse.Config) *AdminHandler {
	return &AdminHandler{svc: svc, cfg: cfg}
}

// Login handles POST /login
func (h *AdminHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if err := auth.CheckPassword(req.Password, h.cfg.AdminPassword); err != nil {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Invalid password")
		return
	}

	token, expires := auth.IssueAdminToken(h.cfg.AdminKeySalt, h.cfg.SessionTimeout, time.Now())
	middleware.JSONResponse(w, http.StatusOK, models.LoginResponse{
		AdminKey:  token,
		ExpiresAt: expires,
	})
}

// Tick handles POST /api/tick
// Runs one scheduler pass immediately. An optional "now" in the body
// evaluates the pass as of that instant.
func (h *AdminHandler) Tick(w http.ResponseWriter, r *http.Request) {
	var req models.TickRequest
	if r.ContentLength > 0 {
		if err := middleware.ParseJSONBody(r, &req); err != nil {
			middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
			return
		}
	}

	now := h.svc.Clock()
	if req.Now != nil {
		now = *req.Now
	}

	// per-campaign failures are reported in the body, not as a status
	report, _ := h.svc.Tick(r.Context(), now)
	resp := models.TickResponse{
		PollsCreated:      report.PollsCreated,
		ResponseWarnings:  report.ResponseWarnings,
		DecisionReminders: report.DecisionReminders,
	}
	for _, e := range report.Errors {
		resp.Errors = append(resp.Errors, e.Error())
	}
	middleware.JSONResponse(w, http.StatusOK, resp)
}
