// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/goose-ws/PartyPlanner/cliparse"
	"github.com/goose-ws/PartyPlanner/middleware"
	"github.com/goose-ws/PartyPlanner/models"
	"github.com/goose-ws/PartyPlanner/scheduler"
	"github.com/goose-ws/PartyPlanner/seed"
)

type CampaignHandler struct {
	svc *scheduler.Service
	cfg cliparse.Config
}

func NewCampaignHandler(svc *scheduler.Service, cfg cliparse.Config) *CampaignHandler {
	return &CampaignHandler{svc: svc, cfg: cfg}
}

// ListCampaigns handles GET /api/campaigns
func (h *CampaignHandler) ListCampaigns(w http.ResponseWriter, r *http.Request) {
	campaigns, err := h.svc.ListCampaigns(r.Context())
	if err != nil {
		serviceError(w, err, "Failed to list campaigns")
		return
	}
	if campaigns == nil {
		campaigns = []models.Campaign{}
	}
	middleware.JSONResponse(w, http.StatusOK, campaigns)
}

// GetCampaign handles GET /api/campaigns/{id}
func (h *CampaignHandler) GetCampaign(w http.ResponseWriter, r *http.Request) {
	c, err := h.svc.GetCampaign(r.Context(), r.PathValue("id"))
	if err != nil {
		serviceError(w, err, "Failed to load campaign")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, c)
}

// CreateCampaign handles POST /api/campaigns
func (h *CampaignHandler) CreateCampaign(w http.ResponseWriter, r *http.Request) {
	var req models.CampaignRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	c, err := campaignFromRequest(req)
	if err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	created, err := h.svc.SaveCampaign(r.Context(), &c, h.svc.Clock())
	if err != nil {
		serviceError(w, err, "Failed to create campaign")
		return
	}

	slog.Info("campaign created", "campaign_id", c.ID, "polls_created", created)
	middleware.JSONResponse(w, http.StatusCreated, models.CreatedResponse{ID: c.ID, Success: true})
}

// UpdateCampaign handles PUT /api/campaigns/{id}
func (h *CampaignHandler) UpdateCampaign(w http.ResponseWriter, r *http.Request) {
	existing, err := h.svc.GetCampaign(r.Context(), r.PathValue("id"))
	if err != nil {
		serviceError(w, err, "Failed to load campaign")
		return
	}

	var req models.CampaignRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	c, err := campaignFromRequest(req)
	if err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}
	c.ID = existing.ID
	c.CreatedAt = existing.CreatedAt

	if _, err := h.svc.SaveCampaign(r.Context(), &c, h.svc.Clock()); err != nil {
		serviceError(w, err, "Failed to update campaign")
		return
	}
	slog.Info("campaign updated", "campaign_id", c.ID)
	middleware.JSONResponse(w, http.StatusOK, models.SuccessResponse{Success: true})
}

// DeleteCampaign handles DELETE /api/campaigns/{id}
// Campaigns with polls are deactivated instead of deleted.
func (h *CampaignHandler) DeleteCampaign(w http.ResponseWriter, r *http.Request) {
	deactivated, err := h.svc.RemoveCampaign(r.Context(), r.PathValue("id"))
	if err != nil {
		serviceError(w, err, "Failed to delete campaign")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, map[string]bool{
		"success":     true,
		"deactivated": deactivated,
	})
}

// GetStats handles GET /api/campaigns/{id}/stats
func (h *CampaignHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.CampaignStats(r.Context(), r.PathValue("id"), h.svc.Clock())
	if err != nil {
		serviceError(w, err, "Failed to load campaign stats")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, stats)
}

// campaignFromRequest converts and defaults a request. Rule and roster
// checks are left to the service.
func campaignFromRequest(req models.CampaignRequest) (models.Campaign, error) {
	rule := models.RecurrenceRule{
		Kind:           req.Recurrence.Kind,
		IntervalDays:   req.Recurrence.IntervalDays,
		Ordinal:        req.Recurrence.Ordinal,
		OptionsPerPoll: req.Recurrence.OptionsPerPoll,
	}
	if req.Recurrence.StartDate != "" {
		d, err := models.ParseDate(req.Recurrence.StartDate)
		if err != nil {
			return models.Campaign{}, errors.New("recurrence.start_date must be YYYY-MM-DD")
		}
		rule.StartDate = d
	}
	if req.Recurrence.Weekday != nil {
		rule.Weekday = time.Weekday(*req.Recurrence.Weekday)
	}

	c := models.Campaign{
		Name:                      req.Name,
		Active:                    req.Active,
		Timezone:                  req.Timezone,
		Rule:                      rule,
		SessionStart:              req.SessionStart,
		SessionEnd:                req.SessionEnd,
		ResponseWarningOffsetDays: intOr(req.ResponseWarningOffsetDays, seed.DefaultResponseWarningOffsetDays),
		DecisionOffsetDays:        intOr(req.DecisionOffsetDays, seed.DefaultDecisionOffsetDays),
		DesiredOpenPolls:          intOr(req.DesiredOpenPolls, seed.DefaultOpenPolls),
		Webhook:                   req.Webhook,
	}
	if c.Timezone == "" {
		c.Timezone = "UTC"
	}
	for _, p := range req.Players {
		c.Players = append(c.Players, models.Player{
			ID:        p.ID,
			Name:      p.Name,
			MentionID: p.MentionID,
			IsDM:      p.IsDM,
		})
	}
	return c, nil
}

func intOr(v *int, def int) int {
	if v == nil {
		return def
	}
	return *v
}
