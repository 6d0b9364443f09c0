// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"net/http"

	"github.com/goose-ws/PartyPlanner/cliparse"
	"github.com/goose-ws/PartyPlanner/handlers"
	"github.com/goose-ws/PartyPlanner/middleware"
	"github.com/goose-ws/PartyPlanner/scheduler"
)

func NewRouter(svc *scheduler.Service, cfg cliparse.Config) *http.ServeMux {
	mux := http.NewServeMux()

	// Initialize handlers
	adminHandler := handlers.NewAdminHandler(svc, cfg)
	campaignHandler := handlers.NewCampaignHandler(svc, cfg)
	pollHandler := handlers.NewPollHandler(svc, cfg)
	votingHandler := handlers.NewVotingHandler(svc, cfg)
	resultsHandler := handlers.NewResultsHandler(svc, cfg)

	admin := func(h http.HandlerFunc) http.HandlerFunc {
		return middleware.WithLogging(middleware.RequireAdmin(cfg.AdminKeySalt, h))
	}

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	mux.HandleFunc("POST /login", middleware.WithLogging(adminHandler.Login))

	// Campaign management (admin)
	mux.HandleFunc("GET /api/campaigns", admin(campaignHandler.ListCampaigns))
	mux.HandleFunc("POST /api/campaigns", admin(campaignHandler.CreateCampaign))
	mux.HandleFunc("GET /api/campaigns/{id}", admin(campaignHandler.GetCampaign))
	mux.HandleFunc("PUT /api/campaigns/{id}", admin(campaignHandler.UpdateCampaign))
	mux.HandleFunc("DELETE /api/campaigns/{id}", admin(campaignHandler.DeleteCampaign))
	mux.HandleFunc("GET /api/campaigns/{id}/stats", admin(campaignHandler.GetStats))

	// Poll management (admin)
	mux.HandleFunc("GET /api/polls", admin(pollHandler.ListPolls))
	mux.HandleFunc("POST /api/campaigns/{id}/polls", admin(pollHandler.CreatePoll))
	mux.HandleFunc("POST /api/polls/{slug}/close", admin(pollHandler.ClosePoll))
	mux.HandleFunc("POST /api/polls/{slug}/cancel", admin(pollHandler.CancelPoll))
	mux.HandleFunc("POST /api/tick", admin(adminHandler.Tick))

	// Voting (public, by share slug)
	mux.HandleFunc("GET /api/polls/{slug}", middleware.WithLogging(resultsHandler.GetPoll))
	mux.HandleFunc("POST /api/polls/{slug}/responses", middleware.WithLogging(votingHandler.SubmitVote))
	mux.HandleFunc("DELETE /api/polls/{slug}/responses", middleware.WithLogging(votingHandler.ClearVote))

	// Root endpoint
	mux.HandleFunc("GET /", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("PartyPlanner API v1"))
	})

	return mux
}
