// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the PartyPlanner API.

# Route Registration

NewRouter creates a configured http.ServeMux with all endpoints:

	mux := router.NewRouter(svc, cfg)

# Endpoints

Health and login:

	GET  /health
	POST /login - Exchange the admin password for an admin key

Campaigns (admin, requires X-Admin-Key):

	GET    /api/campaigns            - List campaigns
	POST   /api/campaigns            - Create campaign
	GET    /api/campaigns/{id}       - Get campaign
	PUT    /api/campaigns/{id}       - Replace campaign
	DELETE /api/campaigns/{id}       - Delete, or deactivate if it has polls
	GET    /api/campaigns/{id}/stats - Attendance and session history

Polls (admin, requires X-Admin-Key):

	GET  /api/polls                - List polls with response counts
	POST /api/campaigns/{id}/polls - Create a poll with custom dates
	POST /api/polls/{slug}/close   - Close with a selected date
	POST /api/polls/{slug}/cancel  - Close without a date
	POST /api/tick                 - Run the scheduler now

Voting (public, uses share slug):

	GET    /api/polls/{slug}           - Poll, roster, responses and ranking
	POST   /api/polls/{slug}/responses - Set a player's availability for a date
	DELETE /api/polls/{slug}/responses - Clear it
*/
package router
