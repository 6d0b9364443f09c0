// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the PartyPlanner API.

# Handler Types

Each handler is a struct holding the scheduler service and config:

  - AdminHandler: Login and manual ticks
  - CampaignHandler: Campaign CRUD and attendance stats
  - PollHandler: Listing, custom polls, closing and cancelling
  - VotingHandler: Availability votes
  - ResultsHandler: The public poll page with live ranking

Handlers are created via constructor functions:

	pollHandler := handlers.NewPollHandler(svc, cfg)

Handlers only decode requests and encode responses. Every rule lives in the
scheduler package; its sentinel errors are mapped to status codes in one
place (errors.go): validation failures are 400, missing rows 404 and state
conflicts such as voting on a closed poll 409.

# Poll Lifecycle

Polls are generated by the scheduler tick from each campaign's recurrence,
or created by hand. They stay open until an admin closes them:

	POST /api/campaigns/{id}/polls → CreatePoll
	POST /api/polls/{slug}/close   → ClosePoll (announces the session)
	POST /api/polls/{slug}/cancel  → CancelPoll
	POST /api/tick                 → Tick

Admin routes require the X-Admin-Key header issued by POST /login.

# Voting Flow

Players vote per date via the share slug:

	GET    /api/polls/{slug}           → GetPoll
	POST   /api/polls/{slug}/responses → SubmitVote (create or replace)
	DELETE /api/polls/{slug}/responses → ClearVote
*/
package handlers
