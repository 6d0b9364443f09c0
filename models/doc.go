// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines domain, request, and response types for PartyPlanner.

# Domain Types

  - Campaign: a recurring series of sessions, its players, recurrence rule and deadlines
  - Player: display name, optional chat mention id, DM flag
  - RecurrenceRule: static (Nth weekday of the month) or dynamic (every N days)
  - Poll: candidate dates for one session, status, decided date, reminder flags
  - Response: one player's Vote for one candidate date

# Votes

Votes carry a base weight used by the scoring package:

	yes=3  if_needed=2  maybe=1  no=0

# Dates

Calendar dates are time.Time values at UTC midnight. Use Day to normalize an
instant and DayIn to read "today" in a campaign timezone:

	today := models.DayIn(now, loc)

Dates travel as YYYY-MM-DD strings (DateLayout) over HTTP and in storage.
*/
package models
