// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the PartyPlanner API server.

PartyPlanner schedules recurring tabletop sessions. Each campaign has a
recurrence (every N days, or the Nth weekday of each month) and a roster.
A periodic tick keeps a few availability polls open ahead of time, warns
about players who have not answered, and reminds the group when a date has
to be decided. Players mark each candidate date yes, if needed, maybe or no;
the DM can veto a date by answering no.

# Starting the Server

The server reads a .env file, environment variables or CLI flags:

	DATABASE_URL=planner.db ADMIN_PASSWORD=... ADMIN_KEY_SALT=... go run .

Or with flags:

	go run . -p 5000 -t postgres -d "postgres://..."

# Configuration

Required settings:

  - DATABASE_URL (-d): SQLite file or PostgreSQL connection string
  - ADMIN_PASSWORD (--admin-password): Shared admin password
  - ADMIN_KEY_SALT (--admin-salt): Secret for admin tokens and share slugs

Optional settings:

  - PORT (-p): Server port (default: 5000)
  - DATABASE_TYPE (-t): sqlite or postgres (default: sqlite)
  - APP_URL (--app-url): Base URL for links in notifications
  - SESSION_TIMEOUT (--session-timeout): Admin login lifetime, e.g. 180d
  - TICK_SCHEDULE (--tick-schedule): Cron spec for the tick (default: every 6h)
  - NOTIFY_TIMEOUT (--notify-timeout): Per-notification deadline
  - CAMPAIGNS_FILE (--campaigns): YAML file of campaigns to create at startup

# Architecture

  - scheduler: Tick, votes, closing, campaigns; the cron runner
  - recurrence: Candidate date generation
  - scoring: Date ranking with DM veto, attendance stats
  - lifecycle: Reminder deadlines and close validation
  - notify: Events, message text, webhook and log notifiers
  - store: SQL repository; db: connections and schema
  - handlers, router, middleware: HTTP surface
  - auth: Admin login, tokens, share slugs
  - cliparse, seed: Configuration and YAML campaigns

See package documentation for each component.
*/
package main
