// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db opens the database and creates the schema.

# Connecting

Open picks the driver from DATABASE_TYPE:

	conn, err := db.Open(cfg.DatabaseType, cfg.DatabaseURL)

SQLite (the default) is opened through modernc.org/sqlite with foreign keys
enabled; Postgres through github.com/lib/pq.

# Schema Creation

	if err := db.CreateSchema(conn); err != nil {
		log.Fatal(err)
	}

Safe to call multiple times - uses IF NOT EXISTS for all tables and indexes.
The DDL is the subset shared by SQLite and Postgres: TEXT ids, dates stored
as YYYY-MM-DD text, BOOLEAN flags.

# Tables

  - campaign: Recurrence rule, session times, offsets and webhook
  - player: Campaign roster, at most one DM
  - poll: One session window with lifecycle status and reminder flags
  - poll_date: Candidate dates of a poll
  - response: One vote per player per candidate date

# Relationships

	campaign 1──* player
	campaign 1──* poll
	poll 1──* poll_date
	poll 1──* response
	player 1──* response

All foreign keys use ON DELETE CASCADE.

# Constraints

  - poll (campaign_id, earliest_date) is unique, so a window can only be
    generated once per campaign
  - poll.slug is unique
  - player (campaign_id, name) is unique
*/
package db
