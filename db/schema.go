// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"database/sql"
	"fmt"
	"strings"
)

// CreateSchema creates all tables needed for the application.
// Safe to call multiple times - uses IF NOT EXISTS.
func CreateSchema(db *sql.DB) error {
	// One statement per Exec: lib/pq accepts a batch, but not every driver does.
	for _, stmt := range strings.Split(schema, ";") {
		if strings.TrimSpace(stmt) == "" {
			continue
		}
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
	}

	return nil
}

const schema = `
-- Campaigns
CREATE TABLE IF NOT EXISTS campaign (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    is_active BOOLEAN NOT NULL DEFAULT TRUE,
    timezone TEXT NOT NULL DEFAULT 'UTC',
    recurrence_kind TEXT NOT NULL CHECK (recurrence_kind IN ('static', 'dynamic')),
    start_date TEXT NOT NULL,
    interval_days INTEGER NOT NULL DEFAULT 0,
    weekday INTEGER NOT NULL DEFAULT 0,
    weekday_ordinal INTEGER NOT NULL DEFAULT 0,
    options_per_poll INTEGER NOT NULL DEFAULT 1,
    session_time_start TEXT NOT NULL DEFAULT '',
    session_time_end TEXT NOT NULL DEFAULT '',
    response_warning_offset_days INTEGER NOT NULL DEFAULT 14,
    decision_offset_days INTEGER NOT NULL DEFAULT 7,
    polls_in_advance INTEGER NOT NULL DEFAULT 3,
    webhook TEXT NOT NULL DEFAULT '',
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_campaign_active ON campaign(is_active);

-- Players
CREATE TABLE IF NOT EXISTS player (
    id TEXT PRIMARY KEY,
    campaign_id TEXT NOT NULL REFERENCES campaign(id) ON DELETE CASCADE,
    name TEXT NOT NULL,
    mention_id TEXT NOT NULL DEFAULT '',
    is_dm BOOLEAN NOT NULL DEFAULT FALSE,
    position INTEGER NOT NULL DEFAULT 0,
    UNIQUE (campaign_id, name)
);

CREATE INDEX IF NOT EXISTS idx_player_campaign_id ON player(campaign_id);

-- Polls, one per session window
CREATE TABLE IF NOT EXISTS poll (
    id TEXT PRIMARY KEY,
    slug TEXT NOT NULL UNIQUE,
    campaign_id TEXT NOT NULL REFERENCES campaign(id) ON DELETE CASCADE,
    session_number INTEGER NOT NULL,
    earliest_date TEXT NOT NULL,
    status TEXT NOT NULL DEFAULT 'open' CHECK (status IN ('open', 'closed')),
    decided_date TEXT,
    is_manual BOOLEAN NOT NULL DEFAULT FALSE,
    response_warning_sent BOOLEAN NOT NULL DEFAULT FALSE,
    decision_reminder_sent BOOLEAN NOT NULL DEFAULT FALSE,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    closed_at TIMESTAMP,
    UNIQUE (campaign_id, earliest_date)
);

CREATE INDEX IF NOT EXISTS idx_poll_campaign_status ON poll(campaign_id, status);

-- Candidate dates
CREATE TABLE IF NOT EXISTS poll_date (
    poll_id TEXT NOT NULL REFERENCES poll(id) ON DELETE CASCADE,
    candidate_date TEXT NOT NULL,
    PRIMARY KEY (poll_id, candidate_date)
);

-- Responses, one per player per candidate date
CREATE TABLE IF NOT EXISTS response (
    poll_id TEXT NOT NULL REFERENCES poll(id) ON DELETE CASCADE,
    player_id TEXT NOT NULL REFERENCES player(id) ON DELETE CASCADE,
    response_date TEXT NOT NULL,
    availability TEXT NOT NULL CHECK (availability IN ('yes', 'if_needed', 'maybe', 'no')),
    updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    PRIMARY KEY (poll_id, player_id, response_date)
);

CREATE INDEX IF NOT EXISTS idx_response_player_id ON response(player_id)
`
