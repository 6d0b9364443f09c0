// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/goose-ws/PartyPlanner/models"
)

// lockOpenPoll touches the poll row inside tx so a concurrent close waits for
// the transaction. It reports false if the poll is missing or closed.
func lockOpenPoll(ctx context.Context, tx *sql.Tx, pollID string) (bool, error) {
	res, err := tx.ExecContext(ctx, `UPDATE poll SET status = status WHERE id = $1 AND status = 'open'`, pollID)
	if err != nil {
		return false, fmt.Errorf("lock poll: %w", err)
	}
	return affected(res)
}

// SaveResponse records or replaces one player's vote for one date. It
// reports false, writing nothing, when the poll is not open.
func (s *Store) SaveResponse(ctx context.Context, r models.Response) (bool, error) {
	if r.UpdatedAt.IsZero() {
		r.UpdatedAt = time.Now()
	}

	var saved bool
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		open, err := lockOpenPoll(ctx, tx, r.PollID)
		if err != nil || !open {
			return err
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO response (poll_id, player_id, response_date, availability, updated_at)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (poll_id, player_id, response_date) DO UPDATE SET
				availability = excluded.availability,
				updated_at = excluded.updated_at
		`, r.PollID, r.PlayerID, models.FormatDate(r.Date), string(r.Vote), r.UpdatedAt.UTC())
		if err != nil {
			return fmt.Errorf("upsert response: %w", err)
		}
		saved = true
		return nil
	})
	return saved, err
}

// DeleteResponse clears one player's vote for one date on an open poll.
// It reports false when the poll is not open.
func (s *Store) DeleteResponse(ctx context.Context, pollID, playerID string, date time.Time) (bool, error) {
	var open bool
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		var err error
		if open, err = lockOpenPoll(ctx, tx, pollID); err != nil || !open {
			return err
		}
		_, err = tx.ExecContext(ctx, `
			DELETE FROM response WHERE poll_id = $1 AND player_id = $2 AND response_date = $3
		`, pollID, playerID, models.FormatDate(date))
		if err != nil {
			return fmt.Errorf("delete response: %w", err)
		}
		return nil
	})
	return open, err
}

func (s *Store) ListResponses(ctx context.Context, pollID string) ([]models.Response, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT poll_id, player_id, response_date, availability, updated_at
		FROM response
		WHERE poll_id = $1
		ORDER BY player_id, response_date
	`, pollID)
	if err != nil {
		return nil, fmt.Errorf("query responses: %w", err)
	}
	defer rows.Close()

	var responses []models.Response
	for rows.Next() {
		var (
			r    models.Response
			date string
			vote string
		)
		if err := rows.Scan(&r.PollID, &r.PlayerID, &date, &vote, &r.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan response: %w", err)
		}
		if r.Date, err = models.ParseDate(date); err != nil {
			return nil, fmt.Errorf("response date: %w", err)
		}
		r.Vote = models.Vote(vote)
		responses = append(responses, r)
	}
	return responses, rows.Err()
}
