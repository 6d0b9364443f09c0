// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/goose-ws/PartyPlanner/models"
	"github.com/goose-ws/PartyPlanner/scheduler"
)

const pollColumns = `id, slug, campaign_id, session_number, status, decided_date,
	is_manual, response_warning_sent, decision_reminder_sent, created_at`

func scanPoll(row interface{ Scan(...any) error }) (models.Poll, error) {
	var (
		p       models.Poll
		decided sql.NullString
	)
	err := row.Scan(
		&p.ID, &p.Slug, &p.CampaignID, &p.SessionNumber, &p.Status, &decided,
		&p.IsManual, &p.ResponseWarningSent, &p.DecisionReminderSent, &p.CreatedAt,
	)
	if err != nil {
		return models.Poll{}, err
	}
	if decided.Valid {
		d, err := models.ParseDate(decided.String)
		if err != nil {
			return models.Poll{}, fmt.Errorf("poll %s decided date: %w", p.ID, err)
		}
		p.DecidedDate = &d
	}
	return p, nil
}

// ListPolls returns every poll of a campaign, or of all campaigns when
// campaignID is empty, ordered by earliest candidate date.
func (s *Store) ListPolls(ctx context.Context, campaignID string) ([]models.Poll, error) {
	if campaignID == "" {
		return s.listPolls(ctx, `TRUE`)
	}
	return s.listPolls(ctx, `campaign_id = $1`, campaignID)
}

func (s *Store) ListOpenPolls(ctx context.Context, campaignID string) ([]models.Poll, error) {
	return s.listPolls(ctx, `campaign_id = $1 AND status = 'open'`, campaignID)
}

func (s *Store) GetPoll(ctx context.Context, id string) (models.Poll, error) {
	return s.getPoll(ctx, `id = $1`, id)
}

func (s *Store) GetPollBySlug(ctx context.Context, slug string) (models.Poll, error) {
	return s.getPoll(ctx, `slug = $1`, slug)
}

func (s *Store) getPoll(ctx context.Context, where string, arg string) (models.Poll, error) {
	polls, err := s.listPolls(ctx, where, arg)
	if err != nil {
		return models.Poll{}, err
	}
	if len(polls) == 0 {
		return models.Poll{}, fmt.Errorf("poll %s: %w", arg, ErrNotFound)
	}
	return polls[0], nil
}

// listPolls loads polls matching where, then their candidate dates in a
// second query over the same filter.
func (s *Store) listPolls(ctx context.Context, where string, args ...any) ([]models.Poll, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+pollColumns+`
		FROM poll
		WHERE `+where+`
		ORDER BY earliest_date, session_number
	`, args...)
	if err != nil {
		return nil, fmt.Errorf("query polls: %w", err)
	}

	var polls []models.Poll
	index := make(map[string]int)
	for rows.Next() {
		p, err := scanPoll(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan poll: %w", err)
		}
		index[p.ID] = len(polls)
		polls = append(polls, p)
	}
	err = rows.Err()
	rows.Close()
	if err != nil {
		return nil, fmt.Errorf("iterate polls: %w", err)
	}
	if len(polls) == 0 {
		return nil, nil
	}

	rows, err = s.db.QueryContext(ctx, `
		SELECT poll_id, candidate_date
		FROM poll_date
		WHERE poll_id IN (SELECT id FROM poll WHERE `+where+`)
		ORDER BY poll_id, candidate_date
	`, args...)
	if err != nil {
		return nil, fmt.Errorf("query poll dates: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var pollID, date string
		if err := rows.Scan(&pollID, &date); err != nil {
			return nil, fmt.Errorf("scan poll date: %w", err)
		}
		i, ok := index[pollID]
		if !ok {
			continue
		}
		d, err := models.ParseDate(date)
		if err != nil {
			return nil, fmt.Errorf("poll %s date: %w", pollID, err)
		}
		polls[i].Dates = append(polls[i].Dates, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate poll dates: %w", err)
	}
	return polls, nil
}

// CreatePoll inserts a poll and its candidate dates. A second poll for the
// same campaign and earliest date is rejected with scheduler.ErrDuplicateWindow, which
// is what keeps concurrent ticks from generating the same window twice.
func (s *Store) CreatePoll(ctx context.Context, p models.Poll) error {
	dates, _ := models.SortDates(p.Dates)
	if len(dates) == 0 {
		return errors.New("poll has no candidate dates")
	}
	if p.Status == "" {
		p.Status = models.StatusOpen
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now()
	}

	return s.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
			INSERT INTO poll (id, slug, campaign_id, session_number, earliest_date, status, is_manual, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			ON CONFLICT (campaign_id, earliest_date) DO NOTHING
		`, p.ID, p.Slug, p.CampaignID, p.SessionNumber, models.FormatDate(dates[0]), p.Status, p.IsManual, p.CreatedAt.UTC())
		if err != nil {
			return fmt.Errorf("insert poll: %w", err)
		}
		if ok, err := affected(res); err != nil {
			return err
		} else if !ok {
			return fmt.Errorf("campaign %s, %s: %w", p.CampaignID, models.FormatDate(dates[0]), scheduler.ErrDuplicateWindow)
		}

		for _, d := range dates {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO poll_date (poll_id, candidate_date) VALUES ($1, $2)
			`, p.ID, models.FormatDate(d)); err != nil {
				return fmt.Errorf("insert poll date: %w", err)
			}
		}
		return nil
	})
}

// MarkResponseWarningSent sets the warning flag if it is still unset on an
// open poll and reports whether this call was the one that set it.
func (s *Store) MarkResponseWarningSent(ctx context.Context, pollID string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE poll SET response_warning_sent = TRUE
		WHERE id = $1 AND status = 'open' AND response_warning_sent = FALSE
	`, pollID)
	if err != nil {
		return false, fmt.Errorf("mark response warning: %w", err)
	}
	return affected(res)
}

// MarkDecisionReminderSent is the decision reminder counterpart of
// MarkResponseWarningSent.
func (s *Store) MarkDecisionReminderSent(ctx context.Context, pollID string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE poll SET decision_reminder_sent = TRUE
		WHERE id = $1 AND status = 'open' AND decision_reminder_sent = FALSE
	`, pollID)
	if err != nil {
		return false, fmt.Errorf("mark decision reminder: %w", err)
	}
	return affected(res)
}

// ClosePoll closes an open poll with the decided date, or with none when the
// session was cancelled. It reports false if the poll was not open.
func (s *Store) ClosePoll(ctx context.Context, pollID string, decided *time.Time, now time.Time) (bool, error) {
	var date any
	if decided != nil {
		date = models.FormatDate(*decided)
	}
	res, err := s.db.ExecContext(ctx, `
		UPDATE poll SET status = 'closed', decided_date = $2, closed_at = $3
		WHERE id = $1 AND status = 'open'
	`, pollID, date, now.UTC())
	if err != nil {
		return false, fmt.Errorf("close poll: %w", err)
	}
	return affected(res)
}

func (s *Store) CountPolls(ctx context.Context, campaignID string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM poll WHERE campaign_id = $1`, campaignID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count polls: %w", err)
	}
	return n, nil
}
