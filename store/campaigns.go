// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/goose-ws/PartyPlanner/models"
	"github.com/goose-ws/PartyPlanner/scheduler"
)

const campaignColumns = `id, name, is_active, timezone, recurrence_kind, start_date,
	interval_days, weekday, weekday_ordinal, options_per_poll,
	session_time_start, session_time_end, response_warning_offset_days,
	decision_offset_days, polls_in_advance, webhook, created_at`

func scanCampaign(row interface{ Scan(...any) error }) (models.Campaign, error) {
	var (
		c       models.Campaign
		start   string
		weekday int
	)
	err := row.Scan(
		&c.ID, &c.Name, &c.Active, &c.Timezone, &c.Rule.Kind, &start,
		&c.Rule.IntervalDays, &weekday, &c.Rule.Ordinal, &c.Rule.OptionsPerPoll,
		&c.SessionStart, &c.SessionEnd, &c.ResponseWarningOffsetDays,
		&c.DecisionOffsetDays, &c.DesiredOpenPolls, &c.Webhook, &c.CreatedAt,
	)
	if err != nil {
		return models.Campaign{}, err
	}
	c.Rule.Weekday = time.Weekday(weekday)
	if c.Rule.StartDate, err = models.ParseDate(start); err != nil {
		return models.Campaign{}, fmt.Errorf("campaign %s start date: %w", c.ID, err)
	}
	return c, nil
}

func (s *Store) ListCampaigns(ctx context.Context) ([]models.Campaign, error) {
	return s.listCampaigns(ctx, `SELECT `+campaignColumns+` FROM campaign ORDER BY name, id`)
}

func (s *Store) ListActiveCampaigns(ctx context.Context) ([]models.Campaign, error) {
	return s.listCampaigns(ctx, `SELECT `+campaignColumns+` FROM campaign WHERE is_active = TRUE ORDER BY name, id`)
}

func (s *Store) listCampaigns(ctx context.Context, query string, args ...any) ([]models.Campaign, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query campaigns: %w", err)
	}

	var campaigns []models.Campaign
	for rows.Next() {
		c, err := scanCampaign(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan campaign: %w", err)
		}
		campaigns = append(campaigns, c)
	}
	err = rows.Err()
	rows.Close()
	if err != nil {
		return nil, fmt.Errorf("iterate campaigns: %w", err)
	}

	for i := range campaigns {
		if campaigns[i].Players, err = listPlayers(ctx, s.db, campaigns[i].ID); err != nil {
			return nil, err
		}
	}
	return campaigns, nil
}

func (s *Store) GetCampaign(ctx context.Context, id string) (models.Campaign, error) {
	c, err := scanCampaign(s.db.QueryRowContext(ctx, `SELECT `+campaignColumns+` FROM campaign WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Campaign{}, fmt.Errorf("campaign %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return models.Campaign{}, fmt.Errorf("query campaign: %w", err)
	}
	if c.Players, err = listPlayers(ctx, s.db, id); err != nil {
		return models.Campaign{}, err
	}
	return c, nil
}

func listPlayers(ctx context.Context, q querier, campaignID string) ([]models.Player, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT id, name, mention_id, is_dm
		FROM player
		WHERE campaign_id = $1
		ORDER BY position, name
	`, campaignID)
	if err != nil {
		return nil, fmt.Errorf("query players: %w", err)
	}
	defer rows.Close()

	var players []models.Player
	for rows.Next() {
		var p models.Player
		if err := rows.Scan(&p.ID, &p.Name, &p.MentionID, &p.IsDM); err != nil {
			return nil, fmt.Errorf("scan player: %w", err)
		}
		players = append(players, p)
	}
	return players, rows.Err()
}

// SaveCampaign inserts or updates a campaign and reconciles its roster.
// Players are matched by id first, then by name among the stored players
// nobody claimed by id; matched players keep their id, and with it their
// responses. Players missing from c.Players are removed along with their
// responses. Players without a match are given a new id. Two incoming
// players with the same id or name fail with scheduler.ErrInvalidCampaign.
// c.Players is updated in place with the stored ids.
func (s *Store) SaveCampaign(ctx context.Context, c *models.Campaign) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}

	return s.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO campaign (`+campaignColumns+`)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
			ON CONFLICT (id) DO UPDATE SET
				name = excluded.name,
				is_active = excluded.is_active,
				timezone = excluded.timezone,
				recurrence_kind = excluded.recurrence_kind,
				start_date = excluded.start_date,
				interval_days = excluded.interval_days,
				weekday = excluded.weekday,
				weekday_ordinal = excluded.weekday_ordinal,
				options_per_poll = excluded.options_per_poll,
				session_time_start = excluded.session_time_start,
				session_time_end = excluded.session_time_end,
				response_warning_offset_days = excluded.response_warning_offset_days,
				decision_offset_days = excluded.decision_offset_days,
				polls_in_advance = excluded.polls_in_advance,
				webhook = excluded.webhook
		`,
			c.ID, c.Name, c.Active, c.Timezone, c.Rule.Kind, models.FormatDate(c.Rule.StartDate),
			c.Rule.IntervalDays, int(c.Rule.Weekday), c.Rule.Ordinal, c.Rule.PerPoll(),
			c.SessionStart, c.SessionEnd, c.ResponseWarningOffsetDays,
			c.DecisionOffsetDays, c.DesiredOpenPolls, c.Webhook, c.CreatedAt.UTC(),
		)
		if err != nil {
			return fmt.Errorf("upsert campaign: %w", err)
		}
		return savePlayers(ctx, tx, c.ID, c.Players)
	})
}

// rosterPlaceholder prefixes the temporary names kept players hold while a
// roster is rewritten.
const rosterPlaceholder = "~roster~"

// matchPlayers assigns stored ids to the incoming roster and reports which
// entries update an existing row.
func matchPlayers(existing, players []models.Player) ([]bool, error) {
	known := make(map[string]bool, len(existing))
	byName := make(map[string]string, len(existing))
	for _, p := range existing {
		known[p.ID] = true
		byName[p.Name] = p.ID
	}

	update := make([]bool, len(players))
	claimed := make(map[string]bool, len(players))
	names := make(map[string]bool, len(players))
	for i, p := range players {
		if names[p.Name] {
			return nil, fmt.Errorf("%w: duplicate player %q", scheduler.ErrInvalidCampaign, p.Name)
		}
		names[p.Name] = true
		if !known[p.ID] {
			continue
		}
		if claimed[p.ID] {
			return nil, fmt.Errorf("%w: duplicate player id %s", scheduler.ErrInvalidCampaign, p.ID)
		}
		claimed[p.ID] = true
		update[i] = true
	}

	for i := range players {
		p := &players[i]
		if update[i] {
			continue
		}
		if id := byName[p.Name]; id != "" && !claimed[id] {
			p.ID = id
			update[i] = true
		} else if p.ID == "" {
			p.ID = uuid.NewString()
		}
		if claimed[p.ID] {
			return nil, fmt.Errorf("%w: duplicate player id %s", scheduler.ErrInvalidCampaign, p.ID)
		}
		claimed[p.ID] = true
	}
	return update, nil
}

func savePlayers(ctx context.Context, tx *sql.Tx, campaignID string, players []models.Player) error {
	existing, err := listPlayers(ctx, tx, campaignID)
	if err != nil {
		return err
	}
	update, err := matchPlayers(existing, players)
	if err != nil {
		return err
	}
	keep := make(map[string]bool, len(players))
	for i, p := range players {
		if update[i] {
			keep[p.ID] = true
		}
	}

	// Removals go first so a renamed player may take a departed player's name.
	for _, p := range existing {
		if keep[p.ID] {
			continue
		}
		// responses go with the player via ON DELETE CASCADE
		if _, err := tx.ExecContext(ctx, `DELETE FROM player WHERE id = $1`, p.ID); err != nil {
			return fmt.Errorf("remove player %q: %w", p.Name, err)
		}
	}

	// Kept players move to placeholder names so swaps and renames onto a
	// kept player's old name never collide on UNIQUE(campaign_id, name).
	for i, p := range players {
		if !update[i] {
			continue
		}
		if _, err := tx.ExecContext(ctx, `UPDATE player SET name = $2 WHERE id = $1`, p.ID, rosterPlaceholder+p.ID); err != nil {
			return fmt.Errorf("rename player %q: %w", p.Name, err)
		}
	}

	for i, p := range players {
		if update[i] {
			_, err = tx.ExecContext(ctx, `
				UPDATE player SET name = $2, mention_id = $3, is_dm = $4, position = $5
				WHERE id = $1
			`, p.ID, p.Name, p.MentionID, p.IsDM, i)
		} else {
			_, err = tx.ExecContext(ctx, `
				INSERT INTO player (id, campaign_id, name, mention_id, is_dm, position)
				VALUES ($1, $2, $3, $4, $5, $6)
			`, p.ID, campaignID, p.Name, p.MentionID, p.IsDM, i)
		}
		if err != nil {
			return fmt.Errorf("save player %q: %w", p.Name, err)
		}
	}
	return nil
}

func (s *Store) DeactivateCampaign(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `UPDATE campaign SET is_active = FALSE WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deactivate campaign: %w", err)
	}
	if ok, err := affected(res); err != nil {
		return err
	} else if !ok {
		return fmt.Errorf("campaign %s: %w", id, ErrNotFound)
	}
	return nil
}

func (s *Store) DeleteCampaign(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM campaign WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete campaign: %w", err)
	}
	if ok, err := affected(res); err != nil {
		return err
	} else if !ok {
		return fmt.Errorf("campaign %s: %w", id, ErrNotFound)
	}
	return nil
}
