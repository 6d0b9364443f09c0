// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package seed loads campaign definitions from a YAML file so a deployment
// can be configured without the admin API.
//
//	campaigns:
//	  - name: Curse of Strahd
//	    timezone: America/New_York
//	    recurrence:
//	      kind: static
//	      start_date: 2024-01-11
//	      weekday: thursday
//	      ordinal: 2
//	    session_time_start: "18:00"
//	    session_time_end: "22:00"
//	    webhook: https://discord.com/api/webhooks/...
//	    players:
//	      - name: Dana
//	        is_dm: true
//	      - name: Alex
//	        mention_id: "1234567890"
//
// Campaigns and players without an id get one derived from their names, so
// loading the same file twice updates rather than duplicates.
package seed

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/goose-ws/PartyPlanner/models"
)

// Defaults for fields a file leaves out, matching the admin API.
const (
	DefaultResponseWarningOffsetDays = 14
	DefaultDecisionOffsetDays        = 7
	DefaultOpenPolls                 = 3
)

var namespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/goose-ws/PartyPlanner/campaigns"))

type file struct {
	Campaigns []campaign `yaml:"campaigns"`
}

type campaign struct {
	ID                        string          `yaml:"id"`
	Name                      string          `yaml:"name"`
	Active                    *bool           `yaml:"active"`
	Timezone                  string          `yaml:"timezone"`
	Recurrence                rule            `yaml:"recurrence"`
	SessionStart              string          `yaml:"session_time_start"`
	SessionEnd                string          `yaml:"session_time_end"`
	ResponseWarningOffsetDays *int            `yaml:"response_warning_offset_days"`
	DecisionOffsetDays        *int            `yaml:"decision_offset_days"`
	PollsInAdvance            *int            `yaml:"polls_in_advance"`
	Webhook                   string          `yaml:"webhook"`
	Players                   []models.Player `yaml:"players"`
}

type rule struct {
	Kind           string `yaml:"kind"`
	StartDate      string `yaml:"start_date"`
	IntervalDays   int    `yaml:"interval_days"`
	Weekday        string `yaml:"weekday"`
	Ordinal        int    `yaml:"ordinal"`
	OptionsPerPoll int    `yaml:"options_per_poll"`
}

// LoadCampaigns reads and converts a campaigns file. Rules are only parsed
// here; validation happens when the campaigns are saved.
func LoadCampaigns(path string) ([]models.Campaign, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read campaigns file: %w", err)
	}
	return ParseCampaigns(data)
}

func ParseCampaigns(data []byte) ([]models.Campaign, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse campaigns file: %w", err)
	}

	out := make([]models.Campaign, 0, len(f.Campaigns))
	for i, c := range f.Campaigns {
		mc, err := c.model()
		if err != nil {
			return nil, fmt.Errorf("campaign %d (%s): %w", i+1, c.Name, err)
		}
		out = append(out, mc)
	}
	return out, nil
}

func (c campaign) model() (models.Campaign, error) {
	r, err := c.Recurrence.model()
	if err != nil {
		return models.Campaign{}, err
	}

	mc := models.Campaign{
		ID:                        c.ID,
		Name:                      strings.TrimSpace(c.Name),
		Active:                    c.Active == nil || *c.Active,
		Timezone:                  c.Timezone,
		Rule:                      r,
		SessionStart:              c.SessionStart,
		SessionEnd:                c.SessionEnd,
		ResponseWarningOffsetDays: intOr(c.ResponseWarningOffsetDays, DefaultResponseWarningOffsetDays),
		DecisionOffsetDays:        intOr(c.DecisionOffsetDays, DefaultDecisionOffsetDays),
		DesiredOpenPolls:          intOr(c.PollsInAdvance, DefaultOpenPolls),
		Webhook:                   c.Webhook,
		Players:                   c.Players,
	}
	if mc.Timezone == "" {
		mc.Timezone = "UTC"
	}
	if mc.ID == "" {
		mc.ID = uuid.NewSHA1(namespace, []byte(mc.Name)).String()
	}
	for i := range mc.Players {
		p := &mc.Players[i]
		p.Name = strings.TrimSpace(p.Name)
		if p.ID == "" {
			p.ID = uuid.NewSHA1(namespace, []byte(mc.ID+"/"+p.Name)).String()
		}
	}
	return mc, nil
}

func (r rule) model() (models.RecurrenceRule, error) {
	out := models.RecurrenceRule{
		Kind:           strings.ToLower(r.Kind),
		IntervalDays:   r.IntervalDays,
		Ordinal:        r.Ordinal,
		OptionsPerPoll: r.OptionsPerPoll,
	}
	if r.StartDate != "" {
		d, err := models.ParseDate(r.StartDate)
		if err != nil {
			return out, fmt.Errorf("start_date: %w", err)
		}
		out.StartDate = d
	}
	if r.Weekday != "" {
		wd, err := ParseWeekday(r.Weekday)
		if err != nil {
			return out, err
		}
		out.Weekday = wd
	}
	return out, nil
}

// ParseWeekday accepts full or three-letter English weekday names.
func ParseWeekday(s string) (time.Weekday, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for d := time.Sunday; d <= time.Saturday; d++ {
		name := strings.ToLower(d.String())
		if s == name || s == name[:3] {
			return d, nil
		}
	}
	return 0, fmt.Errorf("unknown weekday %q", s)
}

func intOr(v *int, def int) int {
	if v == nil {
		return def
	}
	return *v
}
