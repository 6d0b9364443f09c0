// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

import (
	"fmt"
	"strings"
	"time"
)

// Poll status constants
const (
	StatusOpen   = "open"
	StatusClosed = "closed"
)

// Recurrence kinds
const (
	RecurrenceStatic  = "static"
	RecurrenceDynamic = "dynamic"
)

// Vote is one player's availability for one candidate date.
type Vote string

const (
	VoteYes      Vote = "yes"
	VoteIfNeeded Vote = "if_needed"
	VoteMaybe    Vote = "maybe"
	VoteNo       Vote = "no"
)

// Votes lists every vote value in descending preference.
var Votes = []Vote{VoteYes, VoteIfNeeded, VoteMaybe, VoteNo}

// Weight returns the base score a vote contributes to its date.
func (v Vote) Weight() int {
	switch v {
	case VoteYes:
		return 3
	case VoteIfNeeded:
		return 2
	case VoteMaybe:
		return 1
	default:
		return 0
	}
}

// ParseVote accepts the stored form and a few spellings the UI sends.
func ParseVote(s string) (Vote, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "yes":
		return VoteYes, nil
	case "if_needed", "ifneeded", "if-needed":
		return VoteIfNeeded, nil
	case "maybe":
		return VoteMaybe, nil
	case "no":
		return VoteNo, nil
	}
	return "", fmt.Errorf("unknown vote %q", s)
}

// Domain types

type Player struct {
	ID        string `json:"id" yaml:"id,omitempty"`
	Name      string `json:"name" yaml:"name"`
	MentionID string `json:"mention_id,omitempty" yaml:"mention_id,omitempty"`
	IsDM      bool   `json:"is_dm" yaml:"is_dm,omitempty"`
}

type RecurrenceRule struct {
	Kind      string    `json:"kind"`
	StartDate time.Time `json:"start_date"`

	// dynamic
	IntervalDays int `json:"interval_days,omitempty"`

	// static: Ordinal-th Weekday of every month
	Weekday time.Weekday `json:"weekday,omitempty"`
	Ordinal int          `json:"ordinal,omitempty"`

	// Number of candidate dates per poll; zero means one.
	OptionsPerPoll int `json:"options_per_poll,omitempty"`
}

// PerPoll returns the number of dates each poll window carries.
func (r RecurrenceRule) PerPoll() int {
	if r.OptionsPerPoll < 1 {
		return 1
	}
	return r.OptionsPerPoll
}

type Campaign struct {
	ID                        string         `json:"id"`
	Name                      string         `json:"name"`
	Active                    bool           `json:"is_active"`
	Timezone                  string         `json:"timezone"`
	Rule                      RecurrenceRule `json:"recurrence"`
	SessionStart              string         `json:"session_time_start"`
	SessionEnd                string         `json:"session_time_end"`
	ResponseWarningOffsetDays int            `json:"response_warning_offset_days"`
	DecisionOffsetDays        int            `json:"decision_offset_days"`
	DesiredOpenPolls          int            `json:"polls_in_advance"`
	Webhook                   string         `json:"webhook,omitempty"`
	Players                   []Player       `json:"players"`
	CreatedAt                 time.Time      `json:"created_at"`
}

// Location resolves the campaign timezone, defaulting to UTC.
func (c Campaign) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.UTC, nil
	}
	return time.LoadLocation(c.Timezone)
}

// DM returns the player flagged as DM, if any.
func (c Campaign) DM() (Player, bool) {
	for _, p := range c.Players {
		if p.IsDM {
			return p, true
		}
	}
	return Player{}, false
}

// Player looks up a player by id.
func (c Campaign) Player(id string) (Player, bool) {
	for _, p := range c.Players {
		if p.ID == id {
			return p, true
		}
	}
	return Player{}, false
}

type Poll struct {
	ID                   string      `json:"id"`
	Slug                 string      `json:"slug"`
	CampaignID           string      `json:"campaign_id"`
	SessionNumber        int         `json:"session_number"`
	Dates                []time.Time `json:"dates"`
	Status               string      `json:"status"`
	DecidedDate          *time.Time  `json:"selected_date,omitempty"`
	IsManual             bool        `json:"is_manual"`
	CreatedAt            time.Time   `json:"created_at"`
	ResponseWarningSent  bool        `json:"response_warning_sent"`
	DecisionReminderSent bool        `json:"decision_reminder_sent"`
}

// Earliest returns the first candidate date. Dates are kept sorted.
func (p Poll) Earliest() time.Time {
	if len(p.Dates) == 0 {
		return time.Time{}
	}
	return p.Dates[0]
}

// HasDate reports whether d is one of the candidate dates.
func (p Poll) HasDate(d time.Time) bool {
	d = Day(d)
	for _, c := range p.Dates {
		if c.Equal(d) {
			return true
		}
	}
	return false
}

func (p Poll) Closed() bool {
	return p.Status == StatusClosed
}

type Response struct {
	PollID    string    `json:"poll_id"`
	PlayerID  string    `json:"player_id"`
	Date      time.Time `json:"response_date"`
	Vote      Vote      `json:"availability"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Request types

type LoginRequest struct {
	Password string `json:"password"`
}

type PlayerRequest struct {
	ID        string `json:"id,omitempty"`
	Name      string `json:"name"`
	MentionID string `json:"mention_id,omitempty"`
	IsDM      bool   `json:"is_dm"`
}

type RecurrenceRequest struct {
	Kind           string `json:"kind"`
	StartDate      string `json:"start_date"`
	IntervalDays   int    `json:"interval_days"`
	Weekday        *int   `json:"weekday,omitempty"`
	Ordinal        int    `json:"ordinal"`
	OptionsPerPoll int    `json:"options_per_poll"`
}

type CampaignRequest struct {
	Name                      string            `json:"name"`
	Active                    bool              `json:"is_active"`
	Timezone                  string            `json:"timezone"`
	Recurrence                RecurrenceRequest `json:"recurrence"`
	SessionStart              string            `json:"session_time_start"`
	SessionEnd                string            `json:"session_time_end"`
	ResponseWarningOffsetDays *int              `json:"response_warning_offset_days,omitempty"`
	DecisionOffsetDays        *int              `json:"decision_offset_days,omitempty"`
	DesiredOpenPolls          *int              `json:"polls_in_advance,omitempty"`
	Webhook                   string            `json:"webhook"`
	Players                   []PlayerRequest   `json:"players"`
}

type CreatePollRequest struct {
	Dates            []string `json:"dates"`
	SendNotification bool     `json:"send_notification"`
}

type ClosePollRequest struct {
	SelectedDate string `json:"selected_date"`
}

type VoteRequest struct {
	PlayerID     string `json:"player_id"`
	ResponseDate string `json:"response_date"`
	Availability string `json:"availability"`
}

type TickRequest struct {
	Now *time.Time `json:"now,omitempty"`
}

// Response types

type LoginResponse struct {
	AdminKey  string    `json:"admin_key"`
	ExpiresAt time.Time `json:"expires_at"`
}

type CreatedResponse struct {
	ID      string `json:"id"`
	Slug    string `json:"slug,omitempty"`
	Success bool   `json:"success"`
}

type SuccessResponse struct {
	Success bool `json:"success"`
}

type DateScoreResponse struct {
	Date      string       `json:"date"`
	Score     int          `json:"score"`
	Vetoed    bool         `json:"vetoed"`
	Best      bool         `json:"best"`
	Breakdown map[Vote]int `json:"breakdown"`
}

type PollViewResponse struct {
	Poll         Poll                `json:"poll"`
	CampaignName string              `json:"campaign_name"`
	SessionStart string              `json:"session_time_start"`
	SessionEnd   string              `json:"session_time_end"`
	Timezone     string              `json:"timezone"`
	Players      []Player            `json:"players"`
	Dates        []string            `json:"dates"`
	Responses    []Response          `json:"responses"`
	DateScores   []DateScoreResponse `json:"date_scores"`
	Tied         bool                `json:"tied"`
}

type PollSummary struct {
	Poll
	CampaignName  string `json:"campaign_name"`
	PlayerCount   int    `json:"player_count"`
	ResponseCount int    `json:"response_count"`
}

type PlayerAttendance struct {
	Name       string  `json:"name"`
	Attended   int     `json:"attended"`
	Total      int     `json:"total"`
	Percentage float64 `json:"percentage"`
}

type WeekdayInfo struct {
	Weekday string `json:"weekday"`
	Count   int    `json:"count"`
	Total   int    `json:"total"`
}

type CampaignStatsResponse struct {
	Campaign         Campaign           `json:"campaign"`
	NextPoll         *Poll              `json:"next_poll"`
	ActivePolls      []Poll             `json:"active_polls"`
	PastSessions     []Poll             `json:"past_sessions"`
	TotalSessions    int                `json:"total_sessions"`
	PlayerAttendance []PlayerAttendance `json:"player_attendance"`
	BestDateInfo     *WeekdayInfo       `json:"best_date_info"`
}

type TickResponse struct {
	PollsCreated      int      `json:"polls_created"`
	ResponseWarnings  int      `json:"response_warnings"`
	DecisionReminders int      `json:"decision_reminders"`
	Errors            []string `json:"errors,omitempty"`
}

// Error response

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
