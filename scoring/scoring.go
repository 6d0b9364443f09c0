// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package scoring

import (
	"sort"
	"time"

	"github.com/goose-ws/PartyPlanner/models"
)

// DateScore is the aggregate for a single candidate date
type DateScore struct {
	Date      time.Time
	Score     int
	Breakdown map[models.Vote]int
	Responses int
	Vetoed    bool
	Best      bool
}

// Result is a ranked list of date scores. Ranked is ordered by descending
// score, then ascending date.
type Result struct {
	Ranked []DateScore
	Best   []time.Time
}

// Tied reports whether two or more dates share the maximum score.
func (r Result) Tied() bool {
	return len(r.Best) > 1
}

// HasResponses reports whether any date received at least one vote.
func (r Result) HasResponses() bool {
	for _, ds := range r.Ranked {
		if ds.Responses > 0 {
			return true
		}
	}
	return false
}

// Score ranks a poll's candidate dates from the recorded responses.
//
// Each vote adds its base weight to its date. A No from the DM forces that
// date to zero after summing. Every candidate date is listed, including dates
// nobody voted on, and every date sharing the top score is flagged Best.
// Responses for dates outside the candidate set are ignored.
func Score(dates []time.Time, players []models.Player, responses []models.Response) Result {
	dmID := ""
	for _, p := range players {
		if p.IsDM {
			dmID = p.ID
			break
		}
	}

	byDate := make(map[string]*DateScore, len(dates))
	stats := make([]*DateScore, 0, len(dates))
	for _, d := range dates {
		d = models.Day(d)
		key := models.FormatDate(d)
		if _, dup := byDate[key]; dup {
			continue
		}
		ds := &DateScore{Date: d, Breakdown: emptyBreakdown()}
		byDate[key] = ds
		stats = append(stats, ds)
	}

	for _, r := range responses {
		ds, ok := byDate[models.FormatDate(r.Date)]
		if !ok {
			continue
		}
		ds.Score += r.Vote.Weight()
		ds.Breakdown[r.Vote]++
		ds.Responses++
		if dmID != "" && r.PlayerID == dmID && r.Vote == models.VoteNo {
			ds.Vetoed = true
		}
	}

	for _, ds := range stats {
		if ds.Vetoed {
			ds.Score = 0
		}
	}

	sort.SliceStable(stats, func(i, j int) bool {
		a, b := stats[i], stats[j]

		// 1. Higher score wins
		if a.Score != b.Score {
			return a.Score > b.Score
		}

		// 2. Dates with votes before dates nobody answered
		if (a.Responses > 0) != (b.Responses > 0) {
			return a.Responses > 0
		}

		// 3. Calendar order
		return a.Date.Before(b.Date)
	})

	result := Result{Ranked: make([]DateScore, len(stats))}
	for i, ds := range stats {
		if ds.Score == stats[0].Score {
			ds.Best = true
			result.Best = append(result.Best, ds.Date)
		}
		result.Ranked[i] = *ds
	}

	return result
}

func emptyBreakdown() map[models.Vote]int {
	b := make(map[models.Vote]int, len(models.Votes))
	for _, v := range models.Votes {
		b[v] = 0
	}
	return b
}
