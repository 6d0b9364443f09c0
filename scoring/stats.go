// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package scoring

import (
	"math"
	"sort"
	"time"

	"github.com/goose-ws/PartyPlanner/models"
)

// Attendance counts, per player, the decided sessions they said Yes or
// IfNeeded to. Polls without a decided date are not sessions.
func Attendance(polls []models.Poll, players []models.Player, responses []models.Response) []models.PlayerAttendance {
	decided := make(map[string]string)
	for _, p := range polls {
		if p.Closed() && p.DecidedDate != nil {
			decided[p.ID] = models.FormatDate(*p.DecidedDate)
		}
	}
	total := len(decided)

	attended := make(map[string]int)
	for _, r := range responses {
		day, ok := decided[r.PollID]
		if !ok || models.FormatDate(r.Date) != day {
			continue
		}
		if r.Vote == models.VoteYes || r.Vote == models.VoteIfNeeded {
			attended[r.PlayerID]++
		}
	}

	out := make([]models.PlayerAttendance, 0, len(players))
	for _, p := range players {
		rate := 0.0
		if total > 0 {
			rate = math.Round(float64(attended[p.ID])/float64(total)*1000) / 10
		}
		out = append(out, models.PlayerAttendance{
			Name:       p.Name,
			Attended:   attended[p.ID],
			Total:      total,
			Percentage: rate,
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Percentage > out[j].Percentage
	})
	return out
}

// FavoriteWeekday returns the weekday sessions were most often decided on.
// Ties go to the earlier weekday, Monday first.
func FavoriteWeekday(polls []models.Poll) *models.WeekdayInfo {
	counts := make(map[time.Weekday]int)
	total := 0
	for _, p := range polls {
		if p.Closed() && p.DecidedDate != nil {
			counts[p.DecidedDate.Weekday()]++
			total++
		}
	}
	if total == 0 {
		return nil
	}

	order := []time.Weekday{time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday, time.Saturday, time.Sunday}
	best := order[0]
	for _, wd := range order[1:] {
		if counts[wd] > counts[best] {
			best = wd
		}
	}

	return &models.WeekdayInfo{
		Weekday: best.String(),
		Count:   counts[best],
		Total:   total,
	}
}
