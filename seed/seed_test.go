// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package seed

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goose-ws/PartyPlanner/models"
)

const sample = `
campaigns:
  - name: Curse of Strahd
    timezone: America/New_York
    recurrence:
      kind: static
      start_date: 2024-01-11
      weekday: thursday
      ordinal: 2
    session_time_start: "18:00"
    session_time_end: "22:00"
    polls_in_advance: 2
    players:
      - name: Dana
        is_dm: true
      - name: Alex
        mention_id: "1234567890"
  - name: Fortnightly
    active: false
    recurrence:
      kind: dynamic
      start_date: 2024-01-04
      interval_days: 14
      options_per_poll: 3
    decision_offset_days: 0
`

func TestParseCampaigns(t *testing.T) {
	campaigns, err := ParseCampaigns([]byte(sample))
	require.NoError(t, err)
	require.Len(t, campaigns, 2)

	strahd := campaigns[0]
	assert.Equal(t, "Curse of Strahd", strahd.Name)
	assert.True(t, strahd.Active)
	assert.Equal(t, models.RecurrenceStatic, strahd.Rule.Kind)
	assert.Equal(t, time.Thursday, strahd.Rule.Weekday)
	assert.Equal(t, 2, strahd.Rule.Ordinal)
	assert.Equal(t, "2024-01-11", models.FormatDate(strahd.Rule.StartDate))
	assert.Equal(t, 2, strahd.DesiredOpenPolls)
	assert.Equal(t, DefaultResponseWarningOffsetDays, strahd.ResponseWarningOffsetDays)
	require.Len(t, strahd.Players, 2)
	assert.True(t, strahd.Players[0].IsDM)
	assert.Equal(t, "1234567890", strahd.Players[1].MentionID)
	assert.NotEmpty(t, strahd.ID)
	assert.NotEmpty(t, strahd.Players[0].ID)

	other := campaigns[1]
	assert.False(t, other.Active)
	assert.Equal(t, "UTC", other.Timezone)
	assert.Equal(t, 3, other.Rule.PerPoll())
	assert.Equal(t, 0, other.DecisionOffsetDays)
	assert.Equal(t, DefaultOpenPolls, other.DesiredOpenPolls)
}

func TestParseCampaigns_StableIDs(t *testing.T) {
	first, err := ParseCampaigns([]byte(sample))
	require.NoError(t, err)
	second, err := ParseCampaigns([]byte(sample))
	require.NoError(t, err)

	assert.Equal(t, first[0].ID, second[0].ID)
	assert.Equal(t, first[0].Players[1].ID, second[0].Players[1].ID)
	assert.NotEqual(t, first[0].ID, first[1].ID)
}

func TestParseCampaigns_Errors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"not yaml", "campaigns: [::"},
		{"bad date", "campaigns:\n  - name: x\n    recurrence: {kind: dynamic, start_date: 01/04/2024}\n"},
		{"bad weekday", "campaigns:\n  - name: x\n    recurrence: {kind: static, weekday: caturday}\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseCampaigns([]byte(tt.yaml))
			assert.Error(t, err)
		})
	}
}

func TestLoadCampaigns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "campaigns.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0o600))

	campaigns, err := LoadCampaigns(path)
	require.NoError(t, err)
	assert.Len(t, campaigns, 2)

	_, err = LoadCampaigns(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestParseWeekday(t *testing.T) {
	for in, want := range map[string]time.Weekday{"Thursday": time.Thursday, "sun": time.Sunday, " SAT ": time.Saturday} {
		got, err := ParseWeekday(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
}
