// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"github.com/goose-ws/PartyPlanner/auth"
	"github.com/goose-ws/PartyPlanner/cliparse"
	"github.com/goose-ws/PartyPlanner/db"
	"github.com/goose-ws/PartyPlanner/models"
	"github.com/goose-ws/PartyPlanner/notify"
	"github.com/goose-ws/PartyPlanner/scheduler"
	"github.com/goose-ws/PartyPlanner/store"
)

// SetupTestDB creates a fresh SQLite database with the full schema in the
// test's temp dir. It is closed when the test ends.
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	conn, err := db.Open(db.TypeSQLite, filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	if err := db.CreateSchema(conn); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}
	return conn
}

// SetupTestStore is SetupTestDB wrapped in a store.
func SetupTestStore(t *testing.T) *store.Store {
	t.Helper()
	return store.New(SetupTestDB(t))
}

// GetTestConfig returns a standard test configuration
func GetTestConfig() cliparse.Config {
	return cliparse.Config{
		Port:           5000,
		DatabaseType:   db.TypeSQLite,
		DatabaseURL:    "test.db",
		AdminPassword:  "test-password",
		AdminKeySalt:   "test-admin-salt",
		SessionTimeout: time.Hour,
		AppURL:         "http://planner.test",
		TickSchedule:   "0 */6 * * *",
		NotifyTimeout:  time.Second,
	}
}

// AdminKey issues a valid admin token for cfg.
func AdminKey(cfg cliparse.Config) string {
	token, _ := auth.IssueAdminToken(cfg.AdminKeySalt, time.Hour, time.Now())
	return token
}

// Date parses YYYY-MM-DD and fails the test on error.
func Date(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := models.ParseDate(s)
	if err != nil {
		t.Fatalf("bad date %q: %v", s, err)
	}
	return d
}

// TestCampaign is a fortnightly campaign starting 2024-01-04 with a DM and
// two players, warning 7 days and deciding 3 days ahead.
func TestCampaign(t *testing.T) models.Campaign {
	t.Helper()
	return models.Campaign{
		Name:     "Curse of Strahd",
		Active:   true,
		Timezone: "America/New_York",
		Rule: models.RecurrenceRule{
			Kind:         models.RecurrenceDynamic,
			StartDate:    Date(t, "2024-01-04"),
			IntervalDays: 14,
		},
		SessionStart:              "18:00",
		SessionEnd:                "22:00",
		ResponseWarningOffsetDays: 7,
		DecisionOffsetDays:        3,
		DesiredOpenPolls:          1,
		Players: []models.Player{
			{Name: "Dana", MentionID: "100", IsDM: true},
			{Name: "Alex", MentionID: "200"},
			{Name: "Sam"},
		},
	}
}

// ServiceNow is the fixed clock of services built by SetupTestService.
var ServiceNow = time.Date(2024, 1, 20, 12, 0, 0, 0, time.UTC)

// SetupTestService builds a scheduler over a fresh store, recording every
// notification it sends. Its clock is fixed at ServiceNow.
func SetupTestService(t *testing.T, cfg cliparse.Config) (*scheduler.Service, *store.Store, *RecordingNotifier) {
	t.Helper()
	st := SetupTestStore(t)
	rec := &RecordingNotifier{}
	svc := scheduler.New(st, notify.NewDispatcher(rec, time.Second, nil), scheduler.Options{
		SlugSalt: cfg.AdminKeySalt,
		BaseURL:  cfg.AppURL,
	})
	svc.Clock = func() time.Time { return ServiceNow }
	return svc, st, rec
}

// CreateTestCampaign stores c directly, bypassing poll generation.
func CreateTestCampaign(t *testing.T, s *store.Store, c models.Campaign) models.Campaign {
	t.Helper()
	if err := s.SaveCampaign(context.Background(), &c); err != nil {
		t.Fatalf("Failed to create campaign: %v", err)
	}
	return c
}

// CreateTestPoll stores an open poll with the given dates.
func CreateTestPoll(t *testing.T, s *store.Store, campaignID string, session int, dates ...string) models.Poll {
	t.Helper()
	p := models.Poll{
		ID:            campaignID + "-poll-" + dates[0],
		CampaignID:    campaignID,
		SessionNumber: session,
		Status:        models.StatusOpen,
		CreatedAt:     time.Now(),
	}
	p.Slug = auth.GenerateShareSlug(p.ID, "test-admin-salt")
	for _, d := range dates {
		p.Dates = append(p.Dates, Date(t, d))
	}
	if err := s.CreatePoll(context.Background(), p); err != nil {
		t.Fatalf("Failed to create poll: %v", err)
	}
	return p
}

// RecordingNotifier keeps every event it is sent.
type RecordingNotifier struct {
	mu     sync.Mutex
	events []notify.Event
	Err    error
}

func (n *RecordingNotifier) Send(_ context.Context, ev notify.Event) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, ev)
	return n.Err
}

// Events returns a copy of the events received so far.
func (n *RecordingNotifier) Events() []notify.Event {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]notify.Event(nil), n.events...)
}

// Kinds lists the kinds of the received events, in order.
func (n *RecordingNotifier) Kinds() []notify.Kind {
	var kinds []notify.Kind
	for _, ev := range n.Events() {
		kinds = append(kinds, ev.Kind)
	}
	return kinds
}

// MakeRequest is a helper to make HTTP requests in tests
func MakeRequest(t *testing.T, handler http.HandlerFunc, method, path string, body interface{}, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	var reqBody []byte
	if body != nil {
		var err error
		reqBody, err = json.Marshal(body)
		if err != nil {
			t.Fatalf("Failed to marshal request body: %v", err)
		}
	}

	req := httptest.NewRequest(method, path, bytes.NewReader(reqBody))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	rr := httptest.NewRecorder()
	handler(rr, req)
	return rr
}

// ServeRequest sends a request through a full handler, e.g. a router, so
// path values are populated.
func ServeRequest(t *testing.T, h http.Handler, method, path string, body interface{}, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	return MakeRequest(t, h.ServeHTTP, method, path, body, headers)
}

// DecodeJSON decodes a recorder body into v.
func DecodeJSON(t *testing.T, rr *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(rr.Body.Bytes(), v); err != nil {
		t.Fatalf("Failed to decode response %q: %v", rr.Body.String(), err)
	}
}
