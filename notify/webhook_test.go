// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testWebhook(srv *httptest.Server) *Webhook {
	w := NewWebhook(srv.Client(), nil)
	w.Limiter = nil
	return w
}

func TestWebhook_Delivers(t *testing.T) {
	var got webhookPayload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	ev := Builder{BaseURL: "https://planner.example.com"}.SessionScheduled(testCampaign(), testPoll(), day("2024-02-01"), time.Now())
	ev.Webhook = srv.URL

	require.NoError(t, testWebhook(srv).Send(context.Background(), ev))
	require.Len(t, got.Embeds, 1)
	assert.Equal(t, Title(ev), got.Embeds[0].Title)
	assert.Equal(t, "https://planner.example.com/poll/abc123", got.Embeds[0].URL)
	assert.Equal(t, embedColor, got.Embeds[0].Color)
}

func TestWebhook_RetriesRateLimit(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			w.Write([]byte(`{"retry_after": 0.01}`))
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	ev := Event{Kind: KindNewPoll, Webhook: srv.URL}
	require.NoError(t, testWebhook(srv).Send(context.Background(), ev))
	assert.Equal(t, int32(2), calls.Load())
}

func TestWebhook_GivesUpAfterRetries(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"retry_after": 0.001}`))
	}))
	defer srv.Close()

	err := testWebhook(srv).Send(context.Background(), Event{Kind: KindNewPoll, Webhook: srv.URL})
	assert.ErrorIs(t, err, ErrRateLimited)
	assert.Equal(t, int32(3), calls.Load())
}

func TestWebhook_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "invalid webhook token", http.StatusUnauthorized)
	}))
	defer srv.Close()

	err := testWebhook(srv).Send(context.Background(), Event{Kind: KindNewPoll, Webhook: srv.URL})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}

func TestWebhook_NoTarget(t *testing.T) {
	w := NewWebhook(nil, nil)
	assert.NoError(t, w.Send(context.Background(), Event{Kind: KindNewPoll}))
}
