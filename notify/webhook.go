// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

const embedColor = 5814783

var ErrRateLimited = errors.New("webhook rate limited")

type embed struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	URL         string `json:"url,omitempty"`
	Color       int    `json:"color"`
}

type webhookPayload struct {
	Content string  `json:"content,omitempty"`
	Embeds  []embed `json:"embeds"`
}

// Payload renders the chat webhook body for an event.
func Payload(ev Event) ([]byte, error) {
	return json.Marshal(webhookPayload{
		Content: Content(ev),
		Embeds: []embed{{
			Title:       Title(ev),
			Description: Description(ev),
			URL:         ev.PollURL,
			Color:       embedColor,
		}},
	})
}

// Webhook posts events as Discord-style embeds to the campaign's webhook.
// Events without a webhook target are dropped silently.
type Webhook struct {
	Client     *http.Client
	Limiter    *rate.Limiter
	MaxRetries int
	Logger     *slog.Logger
}

// NewWebhook returns a notifier that sends at most one message every two
// seconds with bursts of five, retrying rate-limited posts up to three times.
func NewWebhook(client *http.Client, logger *slog.Logger) *Webhook {
	if client == nil {
		client = &http.Client{Timeout: DefaultTimeout}
	}
	return &Webhook{
		Client:     client,
		Limiter:    rate.NewLimiter(rate.Every(2*time.Second), 5),
		MaxRetries: 3,
		Logger:     logger,
	}
}

func (w *Webhook) Send(ctx context.Context, ev Event) error {
	if ev.Webhook == "" {
		return nil
	}

	body, err := Payload(ev)
	if err != nil {
		return fmt.Errorf("encode webhook payload: %w", err)
	}

	attempts := w.MaxRetries
	if attempts < 1 {
		attempts = 1
	}

	for attempt := 1; attempt <= attempts; attempt++ {
		if w.Limiter != nil {
			if err := w.Limiter.Wait(ctx); err != nil {
				return err
			}
		}

		retryAfter, err := w.post(ctx, ev.Webhook, body)
		if err == nil {
			w.logger().Info("webhook delivered", "event_id", ev.ID, "kind", ev.Kind, "attempt", attempt)
			return nil
		}
		if !errors.Is(err, ErrRateLimited) {
			return err
		}

		w.logger().Warn("webhook rate limited", "event_id", ev.ID, "retry_after", retryAfter, "attempt", attempt)
		timer := time.NewTimer(retryAfter)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}

	return fmt.Errorf("%w after %d attempts", ErrRateLimited, attempts)
}

// post sends one request. On HTTP 429 it returns ErrRateLimited and how long
// the server asked us to wait.
func (w *Webhook) post(ctx context.Context, url string, body []byte) (time.Duration, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return 0, fmt.Errorf("build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	client := w.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("post webhook: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK || resp.StatusCode == http.StatusNoContent:
		return 0, nil
	case resp.StatusCode == http.StatusTooManyRequests:
		return retryAfter(resp), ErrRateLimited
	default:
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return 0, fmt.Errorf("webhook returned %d: %s", resp.StatusCode, bytes.TrimSpace(snippet))
	}
}

// retryAfter reads the rate limit body ({"retry_after": seconds}), defaulting
// to one second.
func retryAfter(resp *http.Response) time.Duration {
	var limited struct {
		RetryAfter float64 `json:"retry_after"`
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, 4096)).Decode(&limited); err != nil || limited.RetryAfter <= 0 {
		return time.Second
	}
	return time.Duration(limited.RetryAfter * float64(time.Second))
}

func (w *Webhook) logger() *slog.Logger {
	if w.Logger == nil {
		return slog.Default()
	}
	return w.Logger
}
