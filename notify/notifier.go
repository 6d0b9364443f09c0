// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package notify

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

// DefaultTimeout bounds a single delivery when the dispatcher has none set.
const DefaultTimeout = 10 * time.Second

// Notifier delivers one event to an outside channel.
type Notifier interface {
	Send(ctx context.Context, ev Event) error
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(ctx context.Context, ev Event) error

func (f NotifierFunc) Send(ctx context.Context, ev Event) error {
	return f(ctx, ev)
}

// Multi fans an event out to several notifiers and joins their errors.
func Multi(notifiers ...Notifier) Notifier {
	return NotifierFunc(func(ctx context.Context, ev Event) error {
		var errs []error
		for _, n := range notifiers {
			if err := n.Send(ctx, ev); err != nil {
				errs = append(errs, err)
			}
		}
		return errors.Join(errs...)
	})
}

// LogNotifier writes events to a structured log.
type LogNotifier struct {
	Logger *slog.Logger
}

func (n LogNotifier) Send(ctx context.Context, ev Event) error {
	logger := n.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.InfoContext(ctx, "notification",
		"event_id", ev.ID,
		"kind", ev.Kind,
		"campaign_id", ev.CampaignID,
		"poll_id", ev.PollID,
		"title", Title(ev),
	)
	return nil
}

const maxRemembered = 4096

// Dispatcher hands events to a notifier one at a time, in order, each under
// its own timeout. Delivery failures are logged and never returned: the
// caller's persisted state is the record of what happened. An event id that
// was already delivered by this dispatcher is not sent again.
type Dispatcher struct {
	Notifier Notifier
	Timeout  time.Duration
	Logger   *slog.Logger

	mu   sync.Mutex
	sent map[string]bool
}

func NewDispatcher(n Notifier, timeout time.Duration, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{Notifier: n, Timeout: timeout, Logger: logger}
}

// Dispatch sends each event and returns how many were delivered.
func (d *Dispatcher) Dispatch(ctx context.Context, events ...Event) int {
	logger := d.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if d.Notifier == nil {
		return 0
	}
	timeout := d.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	delivered := 0
	for _, ev := range events {
		if d.seen(ev.ID) {
			logger.Info("notification skipped", "event_id", ev.ID, "kind", ev.Kind, "skip", "already_delivered")
			continue
		}

		sendCtx, cancel := context.WithTimeout(ctx, timeout)
		err := d.Notifier.Send(sendCtx, ev)
		cancel()

		if err != nil {
			logger.Error("notification delivery failed",
				"event_id", ev.ID,
				"kind", ev.Kind,
				"campaign_id", ev.CampaignID,
				"poll_id", ev.PollID,
				"error", err,
			)
			continue
		}
		d.remember(ev.ID)
		delivered++
	}
	return delivered
}

func (d *Dispatcher) seen(id string) bool {
	if id == "" {
		return false
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.sent[id]
}

func (d *Dispatcher) remember(id string) {
	if id == "" {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.sent == nil || len(d.sent) >= maxRemembered {
		d.sent = make(map[string]bool)
	}
	d.sent[id] = true
}
