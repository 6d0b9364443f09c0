// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// DefaultSchedule ticks every six hours on the hour.
const DefaultSchedule = "0 */6 * * *"

// Runner calls Service.Tick on a cron schedule with the wall-clock time.
type Runner struct {
	cron   *cron.Cron
	svc    *Service
	logger *slog.Logger
}

// NewRunner parses a standard five-field cron spec. A tick that is still
// running when the next one is due makes the next one skip.
func NewRunner(svc *Service, spec string, logger *slog.Logger) (*Runner, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if spec == "" {
		spec = DefaultSchedule
	}

	cl := cronLogger{logger}
	r := &Runner{
		cron: cron.New(
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		svc:    svc,
		logger: logger,
	}
	if _, err := r.cron.AddFunc(spec, r.run); err != nil {
		return nil, fmt.Errorf("invalid tick schedule %q: %w", spec, err)
	}
	return r, nil
}

func (r *Runner) run() {
	if _, err := r.svc.Tick(context.Background(), time.Now()); err != nil {
		r.logger.Warn("scheduled tick finished with errors", "error", err)
	}
}

func (r *Runner) Start() {
	r.cron.Start()
	r.logger.Info("tick runner started", "next", r.Next())
}

// Next is when the next tick fires, zero before Start.
func (r *Runner) Next() time.Time {
	entries := r.cron.Entries()
	if len(entries) == 0 {
		return time.Time{}
	}
	return entries[0].Next
}

// Stop stops scheduling and waits for an in-flight tick to finish, or for
// ctx to end.
func (r *Runner) Stop(ctx context.Context) error {
	done := r.cron.Stop()
	select {
	case <-done.Done():
		r.logger.Info("tick runner stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// cronLogger adapts slog to cron.Logger.
type cronLogger struct {
	l *slog.Logger
}

func (c cronLogger) Info(msg string, keysAndValues ...interface{}) {
	c.l.Debug("cron: "+msg, keysAndValues...)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	c.l.Error("cron: "+msg, append(keysAndValues, "error", err)...)
}
