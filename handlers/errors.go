// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/goose-ws/PartyPlanner/lifecycle"
	"github.com/goose-ws/PartyPlanner/middleware"
	"github.com/goose-ws/PartyPlanner/recurrence"
	"github.com/goose-ws/PartyPlanner/scheduler"
	"github.com/goose-ws/PartyPlanner/store"
)

// statusFor maps a service error to its HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, recurrence.ErrInvalidRule),
		errors.Is(err, scheduler.ErrInvalidCampaign),
		errors.Is(err, scheduler.ErrInvalidPoll),
		errors.Is(err, scheduler.ErrUnknownDate),
		errors.Is(err, scheduler.ErrUnknownPlayer),
		errors.Is(err, lifecycle.ErrInvalidSelection):
		return http.StatusBadRequest
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, lifecycle.ErrAlreadyClosed),
		errors.Is(err, scheduler.ErrPollClosed),
		errors.Is(err, scheduler.ErrDuplicateWindow):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

// serviceError writes err with its mapped status. Unexpected errors are
// logged and replaced by msg.
func serviceError(w http.ResponseWriter, err error, msg string) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		slog.Error(msg, "error", err)
		middleware.ErrorResponse(w, status, msg)
		return
	}
	middleware.ErrorResponse(w, status, err.Error())
}
