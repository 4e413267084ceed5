package api

import (
	"context"
	"database/sql"
	"errors"
	"net/http"

	"livepoll/internal/domain/poll"
	"livepoll/internal/domain/vote"
	"livepoll/internal/platform/apperr"
)

func errorResponse(w http.ResponseWriter, err error) {
	appErr := mapError(err)
	writeJSON(w, appErr.StatusCode(), map[string]string{
		"error":   appErr.Code,
		"message": appErr.Message,
	})
}

func mapError(err error) *apperr.AppError {
	if err == nil {
		return apperr.Internal("internal_error", "internal server error", nil)
	}

	var appErr *apperr.AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	switch {
	case errors.Is(err, sql.ErrNoRows):
		return apperr.NotFound("not_found", "resource not found", err)
	case errors.Is(err, poll.ErrNotFound), errors.Is(err, vote.ErrPollNotFound):
		return apperr.NotFound("poll_not_found", "poll not found", err)
	case errors.Is(err, vote.ErrOptionNotFound):
		return apperr.NotFound("option_not_found", "option not found", err)
	case errors.Is(err, vote.ErrPollNotActive):
		return apperr.BadRequest("poll_not_active", "poll is not active", err)
	case errors.Is(err, vote.ErrConflict):
		return apperr.Conflict("vote_conflict", "concurrent vote detected, retry", err)
	case errors.Is(err, context.DeadlineExceeded):
		return apperr.Timeout("timeout", "request timed out", err)
	case errors.Is(err, sql.ErrConnDone), errors.Is(err, sql.ErrTxDone):
		return apperr.Unavailable("unavailable", "storage unavailable", err)
	default:
		return apperr.Internal("internal_error", http.StatusText(http.StatusInternalServerError), err)
	}
}
