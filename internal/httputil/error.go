package httputil

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/dgmoraes/sunday-league/internal/futsal"
)

func InternalServerError(w http.ResponseWriter, msg string, err error) {
	slog.Error(msg, "error", err)
	http.Error(w, "Internal Server Error", http.StatusInternalServerError)
}

func BadRequest(w http.ResponseWriter, msg string, err error) {
	if err != nil {
		slog.Warn("bad request", "message", msg, "error", err)
	} else {
		slog.Warn("bad request", "message", msg)
	}
	http.Error(w, msg, http.StatusBadRequest)
}

func NotFound(w http.ResponseWriter, msg string, err error) {
	if err != nil {
		slog.Warn("not found", "message", msg, "error", err)
	} else {
		slog.Warn("not found", "message", msg)
	}
	http.Error(w, msg, http.StatusNotFound)
}

// DomainError maps a service error to its HTTP status. The error message
// names the violated rule, so it is rendered as-is for rule violations.
func DomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, futsal.ErrNotFound):
		NotFound(w, err.Error(), nil)
	case errors.Is(err, futsal.ErrUnauthorizedModerator):
		slog.Warn("unauthorized", "error", err)
		http.Error(w, err.Error(), http.StatusUnauthorized)
	case errors.Is(err, futsal.ErrDuplicateVote) || errors.Is(err, futsal.ErrVotingClosed):
		slog.Warn("vote rejected", "error", err)
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, futsal.ErrInvalidTransition),
		errors.Is(err, futsal.ErrInvalidRoster),
		errors.Is(err, futsal.ErrInsufficientQueue),
		errors.Is(err, futsal.ErrTiebreakerRequired),
		errors.Is(err, futsal.ErrInvalidGoalEvent),
		errors.Is(err, futsal.ErrIneligibleCandidate):
		BadRequest(w, err.Error(), nil)
	default:
		InternalServerError(w, "unexpected error", err)
	}
}
