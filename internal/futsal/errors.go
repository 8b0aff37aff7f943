package futsal

import "errors"

// Rule violations surfaced by the services. Callers match with errors.Is;
// the wrapped message names the violated rule so it can be rendered as-is.
var (
	ErrInvalidTransition     = errors.New("invalid match transition")
	ErrInvalidRoster         = errors.New("invalid roster")
	ErrInsufficientQueue     = errors.New("insufficient queue")
	ErrDuplicateVote         = errors.New("duplicate vote")
	ErrVotingClosed          = errors.New("voting closed")
	ErrUnauthorizedModerator = errors.New("unauthorized moderator")
	ErrNotFound              = errors.New("not found")
	ErrTiebreakerRequired    = errors.New("draw tiebreaker required")
	ErrInvalidGoalEvent      = errors.New("invalid goal event")
	ErrIneligibleCandidate   = errors.New("ineligible mvp candidate")
)
