package service

import (
	"fmt"

	"github.com/dgmoraes/sunday-league/internal/futsal"
	"github.com/google/uuid"
)

type Destination string

const (
	DestStays      Destination = "STAYS"
	DestQueueBack  Destination = "QUEUE_BACK"
	DestQueueFront Destination = "QUEUE_FRONT"
)

type PlayerMove struct {
	PlayerID    uuid.UUID
	Destination Destination
}

type RotationInput struct {
	Roster       []futsal.RosterEntry
	Winner       futsal.Result
	OrangeStreak int
	BlackStreak  int

	// FourTeamMode means enough participants for two benches; draws evict
	// both teams instead of deferring to a tiebreaker.
	FourTeamMode bool

	// DrawLoser is the externally supplied odds-or-evens result: the team
	// that leaves the court after a draw. Required when the match is a draw
	// and FourTeamMode is off.
	DrawLoser *futsal.Team
}

type RotationOutcome struct {
	// Moves lists every roster player once. Queue-front players come first,
	// in roster order, then queue-back players; the caller applies the whole
	// list as a single queue update.
	Moves        []PlayerMove
	OrangeStreak int
	BlackStreak  int
}

const streakEvictionThreshold = 3

// Rotate decides the post-match fate of both teams. Deterministic; the only
// nondeterminism in a Sunday (the draft shuffle) never reaches this point.
func Rotate(in RotationInput) (*RotationOutcome, error) {
	winner, decisive := in.Winner.Winner()

	if !decisive {
		if in.FourTeamMode {
			// Both teams leave, two fresh ones come on.
			out := &RotationOutcome{}
			for _, entry := range in.Roster {
				out.Moves = append(out.Moves, PlayerMove{PlayerID: entry.PlayerID, Destination: DestQueueBack})
			}
			return out, nil
		}
		if in.DrawLoser == nil {
			return nil, fmt.Errorf("%w: match drawn, odds-or-evens loser must be supplied", futsal.ErrTiebreakerRequired)
		}
		// The tiebreak loser rotates out exactly like a beaten team, but a
		// tiebreak win never counts toward a streak.
		out := &RotationOutcome{}
		for _, entry := range in.Roster {
			dest := DestStays
			if entry.Team == *in.DrawLoser {
				dest = DestQueueBack
			}
			out.Moves = append(out.Moves, PlayerMove{PlayerID: entry.PlayerID, Destination: dest})
		}
		return out, nil
	}

	winnerStreak := in.OrangeStreak
	if winner == futsal.TeamBlack {
		winnerStreak = in.BlackStreak
	}
	winnerStreak++

	if winnerStreak >= streakEvictionThreshold {
		// Three in a row: everyone off, winners jump the queue.
		out := &RotationOutcome{}
		for _, entry := range in.Roster {
			if entry.Team == winner {
				out.Moves = append(out.Moves, PlayerMove{PlayerID: entry.PlayerID, Destination: DestQueueFront})
			}
		}
		for _, entry := range in.Roster {
			if entry.Team != winner {
				out.Moves = append(out.Moves, PlayerMove{PlayerID: entry.PlayerID, Destination: DestQueueBack})
			}
		}
		return out, nil
	}

	out := &RotationOutcome{}
	if winner == futsal.TeamOrange {
		out.OrangeStreak = winnerStreak
	} else {
		out.BlackStreak = winnerStreak
	}
	for _, entry := range in.Roster {
		dest := DestStays
		if entry.Team != winner {
			dest = DestQueueBack
		}
		out.Moves = append(out.Moves, PlayerMove{PlayerID: entry.PlayerID, Destination: dest})
	}
	return out, nil
}
