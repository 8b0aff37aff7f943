package service

import (
	"fmt"
	"math/rand"

	"github.com/dgmoraes/sunday-league/internal/futsal"
)

const (
	teamSize          = 5
	draftGoalkeepers  = 2
	draftOutfielders  = 8
	minGoalkeepersPer = 1
)

// QueuedPlayer pairs a queue entry with its player row.
type QueuedPlayer struct {
	Entry  futsal.QueueEntry `json:"entry"`
	Player futsal.Player     `json:"player"`
}

// DraftProposal is provisional: callers may move players between the three
// lists before committing.
type DraftProposal struct {
	Orange   []QueuedPlayer `json:"orange"`
	Black    []QueuedPlayer `json:"black"`
	Residual []QueuedPlayer `json:"residual"`
}

// DraftTeams builds two provisional teams from the waiting queue: the first
// two queued goalkeepers split one per side, the first eight queued outfield
// players are shuffled with the supplied source and dealt four apiece.
// Everyone else stays queued. The rand source is injected so tests can pin
// the shuffle with a fixed seed.
func DraftTeams(queue []QueuedPlayer, rng *rand.Rand) (*DraftProposal, error) {
	var goalkeepers, outfield []QueuedPlayer
	for _, qp := range queue {
		if qp.Player.IsGoalkeeper {
			goalkeepers = append(goalkeepers, qp)
		} else {
			outfield = append(outfield, qp)
		}
	}

	if len(goalkeepers) < draftGoalkeepers {
		return nil, fmt.Errorf("%w: need %d goalkeepers, have %d", futsal.ErrInsufficientQueue, draftGoalkeepers, len(goalkeepers))
	}
	if len(outfield) < draftOutfielders {
		return nil, fmt.Errorf("%w: need %d outfield players, have %d", futsal.ErrInsufficientQueue, draftOutfielders, len(outfield))
	}

	picked := make([]QueuedPlayer, draftOutfielders)
	copy(picked, outfield[:draftOutfielders])
	rng.Shuffle(len(picked), func(i, j int) {
		picked[i], picked[j] = picked[j], picked[i]
	})

	proposal := &DraftProposal{
		Orange: append([]QueuedPlayer{goalkeepers[0]}, picked[:draftOutfielders/2]...),
		Black:  append([]QueuedPlayer{goalkeepers[1]}, picked[draftOutfielders/2:]...),
	}

	drafted := make(map[string]bool, draftGoalkeepers+draftOutfielders)
	for _, qp := range proposal.Orange {
		drafted[qp.Player.ID.String()] = true
	}
	for _, qp := range proposal.Black {
		drafted[qp.Player.ID.String()] = true
	}
	for _, qp := range queue {
		if !drafted[qp.Player.ID.String()] {
			proposal.Residual = append(proposal.Residual, qp)
		}
	}

	return proposal, nil
}

// RosterAssignment is one committed (player, team) pair.
type RosterAssignment struct {
	PlayerID     string
	Team         futsal.Team
	IsGoalkeeper bool
}

// ValidateRoster enforces the committed-roster shape: exactly five players
// per team, at least one goalkeeper each.
func ValidateRoster(assignment []RosterAssignment) error {
	counts := map[futsal.Team]int{}
	keepers := map[futsal.Team]int{}
	for _, a := range assignment {
		if !a.Team.Valid() {
			return fmt.Errorf("%w: unknown team %q", futsal.ErrInvalidRoster, a.Team)
		}
		counts[a.Team]++
		if a.IsGoalkeeper {
			keepers[a.Team]++
		}
	}

	for _, team := range []futsal.Team{futsal.TeamOrange, futsal.TeamBlack} {
		if counts[team] != teamSize {
			return fmt.Errorf("%w: team %s has %d players, want %d", futsal.ErrInvalidRoster, team, counts[team], teamSize)
		}
		if keepers[team] < minGoalkeepersPer {
			return fmt.Errorf("%w: team %s has no goalkeeper", futsal.ErrInvalidRoster, team)
		}
	}
	return nil
}
