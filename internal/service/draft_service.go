package service

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/dgmoraes/sunday-league/internal/futsal"
	"github.com/dgmoraes/sunday-league/internal/store"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type DraftService struct {
	db      *sqlx.DB
	matches *store.MatchStore
	queue   *store.QueueStore
	players *store.PlayerStore
}

func NewDraftService(db *sqlx.DB, matches *store.MatchStore, queue *store.QueueStore, players *store.PlayerStore) *DraftService {
	return &DraftService{db: db, matches: matches, queue: queue, players: players}
}

// DraftTeams proposes two teams from the gathering's waiting queue. Nothing
// is written: the proposal may be reshuffled by hand before CommitRoster.
func (s *DraftService) DraftTeams(ctx context.Context, gatheringID uuid.UUID, rng *rand.Rand) (*DraftProposal, error) {
	entries, err := s.queue.GetQueue(ctx, gatheringID)
	if err != nil {
		return nil, err
	}

	queued := make([]QueuedPlayer, 0, len(entries))
	for _, entry := range entries {
		player, err := s.players.GetPlayer(ctx, entry.PlayerID)
		if err != nil {
			return nil, err
		}
		queued = append(queued, QueuedPlayer{Entry: entry, Player: *player})
	}

	return DraftTeams(queued, rng)
}

// CommitRoster validates and writes the final assignment atomically: roster
// entries are inserted and the committed players leave the queue in one
// transaction, so a failed validation leaves no partial roster behind.
func (s *DraftService) CommitRoster(ctx context.Context, matchID uuid.UUID, assignment []RosterAssignment) ([]futsal.RosterEntry, error) {
	if err := ValidateRoster(assignment); err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	match, err := s.matches.GetMatchTx(ctx, tx, matchID)
	if err != nil {
		return nil, err
	}
	if match.Status != futsal.MatchScheduled {
		return nil, fmt.Errorf("%w: roster can only be committed before the match starts", futsal.ErrInvalidTransition)
	}

	now := time.Now().UTC()
	entries := make([]futsal.RosterEntry, 0, len(assignment))
	playerIDs := make([]uuid.UUID, 0, len(assignment))
	for _, a := range assignment {
		playerID, err := uuid.Parse(a.PlayerID)
		if err != nil {
			return nil, fmt.Errorf("%w: bad player id %q", futsal.ErrInvalidRoster, a.PlayerID)
		}
		entries = append(entries, futsal.RosterEntry{
			ID:           uuid.New(),
			MatchID:      matchID,
			PlayerID:     playerID,
			Team:         a.Team,
			IsGoalkeeper: a.IsGoalkeeper,
			CreatedAt:    now,
		})
		playerIDs = append(playerIDs, playerID)
	}

	if err := s.matches.CreateRosterEntries(ctx, tx, entries); err != nil {
		return nil, err
	}
	if err := s.queue.RemovePlayers(ctx, tx, match.GatheringID, playerIDs); err != nil {
		return nil, err
	}

	return entries, tx.Commit()
}

func (s *DraftService) GetRoster(ctx context.Context, matchID uuid.UUID) ([]futsal.RosterEntry, error) {
	return s.matches.GetRoster(ctx, matchID)
}
