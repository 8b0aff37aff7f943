package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dgmoraes/sunday-league/internal/futsal"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type MatchStore struct {
	db *sqlx.DB
}

func NewMatchStore(db *sqlx.DB) *MatchStore {
	return &MatchStore{db: db}
}

func (s *MatchStore) CreateMatch(ctx context.Context, tx *sqlx.Tx, match *futsal.Match) error {
	_, err := tx.NamedExecContext(ctx, `INSERT INTO matches (id, gathering_id, orange_goals, black_goals, status, created_at)
		VALUES (:id, :gathering_id, :orange_goals, :black_goals, :status, :created_at)`, match)
	return err
}

func (s *MatchStore) GetMatch(ctx context.Context, id uuid.UUID) (*futsal.Match, error) {
	var match futsal.Match
	err := s.db.GetContext(ctx, &match, "SELECT * FROM matches WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: match %s", futsal.ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return &match, nil
}

func (s *MatchStore) GetMatchTx(ctx context.Context, tx *sqlx.Tx, id uuid.UUID) (*futsal.Match, error) {
	var match futsal.Match
	err := tx.GetContext(ctx, &match, "SELECT * FROM matches WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: match %s", futsal.ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return &match, nil
}

// GetCurrentMatch returns the single non-finished match, or nil.
func (s *MatchStore) GetCurrentMatch(ctx context.Context) (*futsal.Match, error) {
	var match futsal.Match
	err := s.db.GetContext(ctx, &match, "SELECT * FROM matches WHERE status != ? LIMIT 1", futsal.MatchFinished)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &match, nil
}

func (s *MatchStore) CountActiveMatchesTx(ctx context.Context, tx *sqlx.Tx) (int, error) {
	var count int
	err := tx.GetContext(ctx, &count, "SELECT COUNT(*) FROM matches WHERE status != ?", futsal.MatchFinished)
	return count, err
}

func (s *MatchStore) UpdateMatch(ctx context.Context, tx *sqlx.Tx, match *futsal.Match) error {
	_, err := tx.NamedExecContext(ctx, `UPDATE matches SET
		orange_goals = :orange_goals,
		black_goals = :black_goals,
		status = :status,
		started_at = :started_at,
		ended_at = :ended_at,
		duration_minutes = :duration_minutes,
		winner = :winner
		WHERE id = :id`, match)
	return err
}

func (s *MatchStore) GetMatchesByGathering(ctx context.Context, gatheringID uuid.UUID) ([]futsal.Match, error) {
	var matches []futsal.Match
	err := s.db.SelectContext(ctx, &matches, "SELECT * FROM matches WHERE gathering_id = ? ORDER BY created_at ASC", gatheringID)
	return matches, err
}

func (s *MatchStore) CreateRosterEntries(ctx context.Context, tx *sqlx.Tx, entries []futsal.RosterEntry) error {
	if len(entries) == 0 {
		return nil
	}
	_, err := tx.NamedExecContext(ctx, `INSERT INTO roster_entries (id, match_id, player_id, team, is_goalkeeper, created_at)
		VALUES (:id, :match_id, :player_id, :team, :is_goalkeeper, :created_at)`, entries)
	return err
}

func (s *MatchStore) GetRoster(ctx context.Context, matchID uuid.UUID) ([]futsal.RosterEntry, error) {
	var entries []futsal.RosterEntry
	err := s.db.SelectContext(ctx, &entries, "SELECT * FROM roster_entries WHERE match_id = ? ORDER BY team, created_at", matchID)
	return entries, err
}

func (s *MatchStore) GetRosterTx(ctx context.Context, tx *sqlx.Tx, matchID uuid.UUID) ([]futsal.RosterEntry, error) {
	var entries []futsal.RosterEntry
	err := tx.SelectContext(ctx, &entries, "SELECT * FROM roster_entries WHERE match_id = ? ORDER BY team, created_at", matchID)
	return entries, err
}

// DeleteRosterEntry is only legal before a match starts; the service checks.
func (s *MatchStore) DeleteRosterEntry(ctx context.Context, tx *sqlx.Tx, id uuid.UUID) error {
	_, err := tx.ExecContext(ctx, "DELETE FROM roster_entries WHERE id = ?", id)
	return err
}

func (s *MatchStore) CreateGoalEvent(ctx context.Context, tx *sqlx.Tx, event *futsal.GoalEvent) error {
	_, err := tx.NamedExecContext(ctx, `INSERT INTO goal_events (id, match_id, team, minute, own_goal, scorer_id, assist_id, created_at)
		VALUES (:id, :match_id, :team, :minute, :own_goal, :scorer_id, :assist_id, :created_at)`, event)
	return err
}

func (s *MatchStore) GetGoalEvents(ctx context.Context, matchID uuid.UUID) ([]futsal.GoalEvent, error) {
	var events []futsal.GoalEvent
	err := s.db.SelectContext(ctx, &events, "SELECT * FROM goal_events WHERE match_id = ? ORDER BY minute ASC, created_at ASC", matchID)
	return events, err
}

// CountGatheringParticipants counts distinct players seen in any of the
// gathering's rosters or still waiting in its queue. Drives four-team mode.
func (s *MatchStore) CountGatheringParticipants(ctx context.Context, tx *sqlx.Tx, gatheringID uuid.UUID) (int, error) {
	var count int
	err := tx.GetContext(ctx, &count, `SELECT COUNT(DISTINCT player_id) FROM (
		SELECT re.player_id FROM roster_entries re
		JOIN matches m ON m.id = re.match_id
		WHERE m.gathering_id = ?
		UNION ALL
		SELECT qe.player_id FROM queue_entries qe WHERE qe.gathering_id = ?
	)`, gatheringID, gatheringID)
	return count, err
}
