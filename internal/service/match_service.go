package service

import (
	"context"
	"fmt"
	"time"

	"github.com/dgmoraes/sunday-league/internal/futsal"
	"github.com/dgmoraes/sunday-league/internal/store"
	"github.com/dgmoraes/sunday-league/internal/utils"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// fourTeamThreshold is the participant count at which the gathering is
// assumed to field two waiting benches, changing how draws rotate.
const fourTeamThreshold = 20

type MatchService struct {
	db         *sqlx.DB
	matches    *store.MatchStore
	gatherings *store.GatheringStore
	queue      *store.QueueStore
	players    *store.PlayerStore
}

func NewMatchService(db *sqlx.DB, matches *store.MatchStore, gatherings *store.GatheringStore, queue *store.QueueStore, players *store.PlayerStore) *MatchService {
	return &MatchService{db: db, matches: matches, gatherings: gatherings, queue: queue, players: players}
}

// CreateMatch schedules a new match. At most one match may be current
// (anything not FINISHED) system-wide; the partial unique index on matches
// backs this check against concurrent moderators.
func (s *MatchService) CreateMatch(ctx context.Context, gatheringID uuid.UUID) (*futsal.Match, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	if _, err := s.gatherings.GetGatheringTx(ctx, tx, gatheringID); err != nil {
		return nil, err
	}

	active, err := s.matches.CountActiveMatchesTx(ctx, tx)
	if err != nil {
		return nil, err
	}
	if active > 0 {
		return nil, fmt.Errorf("%w: another match is already current", futsal.ErrInvalidTransition)
	}

	match := &futsal.Match{
		ID:          uuid.New(),
		GatheringID: gatheringID,
		Status:      futsal.MatchScheduled,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.matches.CreateMatch(ctx, tx, match); err != nil {
		return nil, err
	}

	return match, tx.Commit()
}

func (s *MatchService) StartMatch(ctx context.Context, matchID uuid.UUID) (*futsal.Match, error) {
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
		return nil, fmt.Errorf("%w: cannot start a %s match", futsal.ErrInvalidTransition, match.Status)
	}

	match.Status = futsal.MatchInProgress
	match.StartedAt = utils.Ptr(time.Now().UTC())
	if err := s.matches.UpdateMatch(ctx, tx, match); err != nil {
		return nil, err
	}

	return match, tx.Commit()
}

type GoalInput struct {
	MatchID  uuid.UUID
	Team     futsal.Team
	ScorerID *uuid.UUID
	AssistID *uuid.UUID
	OwnGoal  bool
	Minute   int
}

// RecordGoal appends a goal event and bumps the benefiting team's counter.
// An own goal named against Team credits Team's opponent; the stored event
// carries the beneficiary so event sums always match the counters.
func (s *MatchService) RecordGoal(ctx context.Context, in GoalInput) (*futsal.Match, error) {
	if !in.Team.Valid() {
		return nil, fmt.Errorf("%w: unknown team %q", futsal.ErrInvalidGoalEvent, in.Team)
	}
	if in.OwnGoal {
		if in.ScorerID != nil || in.AssistID != nil {
			return nil, fmt.Errorf("%w: own goals carry no scorer or assist", futsal.ErrInvalidGoalEvent)
		}
	} else if in.ScorerID == nil {
		return nil, fmt.Errorf("%w: scorer is required", futsal.ErrInvalidGoalEvent)
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	match, err := s.matches.GetMatchTx(ctx, tx, in.MatchID)
	if err != nil {
		return nil, err
	}
	if match.Status != futsal.MatchInProgress {
		return nil, fmt.Errorf("%w: goals can only be recorded while a match is in progress", futsal.ErrInvalidTransition)
	}

	beneficiary := in.Team
	if in.OwnGoal {
		beneficiary = in.Team.Opponent()
	}

	event := &futsal.GoalEvent{
		ID:        uuid.New(),
		MatchID:   match.ID,
		Team:      beneficiary,
		Minute:    in.Minute,
		OwnGoal:   in.OwnGoal,
		ScorerID:  in.ScorerID,
		AssistID:  in.AssistID,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.matches.CreateGoalEvent(ctx, tx, event); err != nil {
		return nil, err
	}

	if beneficiary == futsal.TeamOrange {
		match.OrangeGoals++
	} else {
		match.BlackGoals++
	}
	if err := s.matches.UpdateMatch(ctx, tx, match); err != nil {
		return nil, err
	}

	return match, tx.Commit()
}

// FinishMatch closes the match and runs the rotation policy in the same
// transaction: the match row, the gathering's streak counters, the rebuilt
// queue and the players' lifetime counters land together or not at all.
// drawLoser is the externally supplied odds-or-evens result, required only
// when the match is drawn outside four-team mode.
func (s *MatchService) FinishMatch(ctx context.Context, matchID uuid.UUID, elapsedSeconds int, drawLoser *futsal.Team) (*futsal.Match, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	match, err := s.matches.GetMatchTx(ctx, tx, matchID)
	if err != nil {
		return nil, err
	}
	if match.Status != futsal.MatchInProgress {
		return nil, fmt.Errorf("%w: cannot finish a %s match", futsal.ErrInvalidTransition, match.Status)
	}

	gathering, err := s.gatherings.GetGatheringTx(ctx, tx, match.GatheringID)
	if err != nil {
		return nil, err
	}

	roster, err := s.matches.GetRosterTx(ctx, tx, match.ID)
	if err != nil {
		return nil, err
	}

	participants, err := s.matches.CountGatheringParticipants(ctx, tx, gathering.ID)
	if err != nil {
		return nil, err
	}

	result := match.Result()
	outcome, err := Rotate(RotationInput{
		Roster:       roster,
		Winner:       result,
		OrangeStreak: gathering.OrangeStreak,
		BlackStreak:  gathering.BlackStreak,
		FourTeamMode: participants >= fourTeamThreshold,
		DrawLoser:    drawLoser,
	})
	if err != nil {
		return nil, err
	}

	match.Status = futsal.MatchFinished
	match.EndedAt = utils.Ptr(time.Now().UTC())
	match.DurationMinutes = utils.Ptr(elapsedSeconds / 60)
	match.Winner = &result
	if err := s.matches.UpdateMatch(ctx, tx, match); err != nil {
		return nil, err
	}

	if err := s.gatherings.UpdateStreaks(ctx, tx, gathering.ID, outcome.OrangeStreak, outcome.BlackStreak); err != nil {
		return nil, err
	}

	if err := s.applyRotation(ctx, tx, gathering.ID, outcome); err != nil {
		return nil, err
	}

	winner, decisive := result.Winner()
	for _, entry := range roster {
		win := decisive && entry.Team == winner
		if err := s.players.ApplyMatchRollup(ctx, tx, entry.PlayerID, win, !decisive, utils.OrZero(match.DurationMinutes)); err != nil {
			return nil, err
		}
	}

	return match, tx.Commit()
}

// applyRotation rebuilds the waiting queue as a single ordered write:
// queue-front players first, then whoever was already waiting, then the
// queue-back players.
func (s *MatchService) applyRotation(ctx context.Context, tx *sqlx.Tx, gatheringID uuid.UUID, outcome *RotationOutcome) error {
	existing, err := s.queue.GetQueueTx(ctx, tx, gatheringID)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	entry := func(playerID uuid.UUID) futsal.QueueEntry {
		return futsal.QueueEntry{
			ID:          uuid.New(),
			GatheringID: gatheringID,
			PlayerID:    playerID,
			CreatedAt:   now,
		}
	}

	var rebuilt []futsal.QueueEntry
	for _, move := range outcome.Moves {
		if move.Destination == DestQueueFront {
			rebuilt = append(rebuilt, entry(move.PlayerID))
		}
	}
	rebuilt = append(rebuilt, existing...)
	for _, move := range outcome.Moves {
		if move.Destination == DestQueueBack {
			rebuilt = append(rebuilt, entry(move.PlayerID))
		}
	}

	return s.queue.ReplaceQueue(ctx, tx, gatheringID, rebuilt)
}

// GetCurrentMatch surfaces the one non-finished match, if any.
func (s *MatchService) GetCurrentMatch(ctx context.Context) (*futsal.Match, error) {
	return s.matches.GetCurrentMatch(ctx)
}
