package service

import (
	"context"
	"fmt"
	"time"

	"github.com/dgmoraes/sunday-league/internal/futsal"
	"github.com/dgmoraes/sunday-league/internal/store"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type VotingService struct {
	db         *sqlx.DB
	gatherings *store.GatheringStore
	votes      *store.VoteStore
	day        *GatheringService
}

func NewVotingService(db *sqlx.DB, gatherings *store.GatheringStore, votes *store.VoteStore, day *GatheringService) *VotingService {
	return &VotingService{db: db, gatherings: gatherings, votes: votes, day: day}
}

func (s *VotingService) ReleaseVoting(ctx context.Context, gatheringID uuid.UUID) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := s.gatherings.GetGatheringTx(ctx, tx, gatheringID); err != nil {
		return err
	}
	if err := s.gatherings.SetVotingOpen(ctx, tx, gatheringID); err != nil {
		return err
	}
	return tx.Commit()
}

// RecordVote accepts one MVP vote. The voting flag must be open, the voter
// must not have voted in this gathering, and the voted player must be among
// the current candidates. The unique (gathering, voter) index backs the
// duplicate check under concurrent moderators.
func (s *VotingService) RecordVote(ctx context.Context, gatheringID, voterID, votedID uuid.UUID) (*futsal.Vote, error) {
	candidates, err := s.day.ComputeDayResults(ctx, gatheringID)
	if err != nil {
		return nil, err
	}
	eligible := false
	for _, c := range candidates.Candidates {
		if c.PlayerID == votedID {
			eligible = true
			break
		}
	}
	if !eligible {
		return nil, fmt.Errorf("%w: player %s is not an MVP candidate", futsal.ErrIneligibleCandidate, votedID)
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	gathering, err := s.gatherings.GetGatheringTx(ctx, tx, gatheringID)
	if err != nil {
		return nil, err
	}
	if !gathering.VotingOpen {
		return nil, fmt.Errorf("%w: voting has not been released for %s", futsal.ErrVotingClosed, gathering.Date)
	}

	voted, err := s.votes.HasVotedTx(ctx, tx, gatheringID, voterID)
	if err != nil {
		return nil, err
	}
	if voted {
		return nil, fmt.Errorf("%w: voter %s already voted", futsal.ErrDuplicateVote, voterID)
	}

	vote := &futsal.Vote{
		ID:          uuid.New(),
		GatheringID: gatheringID,
		VoterID:     voterID,
		VotedID:     votedID,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.votes.CreateVote(ctx, tx, vote); err != nil {
		return nil, err
	}

	return vote, tx.Commit()
}

// TallyVotes counts votes oldest first and picks the most voted player.
// Ties go to whichever tied player reached that count earliest; zero votes
// elects nobody and is not an error.
func TallyVotes(votes []futsal.Vote) *uuid.UUID {
	counts := make(map[uuid.UUID]int)
	var winner *uuid.UUID
	max := 0
	for _, vote := range votes {
		counts[vote.VotedID]++
		if counts[vote.VotedID] > max {
			max = counts[vote.VotedID]
			id := vote.VotedID
			winner = &id
		}
	}
	return winner
}

// ComputeMVP tallies the gathering's votes and records the elected player
// on the gathering. A voteless gathering gets an explicit no-winner result.
func (s *VotingService) ComputeMVP(ctx context.Context, gatheringID uuid.UUID) (*uuid.UUID, error) {
	votes, err := s.votes.GetVotes(ctx, gatheringID)
	if err != nil {
		return nil, err
	}
	winner := TallyVotes(votes)

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	if _, err := s.gatherings.GetGatheringTx(ctx, tx, gatheringID); err != nil {
		return nil, err
	}
	if err := s.gatherings.SetMVP(ctx, tx, gatheringID, winner); err != nil {
		return nil, err
	}
	return winner, tx.Commit()
}
