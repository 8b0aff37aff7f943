package store

import (
	"context"

	"github.com/dgmoraes/sunday-league/internal/futsal"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type VoteStore struct {
	db *sqlx.DB
}

func NewVoteStore(db *sqlx.DB) *VoteStore {
	return &VoteStore{db: db}
}

func (s *VoteStore) CreateVote(ctx context.Context, tx *sqlx.Tx, vote *futsal.Vote) error {
	_, err := tx.NamedExecContext(ctx, `INSERT INTO votes (id, gathering_id, voter_id, voted_id, created_at)
		VALUES (:id, :gathering_id, :voter_id, :voted_id, :created_at)`, vote)
	return err
}

// GetVotes returns a gathering's votes oldest first. The tally depends on
// this order to break ties by earliest vote cast.
func (s *VoteStore) GetVotes(ctx context.Context, gatheringID uuid.UUID) ([]futsal.Vote, error) {
	var votes []futsal.Vote
	err := s.db.SelectContext(ctx, &votes, "SELECT * FROM votes WHERE gathering_id = ? ORDER BY created_at ASC, id ASC", gatheringID)
	return votes, err
}

func (s *VoteStore) HasVotedTx(ctx context.Context, tx *sqlx.Tx, gatheringID, voterID uuid.UUID) (bool, error) {
	var count int
	err := tx.GetContext(ctx, &count, "SELECT COUNT(*) FROM votes WHERE gathering_id = ? AND voter_id = ?", gatheringID, voterID)
	return count > 0, err
}
