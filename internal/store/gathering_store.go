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

type GatheringStore struct {
	db *sqlx.DB
}

func NewGatheringStore(db *sqlx.DB) *GatheringStore {
	return &GatheringStore{db: db}
}

func (s *GatheringStore) CreateGathering(ctx context.Context, gathering *futsal.Gathering) error {
	_, err := s.db.NamedExecContext(ctx, `INSERT INTO gatherings (id, gathering_date, moderation_token, orange_streak, black_streak, voting_open, created_at)
		VALUES (:id, :gathering_date, :moderation_token, :orange_streak, :black_streak, :voting_open, :created_at)`, gathering)
	return err
}

func (s *GatheringStore) GetGathering(ctx context.Context, id uuid.UUID) (*futsal.Gathering, error) {
	var gathering futsal.Gathering
	err := s.db.GetContext(ctx, &gathering, "SELECT * FROM gatherings WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: gathering %s", futsal.ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return &gathering, nil
}

func (s *GatheringStore) GetGatheringTx(ctx context.Context, tx *sqlx.Tx, id uuid.UUID) (*futsal.Gathering, error) {
	var gathering futsal.Gathering
	err := tx.GetContext(ctx, &gathering, "SELECT * FROM gatherings WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: gathering %s", futsal.ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return &gathering, nil
}

func (s *GatheringStore) GetGatheringByDate(ctx context.Context, date string) (*futsal.Gathering, error) {
	var gathering futsal.Gathering
	err := s.db.GetContext(ctx, &gathering, "SELECT * FROM gatherings WHERE gathering_date = ?", date)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &gathering, nil
}

func (s *GatheringStore) ListGatherings(ctx context.Context) ([]futsal.Gathering, error) {
	var gatherings []futsal.Gathering
	err := s.db.SelectContext(ctx, &gatherings, "SELECT * FROM gatherings ORDER BY gathering_date DESC")
	return gatherings, err
}

func (s *GatheringStore) UpdateStreaks(ctx context.Context, tx *sqlx.Tx, id uuid.UUID, orange, black int) error {
	_, err := tx.ExecContext(ctx, "UPDATE gatherings SET orange_streak = ?, black_streak = ? WHERE id = ?", orange, black, id)
	return err
}

func (s *GatheringStore) SetVotingOpen(ctx context.Context, tx *sqlx.Tx, id uuid.UUID) error {
	_, err := tx.ExecContext(ctx, "UPDATE gatherings SET voting_open = 1 WHERE id = ?", id)
	return err
}

func (s *GatheringStore) SetMVP(ctx context.Context, tx *sqlx.Tx, id uuid.UUID, playerID *uuid.UUID) error {
	_, err := tx.ExecContext(ctx, "UPDATE gatherings SET mvp_player_id = ? WHERE id = ?", playerID, id)
	return err
}
