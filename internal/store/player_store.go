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

type PlayerStore struct {
	db *sqlx.DB
}

const (
	createPlayerQuery = `
		INSERT INTO players (id, name, nickname, bio, photo_url, is_goalkeeper, created_at) VALUES
		(:id, :name, :nickname, :bio, :photo_url, :is_goalkeeper, :created_at)
	`
	updatePlayerProfileQuery = `
		UPDATE players SET
		name = :name,
		nickname = :nickname,
		bio = :bio,
		photo_url = :photo_url,
		is_goalkeeper = :is_goalkeeper
		WHERE id = :id
	`
)

func NewPlayerStore(db *sqlx.DB) *PlayerStore {
	return &PlayerStore{db: db}
}

func (s *PlayerStore) CreatePlayer(ctx context.Context, player *futsal.Player) error {
	_, err := s.db.NamedExecContext(ctx, createPlayerQuery, player)
	return err
}

func (s *PlayerStore) GetPlayer(ctx context.Context, id uuid.UUID) (*futsal.Player, error) {
	var player futsal.Player
	err := s.db.GetContext(ctx, &player, "SELECT * FROM players WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: player %s", futsal.ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return &player, nil
}

func (s *PlayerStore) ListPlayers(ctx context.Context, includeArchived bool) ([]futsal.Player, error) {
	var players []futsal.Player
	query := "SELECT * FROM players ORDER BY name"
	if !includeArchived {
		query = "SELECT * FROM players WHERE archived = 0 ORDER BY name"
	}
	err := s.db.SelectContext(ctx, &players, query)
	return players, err
}

func (s *PlayerStore) UpdatePlayerProfile(ctx context.Context, player *futsal.Player) error {
	_, err := s.db.NamedExecContext(ctx, updatePlayerProfileQuery, player)
	return err
}

func (s *PlayerStore) ArchivePlayer(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, "UPDATE players SET archived = 1 WHERE id = ?", id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: player %s", futsal.ErrNotFound, id)
	}
	return nil
}

// ApplyMatchRollup folds one finished match into a player's lifetime
// counters. Exactly one of win/draw may be set.
func (s *PlayerStore) ApplyMatchRollup(ctx context.Context, tx *sqlx.Tx, playerID uuid.UUID, win, draw bool, minutes int) error {
	column := "losses"
	if win {
		column = "wins"
	} else if draw {
		column = "draws"
	}
	query := fmt.Sprintf("UPDATE players SET %s = %s + 1, minutes_played = minutes_played + ? WHERE id = ?", column, column)
	_, err := tx.ExecContext(ctx, query, minutes, playerID)
	return err
}
