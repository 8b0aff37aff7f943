package service

import (
	"context"
	"time"

	"github.com/dgmoraes/sunday-league/internal/futsal"
	"github.com/dgmoraes/sunday-league/internal/store"
	"github.com/dgmoraes/sunday-league/internal/utils"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type PlayerService struct {
	db      *sqlx.DB
	players *store.PlayerStore
}

func NewPlayerService(db *sqlx.DB, players *store.PlayerStore) *PlayerService {
	return &PlayerService{db: db, players: players}
}

type PlayerInput struct {
	Name         string
	Nickname     string
	Bio          string
	PhotoURL     string
	IsGoalkeeper bool
}

func (s *PlayerService) CreatePlayer(ctx context.Context, in PlayerInput) (*futsal.Player, error) {
	player := &futsal.Player{
		ID:           uuid.New(),
		Name:         in.Name,
		Nickname:     utils.StringOrNil(in.Nickname),
		Bio:          utils.StringOrNil(in.Bio),
		PhotoURL:     utils.StringOrNil(in.PhotoURL),
		IsGoalkeeper: in.IsGoalkeeper,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.players.CreatePlayer(ctx, player); err != nil {
		return nil, err
	}
	return player, nil
}

func (s *PlayerService) UpdatePlayer(ctx context.Context, id uuid.UUID, in PlayerInput) (*futsal.Player, error) {
	player, err := s.players.GetPlayer(ctx, id)
	if err != nil {
		return nil, err
	}

	player.Name = in.Name
	player.Nickname = utils.StringOrNil(in.Nickname)
	player.Bio = utils.StringOrNil(in.Bio)
	player.PhotoURL = utils.StringOrNil(in.PhotoURL)
	player.IsGoalkeeper = in.IsGoalkeeper

	if err := s.players.UpdatePlayerProfile(ctx, player); err != nil {
		return nil, err
	}
	return player, nil
}

// ArchivePlayer retires a player. Players are never deleted: their roster
// entries and events stay part of every past gathering.
func (s *PlayerService) ArchivePlayer(ctx context.Context, id uuid.UUID) error {
	return s.players.ArchivePlayer(ctx, id)
}

func (s *PlayerService) GetPlayer(ctx context.Context, id uuid.UUID) (*futsal.Player, error) {
	return s.players.GetPlayer(ctx, id)
}

func (s *PlayerService) ListPlayers(ctx context.Context, includeArchived bool) ([]futsal.Player, error) {
	return s.players.ListPlayers(ctx, includeArchived)
}
