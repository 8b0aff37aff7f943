package store

import (
	"context"
	"testing"
	"time"

	"github.com/dgmoraes/sunday-league/internal/futsal"
	"github.com/dgmoraes/sunday-league/internal/utils"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestDB creates an in-memory SQLite database and applies migrations
func setupTestDB(t *testing.T) *sqlx.DB {
	t.Helper()

	database, err := sqlx.Connect("sqlite3", "file::memory:")
	require.NoError(t, err, "Failed to connect to in-memory DB")

	_, err = database.Exec("PRAGMA foreign_keys = ON;")
	require.NoError(t, err)

	driver, err := sqlite3.WithInstance(database.DB, &sqlite3.Config{})
	require.NoError(t, err, "Failed to create migrate driver instance")

	m, err := migrate.NewWithDatabaseInstance(
		"file://../../migrations",
		"sqlite3",
		driver,
	)
	require.NoError(t, err, "Failed to create migrate instance")

	err = m.Up()
	if err != nil && err != migrate.ErrNoChange {
		require.NoError(t, err, "Failed to apply migrations")
	}

	return database
}

func TestCreateAndGetPlayer(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	store := NewPlayerStore(db)

	player := &futsal.Player{
		ID:           uuid.New(),
		Name:         "Ana Silva",
		Nickname:     utils.StringOrNil("Aninha"),
		IsGoalkeeper: true,
		CreatedAt:    time.Now().UTC(),
	}
	require.NoError(t, store.CreatePlayer(context.Background(), player))

	fetched, err := store.GetPlayer(context.Background(), player.ID)
	require.NoError(t, err)
	assert.Equal(t, player.ID, fetched.ID)
	assert.Equal(t, player.Name, fetched.Name)
	assert.Equal(t, *player.Nickname, *fetched.Nickname)
	assert.Nil(t, fetched.Bio)
	assert.True(t, fetched.IsGoalkeeper)
	assert.False(t, fetched.Archived)
	assert.WithinDuration(t, player.CreatedAt, fetched.CreatedAt, time.Second)
}

func TestGetPlayerNotFound(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	store := NewPlayerStore(db)

	_, err := store.GetPlayer(context.Background(), uuid.New())
	assert.ErrorIs(t, err, futsal.ErrNotFound)
}

func TestListPlayersSkipsArchived(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	store := NewPlayerStore(db)
	ctx := context.Background()

	active := &futsal.Player{ID: uuid.New(), Name: "Bruno", CreatedAt: time.Now().UTC()}
	retired := &futsal.Player{ID: uuid.New(), Name: "Carlos", CreatedAt: time.Now().UTC()}
	require.NoError(t, store.CreatePlayer(ctx, active))
	require.NoError(t, store.CreatePlayer(ctx, retired))
	require.NoError(t, store.ArchivePlayer(ctx, retired.ID))

	players, err := store.ListPlayers(ctx, false)
	require.NoError(t, err)
	require.Len(t, players, 1)
	assert.Equal(t, active.ID, players[0].ID)

	players, err = store.ListPlayers(ctx, true)
	require.NoError(t, err)
	assert.Len(t, players, 2)
}

func TestArchivePlayerNotFound(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	store := NewPlayerStore(db)

	err := store.ArchivePlayer(context.Background(), uuid.New())
	assert.ErrorIs(t, err, futsal.ErrNotFound)
}

func TestApplyMatchRollup(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	store := NewPlayerStore(db)
	ctx := context.Background()

	player := &futsal.Player{ID: uuid.New(), Name: "Ana", CreatedAt: time.Now().UTC()}
	require.NoError(t, store.CreatePlayer(ctx, player))

	apply := func(win, draw bool, minutes int) {
		tx, err := db.BeginTxx(ctx, nil)
		require.NoError(t, err)
		require.NoError(t, store.ApplyMatchRollup(ctx, tx, player.ID, win, draw, minutes))
		require.NoError(t, tx.Commit())
	}

	apply(true, false, 30)
	apply(false, true, 25)
	apply(false, false, 20)

	fetched, err := store.GetPlayer(ctx, player.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, fetched.Wins)
	assert.Equal(t, 1, fetched.Draws)
	assert.Equal(t, 1, fetched.Losses)
	assert.Equal(t, 75, fetched.MinutesPlayed)
}
