package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/dgmoraes/sunday-league/internal/futsal"
	"github.com/dgmoraes/sunday-league/internal/store"
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

	// Each pooled connection gets its own plain ::memory: database, so use a
	// uniquely named shared-cache DB that every connection in this test sees.
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	database, err := sqlx.Connect("sqlite3", dsn)
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

type testEnv struct {
	db         *sqlx.DB
	players    *store.PlayerStore
	gatherings *store.GatheringStore
	matches    *store.MatchStore
	queue      *store.QueueStore
	votes      *store.VoteStore

	playerService    *PlayerService
	gatheringService *GatheringService
	matchService     *MatchService
	draftService     *DraftService
	votingService    *VotingService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := setupTestDB(t)
	t.Cleanup(func() { db.Close() })

	env := &testEnv{
		db:         db,
		players:    store.NewPlayerStore(db),
		gatherings: store.NewGatheringStore(db),
		matches:    store.NewMatchStore(db),
		queue:      store.NewQueueStore(db),
		votes:      store.NewVoteStore(db),
	}
	env.playerService = NewPlayerService(db, env.players)
	env.gatheringService = NewGatheringService(db, env.gatherings, env.matches, env.queue, env.players)
	env.matchService = NewMatchService(db, env.matches, env.gatherings, env.queue, env.players)
	env.draftService = NewDraftService(db, env.matches, env.queue, env.players)
	env.votingService = NewVotingService(db, env.gatherings, env.votes, env.gatheringService)
	return env
}

func (e *testEnv) seedPlayer(t *testing.T, name string, goalkeeper bool) *futsal.Player {
	t.Helper()
	player, err := e.playerService.CreatePlayer(context.Background(), PlayerInput{Name: name, IsGoalkeeper: goalkeeper})
	require.NoError(t, err)
	return player
}

func (e *testEnv) seedGathering(t *testing.T) *futsal.Gathering {
	t.Helper()
	gathering, err := e.gatheringService.CreateGathering(context.Background(), "2026-08-30")
	require.NoError(t, err)
	return gathering
}

// seedRosteredMatch schedules a match and commits a full five-a-side roster:
// the first player of each side is its goalkeeper.
func (e *testEnv) seedRosteredMatch(t *testing.T, gatheringID uuid.UUID) (*futsal.Match, []futsal.Player, []futsal.Player) {
	t.Helper()
	ctx := context.Background()

	match, err := e.matchService.CreateMatch(ctx, gatheringID)
	require.NoError(t, err)

	var orange, black []futsal.Player
	var assignment []RosterAssignment
	for i := 0; i < teamSize; i++ {
		p := e.seedPlayer(t, fmt.Sprintf("Orange %d", i+1), i == 0)
		orange = append(orange, *p)
		assignment = append(assignment, RosterAssignment{PlayerID: p.ID.String(), Team: futsal.TeamOrange, IsGoalkeeper: i == 0})
	}
	for i := 0; i < teamSize; i++ {
		p := e.seedPlayer(t, fmt.Sprintf("Black %d", i+1), i == 0)
		black = append(black, *p)
		assignment = append(assignment, RosterAssignment{PlayerID: p.ID.String(), Team: futsal.TeamBlack, IsGoalkeeper: i == 0})
	}

	_, err = e.draftService.CommitRoster(ctx, match.ID, assignment)
	require.NoError(t, err)
	return match, orange, black
}

func TestCreateMatchRejectsSecondActive(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	gathering := env.seedGathering(t)
	_, err := env.matchService.CreateMatch(ctx, gathering.ID)
	require.NoError(t, err)

	_, err = env.matchService.CreateMatch(ctx, gathering.ID)
	assert.ErrorIs(t, err, futsal.ErrInvalidTransition)
}

func TestStartMatchOnlyFromScheduled(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	gathering := env.seedGathering(t)
	match, _, _ := env.seedRosteredMatch(t, gathering.ID)

	started, err := env.matchService.StartMatch(ctx, match.ID)
	require.NoError(t, err)
	assert.Equal(t, futsal.MatchInProgress, started.Status)
	assert.NotNil(t, started.StartedAt)

	_, err = env.matchService.StartMatch(ctx, match.ID)
	assert.ErrorIs(t, err, futsal.ErrInvalidTransition)
}

func TestRecordGoalUpdatesCounter(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	gathering := env.seedGathering(t)
	match, orange, _ := env.seedRosteredMatch(t, gathering.ID)
	_, err := env.matchService.StartMatch(ctx, match.ID)
	require.NoError(t, err)

	updated, err := env.matchService.RecordGoal(ctx, GoalInput{
		MatchID:  match.ID,
		Team:     futsal.TeamOrange,
		ScorerID: &orange[1].ID,
		AssistID: &orange[2].ID,
		Minute:   4,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, updated.OrangeGoals)
	assert.Equal(t, 0, updated.BlackGoals)

	events, err := env.matches.GetGoalEvents(ctx, match.ID)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, futsal.TeamOrange, events[0].Team)
	assert.Equal(t, orange[1].ID, *events[0].ScorerID)
	assert.Equal(t, orange[2].ID, *events[0].AssistID)
}

func TestRecordGoalOwnGoalCreditsOpponent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	gathering := env.seedGathering(t)
	match, _, _ := env.seedRosteredMatch(t, gathering.ID)
	_, err := env.matchService.StartMatch(ctx, match.ID)
	require.NoError(t, err)

	// Orange put it into their own net: black's counter moves.
	updated, err := env.matchService.RecordGoal(ctx, GoalInput{
		MatchID: match.ID,
		Team:    futsal.TeamOrange,
		OwnGoal: true,
		Minute:  9,
	})
	require.NoError(t, err)
	assert.Equal(t, 0, updated.OrangeGoals)
	assert.Equal(t, 1, updated.BlackGoals)

	events, err := env.matches.GetGoalEvents(ctx, match.ID)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, futsal.TeamBlack, events[0].Team)
	assert.True(t, events[0].OwnGoal)
	assert.Nil(t, events[0].ScorerID)
	assert.Nil(t, events[0].AssistID)
}

func TestRecordGoalValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	gathering := env.seedGathering(t)
	match, orange, _ := env.seedRosteredMatch(t, gathering.ID)
	_, err := env.matchService.StartMatch(ctx, match.ID)
	require.NoError(t, err)

	_, err = env.matchService.RecordGoal(ctx, GoalInput{MatchID: match.ID, Team: futsal.TeamOrange})
	assert.ErrorIs(t, err, futsal.ErrInvalidGoalEvent, "a regular goal needs a scorer")

	_, err = env.matchService.RecordGoal(ctx, GoalInput{MatchID: match.ID, Team: futsal.TeamOrange, OwnGoal: true, ScorerID: &orange[1].ID})
	assert.ErrorIs(t, err, futsal.ErrInvalidGoalEvent, "own goals carry no scorer")

	_, err = env.matchService.RecordGoal(ctx, GoalInput{MatchID: match.ID, Team: "PURPLE", ScorerID: &orange[1].ID})
	assert.ErrorIs(t, err, futsal.ErrInvalidGoalEvent)
}

func TestFinishMatchWinnerStays(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	gathering := env.seedGathering(t)
	match, orange, black := env.seedRosteredMatch(t, gathering.ID)

	// Two players still waiting on the side.
	waiter1 := env.seedPlayer(t, "Waiter 1", false)
	waiter2 := env.seedPlayer(t, "Waiter 2", false)
	_, err := env.gatheringService.AddToQueue(ctx, gathering.ID, waiter1.ID)
	require.NoError(t, err)
	_, err = env.gatheringService.AddToQueue(ctx, gathering.ID, waiter2.ID)
	require.NoError(t, err)

	_, err = env.matchService.StartMatch(ctx, match.ID)
	require.NoError(t, err)
	_, err = env.matchService.RecordGoal(ctx, GoalInput{MatchID: match.ID, Team: futsal.TeamOrange, ScorerID: &orange[1].ID, Minute: 2})
	require.NoError(t, err)

	finished, err := env.matchService.FinishMatch(ctx, match.ID, 1810, nil)
	require.NoError(t, err)

	assert.Equal(t, futsal.MatchFinished, finished.Status)
	require.NotNil(t, finished.Winner)
	assert.Equal(t, futsal.ResultOrange, *finished.Winner)
	require.NotNil(t, finished.DurationMinutes)
	assert.Equal(t, 30, *finished.DurationMinutes, "duration rounds down to whole minutes")

	updatedGathering, err := env.gatherings.GetGathering(ctx, gathering.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, updatedGathering.OrangeStreak)
	assert.Equal(t, 0, updatedGathering.BlackStreak)

	// Losers joined the back of the queue behind the existing waiters.
	queue, err := env.queue.GetQueue(ctx, gathering.ID)
	require.NoError(t, err)
	require.Len(t, queue, 7)
	assert.Equal(t, waiter1.ID, queue[0].PlayerID)
	assert.Equal(t, waiter2.ID, queue[1].PlayerID)
	queued := make(map[uuid.UUID]bool)
	for _, entry := range queue[2:] {
		queued[entry.PlayerID] = true
	}
	for _, p := range black {
		assert.True(t, queued[p.ID], "beaten player %s should be queued", p.Name)
	}
	for _, p := range orange {
		assert.False(t, queued[p.ID], "winner %s stays on court", p.Name)
	}

	// Lifetime counters rolled up for everyone on the roster.
	winner, err := env.players.GetPlayer(ctx, orange[0].ID)
	require.NoError(t, err)
	assert.Equal(t, 1, winner.Wins)
	assert.Equal(t, 30, winner.MinutesPlayed)

	loser, err := env.players.GetPlayer(ctx, black[0].ID)
	require.NoError(t, err)
	assert.Equal(t, 0, loser.Wins)
	assert.Equal(t, 1, loser.Losses)
	assert.Equal(t, 30, loser.MinutesPlayed)
}

func TestFinishMatchTwiceFails(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	gathering := env.seedGathering(t)
	match, orange, _ := env.seedRosteredMatch(t, gathering.ID)
	_, err := env.matchService.StartMatch(ctx, match.ID)
	require.NoError(t, err)
	_, err = env.matchService.RecordGoal(ctx, GoalInput{MatchID: match.ID, Team: futsal.TeamOrange, ScorerID: &orange[1].ID})
	require.NoError(t, err)

	_, err = env.matchService.FinishMatch(ctx, match.ID, 600, nil)
	require.NoError(t, err)

	_, err = env.matchService.FinishMatch(ctx, match.ID, 600, nil)
	assert.ErrorIs(t, err, futsal.ErrInvalidTransition)
}

func TestFinishMatchThreePeatEviction(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	gathering := env.seedGathering(t)
	match, orange, black := env.seedRosteredMatch(t, gathering.ID)

	waiter := env.seedPlayer(t, "Waiter", false)
	_, err := env.gatheringService.AddToQueue(ctx, gathering.ID, waiter.ID)
	require.NoError(t, err)

	// Orange arrives at this match with two straight wins.
	_, err = env.db.Exec("UPDATE gatherings SET orange_streak = 2 WHERE id = ?", gathering.ID)
	require.NoError(t, err)

	_, err = env.matchService.StartMatch(ctx, match.ID)
	require.NoError(t, err)
	_, err = env.matchService.RecordGoal(ctx, GoalInput{MatchID: match.ID, Team: futsal.TeamOrange, ScorerID: &orange[1].ID})
	require.NoError(t, err)

	_, err = env.matchService.FinishMatch(ctx, match.ID, 600, nil)
	require.NoError(t, err)

	updatedGathering, err := env.gatherings.GetGathering(ctx, gathering.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, updatedGathering.OrangeStreak)
	assert.Equal(t, 0, updatedGathering.BlackStreak)

	// Everyone rotates out: winners ahead of the waiter, losers behind.
	queue, err := env.queue.GetQueue(ctx, gathering.ID)
	require.NoError(t, err)
	require.Len(t, queue, 11)

	front := make(map[uuid.UUID]bool)
	for _, entry := range queue[:teamSize] {
		front[entry.PlayerID] = true
	}
	for _, p := range orange {
		assert.True(t, front[p.ID], "winner %s should jump the queue", p.Name)
	}
	assert.Equal(t, waiter.ID, queue[teamSize].PlayerID)
	back := make(map[uuid.UUID]bool)
	for _, entry := range queue[teamSize+1:] {
		back[entry.PlayerID] = true
	}
	for _, p := range black {
		assert.True(t, back[p.ID])
	}
}

func TestFinishMatchDrawNeedsTiebreaker(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	gathering := env.seedGathering(t)
	match, _, black := env.seedRosteredMatch(t, gathering.ID)
	_, err := env.matchService.StartMatch(ctx, match.ID)
	require.NoError(t, err)

	_, err = env.matchService.FinishMatch(ctx, match.ID, 600, nil)
	assert.ErrorIs(t, err, futsal.ErrTiebreakerRequired)

	// The failed finish left the match untouched.
	current, err := env.matches.GetMatch(ctx, match.ID)
	require.NoError(t, err)
	assert.Equal(t, futsal.MatchInProgress, current.Status)

	loser := futsal.TeamBlack
	finished, err := env.matchService.FinishMatch(ctx, match.ID, 600, &loser)
	require.NoError(t, err)
	require.NotNil(t, finished.Winner)
	assert.Equal(t, futsal.ResultDraw, *finished.Winner)

	queue, err := env.queue.GetQueue(ctx, gathering.ID)
	require.NoError(t, err)
	require.Len(t, queue, teamSize)
	queued := make(map[uuid.UUID]bool)
	for _, entry := range queue {
		queued[entry.PlayerID] = true
	}
	for _, p := range black {
		assert.True(t, queued[p.ID])
	}

	// A drawn match is a draw for all ten players, tiebreak regardless.
	player, err := env.players.GetPlayer(ctx, black[0].ID)
	require.NoError(t, err)
	assert.Equal(t, 1, player.Draws)
	assert.Equal(t, 0, player.Losses)
}

func TestGetCurrentMatch(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	current, err := env.matchService.GetCurrentMatch(ctx)
	require.NoError(t, err)
	assert.Nil(t, current)

	gathering := env.seedGathering(t)
	match, err := env.matchService.CreateMatch(ctx, gathering.ID)
	require.NoError(t, err)

	current, err = env.matchService.GetCurrentMatch(ctx)
	require.NoError(t, err)
	require.NotNil(t, current)
	assert.Equal(t, match.ID, current.ID)
}
