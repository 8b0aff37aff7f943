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

type GatheringService struct {
	db         *sqlx.DB
	gatherings *store.GatheringStore
	matches    *store.MatchStore
	queue      *store.QueueStore
	players    *store.PlayerStore
}

func NewGatheringService(db *sqlx.DB, gatherings *store.GatheringStore, matches *store.MatchStore, queue *store.QueueStore, players *store.PlayerStore) *GatheringService {
	return &GatheringService{db: db, gatherings: gatherings, matches: matches, queue: queue, players: players}
}

// CreateGathering opens the day's session. The moderation token gates every
// mutating operation for this gathering; createGathering is the only place
// it is ever generated.
func (s *GatheringService) CreateGathering(ctx context.Context, date string) (*futsal.Gathering, error) {
	existing, err := s.gatherings.GetGatheringByDate(ctx, date)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	gathering := &futsal.Gathering{
		ID:              uuid.New(),
		Date:            date,
		ModerationToken: uuid.NewString(),
		CreatedAt:       time.Now().UTC(),
	}
	if err := s.gatherings.CreateGathering(ctx, gathering); err != nil {
		return nil, err
	}
	return gathering, nil
}

func (s *GatheringService) GetGathering(ctx context.Context, id uuid.UUID) (*futsal.Gathering, error) {
	return s.gatherings.GetGathering(ctx, id)
}

func (s *GatheringService) ListGatherings(ctx context.Context) ([]futsal.Gathering, error) {
	return s.gatherings.ListGatherings(ctx)
}

func (s *GatheringService) AddToQueue(ctx context.Context, gatheringID, playerID uuid.UUID) (*futsal.QueueEntry, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	if _, err := s.gatherings.GetGatheringTx(ctx, tx, gatheringID); err != nil {
		return nil, err
	}
	if _, err := s.players.GetPlayer(ctx, playerID); err != nil {
		return nil, err
	}

	position, err := s.queue.NextPositionTx(ctx, tx, gatheringID)
	if err != nil {
		return nil, err
	}

	entry := &futsal.QueueEntry{
		ID:          uuid.New(),
		GatheringID: gatheringID,
		PlayerID:    playerID,
		Position:    position,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.queue.AddEntry(ctx, tx, entry); err != nil {
		return nil, err
	}

	return entry, tx.Commit()
}

func (s *GatheringService) RemoveFromQueue(ctx context.Context, entryID uuid.UUID) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := s.queue.RemoveEntry(ctx, tx, entryID); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *GatheringService) GetQueue(ctx context.Context, gatheringID uuid.UUID) ([]futsal.QueueEntry, error) {
	return s.queue.GetQueue(ctx, gatheringID)
}

// LoadGatheringData pulls everything the aggregator needs: the gathering's
// matches with their rosters and goal events.
func (s *GatheringService) LoadGatheringData(ctx context.Context, gatheringID uuid.UUID) (*GatheringData, error) {
	matches, err := s.matches.GetMatchesByGathering(ctx, gatheringID)
	if err != nil {
		return nil, err
	}

	data := &GatheringData{
		Matches: matches,
		Rosters: make(map[uuid.UUID][]futsal.RosterEntry, len(matches)),
		Events:  make(map[uuid.UUID][]futsal.GoalEvent, len(matches)),
	}
	for _, match := range matches {
		roster, err := s.matches.GetRoster(ctx, match.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to load roster for match %s: %w", match.ID, err)
		}
		events, err := s.matches.GetGoalEvents(ctx, match.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to load events for match %s: %w", match.ID, err)
		}
		data.Rosters[match.ID] = roster
		data.Events[match.ID] = events
	}
	return data, nil
}

// DayResults bundles everything computed for a finished Sunday, ready for
// the vote tally and the external summary formatter.
type DayResults struct {
	Gathering    *futsal.Gathering          `json:"gathering"`
	Matches      []futsal.Match             `json:"matches"`
	Stats        map[uuid.UUID]*PlayerStats `json:"stats"`
	Candidates   []Candidate                `json:"candidates"`
	TeamOfTheDay []CourtSlot                `json:"team_of_the_day"`
}

func (s *GatheringService) ComputeDayResults(ctx context.Context, gatheringID uuid.UUID) (*DayResults, error) {
	gathering, err := s.gatherings.GetGathering(ctx, gatheringID)
	if err != nil {
		return nil, err
	}
	data, err := s.LoadGatheringData(ctx, gatheringID)
	if err != nil {
		return nil, err
	}

	stats := AggregateStats(*data)
	return &DayResults{
		Gathering:    gathering,
		Matches:      data.Matches,
		Stats:        stats,
		Candidates:   RankCandidates(stats),
		TeamOfTheDay: TeamOfTheDay(stats),
	}, nil
}
