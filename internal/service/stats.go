package service

import (
	"github.com/dgmoraes/sunday-league/internal/futsal"
	"github.com/google/uuid"
)

// GatheringData is a gathering's full set of matches with their rosters and
// goal events, keyed by match id, as loaded by GatheringService.
type GatheringData struct {
	Matches []futsal.Match
	Rosters map[uuid.UUID][]futsal.RosterEntry
	Events  map[uuid.UUID][]futsal.GoalEvent
}

type PlayerStats struct {
	PlayerID      uuid.UUID `json:"player_id"`
	MatchesPlayed int       `json:"matches_played"`
	Wins          int       `json:"wins"`
	Goals         int       `json:"goals"`
	Assists       int       `json:"assists"`

	// TeamGoalsConceded sums the opposing team's score across the player's
	// matches (the line-player tie-break figure).
	TeamGoalsConceded int `json:"team_goals_conceded"`

	// GKGoalsConceded is the same figure restricted to matches where the
	// player's roster entry marks them goalkeeper.
	GKGoalsConceded  int  `json:"gk_goals_conceded"`
	PlayedGoalkeeper bool `json:"played_goalkeeper"`
}

// AggregateStats folds a gathering's matches into per-player statistics.
// Own-goal events never credit a scorer or assist.
func AggregateStats(data GatheringData) map[uuid.UUID]*PlayerStats {
	stats := make(map[uuid.UUID]*PlayerStats)

	get := func(playerID uuid.UUID) *PlayerStats {
		s, ok := stats[playerID]
		if !ok {
			s = &PlayerStats{PlayerID: playerID}
			stats[playerID] = s
		}
		return s
	}

	for i := range data.Matches {
		match := &data.Matches[i]

		for _, entry := range data.Rosters[match.ID] {
			s := get(entry.PlayerID)
			s.MatchesPlayed++

			if match.Winner != nil && string(*match.Winner) == string(entry.Team) {
				s.Wins++
			}

			conceded := match.GoalsFor(entry.Team.Opponent())
			s.TeamGoalsConceded += conceded
			if entry.IsGoalkeeper {
				s.PlayedGoalkeeper = true
				s.GKGoalsConceded += conceded
			}
		}

		for _, event := range data.Events[match.ID] {
			if event.OwnGoal {
				continue
			}
			if event.ScorerID != nil {
				if s, ok := stats[*event.ScorerID]; ok {
					s.Goals++
				}
			}
			if event.AssistID != nil {
				if s, ok := stats[*event.AssistID]; ok {
					s.Assists++
				}
			}
		}
	}

	return stats
}
