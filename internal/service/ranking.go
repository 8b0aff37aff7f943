package service

import (
	"sort"

	"github.com/google/uuid"
)

// Craque scoring weights.
const (
	goalPoints        = 1.0
	assistPoints      = 0.5
	personalWinPoints = 0.5
	goalkeeperBonus   = 4.0
	mvpCandidateCount = 3
	outfieldSlotCount = 4
)

type Candidate struct {
	PlayerStats
	Score float64 `json:"score"`
}

func baseScore(s *PlayerStats) float64 {
	return float64(s.Goals)*goalPoints + float64(s.Assists)*assistPoints + float64(s.Wins)*personalWinPoints
}

// bestGoalkeeperID picks the single goalkeeper awarded the bonus: fewest
// goals conceded as goalkeeper, then fewer matches played, then fewer goals
// conceded by their team overall. Returns Nil when nobody kept goal.
func bestGoalkeeperID(stats map[uuid.UUID]*PlayerStats) uuid.UUID {
	var best *PlayerStats
	for _, s := range sortedByID(stats) {
		if !s.PlayedGoalkeeper {
			continue
		}
		if best == nil {
			best = s
			continue
		}
		switch {
		case s.GKGoalsConceded < best.GKGoalsConceded:
			best = s
		case s.GKGoalsConceded == best.GKGoalsConceded &&
			(s.MatchesPlayed < best.MatchesPlayed ||
				(s.MatchesPlayed == best.MatchesPlayed && s.TeamGoalsConceded < best.TeamGoalsConceded)):
			best = s
		}
	}
	if best == nil {
		return uuid.Nil
	}
	return best.PlayerID
}

// sortedByID gives map iteration a stable order so every downstream
// tie-break is independent of input permutation.
func sortedByID(stats map[uuid.UUID]*PlayerStats) []*PlayerStats {
	out := make([]*PlayerStats, 0, len(stats))
	for _, s := range stats {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].PlayerID.String() < out[j].PlayerID.String()
	})
	return out
}

// RankCandidates scores every player with at least one appearance and
// returns the top MVP candidates: score descending, ties by fewer matches
// played, then fewer team goals conceded.
func RankCandidates(stats map[uuid.UUID]*PlayerStats) []Candidate {
	bonusID := bestGoalkeeperID(stats)

	candidates := make([]Candidate, 0, len(stats))
	for _, s := range sortedByID(stats) {
		score := baseScore(s)
		if s.PlayerID == bonusID {
			score += goalkeeperBonus
		}
		candidates = append(candidates, Candidate{PlayerStats: *s, Score: score})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if a.MatchesPlayed != b.MatchesPlayed {
			return a.MatchesPlayed < b.MatchesPlayed
		}
		return a.TeamGoalsConceded < b.TeamGoalsConceded
	})

	if len(candidates) > mvpCandidateCount {
		candidates = candidates[:mvpCandidateCount]
	}
	return candidates
}

// Court coordinates for the team-of-the-day diagram.
var (
	goalSlot     = [2]int{145, 372}
	forwardSlots = [2][2]int{{60, 230}, {225, 230}}
	backSlots    = [2][2]int{{60, 305}, {225, 305}}
)

type CourtSlot struct {
	PlayerID uuid.UUID `json:"player_id"`
	Score    float64   `json:"score"`
	X        int       `json:"x"`
	Y        int       `json:"y"`
}

// TeamOfTheDay fills the five court slots from base scores (no goalkeeper
// bonus). The goalkeeper slot rewards availability: on equal goals conceded
// the keeper with MORE matches wins it.
func TeamOfTheDay(stats map[uuid.UUID]*PlayerStats) []CourtSlot {
	if len(stats) == 0 {
		return nil
	}

	ordered := sortedByID(stats)

	var keepers []*PlayerStats
	var outfield []*PlayerStats
	for _, s := range ordered {
		if s.PlayedGoalkeeper {
			keepers = append(keepers, s)
		} else {
			outfield = append(outfield, s)
		}
	}

	sort.SliceStable(keepers, func(i, j int) bool {
		a, b := keepers[i], keepers[j]
		if a.GKGoalsConceded != b.GKGoalsConceded {
			return a.GKGoalsConceded < b.GKGoalsConceded
		}
		return a.MatchesPlayed > b.MatchesPlayed
	})

	sort.SliceStable(outfield, func(i, j int) bool {
		a, b := outfield[i], outfield[j]
		sa, sb := baseScore(a), baseScore(b)
		if sa != sb {
			return sa > sb
		}
		if a.TeamGoalsConceded != b.TeamGoalsConceded {
			return a.TeamGoalsConceded < b.TeamGoalsConceded
		}
		return a.MatchesPlayed > b.MatchesPlayed
	})

	if len(outfield) > outfieldSlotCount {
		outfield = outfield[:outfieldSlotCount]
	}

	var team []CourtSlot

	// Top two scorers take the forward row.
	for i := 0; i < len(outfield) && i < 2; i++ {
		team = append(team, CourtSlot{
			PlayerID: outfield[i].PlayerID,
			Score:    baseScore(outfield[i]),
			X:        forwardSlots[i][0],
			Y:        forwardSlots[i][1],
		})
	}

	// The remaining two fill the back row, best defensive record on the
	// left: fewer team goals conceded, then higher score.
	if len(outfield) > 2 {
		back := outfield[2:]
		sort.SliceStable(back, func(i, j int) bool {
			a, b := back[i], back[j]
			if a.TeamGoalsConceded != b.TeamGoalsConceded {
				return a.TeamGoalsConceded < b.TeamGoalsConceded
			}
			return baseScore(a) > baseScore(b)
		})
		for i := 0; i < len(back) && i < 2; i++ {
			team = append(team, CourtSlot{
				PlayerID: back[i].PlayerID,
				Score:    baseScore(back[i]),
				X:        backSlots[i][0],
				Y:        backSlots[i][1],
			})
		}
	}

	if len(keepers) > 0 {
		team = append(team, CourtSlot{
			PlayerID: keepers[0].PlayerID,
			Score:    baseScore(keepers[0]),
			X:        goalSlot[0],
			Y:        goalSlot[1],
		})
	}

	sort.SliceStable(team, func(i, j int) bool {
		if team[i].Y != team[j].Y {
			return team[i].Y < team[j].Y
		}
		return team[i].X < team[j].X
	})

	return team
}
