// Package summary renders a gathering's computed results as a shareable
// plain-text message. It consumes already-computed data only; no scoring or
// ranking logic lives here.
package summary

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dgmoraes/sunday-league/internal/futsal"
	"github.com/dgmoraes/sunday-league/internal/service"
	"github.com/google/uuid"
)

const topListSize = 3

func playerName(players map[uuid.UUID]futsal.Player, id uuid.UUID) string {
	if p, ok := players[id]; ok {
		if p.Nickname != nil && *p.Nickname != "" {
			return *p.Nickname
		}
		return p.Name
	}
	return id.String()
}

// BuildDaySummary produces the day's shareable report: per-match scores with
// start and end times, day totals, top scorers and assisters, the elected
// MVP and the team-of-the-day roster.
func BuildDaySummary(results *service.DayResults, players map[uuid.UUID]futsal.Player) string {
	if results == nil || len(results.Matches) == 0 {
		return "No finished matches for this Sunday yet."
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Sunday Futsal - %s\n\n", results.Gathering.Date)

	b.WriteString("Match results:\n")
	var orangeGoals, blackGoals, orangeWins, blackWins, draws int
	for i, match := range results.Matches {
		window := ""
		if match.StartedAt != nil && match.EndedAt != nil {
			window = fmt.Sprintf(" (%s - %s)", match.StartedAt.Format("15:04"), match.EndedAt.Format("15:04"))
		}
		fmt.Fprintf(&b, "Match %d: ORANGE %d x %d BLACK%s\n", i+1, match.OrangeGoals, match.BlackGoals, window)

		orangeGoals += match.OrangeGoals
		blackGoals += match.BlackGoals
		if match.Winner != nil {
			switch *match.Winner {
			case futsal.ResultOrange:
				orangeWins++
			case futsal.ResultBlack:
				blackWins++
			case futsal.ResultDraw:
				draws++
			}
		}
	}

	fmt.Fprintf(&b, "\nDay totals:\n")
	fmt.Fprintf(&b, "Matches played: %d\n", len(results.Matches))
	fmt.Fprintf(&b, "Orange goals: %d | Black goals: %d\n", orangeGoals, blackGoals)
	fmt.Fprintf(&b, "Orange wins: %d | Black wins: %d | Draws: %d\n", orangeWins, blackWins, draws)

	writeTopList(&b, "Top scorers", results.Stats, players, func(s *service.PlayerStats) int { return s.Goals }, "goals")
	writeTopList(&b, "Top assisters", results.Stats, players, func(s *service.PlayerStats) int { return s.Assists }, "assists")

	if results.Gathering.MVPPlayerID != nil {
		fmt.Fprintf(&b, "\nCraque of the Sunday: %s\n", playerName(players, *results.Gathering.MVPPlayerID))
	}

	if len(results.TeamOfTheDay) > 0 {
		b.WriteString("\nTeam of the day:\n")
		for _, slot := range results.TeamOfTheDay {
			fmt.Fprintf(&b, "- %s\n", playerName(players, slot.PlayerID))
		}
	}

	return b.String()
}

func writeTopList(b *strings.Builder, title string, stats map[uuid.UUID]*service.PlayerStats, players map[uuid.UUID]futsal.Player, value func(*service.PlayerStats) int, unit string) {
	ranked := make([]*service.PlayerStats, 0, len(stats))
	for _, s := range stats {
		if value(s) > 0 {
			ranked = append(ranked, s)
		}
	}
	if len(ranked) == 0 {
		return
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		if value(ranked[i]) != value(ranked[j]) {
			return value(ranked[i]) > value(ranked[j])
		}
		return ranked[i].PlayerID.String() < ranked[j].PlayerID.String()
	})
	if len(ranked) > topListSize {
		ranked = ranked[:topListSize]
	}

	fmt.Fprintf(b, "\n%s:\n", title)
	for i, s := range ranked {
		fmt.Fprintf(b, "%d. %s (%d %s)\n", i+1, playerName(players, s.PlayerID), value(s), unit)
	}
}
