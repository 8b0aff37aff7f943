package futsal

import (
	"time"

	"github.com/google/uuid"
)

type MatchStatus string

const (
	MatchScheduled  MatchStatus = "SCHEDULED"
	MatchInProgress MatchStatus = "IN_PROGRESS"
	MatchFinished   MatchStatus = "FINISHED"
)

type Match struct {
	ID          uuid.UUID `db:"id" json:"id"`
	GatheringID uuid.UUID `db:"gathering_id" json:"gathering_id"`

	OrangeGoals int `db:"orange_goals" json:"orange_goals"`
	BlackGoals  int `db:"black_goals" json:"black_goals"`

	Status          MatchStatus `db:"status" json:"status"`
	StartedAt       *time.Time  `db:"started_at" json:"started_at,omitempty"`
	EndedAt         *time.Time  `db:"ended_at" json:"ended_at,omitempty"`
	DurationMinutes *int        `db:"duration_minutes" json:"duration_minutes,omitempty"`
	Winner          *Result     `db:"winner" json:"winner,omitempty"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Result computes the outcome from the current goal counters.
func (m *Match) Result() Result {
	switch {
	case m.OrangeGoals > m.BlackGoals:
		return ResultOrange
	case m.BlackGoals > m.OrangeGoals:
		return ResultBlack
	}
	return ResultDraw
}

func (m *Match) GoalsFor(team Team) int {
	if team == TeamOrange {
		return m.OrangeGoals
	}
	return m.BlackGoals
}

type RosterEntry struct {
	ID           uuid.UUID `db:"id" json:"id"`
	MatchID      uuid.UUID `db:"match_id" json:"match_id"`
	PlayerID     uuid.UUID `db:"player_id" json:"player_id"`
	Team         Team      `db:"team" json:"team"`
	IsGoalkeeper bool      `db:"is_goalkeeper" json:"is_goalkeeper"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// GoalEvent is append-only. Team is the side whose counter the goal credits:
// for an own goal that is the opponent of the side that put it in, and the
// scorer/assist fields are absent.
type GoalEvent struct {
	ID       uuid.UUID  `db:"id" json:"id"`
	MatchID  uuid.UUID  `db:"match_id" json:"match_id"`
	Team     Team       `db:"team" json:"team"`
	Minute   int        `db:"minute" json:"minute"`
	OwnGoal  bool       `db:"own_goal" json:"own_goal"`
	ScorerID *uuid.UUID `db:"scorer_id" json:"scorer_id,omitempty"`
	AssistID *uuid.UUID `db:"assist_id" json:"assist_id,omitempty"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
