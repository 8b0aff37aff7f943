package futsal

import (
	"time"

	"github.com/google/uuid"
)

// Gathering is one Sunday's pickup session. The two consecutive-win counters
// are mutually exclusive: at most one of them is nonzero at any time.
type Gathering struct {
	ID              uuid.UUID  `db:"id" json:"id"`
	Date            string     `db:"gathering_date" json:"gathering_date"`
	ModerationToken string     `db:"moderation_token" json:"-"`
	OrangeStreak    int        `db:"orange_streak" json:"orange_streak"`
	BlackStreak     int        `db:"black_streak" json:"black_streak"`
	VotingOpen      bool       `db:"voting_open" json:"voting_open"`
	MVPPlayerID     *uuid.UUID `db:"mvp_player_id" json:"mvp_player_id,omitempty"`
	CreatedAt       time.Time  `db:"created_at" json:"created_at"`
}

func (g *Gathering) Streak(team Team) int {
	if team == TeamOrange {
		return g.OrangeStreak
	}
	return g.BlackStreak
}

type QueueEntry struct {
	ID          uuid.UUID `db:"id" json:"id"`
	GatheringID uuid.UUID `db:"gathering_id" json:"gathering_id"`
	PlayerID    uuid.UUID `db:"player_id" json:"player_id"`
	Position    int       `db:"position" json:"position"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

type Vote struct {
	ID          uuid.UUID `db:"id" json:"id"`
	GatheringID uuid.UUID `db:"gathering_id" json:"gathering_id"`
	VoterID     uuid.UUID `db:"voter_id" json:"voter_id"`
	VotedID     uuid.UUID `db:"voted_id" json:"voted_id"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}
