package futsal

import (
	"time"

	"github.com/google/uuid"
)

type Player struct {
	ID            uuid.UUID `db:"id" json:"id"`
	Name          string    `db:"name" json:"name"`
	Nickname      *string   `db:"nickname" json:"nickname,omitempty"`
	Bio           *string   `db:"bio" json:"bio,omitempty"`
	PhotoURL      *string   `db:"photo_url" json:"photo_url,omitempty"`
	IsGoalkeeper  bool      `db:"is_goalkeeper" json:"is_goalkeeper"`
	Wins          int       `db:"wins" json:"wins"`
	Draws         int       `db:"draws" json:"draws"`
	Losses        int       `db:"losses" json:"losses"`
	MinutesPlayed int       `db:"minutes_played" json:"minutes_played"`
	Archived      bool      `db:"archived" json:"archived"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
}
