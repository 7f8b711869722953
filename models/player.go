package models

import "time"

type PlayerHand string

const (
	HandRight PlayerHand = "right"
	HandLeft  PlayerHand = "left"
)

// Player is a professional competitor. The ID is the stable identity every
// pairwise statistic and prediction refers to.
type Player struct {
	ID            int        `json:"id" db:"id"`
	FirstName     string     `json:"first_name" db:"first_name"`
	LastName      string     `json:"last_name" db:"last_name"`
	Country       string     `json:"country" db:"country"`
	Plays         PlayerHand `json:"plays" db:"plays"`
	CurrentRank   *int       `json:"current_rank,omitempty" db:"current_rank"`
	RankingPoints *int       `json:"ranking_points,omitempty" db:"ranking_points"`
	BirthDate     *time.Time `json:"birth_date,omitempty" db:"birth_date"`
	PhotoKey      *string    `json:"-" db:"photo_key"`
	PhotoURL      *string    `json:"photo_url,omitempty" db:"-"`
	CreatedAt     time.Time  `json:"created_at" db:"created_at"`
}

func (p *Player) FullName() string {
	if p.LastName == "" {
		return p.FirstName
	}
	return p.FirstName + " " + p.LastName
}
