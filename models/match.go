package models

import "time"

type MatchStatus string

const (
	MatchStatusScheduled  MatchStatus = "scheduled"
	MatchStatusInProgress MatchStatus = "in_progress"
	MatchStatusCompleted  MatchStatus = "completed"
	MatchStatusCanceled   MatchStatus = "canceled"
)

// SideStats is the per-player slice of a match's set/game breakdown,
// keyed by the original player ID, never by draw position.
type SideStats struct {
	SetsWon            int `json:"sets_won"`
	GamesWon           int `json:"games_won"`
	TiebreaksWon       int `json:"tiebreaks_won"`
	ServiceGamesPlayed int `json:"service_games_played"`
	ServiceGamesHeld   int `json:"service_games_held"`
}

// MatchStats carries both sides of a completed match's breakdown.
type MatchStats struct {
	P1 SideStats `json:"p1"`
	P2 SideStats `json:"p2"`
}

// Match is one scheduled or played tennis match. Round uses
// rounds-from-the-end numbering: 1 is the final, 2 the semifinal and so on.
type Match struct {
	ID           int         `json:"id" db:"id"`
	TournamentID int         `json:"tournament_id" db:"tournament_id"`
	P1ID         int         `json:"p1_id" db:"p1_id"`
	P2ID         int         `json:"p2_id" db:"p2_id"`
	Round        int         `json:"round" db:"round"`
	RoundLabel   *string     `json:"round_label,omitempty" db:"round_label"`
	DrawPosition int         `json:"draw_position" db:"draw_position"`
	Surface      Surface     `json:"surface" db:"surface"`
	Tier         Tier        `json:"tier" db:"tier"`
	MatchTime    time.Time   `json:"match_time" db:"match_time"`
	Status       MatchStatus `json:"status" db:"status"`
	WinnerID     *int        `json:"winner_id,omitempty" db:"winner_id"`
	Score        *string     `json:"score,omitempty" db:"score"`
	Stats        *MatchStats `json:"stats,omitempty" db:"stats"`
	CreatedAt    time.Time   `json:"created_at" db:"created_at"`

	// Optional linked data, populated by services.
	P1     *Player     `json:"p1,omitempty" db:"-"`
	P2     *Player     `json:"p2,omitempty" db:"-"`
	Winner *Player     `json:"winner,omitempty" db:"-"`
	Trn    *Tournament `json:"tournament,omitempty" db:"-"`
}
