package models

import "time"

type BracketStatus string

const (
	BracketStatusDraft     BracketStatus = "draft"
	BracketStatusLocked    BracketStatus = "locked"
	BracketStatusSubmitted BracketStatus = "submitted"
)

// Editable reports whether the bracket's picks may still be changed.
// Locked and submitted brackets are only ever re-scored.
func (s BracketStatus) Editable() bool {
	return s == BracketStatusDraft
}

// BracketPrediction is a single slot pick inside a bracket. Round uses
// rounds-from-the-end numbering (1 = final). IsCorrect stays nil until the
// actual winner of the slot's match is known.
type BracketPrediction struct {
	ID                int     `json:"id" db:"id"`
	BracketID         int     `json:"bracket_id" db:"bracket_id"`
	MatchPosition     int     `json:"match_position" db:"match_position"`
	Round             int     `json:"round" db:"round"`
	PredictedWinnerID int     `json:"predicted_winner_id" db:"predicted_winner_id"`
	PredictedScore    *string `json:"predicted_score,omitempty" db:"predicted_score"`
	ActualWinnerID    *int    `json:"actual_winner_id,omitempty" db:"actual_winner_id"`
	ActualScore       *string `json:"actual_score,omitempty" db:"actual_score"`
	IsCorrect         *bool   `json:"is_correct,omitempty" db:"is_correct"`
	PointsEarned      int     `json:"points_earned" db:"points_earned"`
}

// ChampionPick is the single tournament-winner call attached to a bracket.
type ChampionPick struct {
	PredictedChampionID int   `json:"predicted_champion_id" db:"predicted_champion_id"`
	IsCorrect           *bool `json:"is_correct,omitempty" db:"is_correct"`
	PointsEarned        int   `json:"points_earned" db:"points_earned"`
}

// RoundScore is the points a bracket collected within one round.
type RoundScore struct {
	Round  int `json:"round"`
	Points int `json:"points"`
}

// Bracket is one user's full set of predictions for a tournament draw.
// The derived fields are recomputed on every scoring pass, never patched.
type Bracket struct {
	ID           int           `json:"id" db:"id"`
	UserID       int           `json:"user_id" db:"user_id"`
	TournamentID int           `json:"tournament_id" db:"tournament_id"`
	Status       BracketStatus `json:"status" db:"status"`

	Predictions  []BracketPrediction `json:"predictions" db:"-"`
	ChampionPick *ChampionPick       `json:"champion_pick,omitempty" db:"-"`

	// ActualChampionID is set once the tournament has a winner.
	ActualChampionID *int `json:"actual_champion_id,omitempty" db:"actual_champion_id"`

	// Derived scoring state.
	TotalScore         int          `json:"total_score" db:"total_score"`
	CorrectPicks       int          `json:"correct_picks" db:"correct_picks"`
	TotalResolvedPicks int          `json:"total_resolved_picks" db:"total_resolved_picks"`
	AccuracyPercentage int          `json:"accuracy_percentage" db:"accuracy_percentage"`
	RoundScores        []RoundScore `json:"round_scores" db:"-"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`

	// Optional linked data, populated by services.
	User *User       `json:"user,omitempty" db:"-"`
	Trn  *Tournament `json:"tournament,omitempty" db:"-"`
}
