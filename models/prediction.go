package models

import "time"

// Prediction is one user's standalone call on a single match, made outside
// any bracket. ConfidenceLevel runs 1..10; PointsEarned is computed when the
// match resolves and is never accepted from a client.
type Prediction struct {
	ID                int       `json:"id" db:"id"`
	UserID            int       `json:"user_id" db:"user_id"`
	MatchID           int       `json:"match_id" db:"match_id"`
	TournamentID      int       `json:"tournament_id" db:"tournament_id"`
	PredictedWinnerID int       `json:"predicted_winner_id" db:"predicted_winner_id"`
	PredictedScore    *string   `json:"predicted_score,omitempty" db:"predicted_score"`
	ConfidenceLevel   int       `json:"confidence_level" db:"confidence_level"`
	PredictionDate    time.Time `json:"prediction_date" db:"prediction_date"`
	IsPublic          bool      `json:"is_public" db:"is_public"`

	// Resolution state, filled once the match completes.
	IsCorrect    *bool `json:"is_correct,omitempty" db:"is_correct"`
	PointsEarned int   `json:"points_earned" db:"points_earned"`

	// Optional linked data, populated by services.
	User  *User  `json:"user,omitempty" db:"-"`
	Match *Match `json:"match,omitempty" db:"-"`
}

// Resolved reports whether the underlying match outcome has been applied.
func (p *Prediction) Resolved() bool {
	return p.IsCorrect != nil
}
