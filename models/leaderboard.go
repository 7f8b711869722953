package models

import "time"

// TimeframeKind scopes which raw predictions a leaderboard aggregates.
type TimeframeKind string

const (
	TimeframeTournament TimeframeKind = "tournament"
	TimeframeMonth      TimeframeKind = "month"
	TimeframeSeason     TimeframeKind = "season"
	TimeframeAllTime    TimeframeKind = "all_time"
)

// LeaderboardScope identifies one leaderboard. TournamentID is only set for
// the tournament timeframe.
type LeaderboardScope struct {
	Kind         TimeframeKind `json:"kind"`
	StartDate    time.Time     `json:"start_date"`
	EndDate      time.Time     `json:"end_date"`
	TournamentID *int          `json:"tournament_id,omitempty"`
}

type LeaderboardEntry struct {
	Rank               int     `json:"rank"`
	UserID             int     `json:"user_id"`
	DisplayName        string  `json:"display_name"`
	Points             int     `json:"points"`
	PredictionsMade    int     `json:"predictions_made"`
	CorrectPredictions int     `json:"correct_predictions"`
	AccuracyPercentage float64 `json:"accuracy_percentage"`
}

// Leaderboard is always rebuilt in full from the raw predictions in scope;
// entries are never patched incrementally.
type Leaderboard struct {
	Scope       LeaderboardScope   `json:"scope"`
	Entries     []LeaderboardEntry `json:"entries"`
	GeneratedAt time.Time          `json:"generated_at"`
}
