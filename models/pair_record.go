package models

import "time"

// PairBucket is one partition of a pair's match counters. The low/high win
// counts always refer to the canonical LowID/HighID sides of the owning
// PairRecord, so bucket.LowWins + bucket.HighWins == bucket.Matches holds
// for every bucket.
type PairBucket struct {
	Matches  int `json:"matches"`
	LowWins  int `json:"low_wins"`
	HighWins int `json:"high_wins"`
}

// PairSetStats aggregates sets and tiebreaks won by each canonical side.
type PairSetStats struct {
	LowSetsWon       int `json:"low_sets_won"`
	HighSetsWon      int `json:"high_sets_won"`
	LowTiebreaksWon  int `json:"low_tiebreaks_won"`
	HighTiebreaksWon int `json:"high_tiebreaks_won"`
}

// PairGameStats aggregates games and service holds by each canonical side.
// Hold percentages are derived, never stored.
type PairGameStats struct {
	LowGamesWon            int `json:"low_games_won"`
	HighGamesWon           int `json:"high_games_won"`
	LowServiceGamesPlayed  int `json:"low_service_games_played"`
	LowServiceGamesHeld    int `json:"low_service_games_held"`
	HighServiceGamesPlayed int `json:"high_service_games_played"`
	HighServiceGamesHeld   int `json:"high_service_games_held"`
}

// LowHoldPercentage reports the low side's service-hold rate, 0 when the
// side has not served.
func (g PairGameStats) LowHoldPercentage() float64 {
	if g.LowServiceGamesPlayed == 0 {
		return 0
	}
	return 100 * float64(g.LowServiceGamesHeld) / float64(g.LowServiceGamesPlayed)
}

func (g PairGameStats) HighHoldPercentage() float64 {
	if g.HighServiceGamesPlayed == 0 {
		return 0
	}
	return 100 * float64(g.HighServiceGamesHeld) / float64(g.HighServiceGamesPlayed)
}

// PairMatchSummary is one resolved match inside a pair's history. WinnerID
// is the original player ID and is never relabeled when the record is
// canonicalized.
type PairMatchSummary struct {
	MatchID        int       `json:"match_id"`
	Date           time.Time `json:"date"`
	Surface        Surface   `json:"surface"`
	WinnerID       int       `json:"winner_id"`
	ScoreText      string    `json:"score_text"`
	TournamentName string    `json:"tournament_name,omitempty"`
	RoundLabel     string    `json:"round_label,omitempty"`
}

// PairRecord is the head-to-head record of one unordered player pair,
// stored once under the canonical ordering LowID < HighID.
type PairRecord struct {
	ID            int                     `json:"id" db:"id"`
	LowID         int                     `json:"low_id" db:"low_id"`
	HighID        int                     `json:"high_id" db:"high_id"`
	MatchesCount  int                     `json:"matches_count" db:"matches_count"`
	LowWins       int                     `json:"low_wins" db:"low_wins"`
	HighWins      int                     `json:"high_wins" db:"high_wins"`
	BySurface     map[Surface]*PairBucket `json:"by_surface" db:"by_surface"`
	ByTier        map[Tier]*PairBucket    `json:"by_tier" db:"by_tier"`
	SetStats      PairSetStats            `json:"set_stats" db:"set_stats"`
	GameStats     PairGameStats           `json:"game_stats" db:"game_stats"`
	MatchHistory  []PairMatchSummary      `json:"match_history" db:"match_history"`
	LastMatchDate *time.Time              `json:"last_match_date,omitempty" db:"last_match_date"`
	LastMatchID   *int                    `json:"last_match_id,omitempty" db:"last_match_id"`
	UpdatedAt     time.Time               `json:"updated_at" db:"updated_at"`
}

// SurfaceBucket returns the bucket for the surface, allocating it on first use.
func (r *PairRecord) SurfaceBucket(s Surface) *PairBucket {
	if r.BySurface == nil {
		r.BySurface = make(map[Surface]*PairBucket)
	}
	b, ok := r.BySurface[s]
	if !ok {
		b = &PairBucket{}
		r.BySurface[s] = b
	}
	return b
}

// TierBucket returns the bucket for the tier, allocating it on first use.
func (r *PairRecord) TierBucket(t Tier) *PairBucket {
	if r.ByTier == nil {
		r.ByTier = make(map[Tier]*PairBucket)
	}
	b, ok := r.ByTier[t]
	if !ok {
		b = &PairBucket{}
		r.ByTier[t] = b
	}
	return b
}
