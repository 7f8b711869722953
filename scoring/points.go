package scoring

import "github.com/NicoMontoya/tennisworld/models"

// RoundPointsTable maps a round (rounds-from-the-end numbering, 1 = final)
// to the points a correct bracket pick in that round earns. The default
// table intentionally weights the final lowest and early rounds highest:
// long-range picks pay more.
type RoundPointsTable map[int]int

// PointsFor returns the award for a round, falling back to the base award
// for rounds the table does not know.
func (t RoundPointsTable) PointsFor(round int) int {
	if pts, ok := t[round]; ok {
		return pts
	}
	return defaultBasePoints
}

const (
	defaultBasePoints         = 10
	defaultChampionBonus      = 500
	defaultExactScoreBonus    = 15
	defaultConfidencePerLevel = 2

	// confidencePivot is the neutral confidence level; only levels above it
	// earn a bonus.
	confidencePivot = 5

	minConfidence = 1
	maxConfidence = 10
)

// DefaultRoundPoints returns a fresh copy of the standard bracket table.
func DefaultRoundPoints() RoundPointsTable {
	return RoundPointsTable{1: 10, 2: 20, 3: 40, 4: 80, 5: 160, 6: 320}
}

// ScoringConfig carries every scoring knob as plain input. Nothing in this
// package reads configuration from globals.
type ScoringConfig struct {
	RoundPoints        RoundPointsTable
	ChampionBonus      int
	BasePoints         int
	ConfidencePerLevel int
	ExactScoreBonus    int
}

func DefaultScoringConfig() ScoringConfig {
	return ScoringConfig{
		RoundPoints:        DefaultRoundPoints(),
		ChampionBonus:      defaultChampionBonus,
		BasePoints:         defaultBasePoints,
		ConfidencePerLevel: defaultConfidencePerLevel,
		ExactScoreBonus:    defaultExactScoreBonus,
	}
}

// PredictionPoints computes the award for one resolved standalone
// prediction: the base award for a correct winner, a confidence bonus per
// level above the pivot (confidence clamped into its 1..10 range), and the
// exact-score bonus when the predicted score matches the actual one.
// A wrong pick earns nothing, whatever the confidence.
func PredictionPoints(p *models.Prediction, actualWinnerID int, actualScore *string, cfg ScoringConfig) int {
	if p.PredictedWinnerID != actualWinnerID {
		return 0
	}
	points := cfg.BasePoints

	confidence := p.ConfidenceLevel
	if confidence < minConfidence {
		confidence = minConfidence
	}
	if confidence > maxConfidence {
		confidence = maxConfidence
	}
	if confidence > confidencePivot {
		points += cfg.ConfidencePerLevel * (confidence - confidencePivot)
	}

	if p.PredictedScore != nil && actualScore != nil && *p.PredictedScore == *actualScore {
		points += cfg.ExactScoreBonus
	}
	return points
}
