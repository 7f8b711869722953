package scoring

import (
	"math"
	"sort"

	"github.com/NicoMontoya/tennisworld/models"
)

// ScoreBracket recomputes every derived field of the bracket from its
// predictions and the actual results attached to them. The pass is
// deterministic and idempotent; predictions without an actual winner keep
// their nil IsCorrect and zero points. Bracket status is not consulted:
// re-scoring is always legal, structural edits are the caller's boundary.
func ScoreBracket(b *models.Bracket, cfg ScoringConfig) {
	table := cfg.RoundPoints
	if table == nil {
		table = DefaultRoundPoints()
	}

	total := 0
	correct := 0
	resolved := 0
	perRound := make(map[int]int)

	for i := range b.Predictions {
		p := &b.Predictions[i]
		if _, seen := perRound[p.Round]; !seen {
			perRound[p.Round] = 0
		}
		if p.ActualWinnerID == nil {
			p.IsCorrect = nil
			p.PointsEarned = 0
			continue
		}
		resolved++
		hit := *p.ActualWinnerID == p.PredictedWinnerID
		p.IsCorrect = &hit
		if hit {
			correct++
			p.PointsEarned = table.PointsFor(p.Round)
		} else {
			p.PointsEarned = 0
		}
		total += p.PointsEarned
		perRound[p.Round] += p.PointsEarned
	}

	if b.ChampionPick != nil {
		if b.ActualChampionID != nil {
			hit := *b.ActualChampionID == b.ChampionPick.PredictedChampionID
			b.ChampionPick.IsCorrect = &hit
			resolved++
			if hit {
				correct++
				b.ChampionPick.PointsEarned = cfg.ChampionBonus
				total += cfg.ChampionBonus
			} else {
				b.ChampionPick.PointsEarned = 0
			}
		} else {
			b.ChampionPick.IsCorrect = nil
			b.ChampionPick.PointsEarned = 0
		}
	}

	b.TotalScore = total
	b.CorrectPicks = correct
	b.TotalResolvedPicks = resolved
	if resolved > 0 {
		b.AccuracyPercentage = int(math.Round(100 * float64(correct) / float64(resolved)))
	} else {
		b.AccuracyPercentage = 0
	}

	rounds := make([]int, 0, len(perRound))
	for r := range perRound {
		rounds = append(rounds, r)
	}
	sort.Ints(rounds)
	b.RoundScores = make([]models.RoundScore, len(rounds))
	for i, r := range rounds {
		b.RoundScores[i] = models.RoundScore{Round: r, Points: perRound[r]}
	}
}
