package scoring

import (
	"reflect"
	"testing"

	"github.com/NicoMontoya/tennisworld/models"
)

func intPtr(v int) *int { return &v }

func TestScoreBracketRoundTable(t *testing.T) {
	cfg := DefaultScoringConfig()
	cfg.RoundPoints = RoundPointsTable{1: 10, 2: 20, 3: 40}

	b := &models.Bracket{
		Predictions: []models.BracketPrediction{
			{MatchPosition: 1, Round: 1, PredictedWinnerID: 5, ActualWinnerID: intPtr(5)},
			{MatchPosition: 2, Round: 2, PredictedWinnerID: 6, ActualWinnerID: intPtr(9)},
		},
	}

	ScoreBracket(b, cfg)

	if b.TotalScore != 10 {
		t.Fatalf("total score = %d, want 10", b.TotalScore)
	}
	wantRounds := []models.RoundScore{{Round: 1, Points: 10}, {Round: 2, Points: 0}}
	if !reflect.DeepEqual(b.RoundScores, wantRounds) {
		t.Fatalf("round scores = %+v, want %+v", b.RoundScores, wantRounds)
	}
	if b.CorrectPicks != 1 || b.TotalResolvedPicks != 2 {
		t.Fatalf("picks = %d correct / %d resolved, want 1 / 2", b.CorrectPicks, b.TotalResolvedPicks)
	}
	if b.AccuracyPercentage != 50 {
		t.Fatalf("accuracy = %d, want 50", b.AccuracyPercentage)
	}
}

func TestScoreBracketChampionBonus(t *testing.T) {
	cfg := DefaultScoringConfig()

	b := &models.Bracket{
		Predictions: []models.BracketPrediction{
			{MatchPosition: 1, Round: 1, PredictedWinnerID: 5, ActualWinnerID: intPtr(5)},
		},
		ChampionPick:     &models.ChampionPick{PredictedChampionID: 5},
		ActualChampionID: intPtr(5),
	}

	ScoreBracket(b, cfg)

	if b.TotalScore != 510 {
		t.Fatalf("total score = %d, want 10 + 500 champion bonus", b.TotalScore)
	}
	if b.ChampionPick.IsCorrect == nil || !*b.ChampionPick.IsCorrect {
		t.Fatalf("champion pick not marked correct: %+v", b.ChampionPick)
	}
	if b.CorrectPicks != 2 || b.TotalResolvedPicks != 2 {
		t.Fatalf("picks = %d correct / %d resolved, want 2 / 2", b.CorrectPicks, b.TotalResolvedPicks)
	}
}

func TestScoreBracketWrongChampionCountsResolved(t *testing.T) {
	b := &models.Bracket{
		ChampionPick:     &models.ChampionPick{PredictedChampionID: 5},
		ActualChampionID: intPtr(8),
	}

	ScoreBracket(b, DefaultScoringConfig())

	if b.TotalScore != 0 || b.CorrectPicks != 0 {
		t.Fatalf("wrong champion earned points: score %d, correct %d", b.TotalScore, b.CorrectPicks)
	}
	if b.TotalResolvedPicks != 1 {
		t.Fatalf("resolved picks = %d, want 1", b.TotalResolvedPicks)
	}
}

func TestScoreBracketLeavesUnresolvedAlone(t *testing.T) {
	b := &models.Bracket{
		Predictions: []models.BracketPrediction{
			{MatchPosition: 1, Round: 3, PredictedWinnerID: 5},
		},
		ChampionPick: &models.ChampionPick{PredictedChampionID: 5},
	}

	ScoreBracket(b, DefaultScoringConfig())

	p := b.Predictions[0]
	if p.IsCorrect != nil || p.PointsEarned != 0 {
		t.Fatalf("unresolved prediction mutated: %+v", p)
	}
	if b.ChampionPick.IsCorrect != nil {
		t.Fatalf("unresolved champion pick mutated: %+v", b.ChampionPick)
	}
	if b.TotalScore != 0 || b.AccuracyPercentage != 0 {
		t.Fatalf("empty bracket scored: total %d, accuracy %d", b.TotalScore, b.AccuracyPercentage)
	}
}

func TestScoreBracketDeterministic(t *testing.T) {
	build := func() *models.Bracket {
		return &models.Bracket{
			Predictions: []models.BracketPrediction{
				{MatchPosition: 1, Round: 1, PredictedWinnerID: 5, ActualWinnerID: intPtr(5)},
				{MatchPosition: 2, Round: 2, PredictedWinnerID: 6, ActualWinnerID: intPtr(6)},
				{MatchPosition: 3, Round: 2, PredictedWinnerID: 7, ActualWinnerID: intPtr(8)},
				{MatchPosition: 4, Round: 4, PredictedWinnerID: 9},
			},
			ChampionPick:     &models.ChampionPick{PredictedChampionID: 6},
			ActualChampionID: intPtr(6),
		}
	}
	cfg := DefaultScoringConfig()

	once := build()
	ScoreBracket(once, cfg)

	twice := build()
	ScoreBracket(twice, cfg)
	ScoreBracket(twice, cfg)

	if !reflect.DeepEqual(once, twice) {
		t.Fatalf("re-scoring changed the output:\nonce:  %+v\ntwice: %+v", once, twice)
	}
}

func TestScoreBracketAccuracyRounding(t *testing.T) {
	b := &models.Bracket{
		Predictions: []models.BracketPrediction{
			{MatchPosition: 1, Round: 2, PredictedWinnerID: 1, ActualWinnerID: intPtr(1)},
			{MatchPosition: 2, Round: 2, PredictedWinnerID: 2, ActualWinnerID: intPtr(9)},
			{MatchPosition: 3, Round: 2, PredictedWinnerID: 3, ActualWinnerID: intPtr(9)},
		},
	}

	ScoreBracket(b, DefaultScoringConfig())

	if b.AccuracyPercentage != 33 {
		t.Fatalf("accuracy = %d, want 33 (nearest integer)", b.AccuracyPercentage)
	}
}

func TestScoreBracketRoundMissingFromTable(t *testing.T) {
	cfg := DefaultScoringConfig()
	cfg.RoundPoints = RoundPointsTable{1: 10}

	b := &models.Bracket{
		Predictions: []models.BracketPrediction{
			{MatchPosition: 1, Round: 7, PredictedWinnerID: 5, ActualWinnerID: intPtr(5)},
		},
	}

	ScoreBracket(b, cfg)

	if b.TotalScore != 10 {
		t.Fatalf("missing round fallback = %d, want base 10", b.TotalScore)
	}
}
