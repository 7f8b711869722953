package scoring

import (
	"testing"

	"github.com/NicoMontoya/tennisworld/models"
)

func strPtr(s string) *string { return &s }

func TestPredictionPoints(t *testing.T) {
	cfg := DefaultScoringConfig()
	actualScore := strPtr("6-4 6-4")

	tests := []struct {
		name string
		pred models.Prediction
		want int
	}{
		{
			name: "wrong winner earns nothing",
			pred: models.Prediction{PredictedWinnerID: 2, ConfidenceLevel: 10, PredictedScore: strPtr("6-4 6-4")},
			want: 0,
		},
		{
			name: "base award at neutral confidence",
			pred: models.Prediction{PredictedWinnerID: 1, ConfidenceLevel: 5},
			want: 10,
		},
		{
			name: "confidence bonus above pivot",
			pred: models.Prediction{PredictedWinnerID: 1, ConfidenceLevel: 8},
			want: 16,
		},
		{
			name: "low confidence is not penalized",
			pred: models.Prediction{PredictedWinnerID: 1, ConfidenceLevel: 2},
			want: 10,
		},
		{
			name: "exact score bonus",
			pred: models.Prediction{PredictedWinnerID: 1, ConfidenceLevel: 5, PredictedScore: strPtr("6-4 6-4")},
			want: 25,
		},
		{
			name: "near miss score earns no bonus",
			pred: models.Prediction{PredictedWinnerID: 1, ConfidenceLevel: 5, PredictedScore: strPtr("6-4 6-3")},
			want: 10,
		},
		{
			name: "everything stacked",
			pred: models.Prediction{PredictedWinnerID: 1, ConfidenceLevel: 10, PredictedScore: strPtr("6-4 6-4")},
			want: 35,
		},
		{
			name: "confidence clamped to ten",
			pred: models.Prediction{PredictedWinnerID: 1, ConfidenceLevel: 99},
			want: 20,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PredictionPoints(&tt.pred, 1, actualScore, cfg)
			if got != tt.want {
				t.Fatalf("PredictionPoints() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestRoundPointsTableFallback(t *testing.T) {
	table := DefaultRoundPoints()
	if got := table.PointsFor(3); got != 40 {
		t.Fatalf("PointsFor(3) = %d, want 40", got)
	}
	if got := table.PointsFor(9); got != 10 {
		t.Fatalf("PointsFor(9) = %d, want base fallback 10", got)
	}
}
