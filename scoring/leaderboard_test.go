package scoring

import (
	"testing"
	"time"

	"github.com/NicoMontoya/tennisworld/models"
)

func boolPtr(v bool) *bool { return &v }

func pred(userID, points int, correct *bool) *models.Prediction {
	p := &models.Prediction{UserID: userID, IsCorrect: correct, PointsEarned: points}
	return p
}

func allTimeScope() models.LeaderboardScope {
	return models.LeaderboardScope{
		Kind:      models.TimeframeAllTime,
		StartDate: time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestBuildLeaderboardRanking(t *testing.T) {
	// Users 1 and 2 are tied on points; user 1 has the better accuracy and
	// must take the earlier rank. User 3 trails on points.
	predictions := []*models.Prediction{
		pred(1, 150, boolPtr(true)),
		pred(1, 150, boolPtr(true)),
		pred(2, 150, boolPtr(true)),
		pred(2, 150, boolPtr(true)),
		pred(2, 0, boolPtr(false)),
		pred(3, 100, boolPtr(true)),
	}
	users := map[int]*models.User{
		1: {ID: 1, FirstName: "Ana"},
		2: {ID: 2, FirstName: "Bo"},
		3: {ID: 3, FirstName: "Cy"},
	}

	lb := BuildLeaderboard(allTimeScope(), predictions, users, time.Now())

	if len(lb.Entries) != 3 {
		t.Fatalf("entries = %d, want 3", len(lb.Entries))
	}
	if lb.Entries[0].UserID != 1 || lb.Entries[0].Rank != 1 {
		t.Fatalf("first entry = %+v, want user 1 at rank 1", lb.Entries[0])
	}
	if lb.Entries[1].UserID != 2 || lb.Entries[1].Rank != 2 {
		t.Fatalf("second entry = %+v, want user 2 at rank 2", lb.Entries[1])
	}
	if lb.Entries[2].UserID != 3 || lb.Entries[2].Rank != 3 || lb.Entries[2].Points != 100 {
		t.Fatalf("third entry = %+v, want user 3 at rank 3 with 100 points", lb.Entries[2])
	}
}

func TestBuildLeaderboardTieBreakByUserID(t *testing.T) {
	// Identical points and accuracy: the lower user ID ranks first, so the
	// ordering never depends on map iteration.
	predictions := []*models.Prediction{
		pred(9, 300, boolPtr(true)),
		pred(4, 300, boolPtr(true)),
	}

	lb := BuildLeaderboard(allTimeScope(), predictions, nil, time.Now())

	if lb.Entries[0].UserID != 4 || lb.Entries[1].UserID != 9 {
		t.Fatalf("tie-break order = [%d, %d], want [4, 9]",
			lb.Entries[0].UserID, lb.Entries[1].UserID)
	}
}

func TestBuildLeaderboardAccuracyTwoDecimals(t *testing.T) {
	predictions := []*models.Prediction{
		pred(1, 10, boolPtr(true)),
		pred(1, 0, boolPtr(false)),
		pred(1, 0, boolPtr(false)),
	}

	lb := BuildLeaderboard(allTimeScope(), predictions, nil, time.Now())

	if got := lb.Entries[0].AccuracyPercentage; got != 33.33 {
		t.Fatalf("accuracy = %v, want 33.33", got)
	}
	if lb.Entries[0].PredictionsMade != 3 || lb.Entries[0].CorrectPredictions != 1 {
		t.Fatalf("entry counts = %+v", lb.Entries[0])
	}
}

func TestBuildLeaderboardUnresolvedCountTowardMade(t *testing.T) {
	predictions := []*models.Prediction{
		pred(1, 10, boolPtr(true)),
		pred(1, 0, nil), // still open
	}

	lb := BuildLeaderboard(allTimeScope(), predictions, nil, time.Now())

	e := lb.Entries[0]
	if e.PredictionsMade != 2 || e.CorrectPredictions != 1 || e.Points != 10 {
		t.Fatalf("entry = %+v, want 2 made / 1 correct / 10 points", e)
	}
}

func TestBuildLeaderboardEmptyScope(t *testing.T) {
	lb := BuildLeaderboard(allTimeScope(), nil, nil, time.Now())
	if len(lb.Entries) != 0 {
		t.Fatalf("entries = %d, want empty list", len(lb.Entries))
	}
}

func TestBuildLeaderboardDisplayNameFallback(t *testing.T) {
	nickname := "topspin"
	predictions := []*models.Prediction{
		pred(1, 10, boolPtr(true)),
		pred(2, 5, boolPtr(true)),
	}
	users := map[int]*models.User{
		1: {ID: 1, FirstName: "Ana", Nickname: &nickname},
	}

	lb := BuildLeaderboard(allTimeScope(), predictions, users, time.Now())

	if lb.Entries[0].DisplayName != "topspin" {
		t.Fatalf("display name = %q, want nickname", lb.Entries[0].DisplayName)
	}
	if lb.Entries[1].DisplayName != "User 2" {
		t.Fatalf("fallback name = %q, want synthesized placeholder", lb.Entries[1].DisplayName)
	}
}
