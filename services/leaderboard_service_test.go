package services

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/NicoMontoya/tennisworld/models"
	"github.com/NicoMontoya/tennisworld/realtime"
)

type fakeUserRepository struct {
	users map[int]*models.User
}

func newFakeUserRepository(users ...*models.User) *fakeUserRepository {
	f := &fakeUserRepository{users: make(map[int]*models.User)}
	for _, u := range users {
		f.users[u.ID] = u
	}
	return f
}

func (f *fakeUserRepository) Create(_ context.Context, user *models.User) error {
	f.users[user.ID] = user
	return nil
}

func (f *fakeUserRepository) GetByID(_ context.Context, id int) (*models.User, error) {
	return f.users[id], nil
}

func (f *fakeUserRepository) GetByEmail(_ context.Context, _ string) (*models.User, error) {
	return nil, nil
}

func (f *fakeUserRepository) GetByConfirmationToken(_ context.Context, _ string) (*models.User, error) {
	return nil, nil
}

func (f *fakeUserRepository) Update(_ context.Context, user *models.User) error {
	f.users[user.ID] = user
	return nil
}

func (f *fakeUserRepository) Delete(_ context.Context, id int) error {
	delete(f.users, id)
	return nil
}

func (f *fakeUserRepository) ListByIDs(_ context.Context, ids []int) ([]*models.User, error) {
	out := make([]*models.User, 0, len(ids))
	for _, id := range ids {
		if u, ok := f.users[id]; ok {
			out = append(out, u)
		}
	}
	return out, nil
}

func resolvedPrediction(id, userID int, date time.Time, points int) *models.Prediction {
	correct := true
	return &models.Prediction{
		ID:                id,
		UserID:            userID,
		MatchID:           id,
		TournamentID:      3,
		PredictedWinnerID: 10,
		ConfidenceLevel:   6,
		PredictionDate:    date,
		IsCorrect:         &correct,
		PointsEarned:      points,
	}
}

func newTestLeaderboardService(predRepo *fakePredictionRepository, userRepo *fakeUserRepository) LeaderboardService {
	hub := realtime.NewHub()
	go hub.Run()
	return NewLeaderboardService(predRepo, userRepo, nil, nil, hub, slog.Default())
}

// A prediction stamped exactly at a month boundary belongs to the later
// month only; monthly windows are half-open.
func TestMonthlyLeaderboardBoundaryPredictionCountsOnce(t *testing.T) {
	predRepo := newFakePredictionRepository()
	predRepo.predictions = []*models.Prediction{
		resolvedPrediction(1, 1, time.Date(2026, time.March, 20, 15, 0, 0, 0, time.UTC), 10),
		resolvedPrediction(2, 2, time.Date(2026, time.April, 1, 0, 0, 0, 0, time.UTC), 12),
	}
	userRepo := newFakeUserRepository(
		&models.User{ID: 1, FirstName: "Iga"},
		&models.User{ID: 2, FirstName: "Aryna"},
	)
	svc := newTestLeaderboardService(predRepo, userRepo)
	ctx := context.Background()

	march, err := svc.MonthlyLeaderboard(ctx, 2026, time.March)
	if err != nil {
		t.Fatalf("MonthlyLeaderboard(March): %v", err)
	}
	if len(march.Entries) != 1 || march.Entries[0].UserID != 1 {
		t.Fatalf("March board should hold only user 1, got %+v", march.Entries)
	}
	if end := predRepo.lastWindow.EndDate; !end.Equal(time.Date(2026, time.April, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("March window should end at April 1, got %v", end)
	}

	april, err := svc.MonthlyLeaderboard(ctx, 2026, time.April)
	if err != nil {
		t.Fatalf("MonthlyLeaderboard(April): %v", err)
	}
	if len(april.Entries) != 1 || april.Entries[0].UserID != 2 {
		t.Fatalf("April board should hold only user 2, got %+v", april.Entries)
	}
}

func TestSeasonLeaderboardAggregatesYear(t *testing.T) {
	predRepo := newFakePredictionRepository()
	predRepo.predictions = []*models.Prediction{
		resolvedPrediction(1, 1, time.Date(2026, time.February, 2, 9, 0, 0, 0, time.UTC), 10),
		resolvedPrediction(2, 1, time.Date(2026, time.November, 8, 9, 0, 0, 0, time.UTC), 25),
		resolvedPrediction(3, 2, time.Date(2025, time.December, 31, 23, 59, 59, 0, time.UTC), 40),
	}
	userRepo := newFakeUserRepository(&models.User{ID: 1, FirstName: "Iga"})
	svc := newTestLeaderboardService(predRepo, userRepo)

	board, err := svc.SeasonLeaderboard(context.Background(), 2026)
	if err != nil {
		t.Fatalf("SeasonLeaderboard: %v", err)
	}
	if len(board.Entries) != 1 {
		t.Fatalf("season board should exclude the previous year, got %+v", board.Entries)
	}
	if board.Entries[0].Points != 35 {
		t.Fatalf("expected 35 points for user 1, got %d", board.Entries[0].Points)
	}
}
