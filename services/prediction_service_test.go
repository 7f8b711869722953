package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/NicoMontoya/tennisworld/models"
	"github.com/NicoMontoya/tennisworld/repositories"
)

type fakePredictionRepository struct {
	nextID      int
	predictions []*models.Prediction
	lastWindow  *repositories.PredictionWindow
}

func newFakePredictionRepository() *fakePredictionRepository {
	return &fakePredictionRepository{nextID: 1}
}

func (f *fakePredictionRepository) Create(_ context.Context, pred *models.Prediction) error {
	for _, existing := range f.predictions {
		if existing.UserID == pred.UserID && existing.MatchID == pred.MatchID {
			return repositories.ErrPredictionConflict
		}
	}
	pred.ID = f.nextID
	f.nextID++
	f.predictions = append(f.predictions, pred)
	return nil
}

func (f *fakePredictionRepository) GetByID(_ context.Context, id int) (*models.Prediction, error) {
	for _, pred := range f.predictions {
		if pred.ID == id {
			return pred, nil
		}
	}
	return nil, repositories.ErrPredictionNotFound
}

func (f *fakePredictionRepository) ListByUser(_ context.Context, userID int) ([]*models.Prediction, error) {
	out := make([]*models.Prediction, 0)
	for _, pred := range f.predictions {
		if pred.UserID == userID {
			out = append(out, pred)
		}
	}
	return out, nil
}

func (f *fakePredictionRepository) ListByMatch(_ context.Context, matchID int) ([]*models.Prediction, error) {
	out := make([]*models.Prediction, 0)
	for _, pred := range f.predictions {
		if pred.MatchID == matchID {
			out = append(out, pred)
		}
	}
	return out, nil
}

// ListByWindow mirrors the postgres contract: StartDate inclusive, EndDate
// exclusive, optional tournament filter.
func (f *fakePredictionRepository) ListByWindow(_ context.Context, window repositories.PredictionWindow) ([]*models.Prediction, error) {
	w := window
	f.lastWindow = &w
	out := make([]*models.Prediction, 0)
	for _, pred := range f.predictions {
		if pred.PredictionDate.Before(window.StartDate) || !pred.PredictionDate.Before(window.EndDate) {
			continue
		}
		if window.TournamentID != nil && pred.TournamentID != *window.TournamentID {
			continue
		}
		out = append(out, pred)
	}
	return out, nil
}

func (f *fakePredictionRepository) Resolve(_ context.Context, _ repositories.SQLExecutor, id int, isCorrect bool, pointsEarned int) error {
	for _, pred := range f.predictions {
		if pred.ID == id {
			correct := isCorrect
			pred.IsCorrect = &correct
			pred.PointsEarned = pointsEarned
			return nil
		}
	}
	return repositories.ErrPredictionNotFound
}

type fakeMatchRepository struct {
	matches map[int]*models.Match
}

func newFakeMatchRepository(matches ...*models.Match) *fakeMatchRepository {
	f := &fakeMatchRepository{matches: make(map[int]*models.Match)}
	for _, m := range matches {
		f.matches[m.ID] = m
	}
	return f
}

func (f *fakeMatchRepository) Create(_ context.Context, _ repositories.SQLExecutor, match *models.Match) error {
	f.matches[match.ID] = match
	return nil
}

func (f *fakeMatchRepository) GetByID(_ context.Context, id int) (*models.Match, error) {
	match, ok := f.matches[id]
	if !ok {
		return nil, repositories.ErrMatchNotFound
	}
	return match, nil
}

func (f *fakeMatchRepository) ListByTournament(_ context.Context, tournamentID int, _ *int, _ *models.MatchStatus) ([]*models.Match, error) {
	out := make([]*models.Match, 0)
	for _, m := range f.matches {
		if m.TournamentID == tournamentID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeMatchRepository) CompleteMatch(_ context.Context, _ repositories.SQLExecutor, id int, winnerID int, score string, stats *models.MatchStats) error {
	match, ok := f.matches[id]
	if !ok {
		return repositories.ErrMatchNotFound
	}
	match.Status = models.MatchStatusCompleted
	match.WinnerID = &winnerID
	match.Score = &score
	match.Stats = stats
	return nil
}

func (f *fakeMatchRepository) Delete(_ context.Context, id int) error {
	delete(f.matches, id)
	return nil
}

func upcomingMatch(id int) *models.Match {
	return &models.Match{
		ID:           id,
		TournamentID: 3,
		P1ID:         10,
		P2ID:         20,
		Round:        2,
		Surface:      models.SurfaceClay,
		Tier:         models.TierMasters,
		MatchTime:    time.Now().Add(48 * time.Hour),
		Status:       models.MatchStatusScheduled,
	}
}

func TestCreatePredictionStampsDate(t *testing.T) {
	repo := newFakePredictionRepository()
	svc := NewPredictionService(repo, newFakeMatchRepository(upcomingMatch(5)))

	before := time.Now().UTC()
	pred, err := svc.CreatePrediction(context.Background(), 1, CreatePredictionInput{
		MatchID:           5,
		PredictedWinnerID: 10,
		ConfidenceLevel:   7,
	})
	if err != nil {
		t.Fatalf("CreatePrediction: %v", err)
	}

	stored, err := repo.GetByID(context.Background(), pred.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if stored.PredictionDate.IsZero() {
		t.Fatal("persisted prediction has zero PredictionDate")
	}
	if stored.PredictionDate.Before(before) || stored.PredictionDate.After(time.Now().UTC()) {
		t.Fatalf("PredictionDate %v not stamped at creation time", stored.PredictionDate)
	}
}

func TestCreatePredictionCarriesVisibility(t *testing.T) {
	repo := newFakePredictionRepository()
	svc := NewPredictionService(repo, newFakeMatchRepository(upcomingMatch(5)))

	pred, err := svc.CreatePrediction(context.Background(), 1, CreatePredictionInput{
		MatchID:           5,
		PredictedWinnerID: 20,
		ConfidenceLevel:   5,
		IsPublic:          true,
	})
	if err != nil {
		t.Fatalf("CreatePrediction: %v", err)
	}
	if !pred.IsPublic {
		t.Fatal("is_public flag was not carried onto the prediction")
	}
}

func TestCreatePredictionRejectsStartedMatch(t *testing.T) {
	match := upcomingMatch(5)
	match.MatchTime = time.Now().Add(-time.Hour)
	svc := NewPredictionService(newFakePredictionRepository(), newFakeMatchRepository(match))

	_, err := svc.CreatePrediction(context.Background(), 1, CreatePredictionInput{
		MatchID:           5,
		PredictedWinnerID: 10,
		ConfidenceLevel:   6,
	})
	if !errors.Is(err, ErrPredictionTooLate) {
		t.Fatalf("expected ErrPredictionTooLate, got %v", err)
	}
}

func TestCreatePredictionRejectsDuplicate(t *testing.T) {
	repo := newFakePredictionRepository()
	svc := NewPredictionService(repo, newFakeMatchRepository(upcomingMatch(5)))
	input := CreatePredictionInput{MatchID: 5, PredictedWinnerID: 10, ConfidenceLevel: 8}

	if _, err := svc.CreatePrediction(context.Background(), 1, input); err != nil {
		t.Fatalf("first CreatePrediction: %v", err)
	}
	if _, err := svc.CreatePrediction(context.Background(), 1, input); !errors.Is(err, ErrDuplicatePrediction) {
		t.Fatalf("expected ErrDuplicatePrediction, got %v", err)
	}
}
