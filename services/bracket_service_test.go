package services

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/NicoMontoya/tennisworld/models"
	"github.com/NicoMontoya/tennisworld/realtime"
	"github.com/NicoMontoya/tennisworld/repositories"
	"github.com/NicoMontoya/tennisworld/scoring"
)

type fakeBracketRepository struct {
	brackets map[int]*models.Bracket
	nextID   int
	upserts  int
	saved    []int
}

func newFakeBracketRepository() *fakeBracketRepository {
	return &fakeBracketRepository{brackets: make(map[int]*models.Bracket), nextID: 1}
}

func (f *fakeBracketRepository) Create(_ context.Context, bracket *models.Bracket) error {
	for _, b := range f.brackets {
		if b.UserID == bracket.UserID && b.TournamentID == bracket.TournamentID {
			return repositories.ErrBracketConflict
		}
	}
	bracket.ID = f.nextID
	f.nextID++
	f.brackets[bracket.ID] = bracket
	return nil
}

func (f *fakeBracketRepository) GetByID(_ context.Context, id int) (*models.Bracket, error) {
	b, ok := f.brackets[id]
	if !ok {
		return nil, repositories.ErrBracketNotFound
	}
	return b, nil
}

func (f *fakeBracketRepository) ListByTournament(_ context.Context, tournamentID int) ([]*models.Bracket, error) {
	var out []*models.Bracket
	for _, b := range f.brackets {
		if b.TournamentID == tournamentID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (f *fakeBracketRepository) UpsertPrediction(_ context.Context, _ repositories.SQLExecutor, pred *models.BracketPrediction) error {
	f.upserts++
	b, ok := f.brackets[pred.BracketID]
	if !ok {
		return repositories.ErrBracketNotFound
	}
	for i := range b.Predictions {
		if b.Predictions[i].MatchPosition == pred.MatchPosition {
			b.Predictions[i] = *pred
			return nil
		}
	}
	b.Predictions = append(b.Predictions, *pred)
	return nil
}

func (f *fakeBracketRepository) SetChampionPick(_ context.Context, _ repositories.SQLExecutor, bracketID, predictedChampionID int) error {
	b, ok := f.brackets[bracketID]
	if !ok {
		return repositories.ErrBracketNotFound
	}
	b.ChampionPick = &models.ChampionPick{PredictedChampionID: predictedChampionID}
	return nil
}

func (f *fakeBracketRepository) UpdateStatus(_ context.Context, _ repositories.SQLExecutor, bracketID int, status models.BracketStatus) error {
	b, ok := f.brackets[bracketID]
	if !ok {
		return repositories.ErrBracketNotFound
	}
	b.Status = status
	return nil
}

func (f *fakeBracketRepository) SetSlotResult(_ context.Context, _ repositories.SQLExecutor, tournamentID, drawPosition, actualWinnerID int, actualScore string) error {
	for _, b := range f.brackets {
		if b.TournamentID != tournamentID {
			continue
		}
		for i := range b.Predictions {
			if b.Predictions[i].MatchPosition == drawPosition {
				winner := actualWinnerID
				score := actualScore
				b.Predictions[i].ActualWinnerID = &winner
				b.Predictions[i].ActualScore = &score
			}
		}
	}
	return nil
}

func (f *fakeBracketRepository) SetActualChampion(_ context.Context, _ repositories.SQLExecutor, tournamentID, championID int) error {
	for _, b := range f.brackets {
		if b.TournamentID == tournamentID {
			id := championID
			b.ActualChampionID = &id
		}
	}
	return nil
}

func (f *fakeBracketRepository) SaveScores(_ context.Context, _ repositories.SQLExecutor, bracket *models.Bracket) error {
	f.saved = append(f.saved, bracket.ID)
	return nil
}

func newTestBracketService(repo repositories.BracketRepository) BracketService {
	hub := realtime.NewHub()
	go hub.Run()
	return NewBracketService(nil, repo, hub, scoring.DefaultScoringConfig(), slog.Default())
}

func TestBracketServiceRejectsDuplicate(t *testing.T) {
	repo := newFakeBracketRepository()
	svc := newTestBracketService(repo)
	ctx := context.Background()

	if _, err := svc.CreateBracket(ctx, 1, 10); err != nil {
		t.Fatalf("first CreateBracket: %v", err)
	}
	_, err := svc.CreateBracket(ctx, 1, 10)
	if !errors.Is(err, ErrBracketExists) {
		t.Fatalf("expected ErrBracketExists, got %v", err)
	}
}

func TestBracketServiceSetPickOwnershipAndState(t *testing.T) {
	repo := newFakeBracketRepository()
	svc := newTestBracketService(repo)
	ctx := context.Background()

	bracket, err := svc.CreateBracket(ctx, 1, 10)
	if err != nil {
		t.Fatalf("CreateBracket: %v", err)
	}

	pick := BracketPickInput{MatchPosition: 1, Round: 2, PredictedWinnerID: 7}
	if err := svc.SetPick(ctx, 1, bracket.ID, pick); err != nil {
		t.Fatalf("SetPick by owner: %v", err)
	}

	if err := svc.SetPick(ctx, 2, bracket.ID, pick); !errors.Is(err, ErrForbiddenOperation) {
		t.Fatalf("expected ErrForbiddenOperation for non-owner, got %v", err)
	}

	if err := svc.SubmitBracket(ctx, 1, bracket.ID); err != nil {
		t.Fatalf("SubmitBracket: %v", err)
	}
	if err := svc.SetPick(ctx, 1, bracket.ID, pick); !errors.Is(err, ErrBracketNotEditable) {
		t.Fatalf("expected ErrBracketNotEditable after submit, got %v", err)
	}
}

func TestBracketServiceLockTournamentFreezesDraftsOnly(t *testing.T) {
	repo := newFakeBracketRepository()
	svc := newTestBracketService(repo)
	ctx := context.Background()

	draft, _ := svc.CreateBracket(ctx, 1, 10)
	submitted, _ := svc.CreateBracket(ctx, 2, 10)
	if err := svc.SubmitBracket(ctx, 2, submitted.ID); err != nil {
		t.Fatalf("SubmitBracket: %v", err)
	}

	if err := svc.LockTournamentBrackets(ctx, 10); err != nil {
		t.Fatalf("LockTournamentBrackets: %v", err)
	}

	if repo.brackets[draft.ID].Status != models.BracketStatusLocked {
		t.Fatalf("draft bracket not locked, status %s", repo.brackets[draft.ID].Status)
	}
	if repo.brackets[submitted.ID].Status != models.BracketStatusSubmitted {
		t.Fatalf("submitted bracket should keep its status, got %s", repo.brackets[submitted.ID].Status)
	}
}

func TestBracketServiceRescoreTournament(t *testing.T) {
	repo := newFakeBracketRepository()
	svc := newTestBracketService(repo)
	ctx := context.Background()

	bracket, _ := svc.CreateBracket(ctx, 1, 10)
	if err := svc.SetPick(ctx, 1, bracket.ID, BracketPickInput{MatchPosition: 3, Round: 1, PredictedWinnerID: 7}); err != nil {
		t.Fatalf("SetPick: %v", err)
	}
	if err := svc.SetChampionPick(ctx, 1, bracket.ID, 7); err != nil {
		t.Fatalf("SetChampionPick: %v", err)
	}

	// The final resolves in player 7's favor.
	if err := repo.SetSlotResult(ctx, nil, 10, 3, 7, "6-4 6-4"); err != nil {
		t.Fatalf("SetSlotResult: %v", err)
	}
	if err := repo.SetActualChampion(ctx, nil, 10, 7); err != nil {
		t.Fatalf("SetActualChampion: %v", err)
	}

	if err := svc.RescoreTournamentBrackets(ctx, 10); err != nil {
		t.Fatalf("RescoreTournamentBrackets: %v", err)
	}

	if len(repo.saved) != 1 {
		t.Fatalf("expected 1 saved bracket, got %d", len(repo.saved))
	}
	got := repo.brackets[bracket.ID]
	want := scoring.DefaultRoundPoints().PointsFor(1) + scoring.DefaultScoringConfig().ChampionBonus
	if got.TotalScore != want {
		t.Fatalf("expected total score %d, got %d", want, got.TotalScore)
	}
	if got.CorrectPicks != 2 || got.TotalResolvedPicks != 2 {
		t.Fatalf("unexpected pick tallies: correct=%d resolved=%d", got.CorrectPicks, got.TotalResolvedPicks)
	}
}
