package services

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/NicoMontoya/tennisworld/models"
	"github.com/NicoMontoya/tennisworld/realtime"
	"github.com/NicoMontoya/tennisworld/repositories"
	"github.com/NicoMontoya/tennisworld/scoring"
)

type fakeTournamentRepository struct {
	tournaments map[int]*models.Tournament
}

func newFakeTournamentRepository(tournaments ...*models.Tournament) *fakeTournamentRepository {
	f := &fakeTournamentRepository{tournaments: make(map[int]*models.Tournament)}
	for _, trn := range tournaments {
		f.tournaments[trn.ID] = trn
	}
	return f
}

func (f *fakeTournamentRepository) Create(_ context.Context, t *models.Tournament) error {
	f.tournaments[t.ID] = t
	return nil
}

func (f *fakeTournamentRepository) GetByID(_ context.Context, id int) (*models.Tournament, error) {
	trn, ok := f.tournaments[id]
	if !ok {
		return nil, repositories.ErrTournamentNotFound
	}
	return trn, nil
}

func (f *fakeTournamentRepository) List(_ context.Context, _ repositories.TournamentFilter) ([]*models.Tournament, error) {
	out := make([]*models.Tournament, 0, len(f.tournaments))
	for _, trn := range f.tournaments {
		out = append(out, trn)
	}
	return out, nil
}

func (f *fakeTournamentRepository) Update(_ context.Context, t *models.Tournament) error {
	f.tournaments[t.ID] = t
	return nil
}

func (f *fakeTournamentRepository) UpdateStatus(_ context.Context, _ repositories.SQLExecutor, id int, status models.TournamentStatus) error {
	trn, ok := f.tournaments[id]
	if !ok {
		return repositories.ErrTournamentNotFound
	}
	trn.Status = status
	return nil
}

func (f *fakeTournamentRepository) SetWinner(_ context.Context, _ repositories.SQLExecutor, id int, winnerID int) error {
	trn, ok := f.tournaments[id]
	if !ok {
		return repositories.ErrTournamentNotFound
	}
	trn.WinnerID = &winnerID
	return nil
}

func (f *fakeTournamentRepository) ListDueForStatusChange(_ context.Context, _ time.Time) ([]*models.Tournament, error) {
	return nil, nil
}

func (f *fakeTournamentRepository) Delete(_ context.Context, id int) error {
	delete(f.tournaments, id)
	return nil
}

func newTestMatchService(tournamentRepo repositories.TournamentRepository, pairRepo repositories.PairRecordRepository) *matchService {
	hub := realtime.NewHub()
	go hub.Run()
	svc := NewMatchService(
		nil,
		newFakeMatchRepository(),
		tournamentRepo,
		newFakePredictionRepository(),
		newFakeBracketRepository(),
		NewHeadToHeadService(pairRepo, nil),
		nil,
		nil,
		hub,
		scoring.DefaultScoringConfig(),
		slog.Default(),
	)
	return svc.(*matchService)
}

func TestMatchResultCarriesTournamentName(t *testing.T) {
	tournamentRepo := newFakeTournamentRepository(&models.Tournament{ID: 3, Name: "Indian Wells Masters"})
	pairRepo := newFakePairRecordRepository()
	svc := newTestMatchService(tournamentRepo, pairRepo)

	match := upcomingMatch(5)
	input := CompleteMatchInput{WinnerID: match.P1ID, Score: "6-3 6-2"}

	result := svc.matchResult(context.Background(), match, input)
	if result.TournamentName != "Indian Wells Masters" {
		t.Fatalf("expected tournament name in result, got %q", result.TournamentName)
	}

	rec, err := svc.headToHead.RecordResult(context.Background(), result)
	if err != nil {
		t.Fatalf("RecordResult: %v", err)
	}
	if len(rec.MatchHistory) != 1 || rec.MatchHistory[0].TournamentName != "Indian Wells Masters" {
		t.Fatalf("tournament name missing from pair history: %+v", rec.MatchHistory)
	}
}

func TestMatchResultSurvivesMissingTournament(t *testing.T) {
	svc := newTestMatchService(newFakeTournamentRepository(), newFakePairRecordRepository())

	match := upcomingMatch(5)
	result := svc.matchResult(context.Background(), match, CompleteMatchInput{WinnerID: match.P2ID, Score: "7-5 6-4"})
	if result.TournamentName != "" {
		t.Fatalf("expected empty tournament name, got %q", result.TournamentName)
	}
	if result.WinnerID != match.P2ID {
		t.Fatalf("winner lost in translation: %d", result.WinnerID)
	}
}
