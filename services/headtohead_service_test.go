package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/NicoMontoya/tennisworld/models"
	"github.com/NicoMontoya/tennisworld/repositories"
	"github.com/NicoMontoya/tennisworld/scoring"
)

type fakePairRecordRepository struct {
	records map[[2]int]*models.PairRecord
	saves   int
}

func newFakePairRecordRepository() *fakePairRecordRepository {
	return &fakePairRecordRepository{records: make(map[[2]int]*models.PairRecord)}
}

func (f *fakePairRecordRepository) GetByPair(_ context.Context, playerA, playerB int) (*models.PairRecord, error) {
	low, high := playerA, playerB
	if low > high {
		low, high = high, low
	}
	rec, ok := f.records[[2]int{low, high}]
	if !ok {
		return nil, repositories.ErrPairRecordNotFound
	}
	return rec, nil
}

func (f *fakePairRecordRepository) Save(_ context.Context, _ repositories.SQLExecutor, rec *models.PairRecord) error {
	f.records[[2]int{rec.LowID, rec.HighID}] = rec
	f.saves++
	return nil
}

func (f *fakePairRecordRepository) ListAll(_ context.Context) ([]*models.PairRecord, error) {
	out := make([]*models.PairRecord, 0, len(f.records))
	for _, rec := range f.records {
		out = append(out, rec)
	}
	return out, nil
}

func testResult(matchID, a, b, winner int) scoring.MatchResult {
	return scoring.MatchResult{
		MatchID:   matchID,
		PlayerAID: a,
		PlayerBID: b,
		WinnerID:  winner,
		Surface:   models.SurfaceHard,
		Tier:      models.TierATP250,
		Date:      time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC).Add(time.Duration(matchID) * time.Hour),
		ScoreText: "6-4 6-4",
	}
}

func TestHeadToHeadRecordResultCreatesCanonicalRecord(t *testing.T) {
	repo := newFakePairRecordRepository()
	svc := NewHeadToHeadService(repo, nil)

	rec, err := svc.RecordResult(context.Background(), testResult(1, 42, 7, 42))
	if err != nil {
		t.Fatalf("RecordResult: %v", err)
	}
	if rec.LowID != 7 || rec.HighID != 42 {
		t.Fatalf("record not canonical: (%d,%d)", rec.LowID, rec.HighID)
	}
	if rec.HighWins != 1 || rec.LowWins != 0 {
		t.Fatalf("winner credited to wrong side: low=%d high=%d", rec.LowWins, rec.HighWins)
	}
}

func TestHeadToHeadRecordResultAccumulatesBothOrders(t *testing.T) {
	repo := newFakePairRecordRepository()
	svc := NewHeadToHeadService(repo, nil)
	ctx := context.Background()

	if _, err := svc.RecordResult(ctx, testResult(1, 7, 42, 7)); err != nil {
		t.Fatalf("first result: %v", err)
	}
	rec, err := svc.RecordResult(ctx, testResult(2, 42, 7, 7))
	if err != nil {
		t.Fatalf("second result: %v", err)
	}
	if rec.MatchesCount != 2 {
		t.Fatalf("expected 2 matches, got %d", rec.MatchesCount)
	}
	if rec.LowWins != 2 {
		t.Fatalf("expected player 7 to hold both wins, got low=%d high=%d", rec.LowWins, rec.HighWins)
	}
}

func TestHeadToHeadRecordResultRejectsSelfPair(t *testing.T) {
	svc := NewHeadToHeadService(newFakePairRecordRepository(), nil)

	_, err := svc.RecordResult(context.Background(), testResult(1, 5, 5, 5))
	if !errors.Is(err, ErrSelfPairing) {
		t.Fatalf("expected ErrSelfPairing, got %v", err)
	}
}

func TestHeadToHeadGetPairRecordOrderInsensitive(t *testing.T) {
	repo := newFakePairRecordRepository()
	svc := NewHeadToHeadService(repo, nil)
	ctx := context.Background()

	if _, err := svc.RecordResult(ctx, testResult(1, 3, 9, 9)); err != nil {
		t.Fatalf("RecordResult: %v", err)
	}

	forward, err := svc.GetPairRecord(ctx, 3, 9)
	if err != nil {
		t.Fatalf("GetPairRecord(3,9): %v", err)
	}
	reverse, err := svc.GetPairRecord(ctx, 9, 3)
	if err != nil {
		t.Fatalf("GetPairRecord(9,3): %v", err)
	}
	if forward != reverse {
		t.Fatal("expected the same record for both argument orders")
	}
}

func TestHeadToHeadGetPairRecordNotFound(t *testing.T) {
	svc := NewHeadToHeadService(newFakePairRecordRepository(), nil)

	_, err := svc.GetPairRecord(context.Background(), 1, 2)
	if !errors.Is(err, ErrPairNotFound) {
		t.Fatalf("expected ErrPairNotFound, got %v", err)
	}
}

func TestHeadToHeadRepairOrientations(t *testing.T) {
	repo := newFakePairRecordRepository()
	svc := NewHeadToHeadService(repo, nil)
	ctx := context.Background()

	if _, err := svc.RecordResult(ctx, testResult(1, 2, 8, 2)); err != nil {
		t.Fatalf("RecordResult: %v", err)
	}

	// Simulate a record persisted with an inverted ordering.
	rec := repo.records[[2]int{2, 8}]
	rec.LowID, rec.HighID = rec.HighID, rec.LowID
	rec.LowWins, rec.HighWins = rec.HighWins, rec.LowWins

	repaired, err := svc.RepairOrientations(ctx)
	if err != nil {
		t.Fatalf("RepairOrientations: %v", err)
	}
	if repaired != 1 {
		t.Fatalf("expected 1 repaired record, got %d", repaired)
	}
	if rec.LowID != 2 || rec.HighID != 8 || rec.LowWins != 1 {
		t.Fatalf("repair left record inconsistent: (%d,%d) low=%d high=%d",
			rec.LowID, rec.HighID, rec.LowWins, rec.HighWins)
	}

	again, err := svc.RepairOrientations(ctx)
	if err != nil {
		t.Fatalf("second RepairOrientations: %v", err)
	}
	if again != 0 {
		t.Fatalf("repair is not idempotent: repaired %d records on second run", again)
	}
}
