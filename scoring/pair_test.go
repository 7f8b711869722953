package scoring

import (
	"errors"
	"testing"
	"time"

	"github.com/NicoMontoya/tennisworld/models"
)

func day(n int) time.Time {
	return time.Date(2025, 6, n, 12, 0, 0, 0, time.UTC)
}

func clayMastersResult(matchID, a, b, winner int, date time.Time) MatchResult {
	return MatchResult{
		MatchID:        matchID,
		PlayerAID:      a,
		PlayerBID:      b,
		WinnerID:       winner,
		Surface:        models.SurfaceClay,
		Tier:           models.TierMasters,
		Date:           date,
		TournamentName: "Rome Masters",
		RoundLabel:     "QF",
		ScoreText:      "6-4 3-6 7-6",
		StatsA:         models.SideStats{SetsWon: 2, GamesWon: 16, TiebreaksWon: 1, ServiceGamesPlayed: 14, ServiceGamesHeld: 12},
		StatsB:         models.SideStats{SetsWon: 1, GamesWon: 16, ServiceGamesPlayed: 14, ServiceGamesHeld: 11},
	}
}

func TestApplyResultCanonicalScenario(t *testing.T) {
	// Player 7 beats player 3 on clay in a Masters match: the record is
	// stored under (3, 7) and the win lands on the high side.
	rec, err := NewPairRecord(7, 3)
	if err != nil {
		t.Fatalf("NewPairRecord: %v", err)
	}
	if rec.LowID != 3 || rec.HighID != 7 {
		t.Fatalf("record key = (%d,%d), want (3,7)", rec.LowID, rec.HighID)
	}

	if err := ApplyResult(rec, clayMastersResult(101, 7, 3, 7, day(1))); err != nil {
		t.Fatalf("ApplyResult: %v", err)
	}

	if rec.MatchesCount != 1 || rec.LowWins != 0 || rec.HighWins != 1 {
		t.Fatalf("counters = matches %d, low %d, high %d; want 1, 0, 1",
			rec.MatchesCount, rec.LowWins, rec.HighWins)
	}
	clay := rec.BySurface[models.SurfaceClay]
	if clay == nil || clay.Matches != 1 || clay.HighWins != 1 || clay.LowWins != 0 {
		t.Fatalf("clay bucket = %+v, want 1 match credited high", clay)
	}
	masters := rec.ByTier[models.TierMasters]
	if masters == nil || masters.Matches != 1 || masters.HighWins != 1 {
		t.Fatalf("masters bucket = %+v, want 1 match credited high", masters)
	}
	// Player 7 was argument A, so its stats land on the high side.
	if rec.SetStats.HighSetsWon != 2 || rec.SetStats.LowSetsWon != 1 {
		t.Fatalf("set stats = %+v, want high 2 / low 1", rec.SetStats)
	}
	if rec.GameStats.HighServiceGamesHeld != 12 || rec.GameStats.LowServiceGamesHeld != 11 {
		t.Fatalf("game stats = %+v", rec.GameStats)
	}
	if len(rec.MatchHistory) != 1 || rec.MatchHistory[0].WinnerID != 7 {
		t.Fatalf("history = %+v, want one entry with original winner 7", rec.MatchHistory)
	}
	if rec.LastMatchID == nil || *rec.LastMatchID != 101 {
		t.Fatalf("last match id = %v, want 101", rec.LastMatchID)
	}
}

func TestApplyResultConservation(t *testing.T) {
	rec, _ := NewPairRecord(3, 7)
	results := []MatchResult{
		clayMastersResult(1, 3, 7, 3, day(1)),
		clayMastersResult(2, 7, 3, 7, day(2)),
		clayMastersResult(3, 3, 7, 7, day(3)),
	}
	results[2].Surface = models.SurfaceHard
	results[2].Tier = models.TierGrandSlam

	for _, res := range results {
		if err := ApplyResult(rec, res); err != nil {
			t.Fatalf("ApplyResult(%d): %v", res.MatchID, err)
		}
	}

	if rec.LowWins+rec.HighWins != rec.MatchesCount {
		t.Fatalf("conservation violated: %d + %d != %d", rec.LowWins, rec.HighWins, rec.MatchesCount)
	}
	for surface, b := range rec.BySurface {
		if b.LowWins+b.HighWins != b.Matches {
			t.Fatalf("surface %s bucket violates conservation: %+v", surface, b)
		}
	}
	for tier, b := range rec.ByTier {
		if b.LowWins+b.HighWins != b.Matches {
			t.Fatalf("tier %s bucket violates conservation: %+v", tier, b)
		}
	}
	if rec.LowWins != 1 || rec.HighWins != 2 {
		t.Fatalf("wins = low %d / high %d, want 1 / 2", rec.LowWins, rec.HighWins)
	}
}

func TestApplyResultIdempotent(t *testing.T) {
	rec, _ := NewPairRecord(3, 7)
	res := clayMastersResult(55, 3, 7, 7, day(4))

	if err := ApplyResult(rec, res); err != nil {
		t.Fatalf("first apply: %v", err)
	}
	if err := ApplyResult(rec, res); err != nil {
		t.Fatalf("second apply: %v", err)
	}

	if rec.MatchesCount != 1 {
		t.Fatalf("matches count after redelivery = %d, want 1", rec.MatchesCount)
	}
	if len(rec.MatchHistory) != 1 {
		t.Fatalf("history length after redelivery = %d, want 1", len(rec.MatchHistory))
	}
}

func TestApplyResultStaleEvent(t *testing.T) {
	rec, _ := NewPairRecord(3, 7)
	if err := ApplyResult(rec, clayMastersResult(2, 3, 7, 7, day(10))); err != nil {
		t.Fatalf("apply newest: %v", err)
	}
	// An older match arrives late: counters and history must absorb it, but
	// the last-match pointers stay on the newer one.
	if err := ApplyResult(rec, clayMastersResult(1, 3, 7, 3, day(5))); err != nil {
		t.Fatalf("apply stale: %v", err)
	}

	if rec.MatchesCount != 2 || rec.LowWins != 1 {
		t.Fatalf("stale event not counted: matches %d, low wins %d", rec.MatchesCount, rec.LowWins)
	}
	if *rec.LastMatchID != 2 || !rec.LastMatchDate.Equal(day(10)) {
		t.Fatalf("last match moved backwards: id %d date %v", *rec.LastMatchID, rec.LastMatchDate)
	}
	if rec.MatchHistory[0].MatchID != 1 || rec.MatchHistory[1].MatchID != 2 {
		t.Fatalf("history not date ordered: %+v", rec.MatchHistory)
	}
}

func TestApplyResultRejectsWrongPair(t *testing.T) {
	rec, _ := NewPairRecord(3, 7)
	err := ApplyResult(rec, clayMastersResult(9, 3, 8, 8, day(1)))
	if !errors.Is(err, ErrPairMismatch) {
		t.Fatalf("error = %v, want ErrPairMismatch", err)
	}
}

func TestRepairOrientation(t *testing.T) {
	// A record persisted under the inverted convention: every side counter
	// is attached to the wrong half of the key.
	rec := &models.PairRecord{
		LowID:        7,
		HighID:       3,
		MatchesCount: 3,
		LowWins:      2,
		HighWins:     1,
		BySurface: map[models.Surface]*models.PairBucket{
			models.SurfaceClay: {Matches: 3, LowWins: 2, HighWins: 1},
		},
		ByTier: map[models.Tier]*models.PairBucket{
			models.TierMasters: {Matches: 3, LowWins: 2, HighWins: 1},
		},
		SetStats:  models.PairSetStats{LowSetsWon: 6, HighSetsWon: 3, LowTiebreaksWon: 2},
		GameStats: models.PairGameStats{LowGamesWon: 40, HighGamesWon: 30, LowServiceGamesPlayed: 30, LowServiceGamesHeld: 25},
		MatchHistory: []models.PairMatchSummary{
			{MatchID: 1, Date: day(1), WinnerID: 7},
		},
	}

	if !RepairOrientation(rec) {
		t.Fatal("expected repair to report a swap")
	}
	if rec.LowID != 3 || rec.HighID != 7 {
		t.Fatalf("key after repair = (%d,%d), want (3,7)", rec.LowID, rec.HighID)
	}
	if rec.LowWins != 1 || rec.HighWins != 2 {
		t.Fatalf("wins after repair = low %d / high %d, want 1 / 2", rec.LowWins, rec.HighWins)
	}
	if b := rec.BySurface[models.SurfaceClay]; b.LowWins != 1 || b.HighWins != 2 {
		t.Fatalf("surface bucket not swapped: %+v", b)
	}
	if rec.SetStats.HighSetsWon != 6 || rec.SetStats.HighTiebreaksWon != 2 {
		t.Fatalf("set stats not swapped: %+v", rec.SetStats)
	}
	if rec.GameStats.HighServiceGamesHeld != 25 {
		t.Fatalf("game stats not swapped: %+v", rec.GameStats)
	}
	// History keeps the original winner ID untouched.
	if rec.MatchHistory[0].WinnerID != 7 {
		t.Fatalf("history winner relabeled: %+v", rec.MatchHistory[0])
	}

	// Running the repair again must be a no-op.
	if RepairOrientation(rec) {
		t.Fatal("repair is not idempotent")
	}
	if rec.LowWins != 1 || rec.HighWins != 2 {
		t.Fatalf("second repair mutated the record: %+v", rec)
	}
}

func TestDerivedGettersEmptyRecord(t *testing.T) {
	rec, _ := NewPairRecord(3, 7)
	if got := WinPercentage(rec, SideLow); got != 0 {
		t.Fatalf("WinPercentage on empty record = %v, want 0", got)
	}
	if got := DominantSide(rec); got != DominanceTied {
		t.Fatalf("DominantSide on empty record = %v, want tied", got)
	}
}

func TestDerivedGetters(t *testing.T) {
	rec, _ := NewPairRecord(3, 7)
	_ = ApplyResult(rec, clayMastersResult(1, 3, 7, 7, day(1)))
	_ = ApplyResult(rec, clayMastersResult(2, 3, 7, 7, day(2)))
	_ = ApplyResult(rec, clayMastersResult(3, 3, 7, 3, day(3)))

	if got := WinPercentage(rec, SideHigh); got < 66.6 || got > 66.7 {
		t.Fatalf("WinPercentage(high) = %v, want ~66.67", got)
	}
	if got := DominantSide(rec); got != DominanceHigh {
		t.Fatalf("DominantSide = %v, want high", got)
	}
}
