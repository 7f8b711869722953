package scoring

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/NicoMontoya/tennisworld/models"
)

var (
	// ErrPairMismatch means the result belongs to a different pair than the
	// record it was applied to.
	ErrPairMismatch = errors.New("match result does not belong to this pair record")
)

// MatchResult is a completed match as delivered by the persistence layer.
// PlayerAID/PlayerBID and the per-side stats arrive in whatever order the
// caller holds them; orientation happens here.
type MatchResult struct {
	MatchID        int
	PlayerAID      int
	PlayerBID      int
	WinnerID       int
	Surface        models.Surface
	Tier           models.Tier
	Date           time.Time
	TournamentName string
	RoundLabel     string
	ScoreText      string
	StatsA         models.SideStats
	StatsB         models.SideStats
}

// NewPairRecord initializes an empty record for the canonical pair of a and b.
func NewPairRecord(a, b int) (*models.PairRecord, error) {
	key, err := NewPairKey(a, b)
	if err != nil {
		return nil, err
	}
	return &models.PairRecord{
		LowID:     key.LowID,
		HighID:    key.HighID,
		BySurface: make(map[models.Surface]*models.PairBucket),
		ByTier:    make(map[models.Tier]*models.PairBucket),
	}, nil
}

// ApplyResult folds one resolved match into the pair record. It is
// idempotent: a result whose MatchID is already in the history is skipped.
// Stale results (older than the recorded last match) still update every
// counter and are inserted into the history at their date position, but do
// not move LastMatchDate/LastMatchID backwards.
func ApplyResult(rec *models.PairRecord, res MatchResult) error {
	key, winnerSide, err := Canonicalize(res.PlayerAID, res.PlayerBID, res.WinnerID)
	if err != nil {
		return err
	}
	if rec.LowID != key.LowID || rec.HighID != key.HighID {
		return fmt.Errorf("%w: record (%d,%d), result (%d,%d)",
			ErrPairMismatch, rec.LowID, rec.HighID, key.LowID, key.HighID)
	}

	for _, h := range rec.MatchHistory {
		if h.MatchID == res.MatchID {
			return nil
		}
	}

	rec.MatchesCount++
	creditWin(&rec.LowWins, &rec.HighWins, winnerSide)

	sb := rec.SurfaceBucket(res.Surface)
	sb.Matches++
	creditWin(&sb.LowWins, &sb.HighWins, winnerSide)

	tb := rec.TierBucket(res.Tier)
	tb.Matches++
	creditWin(&tb.LowWins, &tb.HighWins, winnerSide)

	// Attribute per-side stats by comparing the original IDs against the
	// canonical low side, never by argument position.
	lowStats, highStats := res.StatsA, res.StatsB
	if res.PlayerBID == rec.LowID {
		lowStats, highStats = res.StatsB, res.StatsA
	}
	rec.SetStats.LowSetsWon += lowStats.SetsWon
	rec.SetStats.HighSetsWon += highStats.SetsWon
	rec.SetStats.LowTiebreaksWon += lowStats.TiebreaksWon
	rec.SetStats.HighTiebreaksWon += highStats.TiebreaksWon
	rec.GameStats.LowGamesWon += lowStats.GamesWon
	rec.GameStats.HighGamesWon += highStats.GamesWon
	rec.GameStats.LowServiceGamesPlayed += lowStats.ServiceGamesPlayed
	rec.GameStats.LowServiceGamesHeld += lowStats.ServiceGamesHeld
	rec.GameStats.HighServiceGamesPlayed += highStats.ServiceGamesPlayed
	rec.GameStats.HighServiceGamesHeld += highStats.ServiceGamesHeld

	insertHistory(rec, models.PairMatchSummary{
		MatchID:        res.MatchID,
		Date:           res.Date,
		Surface:        res.Surface,
		WinnerID:       res.WinnerID,
		ScoreText:      res.ScoreText,
		TournamentName: res.TournamentName,
		RoundLabel:     res.RoundLabel,
	})

	if rec.LastMatchDate == nil || res.Date.After(*rec.LastMatchDate) {
		d := res.Date
		id := res.MatchID
		rec.LastMatchDate = &d
		rec.LastMatchID = &id
	}
	return nil
}

func creditWin(low, high *int, side Side) {
	if side == SideHigh {
		*high++
		return
	}
	*low++
}

// insertHistory keeps MatchHistory ordered by date, with equal dates keeping
// their existing relative order.
func insertHistory(rec *models.PairRecord, entry models.PairMatchSummary) {
	idx := sort.Search(len(rec.MatchHistory), func(i int) bool {
		return rec.MatchHistory[i].Date.After(entry.Date)
	})
	rec.MatchHistory = append(rec.MatchHistory, models.PairMatchSummary{})
	copy(rec.MatchHistory[idx+1:], rec.MatchHistory[idx:])
	rec.MatchHistory[idx] = entry
}

// RepairOrientation fixes a record persisted under an inverted ordering
// (LowID > HighID): it swaps the ID pair and every side-attributed counter in
// one pass. History entries keep their original winner IDs, which stay valid
// under either orientation. Running it on a healthy record is a no-op.
func RepairOrientation(rec *models.PairRecord) bool {
	if rec.LowID <= rec.HighID {
		return false
	}
	rec.LowID, rec.HighID = rec.HighID, rec.LowID
	rec.LowWins, rec.HighWins = rec.HighWins, rec.LowWins
	for _, b := range rec.BySurface {
		b.LowWins, b.HighWins = b.HighWins, b.LowWins
	}
	for _, b := range rec.ByTier {
		b.LowWins, b.HighWins = b.HighWins, b.LowWins
	}
	s := &rec.SetStats
	s.LowSetsWon, s.HighSetsWon = s.HighSetsWon, s.LowSetsWon
	s.LowTiebreaksWon, s.HighTiebreaksWon = s.HighTiebreaksWon, s.LowTiebreaksWon
	g := &rec.GameStats
	g.LowGamesWon, g.HighGamesWon = g.HighGamesWon, g.LowGamesWon
	g.LowServiceGamesPlayed, g.HighServiceGamesPlayed = g.HighServiceGamesPlayed, g.LowServiceGamesPlayed
	g.LowServiceGamesHeld, g.HighServiceGamesHeld = g.HighServiceGamesHeld, g.LowServiceGamesHeld
	return true
}

// WinPercentage reports the given side's share of decided matches, 0 when
// the pair has not played.
func WinPercentage(rec *models.PairRecord, side Side) float64 {
	if rec.MatchesCount == 0 {
		return 0
	}
	wins := rec.LowWins
	if side == SideHigh {
		wins = rec.HighWins
	}
	return 100 * float64(wins) / float64(rec.MatchesCount)
}

// Dominance names which side leads a head-to-head.
type Dominance string

const (
	DominanceLow  Dominance = "low"
	DominanceHigh Dominance = "high"
	DominanceTied Dominance = "tied"
)

// DominantSide reports which side leads the rivalry, tied for an empty or
// even record.
func DominantSide(rec *models.PairRecord) Dominance {
	switch {
	case rec.LowWins > rec.HighWins:
		return DominanceLow
	case rec.HighWins > rec.LowWins:
		return DominanceHigh
	default:
		return DominanceTied
	}
}
