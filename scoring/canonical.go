package scoring

import "errors"

var (
	ErrSelfPair        = errors.New("pair requires two distinct players")
	ErrWinnerNotInPair = errors.New("winner is not one of the pair's players")
)

// Side identifies which half of a canonical pair a value belongs to.
type Side int

const (
	SideLow Side = iota
	SideHigh
)

func (s Side) String() string {
	if s == SideHigh {
		return "high"
	}
	return "low"
}

// PairKey is the canonical identity of an unordered player pair:
// LowID < HighID regardless of how the players were supplied.
type PairKey struct {
	LowID  int
	HighID int
}

// NewPairKey normalizes two player IDs into a canonical key.
func NewPairKey(a, b int) (PairKey, error) {
	if a == b {
		return PairKey{}, ErrSelfPair
	}
	if a < b {
		return PairKey{LowID: a, HighID: b}, nil
	}
	return PairKey{LowID: b, HighID: a}, nil
}

// Canonicalize normalizes a pair plus its winner in one step, so that every
// counter mutation downstream works on the already-oriented result and no
// field can be attributed to the wrong side. The winner is reported relative
// to the canonical key, not to the argument order.
func Canonicalize(a, b, winnerID int) (PairKey, Side, error) {
	key, err := NewPairKey(a, b)
	if err != nil {
		return PairKey{}, SideLow, err
	}
	switch winnerID {
	case key.LowID:
		return key, SideLow, nil
	case key.HighID:
		return key, SideHigh, nil
	}
	return PairKey{}, SideLow, ErrWinnerNotInPair
}
