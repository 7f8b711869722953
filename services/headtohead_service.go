package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/NicoMontoya/tennisworld/models"
	"github.com/NicoMontoya/tennisworld/repositories"
	"github.com/NicoMontoya/tennisworld/scoring"
)

// HeadToHeadService maintains the canonical pairwise records between
// players. Reads accept the two player IDs in either order.
type HeadToHeadService interface {
	RecordResult(ctx context.Context, result scoring.MatchResult) (*models.PairRecord, error)
	GetPairRecord(ctx context.Context, playerA, playerB int) (*models.PairRecord, error)
	// RepairOrientations scans every stored record and fixes any persisted
	// under an inverted low/high ordering. Returns the number repaired; safe
	// to run repeatedly.
	RepairOrientations(ctx context.Context) (int, error)
}

type headToHeadService struct {
	pairRepo repositories.PairRecordRepository
	exec     repositories.SQLExecutor

	// mu serializes writers per canonical pair key, so two matches between
	// the same players cannot interleave their read-modify-write cycles.
	mu    sync.Mutex
	locks map[scoring.PairKey]*sync.Mutex
}

func NewHeadToHeadService(pairRepo repositories.PairRecordRepository, exec repositories.SQLExecutor) HeadToHeadService {
	return &headToHeadService{
		pairRepo: pairRepo,
		exec:     exec,
		locks:    make(map[scoring.PairKey]*sync.Mutex),
	}
}

func (s *headToHeadService) RecordResult(ctx context.Context, result scoring.MatchResult) (*models.PairRecord, error) {
	key, _, err := scoring.Canonicalize(result.PlayerAID, result.PlayerBID, result.WinnerID)
	if err != nil {
		return nil, s.mapCanonicalError(err)
	}

	lock := s.pairLock(key)
	lock.Lock()
	defer lock.Unlock()

	rec, err := s.pairRepo.GetByPair(ctx, key.LowID, key.HighID)
	if err != nil {
		if !errors.Is(err, repositories.ErrPairRecordNotFound) {
			return nil, fmt.Errorf("failed to load pair record (%d,%d): %w", key.LowID, key.HighID, err)
		}
		rec, err = scoring.NewPairRecord(key.LowID, key.HighID)
		if err != nil {
			return nil, s.mapCanonicalError(err)
		}
	}

	if err := scoring.ApplyResult(rec, result); err != nil {
		return nil, fmt.Errorf("failed to apply match %d to pair (%d,%d): %w",
			result.MatchID, key.LowID, key.HighID, err)
	}

	if err := s.pairRepo.Save(ctx, s.exec, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

func (s *headToHeadService) GetPairRecord(ctx context.Context, playerA, playerB int) (*models.PairRecord, error) {
	if playerA == playerB {
		return nil, fmt.Errorf("%w: %w", ErrValidationFailed, ErrSelfPairing)
	}
	rec, err := s.pairRepo.GetByPair(ctx, playerA, playerB)
	if err != nil {
		if errors.Is(err, repositories.ErrPairRecordNotFound) {
			return nil, ErrPairNotFound
		}
		return nil, fmt.Errorf("failed to load pair record: %w", err)
	}
	return rec, nil
}

func (s *headToHeadService) RepairOrientations(ctx context.Context) (int, error) {
	records, err := s.pairRepo.ListAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list pair records for repair: %w", err)
	}

	repaired := 0
	for _, rec := range records {
		if !scoring.RepairOrientation(rec) {
			continue
		}
		if err := s.pairRepo.Save(ctx, s.exec, rec); err != nil {
			return repaired, fmt.Errorf("failed to save repaired pair record %d: %w", rec.ID, err)
		}
		repaired++
	}
	return repaired, nil
}

func (s *headToHeadService) pairLock(key scoring.PairKey) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.locks[key]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[key] = lock
	}
	return lock
}

func (s *headToHeadService) mapCanonicalError(err error) error {
	switch {
	case errors.Is(err, scoring.ErrSelfPair):
		return fmt.Errorf("%w: %w", ErrValidationFailed, ErrSelfPairing)
	case errors.Is(err, scoring.ErrWinnerNotInPair):
		return fmt.Errorf("%w: %w", ErrValidationFailed, ErrWinnerNotInMatch)
	default:
		return err
	}
}
