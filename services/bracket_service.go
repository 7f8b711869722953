package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/NicoMontoya/tennisworld/models"
	"github.com/NicoMontoya/tennisworld/realtime"
	"github.com/NicoMontoya/tennisworld/repositories"
	"github.com/NicoMontoya/tennisworld/scoring"
	"golang.org/x/sync/errgroup"
)

// rescoreConcurrency caps how many brackets are rescored in parallel after a
// match resolves.
const rescoreConcurrency = 8

type BracketPickInput struct {
	MatchPosition     int     `json:"match_position" validate:"required,min=1"`
	Round             int     `json:"round" validate:"required,min=1"`
	PredictedWinnerID int     `json:"predicted_winner_id" validate:"required,min=1"`
	PredictedScore    *string `json:"predicted_score,omitempty"`
}

type BracketService interface {
	CreateBracket(ctx context.Context, userID, tournamentID int) (*models.Bracket, error)
	GetBracket(ctx context.Context, id int) (*models.Bracket, error)
	// SetPick upserts one slot pick on a draft bracket. Structural edits on
	// locked or submitted brackets are rejected here, never silently applied.
	SetPick(ctx context.Context, userID, bracketID int, input BracketPickInput) error
	SetChampionPick(ctx context.Context, userID, bracketID, predictedChampionID int) error
	SubmitBracket(ctx context.Context, userID, bracketID int) error
	// LockTournamentBrackets freezes every open bracket of a tournament;
	// called when the tournament goes active.
	LockTournamentBrackets(ctx context.Context, tournamentID int) error
	RescoreBracket(ctx context.Context, bracketID int) (*models.Bracket, error)
	RescoreTournamentBrackets(ctx context.Context, tournamentID int) error
}

type bracketService struct {
	db          *sql.DB
	bracketRepo repositories.BracketRepository
	hub         *realtime.Hub
	scoringCfg  scoring.ScoringConfig
	logger      *slog.Logger
}

func NewBracketService(
	db *sql.DB,
	bracketRepo repositories.BracketRepository,
	hub *realtime.Hub,
	scoringCfg scoring.ScoringConfig,
	logger *slog.Logger,
) BracketService {
	return &bracketService{
		db:          db,
		bracketRepo: bracketRepo,
		hub:         hub,
		scoringCfg:  scoringCfg,
		logger:      logger,
	}
}

func (s *bracketService) CreateBracket(ctx context.Context, userID, tournamentID int) (*models.Bracket, error) {
	bracket := &models.Bracket{
		UserID:       userID,
		TournamentID: tournamentID,
		Status:       models.BracketStatusDraft,
	}
	if err := s.bracketRepo.Create(ctx, bracket); err != nil {
		switch {
		case errors.Is(err, repositories.ErrBracketConflict):
			return nil, ErrBracketExists
		case errors.Is(err, repositories.ErrBracketRefInvalid):
			return nil, fmt.Errorf("%w: unknown user or tournament", ErrValidationFailed)
		}
		return nil, err
	}
	bracket.Predictions = []models.BracketPrediction{}
	return bracket, nil
}

func (s *bracketService) GetBracket(ctx context.Context, id int) (*models.Bracket, error) {
	bracket, err := s.loadBracket(ctx, id)
	if err != nil {
		return nil, err
	}
	scoring.ScoreBracket(bracket, s.scoringCfg)
	return bracket, nil
}

func (s *bracketService) SetPick(ctx context.Context, userID, bracketID int, input BracketPickInput) error {
	bracket, err := s.editableBracket(ctx, userID, bracketID)
	if err != nil {
		return err
	}
	pred := &models.BracketPrediction{
		BracketID:         bracket.ID,
		MatchPosition:     input.MatchPosition,
		Round:             input.Round,
		PredictedWinnerID: input.PredictedWinnerID,
		PredictedScore:    input.PredictedScore,
	}
	return s.bracketRepo.UpsertPrediction(ctx, s.db, pred)
}

func (s *bracketService) SetChampionPick(ctx context.Context, userID, bracketID, predictedChampionID int) error {
	bracket, err := s.editableBracket(ctx, userID, bracketID)
	if err != nil {
		return err
	}
	return s.bracketRepo.SetChampionPick(ctx, s.db, bracket.ID, predictedChampionID)
}

func (s *bracketService) SubmitBracket(ctx context.Context, userID, bracketID int) error {
	bracket, err := s.editableBracket(ctx, userID, bracketID)
	if err != nil {
		return err
	}
	return s.bracketRepo.UpdateStatus(ctx, s.db, bracket.ID, models.BracketStatusSubmitted)
}

func (s *bracketService) LockTournamentBrackets(ctx context.Context, tournamentID int) error {
	brackets, err := s.bracketRepo.ListByTournament(ctx, tournamentID)
	if err != nil {
		return err
	}
	for _, bracket := range brackets {
		if bracket.Status != models.BracketStatusDraft {
			continue
		}
		if err := s.bracketRepo.UpdateStatus(ctx, s.db, bracket.ID, models.BracketStatusLocked); err != nil {
			return err
		}
	}
	return nil
}

func (s *bracketService) RescoreBracket(ctx context.Context, bracketID int) (*models.Bracket, error) {
	bracket, err := s.loadBracket(ctx, bracketID)
	if err != nil {
		return nil, err
	}
	scoring.ScoreBracket(bracket, s.scoringCfg)
	if err := s.bracketRepo.SaveScores(ctx, s.db, bracket); err != nil {
		return nil, err
	}
	return bracket, nil
}

func (s *bracketService) RescoreTournamentBrackets(ctx context.Context, tournamentID int) error {
	brackets, err := s.bracketRepo.ListByTournament(ctx, tournamentID)
	if err != nil {
		return err
	}

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(rescoreConcurrency)
	for _, bracket := range brackets {
		bracket := bracket
		g.Go(func() error {
			scoring.ScoreBracket(bracket, s.scoringCfg)
			if err := s.bracketRepo.SaveScores(gCtx, s.db, bracket); err != nil {
				return fmt.Errorf("failed to rescore bracket %d: %w", bracket.ID, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	s.logger.Info("brackets rescored",
		"tournament_id", tournamentID, "brackets", len(brackets))

	s.hub.BroadcastToRoom(strconv.Itoa(tournamentID), realtime.Message{
		Type:    realtime.EventBracketScored,
		Payload: map[string]int{"tournament_id": tournamentID, "brackets": len(brackets)},
		RoomID:  strconv.Itoa(tournamentID),
	})
	return nil
}

func (s *bracketService) loadBracket(ctx context.Context, id int) (*models.Bracket, error) {
	bracket, err := s.bracketRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrBracketNotFound) {
			return nil, ErrBracketNotFound
		}
		return nil, err
	}
	return bracket, nil
}

// editableBracket loads the bracket and enforces ownership plus draft state
// for structural changes.
func (s *bracketService) editableBracket(ctx context.Context, userID, bracketID int) (*models.Bracket, error) {
	bracket, err := s.loadBracket(ctx, bracketID)
	if err != nil {
		return nil, err
	}
	if bracket.UserID != userID {
		return nil, ErrForbiddenOperation
	}
	if !bracket.Status.Editable() {
		return nil, ErrBracketNotEditable
	}
	return bracket, nil
}
