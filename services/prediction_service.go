package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/NicoMontoya/tennisworld/models"
	"github.com/NicoMontoya/tennisworld/repositories"
)

type CreatePredictionInput struct {
	MatchID           int     `json:"match_id" validate:"required,min=1"`
	PredictedWinnerID int     `json:"predicted_winner_id" validate:"required,min=1"`
	ConfidenceLevel   int     `json:"confidence_level" validate:"required,min=1,max=10"`
	PredictedScore    *string `json:"predicted_score,omitempty"`
	IsPublic          bool    `json:"is_public"`
}

type PredictionService interface {
	CreatePrediction(ctx context.Context, userID int, input CreatePredictionInput) (*models.Prediction, error)
	GetPrediction(ctx context.Context, id int) (*models.Prediction, error)
	ListUserPredictions(ctx context.Context, userID int) ([]*models.Prediction, error)
	ListMatchPredictions(ctx context.Context, matchID int) ([]*models.Prediction, error)
}

type predictionService struct {
	predictionRepo repositories.PredictionRepository
	matchRepo      repositories.MatchRepository
}

func NewPredictionService(
	predictionRepo repositories.PredictionRepository,
	matchRepo repositories.MatchRepository,
) PredictionService {
	return &predictionService{
		predictionRepo: predictionRepo,
		matchRepo:      matchRepo,
	}
}

func (s *predictionService) CreatePrediction(ctx context.Context, userID int, input CreatePredictionInput) (*models.Prediction, error) {
	if input.ConfidenceLevel < 1 || input.ConfidenceLevel > 10 {
		return nil, ErrConfidenceOutOfRange
	}

	match, err := s.matchRepo.GetByID(ctx, input.MatchID)
	if err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return nil, ErrMatchNotFound
		}
		return nil, err
	}
	if match.Status == models.MatchStatusCompleted {
		return nil, ErrMatchAlreadyCompleted
	}
	if !match.MatchTime.After(time.Now()) || match.Status == models.MatchStatusInProgress {
		return nil, ErrPredictionTooLate
	}
	if input.PredictedWinnerID != match.P1ID && input.PredictedWinnerID != match.P2ID {
		return nil, fmt.Errorf("%w: predicted winner is not in the match", ErrValidationFailed)
	}

	prediction := &models.Prediction{
		UserID:            userID,
		MatchID:           input.MatchID,
		TournamentID:      match.TournamentID,
		PredictedWinnerID: input.PredictedWinnerID,
		ConfidenceLevel:   input.ConfidenceLevel,
		PredictedScore:    input.PredictedScore,
		PredictionDate:    time.Now().UTC(),
		IsPublic:          input.IsPublic,
	}
	if err := s.predictionRepo.Create(ctx, prediction); err != nil {
		switch {
		case errors.Is(err, repositories.ErrPredictionConflict):
			return nil, ErrDuplicatePrediction
		case errors.Is(err, repositories.ErrPredictionRefInvalid):
			return nil, fmt.Errorf("%w: unknown user or match", ErrValidationFailed)
		}
		return nil, err
	}
	return prediction, nil
}

func (s *predictionService) GetPrediction(ctx context.Context, id int) (*models.Prediction, error) {
	prediction, err := s.predictionRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrPredictionNotFound) {
			return nil, ErrPredictionNotFound
		}
		return nil, err
	}
	return prediction, nil
}

func (s *predictionService) ListUserPredictions(ctx context.Context, userID int) ([]*models.Prediction, error) {
	return s.predictionRepo.ListByUser(ctx, userID)
}

func (s *predictionService) ListMatchPredictions(ctx context.Context, matchID int) ([]*models.Prediction, error) {
	return s.predictionRepo.ListByMatch(ctx, matchID)
}
