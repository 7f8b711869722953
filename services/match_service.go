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
)

type CompleteMatchInput struct {
	WinnerID int                `json:"winner_id"`
	Score    string             `json:"score"`
	Stats    *models.MatchStats `json:"stats,omitempty"`
}

type MatchService interface {
	CreateMatch(ctx context.Context, match *models.Match) error
	GetMatch(ctx context.Context, id int) (*models.Match, error)
	ListMatchesByTournament(ctx context.Context, tournamentID int) ([]*models.Match, error)
	// CompleteMatch resolves a match and fans the result out: head-to-head
	// update, raw prediction settlement, bracket slot results and rescoring,
	// and a room broadcast.
	CompleteMatch(ctx context.Context, matchID int, input CompleteMatchInput) (*models.Match, error)
}

type matchService struct {
	db             *sql.DB
	matchRepo      repositories.MatchRepository
	tournamentRepo repositories.TournamentRepository
	predictionRepo repositories.PredictionRepository
	bracketRepo    repositories.BracketRepository
	headToHead     HeadToHeadService
	brackets       BracketService
	leaderboards   LeaderboardService
	hub            *realtime.Hub
	scoringCfg     scoring.ScoringConfig
	logger         *slog.Logger
}

func NewMatchService(
	db *sql.DB,
	matchRepo repositories.MatchRepository,
	tournamentRepo repositories.TournamentRepository,
	predictionRepo repositories.PredictionRepository,
	bracketRepo repositories.BracketRepository,
	headToHead HeadToHeadService,
	brackets BracketService,
	leaderboards LeaderboardService,
	hub *realtime.Hub,
	scoringCfg scoring.ScoringConfig,
	logger *slog.Logger,
) MatchService {
	return &matchService{
		db:             db,
		matchRepo:      matchRepo,
		tournamentRepo: tournamentRepo,
		predictionRepo: predictionRepo,
		bracketRepo:    bracketRepo,
		headToHead:     headToHead,
		brackets:       brackets,
		leaderboards:   leaderboards,
		hub:            hub,
		scoringCfg:     scoringCfg,
		logger:         logger,
	}
}

func (s *matchService) CreateMatch(ctx context.Context, match *models.Match) error {
	if match.P1ID == match.P2ID {
		return fmt.Errorf("%w: %w", ErrValidationFailed, ErrSelfPairing)
	}
	if match.Round < 1 {
		return fmt.Errorf("%w: round must be at least 1 (1 = final)", ErrValidationFailed)
	}
	if match.Status == "" {
		match.Status = models.MatchStatusScheduled
	}
	if err := s.matchRepo.Create(ctx, s.db, match); err != nil {
		return mapMatchRepoError(err)
	}
	return nil
}

func (s *matchService) GetMatch(ctx context.Context, id int) (*models.Match, error) {
	match, err := s.matchRepo.GetByID(ctx, id)
	if err != nil {
		return nil, mapMatchRepoError(err)
	}
	return match, nil
}

func (s *matchService) ListMatchesByTournament(ctx context.Context, tournamentID int) ([]*models.Match, error) {
	matches, err := s.matchRepo.ListByTournament(ctx, tournamentID, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list matches for tournament %d: %w", tournamentID, err)
	}
	return matches, nil
}

func (s *matchService) CompleteMatch(ctx context.Context, matchID int, input CompleteMatchInput) (*models.Match, error) {
	match, err := s.matchRepo.GetByID(ctx, matchID)
	if err != nil {
		return nil, mapMatchRepoError(err)
	}
	if match.Status == models.MatchStatusCompleted {
		return nil, ErrMatchAlreadyCompleted
	}
	if input.WinnerID != match.P1ID && input.WinnerID != match.P2ID {
		return nil, fmt.Errorf("%w: %w", ErrValidationFailed, ErrWinnerNotInMatch)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin match completion transaction: %w", err)
	}
	defer tx.Rollback()

	if err := s.matchRepo.CompleteMatch(ctx, tx, matchID, input.WinnerID, input.Score, input.Stats); err != nil {
		return nil, mapMatchRepoError(err)
	}
	if err := s.bracketRepo.SetSlotResult(ctx, tx, match.TournamentID, match.DrawPosition, input.WinnerID, input.Score); err != nil {
		return nil, err
	}
	// The final decides the tournament champion.
	if match.Round == 1 {
		if err := s.tournamentRepo.SetWinner(ctx, tx, match.TournamentID, input.WinnerID); err != nil {
			return nil, err
		}
		if err := s.bracketRepo.SetActualChampion(ctx, tx, match.TournamentID, input.WinnerID); err != nil {
			return nil, err
		}
	}
	if err := s.settlePredictions(ctx, tx, match, input); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit match completion: %w", err)
	}

	match.Status = models.MatchStatusCompleted
	match.WinnerID = &input.WinnerID
	match.Score = &input.Score
	match.Stats = input.Stats

	if _, err := s.headToHead.RecordResult(ctx, s.matchResult(ctx, match, input)); err != nil {
		// Head-to-head is rebuilt from the same match rows, so a failure
		// here is logged and retried by the repair job rather than undoing
		// the completed match.
		s.logger.Error("failed to record head-to-head result",
			slog.Int("match_id", match.ID), slog.Any("error", err))
	}

	if err := s.brackets.RescoreTournamentBrackets(ctx, match.TournamentID); err != nil {
		s.logger.Error("failed to rescore brackets after match completion",
			slog.Int("tournament_id", match.TournamentID), slog.Any("error", err))
	}

	s.leaderboards.InvalidateForMatch(ctx, match.TournamentID, match.MatchTime)

	s.hub.BroadcastToRoom(strconv.Itoa(match.TournamentID), realtime.Message{
		Type:    realtime.EventMatchCompleted,
		Payload: match,
		RoomID:  strconv.Itoa(match.TournamentID),
	})
	return match, nil
}

// settlePredictions marks every raw prediction on the match as resolved and
// awards its points inside the completion transaction.
func (s *matchService) settlePredictions(ctx context.Context, tx *sql.Tx, match *models.Match, input CompleteMatchInput) error {
	predictions, err := s.predictionRepo.ListByMatch(ctx, match.ID)
	if err != nil {
		return fmt.Errorf("failed to list predictions of match %d: %w", match.ID, err)
	}
	for _, pred := range predictions {
		points := scoring.PredictionPoints(pred, input.WinnerID, &input.Score, s.scoringCfg)
		correct := pred.PredictedWinnerID == input.WinnerID
		if err := s.predictionRepo.Resolve(ctx, tx, pred.ID, correct, points); err != nil {
			return err
		}
	}
	return nil
}

// matchResult builds the head-to-head payload, loading the tournament first
// so its name lands in the pair's match history.
func (s *matchService) matchResult(ctx context.Context, match *models.Match, input CompleteMatchInput) scoring.MatchResult {
	if match.Trn == nil {
		tournament, err := s.tournamentRepo.GetByID(ctx, match.TournamentID)
		if err != nil {
			s.logger.Warn("failed to load tournament for head-to-head history",
				slog.Int("tournament_id", match.TournamentID), slog.Any("error", err))
		} else {
			match.Trn = tournament
		}
	}
	return matchResultFromMatch(match, input)
}

func matchResultFromMatch(match *models.Match, input CompleteMatchInput) scoring.MatchResult {
	result := scoring.MatchResult{
		MatchID:   match.ID,
		PlayerAID: match.P1ID,
		PlayerBID: match.P2ID,
		WinnerID:  input.WinnerID,
		Surface:   match.Surface,
		Tier:      match.Tier,
		Date:      match.MatchTime,
		ScoreText: input.Score,
	}
	if match.RoundLabel != nil {
		result.RoundLabel = *match.RoundLabel
	}
	if match.Trn != nil {
		result.TournamentName = match.Trn.Name
	}
	if input.Stats != nil {
		result.StatsA = input.Stats.P1
		result.StatsB = input.Stats.P2
	}
	return result
}

func mapMatchRepoError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repositories.ErrMatchNotFound):
		return ErrMatchNotFound
	case errors.Is(err, repositories.ErrMatchTournamentInvalid):
		return fmt.Errorf("%w: unknown tournament", ErrValidationFailed)
	case errors.Is(err, repositories.ErrMatchPlayerInvalid):
		return fmt.Errorf("%w: unknown player", ErrValidationFailed)
	default:
		return err
	}
}
