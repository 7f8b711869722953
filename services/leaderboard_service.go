package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/NicoMontoya/tennisworld/models"
	"github.com/NicoMontoya/tennisworld/realtime"
	"github.com/NicoMontoya/tennisworld/repositories"
	"github.com/NicoMontoya/tennisworld/scoring"
	"github.com/redis/go-redis/v9"
)

const leaderboardCacheTTL = 5 * time.Minute

type LeaderboardService interface {
	TournamentLeaderboard(ctx context.Context, tournamentID int) (*models.Leaderboard, error)
	MonthlyLeaderboard(ctx context.Context, year int, month time.Month) (*models.Leaderboard, error)
	SeasonLeaderboard(ctx context.Context, year int) (*models.Leaderboard, error)
	AllTimeLeaderboard(ctx context.Context) (*models.Leaderboard, error)
	// InvalidateForMatch drops every cached leaderboard a completed match can
	// influence, then notifies the tournament room.
	InvalidateForMatch(ctx context.Context, tournamentID int, matchTime time.Time)
}

type leaderboardService struct {
	predictionRepo repositories.PredictionRepository
	userRepo       repositories.UserRepository
	tournamentRepo repositories.TournamentRepository
	cache          *redis.Client
	hub            *realtime.Hub
	logger         *slog.Logger
}

func NewLeaderboardService(
	predictionRepo repositories.PredictionRepository,
	userRepo repositories.UserRepository,
	tournamentRepo repositories.TournamentRepository,
	cache *redis.Client,
	hub *realtime.Hub,
	logger *slog.Logger,
) LeaderboardService {
	return &leaderboardService{
		predictionRepo: predictionRepo,
		userRepo:       userRepo,
		tournamentRepo: tournamentRepo,
		cache:          cache,
		hub:            hub,
		logger:         logger,
	}
}

func (s *leaderboardService) TournamentLeaderboard(ctx context.Context, tournamentID int) (*models.Leaderboard, error) {
	tournament, err := s.tournamentRepo.GetByID(ctx, tournamentID)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, err
	}
	scope := models.LeaderboardScope{
		Kind:         models.TimeframeTournament,
		StartDate:    tournament.StartDate,
		EndDate:      tournament.EndDate.AddDate(0, 0, 1),
		TournamentID: &tournament.ID,
	}
	return s.build(ctx, scope)
}

func (s *leaderboardService) MonthlyLeaderboard(ctx context.Context, year int, month time.Month) (*models.Leaderboard, error) {
	start := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	scope := models.LeaderboardScope{
		Kind:      models.TimeframeMonth,
		StartDate: start,
		EndDate:   start.AddDate(0, 1, 0),
	}
	return s.build(ctx, scope)
}

func (s *leaderboardService) SeasonLeaderboard(ctx context.Context, year int) (*models.Leaderboard, error) {
	start := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	scope := models.LeaderboardScope{
		Kind:      models.TimeframeSeason,
		StartDate: start,
		EndDate:   start.AddDate(1, 0, 0),
	}
	return s.build(ctx, scope)
}

func (s *leaderboardService) AllTimeLeaderboard(ctx context.Context) (*models.Leaderboard, error) {
	scope := models.LeaderboardScope{
		Kind:      models.TimeframeAllTime,
		StartDate: time.Time{},
		EndDate:   time.Now().UTC().AddDate(0, 0, 1),
	}
	return s.build(ctx, scope)
}

func (s *leaderboardService) InvalidateForMatch(ctx context.Context, tournamentID int, matchTime time.Time) {
	keys := []string{
		scopeCacheKey(models.LeaderboardScope{Kind: models.TimeframeTournament, TournamentID: &tournamentID}),
		scopeCacheKey(models.LeaderboardScope{
			Kind:      models.TimeframeMonth,
			StartDate: time.Date(matchTime.Year(), matchTime.Month(), 1, 0, 0, 0, 0, time.UTC),
		}),
		scopeCacheKey(models.LeaderboardScope{
			Kind:      models.TimeframeSeason,
			StartDate: time.Date(matchTime.Year(), time.January, 1, 0, 0, 0, 0, time.UTC),
		}),
		scopeCacheKey(models.LeaderboardScope{Kind: models.TimeframeAllTime}),
	}
	if s.cache != nil {
		if err := s.cache.Del(ctx, keys...).Err(); err != nil {
			s.logger.Warn("failed to invalidate leaderboard cache", "error", err)
		}
	}

	s.hub.BroadcastToRoom(realtime.LeaderboardRoom, realtime.Message{
		Type:    realtime.EventLeaderboardUpdated,
		Payload: map[string]int{"tournament_id": tournamentID},
		RoomID:  realtime.LeaderboardRoom,
	})
}

// build rebuilds the leaderboard from a single snapshot of the scoped
// predictions, consulting the cache first.
func (s *leaderboardService) build(ctx context.Context, scope models.LeaderboardScope) (*models.Leaderboard, error) {
	key := scopeCacheKey(scope)
	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, key).Bytes(); err == nil {
			var board models.Leaderboard
			if unmarshalErr := json.Unmarshal(cached, &board); unmarshalErr == nil {
				return &board, nil
			}
			s.logger.Warn("discarding corrupt leaderboard cache entry", "key", key)
		} else if !errors.Is(err, redis.Nil) {
			s.logger.Warn("leaderboard cache read failed", "key", key, "error", err)
		}
	}

	window := repositories.PredictionWindow{
		StartDate:    scope.StartDate,
		EndDate:      scope.EndDate,
		TournamentID: scope.TournamentID,
	}
	predictions, err := s.predictionRepo.ListByWindow(ctx, window)
	if err != nil {
		return nil, err
	}

	users, err := s.userDirectory(ctx, predictions)
	if err != nil {
		return nil, err
	}

	board := scoring.BuildLeaderboard(scope, predictions, users, time.Now().UTC())

	if s.cache != nil {
		if payload, err := json.Marshal(board); err == nil {
			if err := s.cache.Set(ctx, key, payload, leaderboardCacheTTL).Err(); err != nil {
				s.logger.Warn("leaderboard cache write failed", "key", key, "error", err)
			}
		}
	}
	return board, nil
}

func (s *leaderboardService) userDirectory(ctx context.Context, predictions []*models.Prediction) (map[int]*models.User, error) {
	seen := make(map[int]struct{}, len(predictions))
	ids := make([]int, 0, len(predictions))
	for _, p := range predictions {
		if _, ok := seen[p.UserID]; ok {
			continue
		}
		seen[p.UserID] = struct{}{}
		ids = append(ids, p.UserID)
	}
	if len(ids) == 0 {
		return map[int]*models.User{}, nil
	}

	users, err := s.userRepo.ListByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	directory := make(map[int]*models.User, len(users))
	for _, u := range users {
		directory[u.ID] = u
	}
	return directory, nil
}

func scopeCacheKey(scope models.LeaderboardScope) string {
	switch scope.Kind {
	case models.TimeframeTournament:
		id := 0
		if scope.TournamentID != nil {
			id = *scope.TournamentID
		}
		return fmt.Sprintf("leaderboard:tournament:%d", id)
	case models.TimeframeMonth:
		return fmt.Sprintf("leaderboard:month:%s", scope.StartDate.Format("2006-01"))
	case models.TimeframeSeason:
		return fmt.Sprintf("leaderboard:season:%d", scope.StartDate.Year())
	default:
		return "leaderboard:all_time"
	}
}
