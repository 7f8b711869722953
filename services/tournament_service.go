package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/NicoMontoya/tennisworld/models"
	"github.com/NicoMontoya/tennisworld/repositories"
	"github.com/NicoMontoya/tennisworld/storage"
)

type CreateTournamentInput struct {
	Name        string         `json:"name" validate:"required,min=3,max=120"`
	Description *string        `json:"description,omitempty"`
	Surface     models.Surface `json:"surface" validate:"required,oneof=hard clay grass carpet"`
	Tier        models.Tier    `json:"tier" validate:"required,oneof=grand_slam masters atp_500 atp_250 challenger"`
	Location    *string        `json:"location,omitempty"`
	StartDate   time.Time      `json:"start_date" validate:"required"`
	EndDate     time.Time      `json:"end_date" validate:"required"`
	DrawSize    int            `json:"draw_size" validate:"required,min=2,max=128"`
}

type UpdateTournamentInput struct {
	Name        *string    `json:"name,omitempty" validate:"omitempty,min=3,max=120"`
	Description *string    `json:"description,omitempty"`
	Location    *string    `json:"location,omitempty"`
	StartDate   *time.Time `json:"start_date,omitempty"`
	EndDate     *time.Time `json:"end_date,omitempty"`
}

type TournamentService interface {
	CreateTournament(ctx context.Context, organizerID int, input CreateTournamentInput) (*models.Tournament, error)
	GetTournament(ctx context.Context, id int) (*models.Tournament, error)
	ListTournaments(ctx context.Context, filter repositories.TournamentFilter) ([]*models.Tournament, error)
	UpdateTournament(ctx context.Context, requesterID, id int, input UpdateTournamentInput) (*models.Tournament, error)
	ChangeStatus(ctx context.Context, requesterID, id int, status models.TournamentStatus) error
	UploadLogo(ctx context.Context, requesterID, id int, contentType string, body io.Reader) (*models.Tournament, error)
	DeleteTournament(ctx context.Context, requesterID, id int) error
	// AutoUpdateStatusesByDates advances tournaments whose dates have crossed
	// their current status. Called periodically by the scheduler.
	AutoUpdateStatusesByDates(ctx context.Context) error
}

type tournamentService struct {
	db             *sql.DB
	tournamentRepo repositories.TournamentRepository
	matchRepo      repositories.MatchRepository
	userRepo       repositories.UserRepository
	brackets       BracketService
	uploader       storage.FileUploader
	logger         *slog.Logger
}

func NewTournamentService(
	db *sql.DB,
	tournamentRepo repositories.TournamentRepository,
	matchRepo repositories.MatchRepository,
	userRepo repositories.UserRepository,
	brackets BracketService,
	uploader storage.FileUploader,
	logger *slog.Logger,
) TournamentService {
	return &tournamentService{
		db:             db,
		tournamentRepo: tournamentRepo,
		matchRepo:      matchRepo,
		userRepo:       userRepo,
		brackets:       brackets,
		uploader:       uploader,
		logger:         logger,
	}
}

// Allowed lifecycle transitions. soon -> registration -> active -> completed,
// with cancellation possible until the tournament finishes.
var validTournamentTransitions = map[models.TournamentStatus][]models.TournamentStatus{
	models.StatusSoon:         {models.StatusRegistration, models.StatusActive, models.StatusCanceled},
	models.StatusRegistration: {models.StatusActive, models.StatusCanceled},
	models.StatusActive:       {models.StatusCompleted, models.StatusCanceled},
	models.StatusCompleted:    {},
	models.StatusCanceled:     {},
}

func isValidStatusTransition(from, to models.TournamentStatus) bool {
	for _, allowed := range validTournamentTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

func (s *tournamentService) CreateTournament(ctx context.Context, organizerID int, input CreateTournamentInput) (*models.Tournament, error) {
	if !input.EndDate.After(input.StartDate) {
		return nil, ErrTournamentInvalidDateRange
	}

	organizer, err := s.userRepo.GetByID(ctx, organizerID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	if organizer.Role != models.RoleOrganizer && organizer.Role != models.RoleAdmin {
		return nil, ErrForbiddenOperation
	}

	tournament := &models.Tournament{
		Name:        input.Name,
		Description: input.Description,
		Surface:     input.Surface,
		Tier:        input.Tier,
		OrganizerID: organizerID,
		Location:    input.Location,
		StartDate:   input.StartDate,
		EndDate:     input.EndDate,
		Status:      models.StatusSoon,
		DrawSize:    input.DrawSize,
	}
	if err := s.tournamentRepo.Create(ctx, tournament); err != nil {
		if errors.Is(err, repositories.ErrTournamentNameConflict) {
			return nil, fmt.Errorf("%w: tournament name is taken", ErrValidationFailed)
		}
		return nil, err
	}
	return tournament, nil
}

func (s *tournamentService) GetTournament(ctx context.Context, id int) (*models.Tournament, error) {
	tournament, err := s.tournamentRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, err
	}

	matches, err := s.matchRepo.ListByTournament(ctx, id, nil, nil)
	if err != nil {
		return nil, err
	}
	tournament.Matches = make([]models.Match, 0, len(matches))
	for _, m := range matches {
		tournament.Matches = append(tournament.Matches, *m)
	}

	s.attachLogoURL(tournament)
	return tournament, nil
}

func (s *tournamentService) ListTournaments(ctx context.Context, filter repositories.TournamentFilter) ([]*models.Tournament, error) {
	tournaments, err := s.tournamentRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	for _, t := range tournaments {
		s.attachLogoURL(t)
	}
	return tournaments, nil
}

func (s *tournamentService) UpdateTournament(ctx context.Context, requesterID, id int, input UpdateTournamentInput) (*models.Tournament, error) {
	tournament, err := s.ownedTournament(ctx, requesterID, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		tournament.Name = *input.Name
	}
	if input.Description != nil {
		tournament.Description = input.Description
	}
	if input.Location != nil {
		tournament.Location = input.Location
	}
	if input.StartDate != nil {
		tournament.StartDate = *input.StartDate
	}
	if input.EndDate != nil {
		tournament.EndDate = *input.EndDate
	}
	if !tournament.EndDate.After(tournament.StartDate) {
		return nil, ErrTournamentInvalidDateRange
	}

	if err := s.tournamentRepo.Update(ctx, tournament); err != nil {
		if errors.Is(err, repositories.ErrTournamentNameConflict) {
			return nil, fmt.Errorf("%w: tournament name is taken", ErrValidationFailed)
		}
		return nil, err
	}
	return tournament, nil
}

func (s *tournamentService) ChangeStatus(ctx context.Context, requesterID, id int, status models.TournamentStatus) error {
	tournament, err := s.ownedTournament(ctx, requesterID, id)
	if err != nil {
		return err
	}
	return s.transition(ctx, tournament, status)
}

func (s *tournamentService) UploadLogo(ctx context.Context, requesterID, id int, contentType string, body io.Reader) (*models.Tournament, error) {
	if s.uploader == nil {
		return nil, fmt.Errorf("%w: object storage is not configured", ErrValidationFailed)
	}
	tournament, err := s.ownedTournament(ctx, requesterID, id)
	if err != nil {
		return nil, err
	}

	key := fmt.Sprintf("tournaments/%d/logo", tournament.ID)
	result, err := s.uploader.Upload(ctx, key, contentType, body)
	if err != nil {
		return nil, fmt.Errorf("failed to upload tournament logo: %w", err)
	}

	tournament.LogoKey = &result.Key
	if err := s.tournamentRepo.Update(ctx, tournament); err != nil {
		return nil, err
	}
	s.attachLogoURL(tournament)
	return tournament, nil
}

func (s *tournamentService) DeleteTournament(ctx context.Context, requesterID, id int) error {
	tournament, err := s.ownedTournament(ctx, requesterID, id)
	if err != nil {
		return err
	}
	if tournament.Status == models.StatusActive {
		return ErrTournamentInvalidStatusTransition
	}

	if tournament.LogoKey != nil && s.uploader != nil {
		if err := s.uploader.Delete(ctx, *tournament.LogoKey); err != nil {
			s.logger.Warn("failed to delete tournament logo", "tournament_id", id, "error", err)
		}
	}
	return s.tournamentRepo.Delete(ctx, id)
}

func (s *tournamentService) AutoUpdateStatusesByDates(ctx context.Context) error {
	now := time.Now().UTC()
	due, err := s.tournamentRepo.ListDueForStatusChange(ctx, now)
	if err != nil {
		return err
	}

	for _, tournament := range due {
		var target models.TournamentStatus
		switch {
		case tournament.Status == models.StatusActive && tournament.EndDate.Before(now):
			target = models.StatusCompleted
		case tournament.Status != models.StatusActive && !tournament.StartDate.After(now):
			target = models.StatusActive
		default:
			continue
		}
		if err := s.transition(ctx, tournament, target); err != nil {
			s.logger.Error("automatic status change failed",
				"tournament_id", tournament.ID, "from", tournament.Status, "to", target, "error", err)
			continue
		}
		s.logger.Info("tournament status advanced",
			"tournament_id", tournament.ID, "status", target)
	}
	return nil
}

func (s *tournamentService) transition(ctx context.Context, tournament *models.Tournament, to models.TournamentStatus) error {
	if !isValidStatusTransition(tournament.Status, to) {
		return fmt.Errorf("%w: %s -> %s", ErrTournamentInvalidStatusTransition, tournament.Status, to)
	}
	if err := s.tournamentRepo.UpdateStatus(ctx, s.db, tournament.ID, to); err != nil {
		return err
	}
	tournament.Status = to

	// Going live freezes every open bracket so picks stop changing once play
	// starts.
	if to == models.StatusActive {
		if err := s.brackets.LockTournamentBrackets(ctx, tournament.ID); err != nil {
			s.logger.Error("failed to lock brackets", "tournament_id", tournament.ID, "error", err)
		}
	}
	return nil
}

func (s *tournamentService) ownedTournament(ctx context.Context, requesterID, id int) (*models.Tournament, error) {
	tournament, err := s.tournamentRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, err
	}

	requester, err := s.userRepo.GetByID(ctx, requesterID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	if tournament.OrganizerID != requesterID && requester.Role != models.RoleAdmin {
		return nil, ErrForbiddenOperation
	}
	return tournament, nil
}

func (s *tournamentService) attachLogoURL(t *models.Tournament) {
	if t.LogoKey == nil || s.uploader == nil {
		return
	}
	if url := s.uploader.GetPublicURL(*t.LogoKey); url != "" {
		t.LogoURL = &url
	}
}
