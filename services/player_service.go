package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/NicoMontoya/tennisworld/models"
	"github.com/NicoMontoya/tennisworld/repositories"
	"github.com/NicoMontoya/tennisworld/storage"
)

const (
	defaultPlayerPageSize = 50
	maxPlayerPageSize     = 200
)

type PlayerInput struct {
	FirstName     string            `json:"first_name" validate:"required,min=1,max=60"`
	LastName      string            `json:"last_name" validate:"required,min=1,max=60"`
	Country       string            `json:"country" validate:"required,len=3"`
	Plays         models.PlayerHand `json:"plays" validate:"required,oneof=right left"`
	CurrentRank   *int              `json:"current_rank,omitempty" validate:"omitempty,min=1"`
	RankingPoints *int              `json:"ranking_points,omitempty" validate:"omitempty,min=0"`
	BirthDate     *time.Time        `json:"birth_date,omitempty"`
}

type PlayerService interface {
	CreatePlayer(ctx context.Context, input PlayerInput) (*models.Player, error)
	GetPlayer(ctx context.Context, id int) (*models.Player, error)
	ListPlayers(ctx context.Context, limit, offset int) ([]*models.Player, error)
	UpdatePlayer(ctx context.Context, id int, input PlayerInput) (*models.Player, error)
	UploadPhoto(ctx context.Context, id int, contentType string, body io.Reader) (*models.Player, error)
	DeletePlayer(ctx context.Context, id int) error
}

type playerService struct {
	playerRepo repositories.PlayerRepository
	uploader   storage.FileUploader
}

func NewPlayerService(playerRepo repositories.PlayerRepository, uploader storage.FileUploader) PlayerService {
	return &playerService{playerRepo: playerRepo, uploader: uploader}
}

func (s *playerService) CreatePlayer(ctx context.Context, input PlayerInput) (*models.Player, error) {
	player := &models.Player{
		FirstName:     input.FirstName,
		LastName:      input.LastName,
		Country:       input.Country,
		Plays:         input.Plays,
		CurrentRank:   input.CurrentRank,
		RankingPoints: input.RankingPoints,
		BirthDate:     input.BirthDate,
	}
	if err := s.playerRepo.Create(ctx, player); err != nil {
		return nil, err
	}
	return player, nil
}

func (s *playerService) GetPlayer(ctx context.Context, id int) (*models.Player, error) {
	player, err := s.loadPlayer(ctx, id)
	if err != nil {
		return nil, err
	}
	s.attachPhotoURL(player)
	return player, nil
}

func (s *playerService) ListPlayers(ctx context.Context, limit, offset int) ([]*models.Player, error) {
	if limit <= 0 {
		limit = defaultPlayerPageSize
	}
	if limit > maxPlayerPageSize {
		limit = maxPlayerPageSize
	}
	if offset < 0 {
		offset = 0
	}
	players, err := s.playerRepo.List(ctx, limit, offset)
	if err != nil {
		return nil, err
	}
	for _, p := range players {
		s.attachPhotoURL(p)
	}
	return players, nil
}

func (s *playerService) UpdatePlayer(ctx context.Context, id int, input PlayerInput) (*models.Player, error) {
	player, err := s.loadPlayer(ctx, id)
	if err != nil {
		return nil, err
	}

	player.FirstName = input.FirstName
	player.LastName = input.LastName
	player.Country = input.Country
	player.Plays = input.Plays
	player.CurrentRank = input.CurrentRank
	player.RankingPoints = input.RankingPoints
	player.BirthDate = input.BirthDate

	if err := s.playerRepo.Update(ctx, player); err != nil {
		return nil, err
	}
	s.attachPhotoURL(player)
	return player, nil
}

func (s *playerService) UploadPhoto(ctx context.Context, id int, contentType string, body io.Reader) (*models.Player, error) {
	if s.uploader == nil {
		return nil, fmt.Errorf("%w: object storage is not configured", ErrValidationFailed)
	}
	player, err := s.loadPlayer(ctx, id)
	if err != nil {
		return nil, err
	}

	key := fmt.Sprintf("players/%d/photo", player.ID)
	result, err := s.uploader.Upload(ctx, key, contentType, body)
	if err != nil {
		return nil, fmt.Errorf("failed to upload player photo: %w", err)
	}

	player.PhotoKey = &result.Key
	if err := s.playerRepo.Update(ctx, player); err != nil {
		return nil, err
	}
	s.attachPhotoURL(player)
	return player, nil
}

func (s *playerService) DeletePlayer(ctx context.Context, id int) error {
	if _, err := s.loadPlayer(ctx, id); err != nil {
		return err
	}
	return s.playerRepo.Delete(ctx, id)
}

func (s *playerService) loadPlayer(ctx context.Context, id int) (*models.Player, error) {
	player, err := s.playerRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrPlayerNotFound) {
			return nil, ErrPlayerNotFound
		}
		return nil, err
	}
	return player, nil
}

func (s *playerService) attachPhotoURL(p *models.Player) {
	if p.PhotoKey == nil || s.uploader == nil {
		return
	}
	if url := s.uploader.GetPublicURL(*p.PhotoKey); url != "" {
		p.PhotoURL = &url
	}
}
