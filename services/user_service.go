package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/NicoMontoya/tennisworld/models"
	"github.com/NicoMontoya/tennisworld/repositories"
	"github.com/NicoMontoya/tennisworld/storage"
	"github.com/NicoMontoya/tennisworld/utils"
)

type UpdateProfileInput struct {
	FirstName *string `json:"first_name,omitempty" validate:"omitempty,min=1,max=60"`
	LastName  *string `json:"last_name,omitempty" validate:"omitempty,min=1,max=60"`
	Nickname  *string `json:"nickname,omitempty" validate:"omitempty,min=3,max=30"`
}

type ChangePasswordInput struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=8"`
}

type UserService interface {
	GetProfile(ctx context.Context, id int) (*models.User, error)
	UpdateProfile(ctx context.Context, id int, input UpdateProfileInput) (*models.User, error)
	ChangePassword(ctx context.Context, id int, input ChangePasswordInput) error
	UploadAvatar(ctx context.Context, id int, contentType string, body io.Reader) (*models.User, error)
	DeleteUser(ctx context.Context, requesterID, id int) error
}

type userService struct {
	userRepo repositories.UserRepository
	uploader storage.FileUploader
	logger   *slog.Logger
}

func NewUserService(
	userRepo repositories.UserRepository,
	uploader storage.FileUploader,
	logger *slog.Logger,
) UserService {
	return &userService{
		userRepo: userRepo,
		uploader: uploader,
		logger:   logger,
	}
}

func (s *userService) GetProfile(ctx context.Context, id int) (*models.User, error) {
	user, err := s.loadUser(ctx, id)
	if err != nil {
		return nil, err
	}
	user.PasswordHash = ""
	s.attachAvatarURL(user)
	return user, nil
}

func (s *userService) UpdateProfile(ctx context.Context, id int, input UpdateProfileInput) (*models.User, error) {
	user, err := s.loadUser(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.FirstName != nil {
		user.FirstName = *input.FirstName
	}
	if input.LastName != nil {
		user.LastName = *input.LastName
	}
	if input.Nickname != nil {
		user.Nickname = input.Nickname
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		switch {
		case errors.Is(err, repositories.ErrUserNicknameConflict):
			return nil, ErrUserNicknameConflict
		case errors.Is(err, repositories.ErrUserEmailConflict):
			return nil, ErrUserEmailConflict
		}
		return nil, err
	}
	user.PasswordHash = ""
	s.attachAvatarURL(user)
	return user, nil
}

func (s *userService) ChangePassword(ctx context.Context, id int, input ChangePasswordInput) error {
	user, err := s.loadUser(ctx, id)
	if err != nil {
		return err
	}
	if !utils.CheckPasswordHash(input.CurrentPassword, user.PasswordHash) {
		return ErrInvalidCredentials
	}
	if len(input.NewPassword) < minPasswordLength {
		return ErrPasswordTooShort
	}

	hash, err := utils.HashPassword(input.NewPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	user.PasswordHash = hash
	return s.userRepo.Update(ctx, user)
}

func (s *userService) UploadAvatar(ctx context.Context, id int, contentType string, body io.Reader) (*models.User, error) {
	if s.uploader == nil {
		return nil, fmt.Errorf("%w: object storage is not configured", ErrValidationFailed)
	}
	user, err := s.loadUser(ctx, id)
	if err != nil {
		return nil, err
	}

	key := fmt.Sprintf("users/%d/avatar", user.ID)
	result, err := s.uploader.Upload(ctx, key, contentType, body)
	if err != nil {
		return nil, fmt.Errorf("failed to upload avatar: %w", err)
	}

	user.AvatarKey = &result.Key
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	user.PasswordHash = ""
	s.attachAvatarURL(user)
	return user, nil
}

func (s *userService) DeleteUser(ctx context.Context, requesterID, id int) error {
	if requesterID != id {
		requester, err := s.loadUser(ctx, requesterID)
		if err != nil {
			return err
		}
		if requester.Role != models.RoleAdmin {
			return ErrForbiddenOperation
		}
	}

	user, err := s.loadUser(ctx, id)
	if err != nil {
		return err
	}
	if user.AvatarKey != nil && s.uploader != nil {
		if err := s.uploader.Delete(ctx, *user.AvatarKey); err != nil {
			s.logger.Warn("failed to delete avatar", "user_id", id, "error", err)
		}
	}
	return s.userRepo.Delete(ctx, id)
}

func (s *userService) loadUser(ctx context.Context, id int) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func (s *userService) attachAvatarURL(u *models.User) {
	if u.AvatarKey == nil || s.uploader == nil {
		return
	}
	if url := s.uploader.GetPublicURL(*u.AvatarKey); url != "" {
		u.AvatarURL = &url
	}
}
