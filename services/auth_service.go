package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/NicoMontoya/tennisworld/models"
	"github.com/NicoMontoya/tennisworld/repositories"
	"github.com/NicoMontoya/tennisworld/utils"
	"github.com/google/uuid"
)

const minPasswordLength = 8

type RegisterInput struct {
	FirstName string  `json:"first_name" validate:"required,min=1,max=60"`
	LastName  string  `json:"last_name" validate:"required,min=1,max=60"`
	Nickname  *string `json:"nickname,omitempty" validate:"omitempty,min=3,max=30"`
	Email     string  `json:"email" validate:"required,email"`
	Password  string  `json:"password" validate:"required,min=8"`
}

type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type AuthService interface {
	Register(ctx context.Context, input RegisterInput) (*models.User, error)
	Login(ctx context.Context, input LoginInput) (*models.User, error)
	ConfirmEmail(ctx context.Context, token string) error
}

type authService struct {
	userRepo           repositories.UserRepository
	email              EmailSender
	confirmationURLFmt string
	logger             *slog.Logger
}

// NewAuthService wires registration and login. confirmationURLFmt must
// contain one %s verb for the confirmation token.
func NewAuthService(
	userRepo repositories.UserRepository,
	email EmailSender,
	confirmationURLFmt string,
	logger *slog.Logger,
) AuthService {
	return &authService{
		userRepo:           userRepo,
		email:              email,
		confirmationURLFmt: confirmationURLFmt,
		logger:             logger,
	}
}

func (s *authService) Register(ctx context.Context, input RegisterInput) (*models.User, error) {
	if len(input.Password) < minPasswordLength {
		return nil, ErrPasswordTooShort
	}

	hash, err := utils.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	token := uuid.NewString()
	user := &models.User{
		FirstName:         input.FirstName,
		LastName:          input.LastName,
		Nickname:          input.Nickname,
		Email:             input.Email,
		PasswordHash:      hash,
		Role:              models.RoleUser,
		EmailConfirmed:    false,
		ConfirmationToken: &token,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		switch {
		case errors.Is(err, repositories.ErrUserEmailConflict):
			return nil, ErrUserEmailConflict
		case errors.Is(err, repositories.ErrUserNicknameConflict):
			return nil, ErrUserNicknameConflict
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	// The account works without confirmation; mail failures only lose the
	// welcome email.
	confirmationURL := fmt.Sprintf(s.confirmationURLFmt, token)
	if err := s.email.SendConfirmationEmail(user.Email, user.DisplayName(), confirmationURL); err != nil {
		s.logger.Warn("failed to send confirmation email", "user_id", user.ID, "error", err)
	}

	user.PasswordHash = ""
	return user, nil
}

func (s *authService) Login(ctx context.Context, input LoginInput) (*models.User, error) {
	user, err := s.userRepo.GetByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to find user by email: %w", err)
	}

	if !utils.CheckPasswordHash(input.Password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	user.PasswordHash = ""
	return user, nil
}

func (s *authService) ConfirmEmail(ctx context.Context, token string) error {
	user, err := s.userRepo.GetByConfirmationToken(ctx, token)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return fmt.Errorf("%w: unknown confirmation token", ErrValidationFailed)
		}
		return err
	}
	if user.EmailConfirmed {
		return nil
	}

	user.EmailConfirmed = true
	user.ConfirmationToken = nil
	return s.userRepo.Update(ctx, user)
}
