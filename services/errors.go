package services

import "errors"

// Shared errors used across services and the HTTP error mapping.
var (
	ErrNotFound = errors.New("requested resource not found")

	// Validation and business-rule failures.
	ErrValidationFailed      = errors.New("validation failed")
	ErrPasswordTooShort      = errors.New("password is too short")
	ErrInvalidCredentials    = errors.New("invalid email or password")
	ErrSelfPairing           = errors.New("a match requires two distinct players")
	ErrWinnerNotInMatch      = errors.New("winner must be one of the match players")
	ErrConfidenceOutOfRange  = errors.New("confidence level must be between 1 and 10")
	ErrMatchAlreadyCompleted = errors.New("match is already completed")
	ErrMatchNotCompleted     = errors.New("match is not completed yet")
	ErrPredictionTooLate     = errors.New("predictions close once the match has started")

	// Conflicts.
	ErrUserEmailConflict    = errors.New("email address is already in use")
	ErrUserNicknameConflict = errors.New("nickname is already in use")
	ErrBracketExists        = errors.New("user already has a bracket for this tournament")
	ErrBracketNotEditable   = errors.New("bracket is locked and can no longer be edited")
	ErrDuplicatePrediction  = errors.New("user already predicted this match")

	// Authentication and authorization.
	ErrAuthenticationFailed = errors.New("authentication failed")
	ErrForbiddenOperation   = errors.New("operation not allowed for the current user")

	// Per-entity not-found errors.
	ErrUserNotFound       = errors.New("user not found")
	ErrPlayerNotFound     = errors.New("player not found")
	ErrTournamentNotFound = errors.New("tournament not found")
	ErrMatchNotFound      = errors.New("match not found")
	ErrBracketNotFound    = errors.New("bracket not found")
	ErrPredictionNotFound = errors.New("prediction not found")
	ErrPairNotFound       = errors.New("head-to-head record not found")

	// Tournament lifecycle.
	ErrTournamentInvalidDateRange        = errors.New("tournament end date must be after start date")
	ErrTournamentInvalidStatusTransition = errors.New("invalid tournament status transition")
)
