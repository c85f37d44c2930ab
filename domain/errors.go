package domain

import "errors"

var (
	ErrDataset               = errors.New("dataset error")
	ErrUnknownCommodity      = errors.New("unknown commodity")
	ErrMissingPrice          = errors.New("missing latest price")
	ErrInvalidDate           = errors.New("invalid date")
	ErrPastDate              = errors.New("date is in the past")
	ErrPersistence           = errors.New("persistence error")
	ErrModelNotFound         = errors.New("model artifact not found")
	ErrModelCorrupt          = errors.New("model artifact corrupt")
	ErrPredictionUnavailable = errors.New("predictions unavailable")

	ErrNotFound           = errors.New("not found")
	ErrInvalidInput       = errors.New("invalid input")
	ErrEmailExists        = errors.New("email already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailNotVerified   = errors.New("email address has not been verified")
	ErrInvalidToken       = errors.New("invalid token")
	ErrVerificationLink   = errors.New("invalid or expired url")
)
