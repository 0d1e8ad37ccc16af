package services

import (
	"errors"

	"taskverse/internal/models"
)

var (
	ErrInvalidIdentifier  = errors.New("invalid id")
	ErrForbidden          = errors.New("forbidden")
	ErrTaskNotFound       = errors.New("task not found")
	ErrStoreUnavailable   = errors.New("store unavailable")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrUserNotFound       = errors.New("user not found")

	// payload errors are raised while decoding, re-exported for callers
	ErrInvalidReminderShape = models.ErrInvalidReminderShape
	ErrInvalidPriority      = models.ErrInvalidPriority
	ErrInvalidDueDate       = models.ErrInvalidDueDate
	ErrMalformedPayload     = models.ErrMalformedPayload
)
