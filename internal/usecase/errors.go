package usecase

import (
	"errors"

	"carwash-web/pkg/utils"
)

var (
	ErrBookingNotFound      = errors.New("booking not found")
	ErrTransitionNotAllowed = errors.New("status change not allowed")
	ErrBookingClosed        = errors.New("booking is already completed or rejected")
	ErrUnknownStatus        = errors.New("unknown booking status")
	ErrServiceNotFound      = errors.New("service not found")
	ErrInvalidAuthResponse  = errors.New("backend returned no token")
)

// ValidationError carries field -> message for inline form errors.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + utils.FormatValidationErrors(e.Fields)
}

func validationFailed(fields map[string]string) error {
	return &ValidationError{Fields: fields}
}
