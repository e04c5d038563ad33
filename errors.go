package fieldops

import (
	"errors"
	"strings"
)

var (
	// Store errors.
	ErrNoStore                = errors.New("fieldops: no store configured")
	ErrStoreClosed            = errors.New("fieldops: store closed")
	ErrMigrationFailed        = errors.New("fieldops: migration failed")
	ErrTransactionUnsupported = errors.New("fieldops: store cannot guarantee an atomic write")
	ErrMalformedRecord        = errors.New("fieldops: malformed store record")

	// Not found errors.
	ErrJobNotFound        = errors.New("fieldops: job not found")
	ErrTechnicianNotFound = errors.New("fieldops: technician not found")
	ErrAssignmentNotFound = errors.New("fieldops: assignment not found")

	// Conflict errors.
	ErrJobAlreadyExists = errors.New("fieldops: job already exists")

	// State errors.
	ErrInvalidTransition     = errors.New("fieldops: invalid status transition")
	ErrInvalidState          = errors.New("fieldops: job state does not allow this operation")
	ErrTechnicianUnavailable = errors.New("fieldops: technician unavailable")
)

// ValidationError reports every rule a payload violated, never just the
// first, so callers can surface the complete list in a single round trip.
type ValidationError struct {
	Violations []string
}

func (e *ValidationError) Error() string {
	if len(e.Violations) == 0 {
		return "fieldops: validation failed"
	}
	return "fieldops: validation failed: " + strings.Join(e.Violations, "; ")
}

// IsValidation reports whether err is (or wraps) a *ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
