// ============================================================================
// backend/internal/shared/errors.go
// Error kinds shared across services; the gateway maps these to HTTP status
// ============================================================================

package shared

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound marks an unresolvable student/result/curriculum reference
	ErrNotFound = errors.New("not found")

	// ErrValidation marks input rejected before any persistence write
	ErrValidation = errors.New("validation failed")

	// ErrConflict marks a uniqueness violation surfaced during an upsert or
	// bulk operation
	ErrConflict = errors.New("conflict")
)

// NotFoundf returns a formatted error wrapping ErrNotFound
func NotFoundf(format string, args ...interface{}) error {
	return fmt.Errorf(format+": %w", append(args, ErrNotFound)...)
}

// Invalidf returns a formatted error wrapping ErrValidation
func Invalidf(format string, args ...interface{}) error {
	return fmt.Errorf(format+": %w", append(args, ErrValidation)...)
}

// Conflictf returns a formatted error wrapping ErrConflict
func Conflictf(format string, args ...interface{}) error {
	return fmt.Errorf(format+": %w", append(args, ErrConflict)...)
}
