package model

import (
	"errors"
	"fmt"
)

// ValidationError reports client input that is malformed or policy-disallowed.
// Always carries a specific human-readable reason.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

// Validation builds a ValidationError with a formatted reason.
func Validation(format string, args ...any) error {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

// StorageError reports a persistence failure scoped to one segment of a
// batch. Previously committed segments are not rolled back.
type StorageError struct {
	UUID string
	Err  error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage failure for segment %s: %v", e.UUID, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

var (
	// ErrDuplicate signals an exact-duplicate submission. Surfaced as a
	// conflict, distinct from validation failure.
	ErrDuplicate = errors.New("segment already exists")

	// ErrActiveWarning rejects submitters and voters with unexpired warnings.
	ErrActiveWarning = errors.New("account has active warnings; please address moderator feedback before submitting again")

	// ErrSegmentNotFound is returned for votes against unknown segments.
	ErrSegmentNotFound = errors.New("segment not found")

	// ErrLockedDownvote rejects non-VIP downvotes on locked segments or
	// locked (video, category) pairs.
	ErrLockedDownvote = errors.New("segment is locked and cannot be downvoted")
)
