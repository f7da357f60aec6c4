package domain

import (
	"errors"
	"fmt"
)

var (
	// Error kinds surfaced by the voucher engine and the session linker.
	ErrNotFound    = errors.New("entity not found")
	ErrAlreadyUsed = errors.New("voucher already used")
	ErrExpired     = errors.New("voucher has expired")
	ErrValidation  = errors.New("validation failed")
	ErrPersistence = errors.New("persistence failure")

	// Refinements; each one also matches its kind via errors.Is.
	ErrInvalidTransition = fmt.Errorf("%w: invalid session state transition", ErrValidation)
	ErrAlreadyExists     = errors.New("entity already exists")

	// Store plumbing.
	ErrInvalidExecContext = errors.New("invalid execution context")
)

// Validationf builds a ValidationError carrying the offending field/detail.
func Validationf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// Persistence wraps a store failure so callers can match ErrPersistence while
// the driver cause stays reachable for logs.
func Persistence(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %s: %w", ErrPersistence, op, err)
}

// Kind names the error kind of err; used as a log field and metric label.
func Kind(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrAlreadyUsed):
		return "already_used"
	case errors.Is(err, ErrExpired):
		return "expired"
	case errors.Is(err, ErrValidation):
		return "validation"
	case errors.Is(err, ErrPersistence):
		return "persistence"
	default:
		return "internal"
	}
}
