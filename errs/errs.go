package errs

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
)

// Domain error categories. Services wrap these with %w and controllers map
// them to HTTP statuses through StatusCode, so the taxonomy lives in one
// place instead of being re-derived per handler.
var (
	// ErrNotFound: event/ticket/purchase/type/contact absent.
	ErrNotFound = errors.New("not found")
	// ErrConflict: invalid state transition (double check-in, refund of an
	// unpaid ticket, unassign of a paid ticket).
	ErrConflict = errors.New("conflict")
	// ErrCapacityExceeded: ticket type quantity limit reached.
	ErrCapacityExceeded = errors.New("capacity exceeded")
	// ErrCodeConflict: requested short code already taken within the event.
	ErrCodeConflict = errors.New("code conflict")
	// ErrExhausted: no short codes left for an event. Operational error;
	// callers should alert operators rather than retry.
	ErrExhausted = errors.New("exhausted")
	// ErrValidation: malformed input or cross-entity mismatch, e.g. a ticket
	// type that does not belong to the event.
	ErrValidation = errors.New("validation failed")
)

func NotFoundf(format string, args ...interface{}) error {
	return fmt.Errorf(format+": %w", append(args, ErrNotFound)...)
}

func Conflictf(format string, args ...interface{}) error {
	return fmt.Errorf(format+": %w", append(args, ErrConflict)...)
}

func CapacityExceededf(format string, args ...interface{}) error {
	return fmt.Errorf(format+": %w", append(args, ErrCapacityExceeded)...)
}

func CodeConflictf(format string, args ...interface{}) error {
	return fmt.Errorf(format+": %w", append(args, ErrCodeConflict)...)
}

func Exhaustedf(format string, args ...interface{}) error {
	return fmt.Errorf(format+": %w", append(args, ErrExhausted)...)
}

func Validationf(format string, args ...interface{}) error {
	return fmt.Errorf(format+": %w", append(args, ErrValidation)...)
}

// StatusCode maps a domain error to the HTTP status the API responds with.
// Unrecognized errors are treated as internal.
func StatusCode(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, ErrConflict), errors.Is(err, ErrCapacityExceeded), errors.Is(err, ErrCodeConflict), errors.Is(err, ErrExhausted):
		return fiber.StatusConflict
	case errors.Is(err, ErrValidation):
		return fiber.StatusBadRequest
	default:
		return fiber.StatusInternalServerError
	}
}
