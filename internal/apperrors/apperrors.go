package apperrors

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound       = errors.New("resource not found")
	ErrInvalidRequest = errors.New("invalid request body")
	ErrValidation     = errors.New("validation failed")
	ErrMissingCaller  = errors.New("caller identity is missing")
	ErrForbidden      = errors.New("caller is not allowed to perform this action")

	// Malformed input, rejected before any state change.
	ErrInvalidCoordinate = errors.New("invalid coordinate")
	ErrUnknownBloodType  = errors.New("unknown blood type")

	// Lifecycle consistency. Retrying does not change the outcome.
	ErrMatchNotFound           = errors.New("donor was not proposed for this request")
	ErrAlreadyDecided          = errors.New("match is already decided")
	ErrRequestTerminal         = errors.New("request is no longer open")
	ErrRequestAlreadySatisfied = errors.New("request already has all the units it needs")

	// Infrastructure. Safe to retry with backoff: nothing was committed.
	ErrStorageTimeout = errors.New("storage timeout")
)

type InvalidCoordinateError struct {
	Latitude  float64
	Longitude float64
}

func (e *InvalidCoordinateError) Error() string {
	return fmt.Sprintf("invalid coordinate (%g, %g): latitude must be in [-90, 90] and longitude in [-180, 180]", e.Latitude, e.Longitude)
}
func (e *InvalidCoordinateError) Is(target error) bool { return target == ErrInvalidCoordinate }

type UnknownBloodTypeError struct{ Value string }

func (e *UnknownBloodTypeError) Error() string {
	return fmt.Sprintf("unknown blood type '%s'", e.Value)
}
func (e *UnknownBloodTypeError) Is(target error) bool { return target == ErrUnknownBloodType }

type MatchNotFoundError struct{ RequestID, DonorID string }

func (e *MatchNotFoundError) Error() string {
	return fmt.Sprintf("donor '%s' was not proposed for request '%s'", e.DonorID, e.RequestID)
}
func (e *MatchNotFoundError) Is(target error) bool { return target == ErrMatchNotFound }

type AlreadyDecidedError struct{ Status string }

func (e *AlreadyDecidedError) Error() string {
	return fmt.Sprintf("match is already %s", e.Status)
}
func (e *AlreadyDecidedError) Is(target error) bool { return target == ErrAlreadyDecided }

type RequestTerminalError struct{ Status string }

func (e *RequestTerminalError) Error() string {
	return fmt.Sprintf("request is %s", e.Status)
}
func (e *RequestTerminalError) Is(target error) bool { return target == ErrRequestTerminal }

// IsDomain reports whether err belongs to the input or lifecycle part of the
// taxonomy, as opposed to an infrastructure failure.
func IsDomain(err error) bool {
	for _, target := range []error{
		ErrNotFound,
		ErrInvalidRequest,
		ErrValidation,
		ErrMissingCaller,
		ErrForbidden,
		ErrInvalidCoordinate,
		ErrUnknownBloodType,
		ErrMatchNotFound,
		ErrAlreadyDecided,
		ErrRequestTerminal,
		ErrRequestAlreadySatisfied,
	} {
		if errors.Is(err, target) {
			return true
		}
	}

	return false
}
