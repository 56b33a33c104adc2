// Package lifecycle is the blood request state machine. A request's status is
// never stored on its own: it is always computed from the unit counters and
// the matched and cancelled flags, so the two cannot drift apart.
package lifecycle

import (
	"fmt"

	"github.com/YusovID/donor-match-service/internal/apperrors"
	"github.com/YusovID/donor-match-service/internal/domain"
)

type State struct {
	UnitsNeeded    int
	UnitsFulfilled int
	Matched        bool
	Cancelled      bool
}

func StateOf(r *domain.BloodRequest) State {
	return State{
		UnitsNeeded:    r.UnitsNeeded,
		UnitsFulfilled: r.UnitsFulfilled,
		Matched:        r.Matched,
		Cancelled:      r.Cancelled,
	}
}

// Status follows the same precedence as the generated column in Postgres:
// cancelled, then fulfilled, then matching, then pending.
func (s State) Status() domain.RequestStatus {
	switch {
	case s.Cancelled:
		return domain.RequestStatusCancelled
	case s.UnitsFulfilled >= s.UnitsNeeded:
		return domain.RequestStatusFulfilled
	case s.Matched:
		return domain.RequestStatusMatching
	default:
		return domain.RequestStatusPending
	}
}

func (s State) Validate() error {
	if s.UnitsNeeded < 1 {
		return fmt.Errorf("%w: units_needed must be positive, got %d", apperrors.ErrValidation, s.UnitsNeeded)
	}

	if s.UnitsFulfilled < 0 || s.UnitsFulfilled > s.UnitsNeeded {
		return fmt.Errorf("%w: units_fulfilled %d is outside [0, %d]", apperrors.ErrValidation, s.UnitsFulfilled, s.UnitsNeeded)
	}

	return nil
}

func (s State) terminal() error {
	if status := s.Status(); status.Terminal() {
		return &apperrors.RequestTerminalError{Status: string(status)}
	}

	return nil
}

// MarkMatched records that the selector ran, moving pending to matching.
func (s State) MarkMatched() (State, error) {
	if err := s.terminal(); err != nil {
		return s, err
	}

	s.Matched = true

	return s, nil
}

// Accept books one unit. A request that has all its units reports
// ErrRequestAlreadySatisfied rather than ErrRequestTerminal so late
// acceptors can be told their donation is no longer needed.
func (s State) Accept() (State, error) {
	if s.Cancelled {
		return s, &apperrors.RequestTerminalError{Status: string(domain.RequestStatusCancelled)}
	}

	if s.UnitsFulfilled >= s.UnitsNeeded {
		return s, apperrors.ErrRequestAlreadySatisfied
	}

	s.UnitsFulfilled++

	return s, nil
}

func (s State) Cancel() (State, error) {
	if err := s.terminal(); err != nil {
		return s, err
	}

	s.Cancelled = true

	return s, nil
}

func (s State) CanDecline() error {
	return s.terminal()
}

// DecideMatch checks a per-match transition. Only proposed matches move, and
// only to accepted or declined.
func DecideMatch(current, to domain.MatchStatus) error {
	if current != domain.MatchStatusProposed {
		return &apperrors.AlreadyDecidedError{Status: string(current)}
	}

	switch to {
	case domain.MatchStatusAccepted, domain.MatchStatusDeclined:
		return nil
	default:
		return fmt.Errorf("%w: cannot move a match to %q", apperrors.ErrValidation, to)
	}
}
