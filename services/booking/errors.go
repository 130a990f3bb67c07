package booking

import (
	"errors"
	"fmt"

	"hotelbook/services/inventory"
	"hotelbook/services/payment"
)

var (
	ErrInvalidRequest      = errors.New("invalid booking request")
	ErrPaymentMismatch     = errors.New("payment intent does not match booking")
	ErrPaymentNotSucceeded = errors.New("payment has not succeeded")
	ErrPersistenceFailure  = errors.New("booking could not be persisted")
	ErrRecordingIncomplete = errors.New("booking committed but ledger entry is pending")
	ErrCommitInProgress    = errors.New("a commit for this payment is already in progress")

	ErrIntentNotFound           = payment.ErrIntentNotFound
	ErrGatewayUnavailable       = payment.ErrGatewayUnavailable
	ErrInsufficientAvailability = inventory.ErrInsufficientAvailability
)

// CommitError records the pipeline state a commit failed in.
type CommitError struct {
	State State
	Err   error
}

func (e *CommitError) Error() string {
	return fmt.Sprintf("%s: %v", e.State, e.Err)
}

func (e *CommitError) Unwrap() error {
	return e.Err
}

// Outcome is the terminal state of the failed commit. Failures after
// reservations were granted end rolled back; earlier ones changed nothing.
func (e *CommitError) Outcome() State {
	switch e.State {
	case StateReserving, StatePersisting:
		return StateRolledBack
	case StateRecording:
		return StateRecording
	default:
		return StateRejected
	}
}

func failAt(state State, err error) error {
	return &CommitError{State: state, Err: err}
}

// StateOf returns the state a commit error was raised in, or "" for other errors.
func StateOf(err error) State {
	var ce *CommitError
	if errors.As(err, &ce) {
		return ce.State
	}
	return ""
}
