package domain

import "errors"

var (
	ErrInvalidOrderID     = errors.New("invalid order id")
	ErrInvalidTemperature = errors.New("invalid temperature")
	ErrInvalidShelfLife   = errors.New("shelf life must be positive")
	ErrInvalidDecayRate   = errors.New("decay rate must be non-negative")
	ErrOrderNotFound      = errors.New("order not found")

	// ErrContractViolation marks a call made without its precondition.
	ErrContractViolation = errors.New("shelf contract violation")
	// ErrInvariantViolation marks corrupted shelf bookkeeping.
	ErrInvariantViolation = errors.New("shelf invariant violation")
)
