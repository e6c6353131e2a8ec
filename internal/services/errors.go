package services

import "errors"

var (
	// ErrValidation covers malformed recurrence rules and out-of-range dates
	// caught before any expansion runs. Never retried.
	ErrValidation = errors.New("validation failed")

	// ErrCycleDetected marks goal-hierarchy corruption found during tree
	// resolution. The offending goal is surfaced for manual repair.
	ErrCycleDetected = errors.New("goal hierarchy cycle detected")

	// ErrConflict is returned after a lost-update race on a stats or
	// achievement row exhausts its retries.
	ErrConflict = errors.New("concurrent update conflict")
)
