package db

import "errors"

var (
	// ErrNotFound is returned when a document does not exist in the store.
	ErrNotFound = errors.New("document not found")

	// ErrInsufficientBalance is returned by AdjustBalance when the delta would
	// drive the balance below zero. It indicates a lost race with a concurrent
	// debit or a stale entitlement check; callers must not retry it.
	ErrInsufficientBalance = errors.New("insufficient balance")
)
