package core

import "errors"

// Service-level error taxonomy. Handlers map these to HTTP statuses; upstream
// provider internals are logged server-side and never surfaced in these.
var (
	// ErrRateLimited means the caller exhausted the current rate window.
	// Retryable after the window resets.
	ErrRateLimited = errors.New("rate limit exceeded")

	// ErrUnauthenticated means the caller must sign in.
	ErrUnauthenticated = errors.New("authentication required")

	// ErrInsufficientEntitlement means the caller has no credits and no free
	// generations left. Not retryable without a purchase.
	ErrInsufficientEntitlement = errors.New("credits or free generations required")

	// ErrProviderFailure means the upstream image provider failed. Retryable;
	// no debit was applied.
	ErrProviderFailure = errors.New("image provider request failed")

	// ErrInvalidRequest rejects a malformed generation request (unknown mode,
	// img2img without a source image).
	ErrInvalidRequest = errors.New("invalid generation request")

	// ErrInvalidAmount rejects a top-up with a non-positive credit amount.
	ErrInvalidAmount = errors.New("credit amount must be positive")

	// ErrPackNotFound means a referenced credit pack does not exist, is
	// inactive, or disagrees with the requested credit amount.
	ErrPackNotFound = errors.New("credit pack not found")

	// ErrAccountNotFound is returned when an account is not found.
	ErrAccountNotFound = errors.New("account not found")
)
