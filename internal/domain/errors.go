package domain

import "errors"

// Sentinel errors for domain-level error discrimination.
// Services wrap these so handlers can map to HTTP status codes without leaking infrastructure details.
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrUnauthorized = errors.New("unauthorized")
	ErrBadRequest   = errors.New("bad request")

	// ErrUnavailable marks a backing store that could not be reached. It must
	// surface as a 5xx, never be mistaken for a "not found" business outcome.
	ErrUnavailable = errors.New("dependency unavailable")

	// ErrDelivery marks an email that could not be handed to the SMTP relay.
	// Committed OTP/credential state is kept; the client may retry.
	ErrDelivery = errors.New("delivery failed")
)
