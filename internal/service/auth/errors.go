package auth

import "errors"

// Common authentication service errors
var (
	// ErrInvalidToken indicates the token is malformed, has a bad signature,
	// has expired, or is no longer in its user's active set.
	ErrInvalidToken = errors.New("invalid authentication token")

	// ErrMissingToken indicates a token was expected but not provided
	ErrMissingToken = errors.New("authentication token is missing")
)
