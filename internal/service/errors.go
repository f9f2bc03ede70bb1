package service

import "errors"

// Sentinel errors returned by the services. Callers check them with errors.Is.
var (
	// ErrInvalidCredentials is returned by VerifyCredentials for an unknown
	// email and for a wrong password alike.
	// API layer should map this to HTTP 400 with an empty body.
	ErrInvalidCredentials = errors.New("unable to login")
)
