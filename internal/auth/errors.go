package auth

import "errors"

// Failure taxonomy of the auth subsystem. The message of each sentinel is the
// exact client-facing error body, so handlers can surface err.Error() as-is.
var (
	// ErrInvalidCredentials covers both unknown email and wrong password so
	// the response never reveals which field was wrong.
	ErrInvalidCredentials = errors.New("Invalid credentials")

	ErrMissingFields      = errors.New("Missing fields")
	ErrInvalidRole        = errors.New("Invalid role")
	ErrSupervisorRequired = errors.New("Supervisor required for TECNICO role")
	ErrSupervisorNotFound = errors.New("Supervisor not found")
	ErrEmailTaken         = errors.New("Email already registered")

	// ErrDirectoryUnavailable is the collapsed form of every transport-level
	// failure while consulting the supervisors service. The wording is fixed;
	// the portal frontend matches on it.
	ErrDirectoryUnavailable = errors.New("No se pudo validar el supervisor indicado")

	// ErrInvalidToken indicates the session token failed validation
	// (signature, expiry or structure).
	ErrInvalidToken = errors.New("invalid token")

	// ErrNotFound is returned by stores when a record does not exist.
	ErrNotFound = errors.New("auth: not found")
)
