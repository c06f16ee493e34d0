package client

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrUnavailable means the collaborator could not be reached or answered
	// without a structured error (connectivity error).
	ErrUnavailable = errors.New("server unavailable")

	// ErrUnauthorized means the session token was missing or rejected.
	ErrUnauthorized = errors.New("unauthorized")
)

// APIError is a structured error returned by a collaborator:
// a response carrying {"error": "..."}.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
}

// Unwrap lets errors.Is(err, ErrUnauthorized) match 401/403 responses.
func (e *APIError) Unwrap() error {
	if e.Status == http.StatusUnauthorized || e.Status == http.StatusForbidden {
		return ErrUnauthorized
	}
	return nil
}

// CredentialError is returned when the auth service explicitly rejects a
// login or registration. Message is the server text, meant to be shown to
// the user verbatim.
type CredentialError struct {
	Status  int
	Message string
}

func (e *CredentialError) Error() string {
	return e.Message
}
