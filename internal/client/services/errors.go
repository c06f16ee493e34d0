package services

import "errors"

var (
	// ErrValidation is returned before any network call when user input is
	// rejected locally.
	ErrValidation = errors.New("validation failed")

	// ErrNotAuthenticated is returned by features that need a session when
	// there is none or the collaborator rejected it.
	ErrNotAuthenticated = errors.New("not authenticated")

	// ErrBusy is returned when a login or registration is already in flight.
	ErrBusy = errors.New("another sign-in is in progress")

	// ErrMalformedImport is returned when an import document fails
	// validation. Nothing is applied in that case.
	ErrMalformedImport = errors.New("malformed import document")
)
