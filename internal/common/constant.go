// Package common contains shared constants and helpers used across
// Nikbrowser client components.
package common

// SessionTokenHeaderName carries the session token on requests to the
// history and mail collaborators.
const SessionTokenHeaderName = "X-Session-Token"

// UserIDHeaderName carries the numeric user id on requests to the downloads
// collaborator.
const UserIDHeaderName = "X-User-Id"

// RequestIDHeaderName tags every outbound request for correlation in logs.
const RequestIDHeaderName = "X-Request-Id"

// MinPasswordLength is enforced client-side before register/login calls.
const MinPasswordLength = 6
