// Package client contains the transport layer of the Nikbrowser client.
//
// # Overview
//
// The package provides:
//  1. Narrow collaborator contracts (AuthClient, HistoryClient, MailClient,
//     DownloadsClient) and the umbrella Client interface.
//  2. HTTPClient, a JSON-over-HTTP implementation built on go-resty with a
//     retryablehttp pooled transport, a client-side rate limiter and an
//     X-Request-Id on every request.
//  3. Local persistence bootstrap (InitDatabase, RunMigrations) that opens the
//     SQLite preference database and applies embedded goose migrations.
//
// # Error Handling
//
// Transport failures and unstructured non-2xx answers map to ErrUnavailable.
// Structured answers ({"error": "..."}) become *APIError, whose Unwrap yields
// ErrUnauthorized for 401/403. Register and Login turn a structured rejection
// into *CredentialError carrying the server message verbatim.
package client
