// Package cli provides the interactive Nikbrowser command-line client.
//
// It wires configuration, the local preference database, the HTTP
// collaborators and the services into an App, and exposes it either as an
// interactive REPL (the default) or as one-shot cobra subcommands.
//
// Key features:
//   - Register / Login / Logout with a cached, verified-on-start session
//   - Search with history recording (skipped while incognito)
//   - Bookmarks, dark mode, incognito
//   - Settings export/import to files, .gz files or S3
//   - Mail and downloads for the signed-in account
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
// See NewRootCommand and runREPL for details.
package cli
