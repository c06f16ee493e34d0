// Package services contains application services of the Nikbrowser client.
//
// SessionManager owns the session lifecycle (anonymous, verifying,
// authenticated) and keeps the identity and session token coupled in memory
// and in the preference store. PreferenceSync owns dark mode, bookmarks,
// incognito and settings import/export. HistoryGate decides whether a search
// may be recorded remotely. MailService and DownloadsService wrap the
// remaining collaborators behind the current session.
package services
