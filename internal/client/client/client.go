package client

import (
	"context"
	"time"

	"github.com/nikbrowser/nikbrowser/internal/client/models"
)

// AuthResult is what register and login hand back on success.
// ExpiresAt is zero when the service did not report an expiry.
type AuthResult struct {
	Identity  models.Identity
	Token     string
	ExpiresAt time.Time
}

// AuthClient talks to the remote authentication service.
type AuthClient interface {
	Register(ctx context.Context, creds models.Credentials) (*AuthResult, error)
	Login(ctx context.Context, creds models.Credentials) (*AuthResult, error)
	Logout(ctx context.Context, token string) error
	VerifySession(ctx context.Context, token string) (*models.Identity, error)
}

// HistoryClient talks to the remote search-history service.
type HistoryClient interface {
	AddHistory(ctx context.Context, token, query string, engine models.SearchEngine) error
	ListHistory(ctx context.Context, token string, limit int) ([]models.HistoryItem, error)
	ClearHistory(ctx context.Context, token string) error
}

// MailClient talks to the remote mail service.
type MailClient interface {
	ListMail(ctx context.Context, token string, folder models.MailFolder, limit int) ([]models.Email, error)
	SendMail(ctx context.Context, token string, email models.OutgoingEmail) (int64, error)
	MarkRead(ctx context.Context, token string, id int64) error
	ToggleStar(ctx context.Context, token string, id int64) (bool, error)
	Archive(ctx context.Context, token string, id int64) error
}

// DownloadsClient talks to the remote downloads service.
type DownloadsClient interface {
	ListDownloads(ctx context.Context, userID int64) ([]models.Download, error)
	SetInstalled(ctx context.Context, userID, id int64, installed bool) error
	DeleteDownload(ctx context.Context, userID, id int64) error
}

// Client bundles every collaborator the Nikbrowser client consumes.
type Client interface {
	AuthClient
	HistoryClient
	MailClient
	DownloadsClient
	Close() error
}
