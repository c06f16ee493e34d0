package services

import (
	"context"
	"database/sql"
	"sync"
	"testing"

	"github.com/nikbrowser/nikbrowser/internal/client/client"
	"github.com/nikbrowser/nikbrowser/internal/client/models"
	"github.com/nikbrowser/nikbrowser/internal/client/store"
	"github.com/nikbrowser/nikbrowser/internal/logging"
	"github.com/stretchr/testify/require"
)

// fakeClient implements client.Client for service tests. Unset funcs
// succeed with zero values.
type fakeClient struct {
	mu sync.Mutex

	RegisterFn func(ctx context.Context, creds models.Credentials) (*client.AuthResult, error)
	LoginFn    func(ctx context.Context, creds models.Credentials) (*client.AuthResult, error)
	LogoutErr  error
	VerifyFn   func(ctx context.Context, token string) (*models.Identity, error)

	AddHistoryErr   error
	ListHistoryRet  []models.HistoryItem
	ListHistoryErr  error
	ClearHistoryErr error

	ListMailRet   []models.Email
	MailErr       error
	SendMailRet   int64
	ToggleStarRet bool

	ListDownloadsRet []models.Download
	DownloadsErr     error

	LogoutTokens  []string
	HistoryAdds   []string
	LastToken     string
	LastUserID    int64
	LastFolder    models.MailFolder
	LastLimit     int
	LoginCalls    int
	RegisterCalls int
}

var _ client.Client = (*fakeClient)(nil)

func (f *fakeClient) Register(ctx context.Context, creds models.Credentials) (*client.AuthResult, error) {
	f.mu.Lock()
	f.RegisterCalls++
	fn := f.RegisterFn
	f.mu.Unlock()
	if fn == nil {
		return nil, client.ErrUnavailable
	}
	return fn(ctx, creds)
}

func (f *fakeClient) Login(ctx context.Context, creds models.Credentials) (*client.AuthResult, error) {
	f.mu.Lock()
	f.LoginCalls++
	fn := f.LoginFn
	f.mu.Unlock()
	if fn == nil {
		return nil, client.ErrUnavailable
	}
	return fn(ctx, creds)
}

func (f *fakeClient) Logout(_ context.Context, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.LogoutTokens = append(f.LogoutTokens, token)
	return f.LogoutErr
}

func (f *fakeClient) VerifySession(ctx context.Context, token string) (*models.Identity, error) {
	if f.VerifyFn == nil {
		return nil, client.ErrUnavailable
	}
	return f.VerifyFn(ctx, token)
}

func (f *fakeClient) AddHistory(_ context.Context, token, query string, _ models.SearchEngine) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.LastToken = token
	f.HistoryAdds = append(f.HistoryAdds, query)
	return f.AddHistoryErr
}

func (f *fakeClient) ListHistory(_ context.Context, token string, limit int) ([]models.HistoryItem, error) {
	f.LastToken, f.LastLimit = token, limit
	return f.ListHistoryRet, f.ListHistoryErr
}

func (f *fakeClient) ClearHistory(_ context.Context, token string) error {
	f.LastToken = token
	return f.ClearHistoryErr
}

func (f *fakeClient) ListMail(_ context.Context, token string, folder models.MailFolder, limit int) ([]models.Email, error) {
	f.LastToken, f.LastFolder, f.LastLimit = token, folder, limit
	return f.ListMailRet, f.MailErr
}

func (f *fakeClient) SendMail(_ context.Context, token string, _ models.OutgoingEmail) (int64, error) {
	f.LastToken = token
	return f.SendMailRet, f.MailErr
}

func (f *fakeClient) MarkRead(_ context.Context, token string, _ int64) error {
	f.LastToken = token
	return f.MailErr
}

func (f *fakeClient) ToggleStar(_ context.Context, token string, _ int64) (bool, error) {
	f.LastToken = token
	return f.ToggleStarRet, f.MailErr
}

func (f *fakeClient) Archive(_ context.Context, token string, _ int64) error {
	f.LastToken = token
	return f.MailErr
}

func (f *fakeClient) ListDownloads(_ context.Context, userID int64) ([]models.Download, error) {
	f.LastUserID = userID
	return f.ListDownloadsRet, f.DownloadsErr
}

func (f *fakeClient) SetInstalled(_ context.Context, userID, _ int64, _ bool) error {
	f.LastUserID = userID
	return f.DownloadsErr
}

func (f *fakeClient) DeleteDownload(_ context.Context, userID, _ int64) error {
	f.LastUserID = userID
	return f.DownloadsErr
}

func (f *fakeClient) Close() error { return nil }

func newDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := client.InitDatabase(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func newStore(t *testing.T) *store.Store {
	t.Helper()
	return store.New(newDB(t), logging.Nop())
}

func int64Ptr(v int64) *int64 { return &v }

func alice() models.Identity {
	return models.Identity{ID: int64Ptr(7), Nikmail: "alice1a2b@nikmail.ru"}
}

func loginOK(id models.Identity, token string) func(context.Context, models.Credentials) (*client.AuthResult, error) {
	return func(context.Context, models.Credentials) (*client.AuthResult, error) {
		return &client.AuthResult{Identity: id, Token: token}, nil
	}
}

func validCreds() models.Credentials {
	return models.Credentials{Email: "alice@example.com", Password: []byte("secret1")}
}
