package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nikbrowser/nikbrowser/internal/client/services"
)

func TestApp_LoginSearchRecordsHistory(t *testing.T) {
	stubPassword(t, "secret1")
	backend := newFakeBackend()
	a, out := newTestApp(t, backend, "alice@example.com\n")
	ctx := context.Background()

	require.NoError(t, a.Login(ctx))
	assert.Contains(t, out.String(), "Login successful. Hello, Alice")
	assert.Equal(t, "(Alice)", a.getStatus())

	require.NoError(t, a.Search(ctx, []string{"golang", "generics"}))
	require.NoError(t, a.Search(ctx, []string{"@yandex", "weather"}))
	a.pending.Wait()

	assert.Contains(t, out.String(), "https://www.google.com/search?q=golang+generics")
	assert.ElementsMatch(t, []string{"golang generics", "weather"}, backend.historyQueries())

	out.Reset()
	require.NoError(t, a.History(ctx))
	assert.Contains(t, out.String(), "weather")
}

func TestApp_IncognitoSearchNotRecorded(t *testing.T) {
	stubPassword(t, "secret1")
	backend := newFakeBackend()
	a, out := newTestApp(t, backend, "alice@example.com\n")
	ctx := context.Background()

	require.NoError(t, a.Login(ctx))
	require.NoError(t, a.Incognito(ctx, nil))
	assert.Contains(t, out.String(), "Incognito: on")
	assert.Equal(t, "(Alice incognito)", a.getStatus())

	require.NoError(t, a.Search(ctx, []string{"secret", "plans"}))
	a.pending.Wait()
	assert.Empty(t, backend.historyQueries())
}

func TestApp_AnonymousSearchNotRecorded(t *testing.T) {
	backend := newFakeBackend()
	a, _ := newTestApp(t, backend, "")
	ctx := context.Background()

	require.NoError(t, a.Search(ctx, []string{"cats"}))
	a.pending.Wait()
	assert.Empty(t, backend.historyQueries())
	assert.Equal(t, "", a.getStatus())
}

func TestApp_LoginRejectedShowsServerMessage(t *testing.T) {
	stubPassword(t, "wrong-password")
	a, out := newTestApp(t, newFakeBackend(), "alice@example.com\n")

	err := a.Login(context.Background())
	require.Error(t, err)
	assert.Contains(t, out.String(), "Неверный логин или пароль")
	assert.False(t, a.isLoggedIn())
}

func TestApp_RegisterThenWhoAmI(t *testing.T) {
	stubPassword(t, "secret1")
	a, out := newTestApp(t, newFakeBackend(), "alice@example.com\nAlice\n")
	ctx := context.Background()

	require.NoError(t, a.Register(ctx))
	assert.Contains(t, out.String(), "Your mailbox is alice1a2b@nikmail.ru")

	out.Reset()
	require.NoError(t, a.WhoAmI(ctx))
	assert.Contains(t, out.String(), "Alice <alice1a2b@nikmail.ru> [authenticated]")
	assert.Contains(t, out.String(), "email: alice@example.com")
}

func TestApp_LogoutClearsLocallyWhenServerFails(t *testing.T) {
	stubPassword(t, "secret1")
	backend := newFakeBackend()
	a, out := newTestApp(t, backend, "alice@example.com\n")
	ctx := context.Background()

	require.NoError(t, a.Login(ctx))
	backend.mu.Lock()
	backend.logoutErr = true
	backend.mu.Unlock()

	require.NoError(t, a.Logout(ctx))
	assert.Contains(t, out.String(), "Logged out.")
	assert.False(t, a.isLoggedIn())

	out.Reset()
	require.NoError(t, a.WhoAmI(ctx))
	assert.Contains(t, out.String(), "Not logged in.")
}

func TestApp_SessionSurvivesRestart(t *testing.T) {
	stubPassword(t, "secret1")
	backend := newFakeBackend()
	a, _ := newTestApp(t, backend, "alice@example.com\n")
	ctx := context.Background()
	require.NoError(t, a.Login(ctx))

	// A second App over the same database verifies the cached session.
	b := newApp(a.config, a.db, a.client, a.log, nil, a.out)
	<-b.startSession(ctx)
	assert.Equal(t, services.PhaseAuthenticated, b.session.State().Phase)
}

func TestApp_BookmarksAddListRemove(t *testing.T) {
	a, out := newTestApp(t, newFakeBackend(), "Go\nhttps://go.dev\n\n  \nhttps://x.example\n\n")
	ctx := context.Background()

	require.NoError(t, a.AddBookmark(ctx))
	assert.Contains(t, out.String(), "Bookmark added.")

	require.NoError(t, a.AddBookmark(ctx))
	assert.Contains(t, out.String(), "Name and URL are required")

	out.Reset()
	require.NoError(t, a.Bookmarks(ctx))
	assert.Contains(t, out.String(), " 1. ⭐ Go  https://go.dev")

	out.Reset()
	require.NoError(t, a.RemoveBookmark(ctx, []string{"2"}))
	assert.Contains(t, out.String(), "No such bookmark.")

	require.NoError(t, a.RemoveBookmark(ctx, []string{"1"}))
	assert.Contains(t, out.String(), "Bookmark removed.")

	out.Reset()
	require.NoError(t, a.Bookmarks(ctx))
	assert.Contains(t, out.String(), "No bookmarks yet")
}

func TestApp_DarkModeSwitch(t *testing.T) {
	a, out := newTestApp(t, newFakeBackend(), "")
	ctx := context.Background()

	require.NoError(t, a.DarkMode(ctx, nil))
	assert.True(t, a.prefs.DarkMode(ctx))

	require.NoError(t, a.DarkMode(ctx, []string{"off"}))
	assert.False(t, a.prefs.DarkMode(ctx))

	require.NoError(t, a.DarkMode(ctx, []string{"maybe"}))
	assert.Contains(t, out.String(), "Usage: darkmode [on|off]")
}

func TestApp_ExportImportRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "settings.json.gz")

	src, out := newTestApp(t, newFakeBackend(), "Go\nhttps://go.dev\n🐹\n")
	ctx := context.Background()
	require.NoError(t, src.AddBookmark(ctx))
	require.NoError(t, src.DarkMode(ctx, []string{"on"}))
	require.NoError(t, src.Export(ctx, []string{path}))
	assert.Contains(t, out.String(), "Settings exported to")

	dst, _ := newTestApp(t, newFakeBackend(), "")
	require.NoError(t, dst.Import(ctx, []string{path}))
	assert.True(t, dst.prefs.DarkMode(ctx))
	bms := dst.prefs.Bookmarks(ctx)
	require.Len(t, bms, 1)
	assert.Equal(t, "🐹", bms[0].Icon)
}

func TestApp_ImportRejectsMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"bookmarks":"nope"}`), 0o600))

	a, out := newTestApp(t, newFakeBackend(), "")
	err := a.Import(context.Background(), []string{path})
	require.ErrorIs(t, err, services.ErrMalformedImport)
	assert.Contains(t, out.String(), "Invalid settings file")
}

func TestApp_ResetNeedsConfirmation(t *testing.T) {
	a, out := newTestApp(t, newFakeBackend(), "Go\nhttps://go.dev\n\nn\ny\n")
	ctx := context.Background()
	require.NoError(t, a.AddBookmark(ctx))

	require.NoError(t, a.Reset(ctx))
	assert.Contains(t, out.String(), "Cancelled.")
	assert.Len(t, a.prefs.Bookmarks(ctx), 1)

	require.NoError(t, a.Reset(ctx))
	assert.Contains(t, out.String(), "All local data deleted.")
	assert.Empty(t, a.prefs.Bookmarks(ctx))
}

func TestApp_MailAndDownloadsNeedLogin(t *testing.T) {
	a, out := newTestApp(t, newFakeBackend(), "")
	ctx := context.Background()

	require.ErrorIs(t, a.Inbox(ctx, nil), services.ErrNotAuthenticated)
	require.ErrorIs(t, a.Downloads(ctx), services.ErrNotAuthenticated)
	assert.Contains(t, out.String(), "Please log in first.")
}

func TestApp_MailFlow(t *testing.T) {
	stubPassword(t, "secret1")
	backend := newFakeBackend()
	a, out := newTestApp(t, backend, "alice@example.com\nbob@nikmail.ru\nHi\nsee you\n\n\n")
	ctx := context.Background()
	require.NoError(t, a.Login(ctx))

	out.Reset()
	require.NoError(t, a.Inbox(ctx, nil))
	assert.Contains(t, out.String(), "Welcome")

	require.NoError(t, a.ReadMail(ctx, []string{"1"}))
	assert.Contains(t, out.String(), "Hello there")
	backend.mu.Lock()
	assert.True(t, backend.emails[0].IsRead)
	backend.mu.Unlock()

	require.NoError(t, a.StarMail(ctx, []string{"1"}))
	assert.Contains(t, out.String(), "Starred.")

	require.NoError(t, a.SendMail(ctx))
	assert.Contains(t, out.String(), "Message sent.")

	require.NoError(t, a.ArchiveMail(ctx, []string{"x"}))
	assert.Contains(t, out.String(), "Usage: archive <id>")
}

func TestApp_DownloadsFlow(t *testing.T) {
	stubPassword(t, "secret1")
	backend := newFakeBackend()
	a, out := newTestApp(t, backend, "alice@example.com\n")
	ctx := context.Background()
	require.NoError(t, a.Login(ctx))

	require.NoError(t, a.Downloads(ctx))
	assert.Contains(t, out.String(), "nik.zip")

	require.NoError(t, a.Install(ctx, []string{"3"}))
	backend.mu.Lock()
	assert.True(t, backend.downloads[0].IsInstalled)
	backend.mu.Unlock()

	require.NoError(t, a.DeleteDownload(ctx, []string{"3"}))
	out.Reset()
	require.NoError(t, a.Downloads(ctx))
	assert.Contains(t, out.String(), "No downloads.")
}

func TestApp_RunShowsSummaryAndExits(t *testing.T) {
	capturePrintln(t)
	a, out := newTestApp(t, newFakeBackend(), "darkmode on\nexit\n")
	a.Run(context.Background())

	assert.Contains(t, out.String(), "Dark mode: off, 0 bookmark(s)")
	assert.Contains(t, out.String(), "Dark mode: on")
	assert.True(t, a.prefs.DarkMode(context.Background()))
}

func TestApp_ReportsRejectedSavedSession(t *testing.T) {
	stubPassword(t, "secret1")
	backend := newFakeBackend()
	a, _ := newTestApp(t, backend, "alice@example.com\n")
	ctx := context.Background()
	require.NoError(t, a.Login(ctx))

	backend.mu.Lock()
	backend.tokens = map[string]bool{}
	backend.mu.Unlock()

	var out bytes.Buffer
	b := newApp(a.config, a.db, a.client, a.log, strings.NewReader(""), &out)
	b.printSummary(ctx)
	cancel := b.watchSession()
	<-b.startSession(ctx)
	cancel()

	assert.Contains(t, out.String(), "Saved login: Alice")
	assert.Contains(t, out.String(), "Saved session has ended, please log in again.")
	assert.False(t, b.isLoggedIn())
}
