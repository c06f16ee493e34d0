package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/nikbrowser/nikbrowser/internal/client/client"
	"github.com/nikbrowser/nikbrowser/internal/client/config"
	"github.com/nikbrowser/nikbrowser/internal/client/models"
	"github.com/nikbrowser/nikbrowser/internal/common"
	"github.com/nikbrowser/nikbrowser/internal/logging"
	"github.com/stretchr/testify/require"
)

// fakeBackend emulates the auth, history, mail and downloads services.
type fakeBackend struct {
	mu sync.Mutex

	password  string
	identity  models.Identity
	tokens    map[string]bool
	history   []map[string]any
	emails    []models.Email
	downloads []models.Download
	logoutErr bool
	requests  []string
}

func newFakeBackend() *fakeBackend {
	id := int64(7)
	name := "Alice"
	email := "alice@example.com"
	return &fakeBackend{
		password: "secret1",
		identity: models.Identity{ID: &id, Email: &email, Nikmail: "alice1a2b@nikmail.ru", DisplayName: &name},
		tokens:   map[string]bool{},
		emails: []models.Email{
			{ID: 1, FromEmail: "welcome@nikmail.ru", ToEmail: "alice1a2b@nikmail.ru", Subject: "Welcome", Body: "Hello there"},
		},
		downloads: []models.Download{{ID: 3, FileName: "nik.zip", DownloadStatus: "completed", Progress: 100}},
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (b *fakeBackend) authorized(r *http.Request) bool {
	return b.tokens[r.Header.Get(common.SessionTokenHeaderName)]
}

func (b *fakeBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()

	var body map[string]any
	raw, _ := io.ReadAll(r.Body)
	_ = json.Unmarshal(raw, &body)
	action, _ := body["action"].(string)
	b.requests = append(b.requests, r.Method+" "+r.URL.Path+" "+action)

	switch r.URL.Path {
	case "/auth":
		b.serveAuth(w, action, body)
	case "/search-history":
		if !b.authorized(r) {
			writeJSON(w, http.StatusUnauthorized, map[string]any{"error": "Session token required"})
			return
		}
		if r.Method == http.MethodGet {
			writeJSON(w, http.StatusOK, map[string]any{"success": true, "history": b.history})
			return
		}
		switch action {
		case "add":
			b.history = append(b.history, map[string]any{
				"id": len(b.history) + 1, "search_query": body["search_query"],
				"search_engine": body["search_engine"], "created_at": "2025-01-01 10:00:00",
			})
		case "clear":
			b.history = nil
		}
		writeJSON(w, http.StatusOK, map[string]any{"success": true})
	case "/mail":
		if !b.authorized(r) {
			writeJSON(w, http.StatusUnauthorized, map[string]any{"success": false, "error": "Требуется авторизация"})
			return
		}
		if r.Method == http.MethodGet {
			writeJSON(w, http.StatusOK, map[string]any{"success": true, "emails": b.emails})
			return
		}
		switch action {
		case "send":
			writeJSON(w, http.StatusOK, map[string]any{"success": true, "email_id": 99})
		case "toggle_star":
			b.emails[0].IsStarred = !b.emails[0].IsStarred
			writeJSON(w, http.StatusOK, map[string]any{"success": true, "is_starred": b.emails[0].IsStarred})
		case "mark_read":
			b.emails[0].IsRead = true
			writeJSON(w, http.StatusOK, map[string]any{"success": true})
		default:
			writeJSON(w, http.StatusOK, map[string]any{"success": true})
		}
	case "/downloads":
		if r.Header.Get(common.UserIDHeaderName) != "7" {
			writeJSON(w, http.StatusUnauthorized, map[string]any{"error": "Требуется авторизация"})
			return
		}
		switch r.Method {
		case http.MethodGet:
			writeJSON(w, http.StatusOK, map[string]any{"downloads": b.downloads})
		case http.MethodPut:
			b.downloads[0].IsInstalled, _ = body["is_installed"].(bool)
			writeJSON(w, http.StatusOK, map[string]any{"success": true})
		case http.MethodDelete:
			b.downloads = nil
			writeJSON(w, http.StatusOK, map[string]any{"success": true})
		}
	default:
		http.NotFound(w, r)
	}
}

func (b *fakeBackend) serveAuth(w http.ResponseWriter, action string, body map[string]any) {
	switch action {
	case "login", "register":
		if body["password"] != b.password {
			writeJSON(w, http.StatusUnauthorized, map[string]any{"error": "Неверный логин или пароль"})
			return
		}
		token := "tok-" + time.Now().Format("150405.000000")
		b.tokens[token] = true
		writeJSON(w, http.StatusOK, map[string]any{
			"success": true, "user": b.identity, "session_token": token,
			"expires_at": time.Now().Add(24 * time.Hour).UTC().Format(time.RFC3339),
		})
	case "verify_session":
		token, _ := body["session_token"].(string)
		if !b.tokens[token] {
			writeJSON(w, http.StatusUnauthorized, map[string]any{"error": "Invalid or expired session"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "user": b.identity})
	case "logout":
		if b.logoutErr {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		token, _ := body["session_token"].(string)
		delete(b.tokens, token)
		writeJSON(w, http.StatusOK, map[string]any{"success": true})
	default:
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "Unknown action"})
	}
}

func (b *fakeBackend) historyQueries() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []string
	for _, h := range b.history {
		out = append(out, h["search_query"].(string))
	}
	return out
}

func testConfig(serverURL string) *config.Config {
	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.AuthURL = serverURL + "/auth"
	cfg.HistoryURL = serverURL + "/search-history"
	cfg.MailURL = serverURL + "/mail"
	cfg.DownloadsURL = serverURL + "/downloads"
	cfg.DatabasePath = ":memory:"
	cfg.RetryMax = 0
	cfg.RateLimit = 0
	cfg.RequestTimeout = 2 * time.Second
	return cfg
}

// newTestApp builds an App against backend with input fed to its reader.
func newTestApp(t *testing.T, backend *fakeBackend, input string) (*App, *bytes.Buffer) {
	t.Helper()
	srv := httptest.NewServer(backend)
	t.Cleanup(srv.Close)

	cfg := testConfig(srv.URL)
	db, err := client.InitDatabase(context.Background(), cfg.DatabasePath)
	require.NoError(t, err)

	c := client.NewHTTPClient(client.Options{
		Endpoints: client.Endpoints{Auth: cfg.AuthURL, History: cfg.HistoryURL, Mail: cfg.MailURL, Downloads: cfg.DownloadsURL},
		Timeout:   cfg.RequestTimeout,
	})

	out := &bytes.Buffer{}
	a := newApp(cfg, db, c, logging.Nop(), strings.NewReader(input), out)
	t.Cleanup(func() { _ = a.Close() })
	return a, out
}

// stubPassword makes getPassword return pw without touching the terminal.
func stubPassword(t *testing.T, pw string) {
	t.Helper()
	orig := getPassword
	getPassword = func(_ io.Writer) ([]byte, error) { return []byte(pw), nil }
	t.Cleanup(func() { getPassword = orig })
}
