package cli

import (
	"bufio"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/nikbrowser/nikbrowser/internal/client/backup"
	"github.com/nikbrowser/nikbrowser/internal/client/client"
	"github.com/nikbrowser/nikbrowser/internal/client/config"
	"github.com/nikbrowser/nikbrowser/internal/client/models"
	"github.com/nikbrowser/nikbrowser/internal/client/services"
	"github.com/nikbrowser/nikbrowser/internal/client/store"
	"github.com/nikbrowser/nikbrowser/internal/logging"
)

// backgroundTimeout bounds fire-and-forget calls such as history recording.
const backgroundTimeout = 10 * time.Second

type App struct {
	config    *config.Config
	db        *sql.DB
	client    client.Client
	session   *services.SessionManager
	prefs     *services.PreferenceSync
	history   *services.HistoryGate
	mail      *services.MailService
	downloads *services.DownloadsService
	log       logging.Logger

	reader *bufio.Reader
	out    io.Writer

	// pending tracks background work that must finish before exit.
	pending      sync.WaitGroup
	bootstrapped <-chan struct{}
}

// NewApp opens the local database, builds the HTTP client and wires the
// services. Close releases everything.
func NewApp(ctx context.Context, cfg *config.Config, log logging.Logger, in io.Reader, out io.Writer) (*App, error) {
	db, err := client.InitDatabase(ctx, cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("error initializing database: %w", err)
	}

	c := client.NewHTTPClient(client.Options{
		Endpoints: client.Endpoints{
			Auth:      cfg.AuthURL,
			History:   cfg.HistoryURL,
			Mail:      cfg.MailURL,
			Downloads: cfg.DownloadsURL,
		},
		Timeout:   cfg.RequestTimeout,
		RetryMax:  cfg.RetryMax,
		RateLimit: cfg.RateLimit,
		Logger:    log,
	})

	return newApp(cfg, db, c, log, in, out), nil
}

func newApp(cfg *config.Config, db *sql.DB, c client.Client, log logging.Logger, in io.Reader, out io.Writer) *App {
	st := store.New(db, log)
	session := services.NewSessionManager(c, st, log, services.SessionOptions{
		KeepSessionOnVerifyOutage: cfg.KeepSessionOnVerifyOutage,
	})

	return &App{
		config:    cfg,
		db:        db,
		client:    c,
		session:   session,
		prefs:     services.NewPreferenceSync(st, session, log),
		history:   services.NewHistoryGate(c, log),
		mail:      services.NewMailService(c, session, log),
		downloads: services.NewDownloadsService(c, session, log),
		log:       log,
		reader:    bufio.NewReader(in),
		out:       out,
	}
}

// Close waits for background work and releases the client and database.
func (a *App) Close() error {
	if a.bootstrapped != nil {
		<-a.bootstrapped
	}
	a.pending.Wait()
	return errors.Join(a.client.Close(), a.db.Close())
}

// Run verifies the cached session in the background and serves the REPL
// until the user leaves.
func (a *App) Run(ctx context.Context) {
	a.println("Welcome to Nikbrowser (type 'help' for commands)")
	a.printSummary(ctx)

	defer a.watchSession()()
	a.startSession(ctx)
	runREPL(ctx, a, a.getStatus, a.reader)
}

// watchSession tells the user when a saved session turns out to be invalid.
func (a *App) watchSession() (cancel func()) {
	var verifying atomic.Bool
	return a.session.Subscribe(func(s services.SessionState) {
		switch s.Phase {
		case services.PhaseVerifying:
			verifying.Store(true)
		case services.PhaseAnonymous:
			if verifying.Swap(false) {
				a.println("Saved session has ended, please log in again.")
			}
		default:
			verifying.Store(false)
		}
	})
}

// startSession verifies the cached session in the background.
func (a *App) startSession(ctx context.Context) <-chan struct{} {
	a.bootstrapped = a.session.Start(ctx)
	return a.bootstrapped
}

// printSummary shows the locally saved state loaded at startup.
func (a *App) printSummary(ctx context.Context) {
	snap := a.prefs.LoadAll(ctx)
	if snap.Identity != nil {
		a.println("Saved login:", snap.Identity.Name())
	}
	a.printf("Dark mode: %s, %d bookmark(s)\n", onOff(snap.DarkMode), len(snap.Bookmarks))
}

func (a *App) isLoggedIn() bool {
	return a.session.State().Phase != services.PhaseAnonymous
}

func (a *App) getStatus() string {
	var parts []string

	state := a.session.State()
	if state.Identity != nil {
		parts = append(parts, state.Identity.Name())
	}
	if state.Phase == services.PhaseVerifying {
		parts = append(parts, "verifying")
	}
	if a.prefs.Incognito() {
		parts = append(parts, "incognito")
	}
	if len(parts) == 0 {
		return ""
	}
	return "(" + strings.Join(parts, " ") + ")"
}

func (a *App) s3Options() backup.S3Options {
	return backup.S3Options{
		Region:    a.config.S3Region,
		Endpoint:  a.config.S3Endpoint,
		AccessKey: a.config.S3AccessKey,
		SecretKey: a.config.S3SecretKey,
	}
}

func (a *App) defaultEngine() models.SearchEngine {
	return models.SearchEngine(a.config.DefaultEngine)
}

func (a *App) println(args ...any) {
	fmt.Fprintln(a.out, args...)
}

func (a *App) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format, args...)
}

// report prints a user-facing message for err and returns it.
func (a *App) report(err error) error {
	var credErr *client.CredentialError
	switch {
	case err == nil:
		return nil
	case errors.As(err, &credErr):
		a.println("Error:", credErr.Message)
	case errors.Is(err, services.ErrNotAuthenticated):
		a.println("Please log in first.")
	case errors.Is(err, client.ErrUnavailable):
		a.println("Server unavailable, try again later.")
	case errors.Is(err, services.ErrValidation), errors.Is(err, services.ErrBusy):
		a.println(err.Error())
	case errors.Is(err, services.ErrMalformedImport):
		a.println("Invalid settings file:", err.Error())
	default:
		a.println("Error:", err.Error())
	}
	return err
}
