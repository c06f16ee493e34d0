package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/nikbrowser/nikbrowser/internal/client/client"
	"github.com/nikbrowser/nikbrowser/internal/client/models"
	"github.com/nikbrowser/nikbrowser/internal/logging"
)

// HistoryGate forwards searches to the history service when, and only
// when, the user is signed in and not browsing incognito.
type HistoryGate struct {
	client client.HistoryClient
	log    logging.Logger
}

func NewHistoryGate(c client.HistoryClient, log logging.Logger) *HistoryGate {
	if log == nil {
		log = logging.Nop()
	}
	return &HistoryGate{client: c, log: log.With("component", "history")}
}

// ShouldRecord reports whether a search may be recorded.
func (g *HistoryGate) ShouldRecord(token string, incognito bool) bool {
	return token != "" && !incognito
}

// RecordIfAllowed records the search when ShouldRecord allows it. Failures
// are logged and never surface to the caller; the result reports whether
// the search was stored remotely.
func (g *HistoryGate) RecordIfAllowed(ctx context.Context, query string, engine models.SearchEngine, token string, incognito bool) bool {
	if !g.ShouldRecord(token, incognito) {
		return false
	}
	if err := g.client.AddHistory(ctx, token, query, engine); err != nil {
		g.log.Warn(ctx, "failed to record search", "engine", engine, "err", err)
		return false
	}
	return true
}

// List returns the most recent searches, newest first.
func (g *HistoryGate) List(ctx context.Context, token string, limit int) ([]models.HistoryItem, error) {
	if token == "" {
		return nil, ErrNotAuthenticated
	}
	items, err := g.client.ListHistory(ctx, token, limit)
	if err != nil {
		return nil, sessionError("list history", err)
	}
	return items, nil
}

func (g *HistoryGate) Clear(ctx context.Context, token string) error {
	if token == "" {
		return ErrNotAuthenticated
	}
	if err := g.client.ClearHistory(ctx, token); err != nil {
		return sessionError("clear history", err)
	}
	return nil
}

// sessionError maps a rejected session to ErrNotAuthenticated.
func sessionError(op string, err error) error {
	if errors.Is(err, client.ErrUnauthorized) {
		return fmt.Errorf("%s: %w: %v", op, ErrNotAuthenticated, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}
