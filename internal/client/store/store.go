// Package store is the typed preference store of the Nikbrowser client.
//
// Values are JSON documents kept in the local SQLite preferences table.
// Reads are schema-checked: a value that fails to decode, or whose type
// implements Validate() and rejects it, is logged and reported as absent.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/nikbrowser/nikbrowser/internal/client/repositories/preferences"
	"github.com/nikbrowser/nikbrowser/internal/dbx"
	"github.com/nikbrowser/nikbrowser/internal/logging"
)

// Persisted keys.
const (
	KeyUser           = "nikbrowser_user"
	KeySession        = "nikbrowser_session"
	KeySessionExpires = "nikbrowser_session_expires"
	KeyDarkMode       = "nikbrowser_darkmode"
	KeyBookmarks      = "nikbrowser_bookmarks"
)

// ErrUnavailable is returned when the backing database rejects a write.
var ErrUnavailable = errors.New("preference storage unavailable")

type validator interface {
	Validate() error
}

// Writer is the mutating half of the store. Both *Store and the handle
// passed to Batch implement it.
type Writer interface {
	Set(ctx context.Context, key string, value any) error
	Remove(ctx context.Context, key string) error
	Clear(ctx context.Context) error
}

type Store struct {
	db   *sql.DB
	repo preferences.Repository
	log  logging.Logger
}

func New(db *sql.DB, log logging.Logger) *Store {
	if log == nil {
		log = logging.Nop()
	}
	return &Store{
		db:   db,
		repo: preferences.NewSQLiteRepository(db),
		log:  log.With("component", "store"),
	}
}

// Get reads key and decodes it into T. The boolean is false when the key
// was never set, cannot be read, or holds a corrupt value.
func Get[T any](ctx context.Context, s *Store, key string) (T, bool) {
	var out T

	raw, err := s.repo.Get(ctx, key)
	if err != nil {
		s.log.Error(ctx, "preference read failed", "key", key, "err", err)
		return out, false
	}
	if raw == nil {
		return out, false
	}

	if err := json.Unmarshal(raw, &out); err != nil {
		s.log.Warn(ctx, "corrupt preference ignored", "key", key, "err", err)
		var zero T
		return zero, false
	}

	if v, ok := any(&out).(validator); ok {
		if err := v.Validate(); err != nil {
			s.log.Warn(ctx, "invalid preference ignored", "key", key, "err", err)
			var zero T
			return zero, false
		}
	}
	return out, true
}

func (s *Store) Set(ctx context.Context, key string, value any) error {
	return write{repo: s.repo}.Set(ctx, key, value)
}

func (s *Store) Remove(ctx context.Context, key string) error {
	return write{repo: s.repo}.Remove(ctx, key)
}

// Clear removes every stored preference.
func (s *Store) Clear(ctx context.Context) error {
	n, err := s.repo.Clear(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	s.log.Info(ctx, "preferences cleared", "keys", n)
	return nil
}

// Batch runs fn inside one transaction: either every write it performs is
// persisted or none is. fn must only use the Writer it is given.
func (s *Store) Batch(ctx context.Context, fn func(w Writer) error) error {
	var fnErr error
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		fnErr = fn(write{repo: preferences.NewSQLiteRepository(tx)})
		return fnErr
	})
	if err != nil && fnErr == nil {
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	return err
}

type write struct {
	repo preferences.Repository
}

func (w write) Set(ctx context.Context, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode preference[%s]: %w", key, err)
	}
	if err := w.repo.Set(ctx, key, raw); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

func (w write) Remove(ctx context.Context, key string) error {
	if err := w.repo.Delete(ctx, key); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

func (w write) Clear(ctx context.Context) error {
	if _, err := w.repo.Clear(ctx); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}
