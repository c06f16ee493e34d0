package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/nikbrowser/nikbrowser/internal/client/models"
	"github.com/nikbrowser/nikbrowser/internal/client/store"
	"github.com/nikbrowser/nikbrowser/internal/common"
	"github.com/nikbrowser/nikbrowser/internal/logging"
)

// PreferenceSync owns the user's local preferences. Every mutation is a
// get-then-set performed under one lock and persisted immediately.
type PreferenceSync struct {
	store   *store.Store
	session *SessionManager
	log     logging.Logger
	now     func() time.Time

	mu        sync.Mutex
	incognito bool
}

func NewPreferenceSync(st *store.Store, session *SessionManager, log logging.Logger) *PreferenceSync {
	if log == nil {
		log = logging.Nop()
	}
	return &PreferenceSync{
		store:   st,
		session: session,
		log:     log.With("component", "preferences"),
		now:     time.Now,
	}
}

// LoadAll reads every preference independently; a missing or corrupt key
// falls back to its default without affecting the others.
func (p *PreferenceSync) LoadAll(ctx context.Context) models.PreferenceSnapshot {
	p.mu.Lock()
	defer p.mu.Unlock()

	snap := models.PreferenceSnapshot{
		DarkMode:  p.darkMode(ctx),
		Bookmarks: p.bookmarks(ctx),
		Incognito: p.incognito,
	}
	if id, ok := store.Get[models.Identity](ctx, p.store, store.KeyUser); ok {
		snap.Identity = &id
	}
	return snap
}

func (p *PreferenceSync) DarkMode(ctx context.Context) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.darkMode(ctx)
}

func (p *PreferenceSync) Bookmarks(ctx context.Context) models.BookmarkList {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.bookmarks(ctx)
}

func (p *PreferenceSync) darkMode(ctx context.Context) bool {
	dark, _ := store.Get[bool](ctx, p.store, store.KeyDarkMode)
	return dark
}

func (p *PreferenceSync) bookmarks(ctx context.Context) models.BookmarkList {
	list, ok := store.Get[models.BookmarkList](ctx, p.store, store.KeyBookmarks)
	if !ok || list == nil {
		return models.BookmarkList{}
	}
	return list
}

func (p *PreferenceSync) SetDarkMode(ctx context.Context, on bool) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.store.Set(ctx, store.KeyDarkMode, on)
}

// AddBookmark appends b. A bookmark with a blank name or url is ignored and
// reported with false; an empty icon becomes models.DefaultBookmarkIcon.
func (p *PreferenceSync) AddBookmark(ctx context.Context, b models.Bookmark) (bool, error) {
	b.Name = strings.TrimSpace(b.Name)
	b.URL = strings.TrimSpace(b.URL)
	if b.Validate() != nil {
		return false, nil
	}
	if common.IsBlank(b.Icon) {
		b.Icon = models.DefaultBookmarkIcon
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	list := append(p.bookmarks(ctx), b)
	if err := p.store.Set(ctx, store.KeyBookmarks, list); err != nil {
		return false, err
	}
	return true, nil
}

// RemoveBookmark deletes the bookmark at index. An out-of-range index is a
// no-op reported with false.
func (p *PreferenceSync) RemoveBookmark(ctx context.Context, index int) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	list := p.bookmarks(ctx)
	if index < 0 || index >= len(list) {
		return false, nil
	}
	list = append(list[:index], list[index+1:]...)
	if err := p.store.Set(ctx, store.KeyBookmarks, list); err != nil {
		return false, err
	}
	return true, nil
}

// SetIncognito toggles incognito for this process only.
func (p *PreferenceSync) SetIncognito(on bool) {
	p.mu.Lock()
	p.incognito = on
	p.mu.Unlock()
}

func (p *PreferenceSync) Incognito() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.incognito
}

// ExportSnapshot builds the portable settings document. It never contains
// the session token or the incognito flag.
func (p *PreferenceSync) ExportSnapshot(ctx context.Context) models.ExportDocument {
	p.mu.Lock()
	defer p.mu.Unlock()

	doc := models.ExportDocument{
		Bookmarks:  p.bookmarks(ctx),
		DarkMode:   p.darkMode(ctx),
		ExportDate: p.now().UTC(),
		Version:    models.ExportVersion,
	}
	if p.session != nil {
		doc.User = p.session.CurrentIdentity()
	}
	return doc
}

type importedBookmark struct {
	Name *string `json:"name"`
	URL  *string `json:"url"`
	Icon *string `json:"icon"`
}

// ImportSnapshot validates data as a whole and only then applies the
// bookmarks and dark mode it carries in one transaction. Fields absent from
// the document are left as they are; unknown fields are ignored.
func (p *PreferenceSync) ImportSnapshot(ctx context.Context, data []byte) error {
	bookmarks, darkMode, err := parseImport(data)
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	err = p.store.Batch(ctx, func(w store.Writer) error {
		if bookmarks != nil {
			if err := w.Set(ctx, store.KeyBookmarks, bookmarks); err != nil {
				return err
			}
		}
		if darkMode != nil {
			if err := w.Set(ctx, store.KeyDarkMode, *darkMode); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("apply import: %w", err)
	}

	p.log.Info(ctx, "settings imported", "bookmarks", len(bookmarks), "dark_mode_set", darkMode != nil)
	return nil
}

func parseImport(data []byte) (models.BookmarkList, *bool, error) {
	malformed := func(format string, args ...any) error {
		return fmt.Errorf("%w: %s", ErrMalformedImport, fmt.Sprintf(format, args...))
	}

	var doc map[string]json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil || doc == nil {
		return nil, nil, malformed("document must be a JSON object")
	}

	rawBookmarks, hasBookmarks := doc["bookmarks"]
	rawDark, hasDark := doc["darkMode"]
	if !hasBookmarks && !hasDark {
		return nil, nil, malformed("document carries neither bookmarks nor darkMode")
	}

	if rawVersion, ok := doc["version"]; ok {
		var version string
		if err := json.Unmarshal(rawVersion, &version); err != nil {
			return nil, nil, malformed("version must be a string")
		}
		if major, _, _ := strings.Cut(version, "."); major != "1" {
			return nil, nil, malformed("unsupported version %q", version)
		}
	}

	var bookmarks models.BookmarkList
	if hasBookmarks {
		var items []json.RawMessage
		if err := json.Unmarshal(rawBookmarks, &items); err != nil || items == nil {
			return nil, nil, malformed("bookmarks must be an array")
		}
		bookmarks = make(models.BookmarkList, 0, len(items))
		for i, item := range items {
			if !bytes.HasPrefix(bytes.TrimSpace(item), []byte("{")) {
				return nil, nil, malformed("bookmark %d must be an object", i)
			}
			var ib importedBookmark
			if err := json.Unmarshal(item, &ib); err != nil {
				return nil, nil, malformed("bookmark %d: name, url and icon must be strings", i)
			}
			if ib.Name == nil || ib.URL == nil {
				return nil, nil, malformed("bookmark %d needs a name and a url", i)
			}
			b := models.Bookmark{Name: *ib.Name, URL: *ib.URL, Icon: models.DefaultBookmarkIcon}
			if ib.Icon != nil && !common.IsBlank(*ib.Icon) {
				b.Icon = *ib.Icon
			}
			if err := b.Validate(); err != nil {
				return nil, nil, malformed("bookmark %d: %v", i, err)
			}
			bookmarks = append(bookmarks, b)
		}
	}

	var darkMode *bool
	if hasDark {
		if err := json.Unmarshal(rawDark, &darkMode); err != nil || darkMode == nil {
			return nil, nil, malformed("darkMode must be a boolean")
		}
	}
	return bookmarks, darkMode, nil
}

// ResetAll wipes every stored preference, turns incognito off and signs the
// user out locally. The auth service is not contacted.
func (p *PreferenceSync) ResetAll(ctx context.Context) error {
	p.mu.Lock()
	p.incognito = false
	err := p.store.Clear(ctx)
	p.mu.Unlock()
	if err != nil {
		return fmt.Errorf("reset preferences: %w", err)
	}

	if p.session != nil {
		return p.session.DropLocal(ctx)
	}
	return nil
}
