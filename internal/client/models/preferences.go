package models

import (
	"errors"
	"fmt"
	"time"

	"github.com/nikbrowser/nikbrowser/internal/common"
)

// DefaultBookmarkIcon is used when a bookmark is added without an icon.
const DefaultBookmarkIcon = "⭐"

// ExportVersion tags documents produced by ExportSnapshot.
const ExportVersion = "1.0"

var ErrInvalidBookmark = errors.New("bookmark needs a name and a url")

// Bookmark is a saved link shown on the homepage.
type Bookmark struct {
	Name string `json:"name"`
	URL  string `json:"url"`
	Icon string `json:"icon"`
}

func (b Bookmark) Validate() error {
	if common.IsBlank(b.Name) || common.IsBlank(b.URL) {
		return ErrInvalidBookmark
	}
	return nil
}

// BookmarkList keeps bookmarks in insertion order.
type BookmarkList []Bookmark

func (l BookmarkList) Validate() error {
	for i, b := range l {
		if err := b.Validate(); err != nil {
			return fmt.Errorf("bookmark %d: %w", i, err)
		}
	}
	return nil
}

// PreferenceSnapshot is the full in-memory preference state. Incognito is
// process-local and never persisted or exported.
type PreferenceSnapshot struct {
	DarkMode  bool
	Bookmarks BookmarkList
	Incognito bool
	Identity  *Identity
}

// ExportDocument is the portable settings file.
type ExportDocument struct {
	Bookmarks  BookmarkList `json:"bookmarks"`
	DarkMode   bool         `json:"darkMode"`
	User       *Identity    `json:"user,omitempty"`
	ExportDate time.Time    `json:"exportDate"`
	Version    string       `json:"version"`
}
