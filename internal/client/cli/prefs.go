package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/nikbrowser/nikbrowser/internal/client/backup"
	"github.com/nikbrowser/nikbrowser/internal/client/models"
)

// openBackup is a test seam for backup.Open.
var openBackup = backup.Open

func (a *App) Bookmarks(ctx context.Context) error {
	list := a.prefs.Bookmarks(ctx)
	if len(list) == 0 {
		a.println("No bookmarks yet. Use 'addbookmark'.")
		return nil
	}
	for i, b := range list {
		a.printf("%2d. %s %s  %s\n", i+1, b.Icon, b.Name, b.URL)
	}
	return nil
}

func (a *App) AddBookmark(ctx context.Context) error {
	name, err := getSimpleText(a.reader, "Bookmark name", a.out)
	if err != nil {
		return err
	}
	url, err := getSimpleText(a.reader, "Bookmark URL", a.out)
	if err != nil {
		return err
	}
	icon, err := getSimpleText(a.reader, "Icon (empty for "+models.DefaultBookmarkIcon+")", a.out)
	if err != nil {
		return err
	}

	added, err := a.prefs.AddBookmark(ctx, models.Bookmark{Name: name, URL: url, Icon: icon})
	if err != nil {
		return a.report(err)
	}
	if !added {
		a.println("Name and URL are required; nothing added.")
		return nil
	}
	a.println("Bookmark added.")
	return nil
}

// RemoveBookmark takes the 1-based position shown by 'bookmarks'.
func (a *App) RemoveBookmark(ctx context.Context, args []string) error {
	if len(args) != 1 {
		a.println("Usage: rmbookmark <number>")
		return nil
	}
	n, err := strconv.Atoi(args[0])
	if err != nil {
		a.println("Usage: rmbookmark <number>")
		return nil
	}

	removed, err := a.prefs.RemoveBookmark(ctx, n-1)
	if err != nil {
		return a.report(err)
	}
	if !removed {
		a.println("No such bookmark.")
		return nil
	}
	a.println("Bookmark removed.")
	return nil
}

// parseSwitch understands on/off and toggles current without arguments.
func parseSwitch(args []string, current bool) (bool, bool) {
	if len(args) == 0 {
		return !current, true
	}
	switch args[0] {
	case "on", "true", "1":
		return true, true
	case "off", "false", "0":
		return false, true
	default:
		return current, false
	}
}

func (a *App) DarkMode(ctx context.Context, args []string) error {
	on, ok := parseSwitch(args, a.prefs.DarkMode(ctx))
	if !ok {
		a.println("Usage: darkmode [on|off]")
		return nil
	}
	if err := a.prefs.SetDarkMode(ctx, on); err != nil {
		return a.report(err)
	}
	a.println("Dark mode:", onOff(on))
	return nil
}

// Incognito is not persisted; searches are not recorded while it is on.
func (a *App) Incognito(_ context.Context, args []string) error {
	on, ok := parseSwitch(args, a.prefs.Incognito())
	if !ok {
		a.println("Usage: incognito [on|off]")
		return nil
	}
	a.prefs.SetIncognito(on)
	a.println("Incognito:", onOff(on))
	return nil
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

func defaultExportName(now time.Time) string {
	return fmt.Sprintf("nikbrowser-settings-%s.json", now.Format(time.DateOnly))
}

// Export writes the settings document to a file, a .gz file or an
// s3://bucket/key object. Without an argument a dated file in the current
// directory is used.
func (a *App) Export(ctx context.Context, args []string) error {
	location := defaultExportName(time.Now())
	if len(args) > 0 {
		location = args[0]
	}

	data, err := json.MarshalIndent(a.prefs.ExportSnapshot(ctx), "", "  ")
	if err != nil {
		return a.report(err)
	}

	dst, err := openBackup(ctx, location, a.s3Options())
	if err != nil {
		return a.report(err)
	}
	if err := dst.Save(ctx, data); err != nil {
		return a.report(err)
	}
	a.println("Settings exported to", dst.String())
	return nil
}

func (a *App) Import(ctx context.Context, args []string) error {
	if len(args) != 1 {
		a.println("Usage: import <file|s3://bucket/key>")
		return nil
	}

	src, err := openBackup(ctx, args[0], a.s3Options())
	if err != nil {
		return a.report(err)
	}
	data, err := src.Load(ctx)
	if err != nil {
		return a.report(err)
	}
	if err := a.prefs.ImportSnapshot(ctx, data); err != nil {
		return a.report(err)
	}
	a.println("Settings imported from", src.String())
	return nil
}

// Reset wipes all local data after confirmation. The server session is not
// ended remotely.
func (a *App) Reset(ctx context.Context) error {
	ok, err := getConfirmation(a.reader, "Delete all local settings, bookmarks and the saved login?", a.out)
	if err != nil {
		return err
	}
	if !ok {
		a.println("Cancelled.")
		return nil
	}
	if err := a.prefs.ResetAll(ctx); err != nil {
		return a.report(err)
	}
	a.println("All local data deleted.")
	return nil
}
