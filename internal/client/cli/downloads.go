package cli

import (
	"context"
)

func (a *App) Downloads(ctx context.Context) error {
	list, err := a.downloads.List(ctx)
	if err != nil {
		return a.report(err)
	}
	if len(list) == 0 {
		a.println("No downloads.")
		return nil
	}
	for _, d := range list {
		installed := ""
		if d.IsInstalled {
			installed = " (installed)"
		}
		a.printf("%4d  %-30s %-10s %3d%%%s\n", d.ID, d.FileName, d.DownloadStatus, d.Progress, installed)
	}
	return nil
}

// Install marks a download installed, or not installed with "off".
func (a *App) Install(ctx context.Context, args []string) error {
	id, ok := parseID(args)
	if !ok {
		a.println("Usage: install <id> [off]")
		return nil
	}
	installed := len(args) < 2 || args[1] != "off"

	if err := a.downloads.SetInstalled(ctx, id, installed); err != nil {
		return a.report(err)
	}
	a.println("Updated.")
	return nil
}

func (a *App) DeleteDownload(ctx context.Context, args []string) error {
	id, ok := parseID(args)
	if !ok {
		a.println("Usage: rmdownload <id>")
		return nil
	}
	if err := a.downloads.Delete(ctx, id); err != nil {
		return a.report(err)
	}
	a.println("Deleted.")
	return nil
}
