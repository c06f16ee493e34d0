package cli

import (
	"context"
	"strings"

	"github.com/nikbrowser/nikbrowser/internal/client/models"
	"github.com/nikbrowser/nikbrowser/internal/client/services"
)

// Search prints the results URL for the query and records it in the
// background. An "@engine" first argument overrides the default engine.
//
//	search @yandex weather in moscow
func (a *App) Search(ctx context.Context, args []string) error {
	engine := a.defaultEngine()
	if len(args) > 0 && strings.HasPrefix(args[0], "@") {
		engine = models.SearchEngine(strings.TrimPrefix(args[0], "@"))
		args = args[1:]
	}
	query := strings.Join(args, " ")

	u, err := services.SearchURL(engine, query)
	if err != nil {
		a.println("Usage: search [@engine] <query>")
		return a.report(err)
	}
	a.println(u)

	token, _ := a.session.Token()
	incognito := a.prefs.Incognito()
	if !a.history.ShouldRecord(token, incognito) {
		return nil
	}

	a.pending.Add(1)
	go func() {
		defer a.pending.Done()
		bg, cancel := context.WithTimeout(context.WithoutCancel(ctx), backgroundTimeout)
		defer cancel()
		a.history.RecordIfAllowed(bg, query, engine, token, incognito)
	}()
	return nil
}

func (a *App) History(ctx context.Context) error {
	token, _ := a.session.Token()
	items, err := a.history.List(ctx, token, a.config.HistoryLimit)
	if err != nil {
		return a.report(err)
	}
	if len(items) == 0 {
		a.println("History is empty.")
		return nil
	}
	for _, it := range items {
		a.printf("%-20s %-10s %s\n", it.CreatedAt, it.SearchEngine, it.SearchQuery)
	}
	return nil
}

func (a *App) ClearHistory(ctx context.Context) error {
	ok, err := getConfirmation(a.reader, "Clear the whole search history?", a.out)
	if err != nil || !ok {
		return err
	}
	token, _ := a.session.Token()
	if err := a.history.Clear(ctx, token); err != nil {
		return a.report(err)
	}
	a.println("History cleared.")
	return nil
}
