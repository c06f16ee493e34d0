package models

import (
	"fmt"
	"net/url"
	"sort"
)

// SearchEngine names a supported search provider.
type SearchEngine string

const DefaultSearchEngine SearchEngine = "google"

var searchURLs = map[SearchEngine]string{
	"google":     "https://www.google.com/search?q=",
	"yandex":     "https://yandex.ru/search/?text=",
	"bing":       "https://www.bing.com/search?q=",
	"duckduckgo": "https://duckduckgo.com/?q=",
}

// SearchEngines lists the supported engine names in sorted order.
func SearchEngines() []SearchEngine {
	out := make([]SearchEngine, 0, len(searchURLs))
	for e := range searchURLs {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// SearchURL builds the results URL for query on engine.
func (e SearchEngine) SearchURL(query string) (string, error) {
	base, ok := searchURLs[e]
	if !ok {
		return "", fmt.Errorf("unknown search engine %q", e)
	}
	return base + url.QueryEscape(query), nil
}
