package services

import (
	"fmt"
	"strings"

	"github.com/nikbrowser/nikbrowser/internal/client/models"
)

// SearchURL builds the results URL for query on engine. An empty engine
// means models.DefaultSearchEngine.
func SearchURL(engine models.SearchEngine, query string) (string, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return "", fmt.Errorf("%w: search query is empty", ErrValidation)
	}
	if engine == "" {
		engine = models.DefaultSearchEngine
	}
	u, err := engine.SearchURL(query)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrValidation, err)
	}
	return u, nil
}
