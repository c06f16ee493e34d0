package models

// HistoryItem is one recorded search as returned by the history service.
type HistoryItem struct {
	ID           int64  `json:"id"`
	SearchQuery  string `json:"search_query"`
	SearchEngine string `json:"search_engine"`
	CreatedAt    string `json:"created_at"`
}
