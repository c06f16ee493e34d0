package models

// Download is an entry in the user's downloads list.
type Download struct {
	ID             int64   `json:"id"`
	FileName       string  `json:"file_name"`
	FileURL        string  `json:"file_url"`
	FileSize       *int64  `json:"file_size,omitempty"`
	FileType       *string `json:"file_type,omitempty"`
	DownloadStatus string  `json:"download_status"`
	Progress       int     `json:"progress"`
	CreatedAt      string  `json:"created_at"`
	CompletedAt    *string `json:"completed_at,omitempty"`
	IsInstalled    bool    `json:"is_installed"`
	InstalledAt    *string `json:"installed_at,omitempty"`
}
