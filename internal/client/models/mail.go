package models

// MailFolder selects which emails the mail service lists.
type MailFolder string

const (
	FolderInbox    MailFolder = "inbox"
	FolderStarred  MailFolder = "starred"
	FolderArchived MailFolder = "archived"
	FolderAll      MailFolder = "all"
)

// ParseMailFolder maps user input to a folder, defaulting to the inbox.
func ParseMailFolder(s string) MailFolder {
	switch MailFolder(s) {
	case FolderStarred, FolderArchived, FolderAll:
		return MailFolder(s)
	default:
		return FolderInbox
	}
}

type Email struct {
	ID         int64   `json:"id"`
	FromEmail  string  `json:"from_email"`
	FromName   *string `json:"from_name,omitempty"`
	ToEmail    string  `json:"to_email"`
	Subject    string  `json:"subject"`
	Body       string  `json:"body"`
	IsRead     bool    `json:"is_read"`
	IsStarred  bool    `json:"is_starred"`
	IsArchived bool    `json:"is_archived"`
	CreatedAt  string  `json:"created_at"`
	ReadAt     *string `json:"read_at,omitempty"`
}

// OutgoingEmail is the payload of a send request.
type OutgoingEmail struct {
	ToEmail string `json:"to_email"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}
