// Package models defines client-side data models used by the Nikbrowser
// client: the authenticated identity, preferences, and the payloads
// exchanged with the remote collaborators.
package models

import (
	"errors"
	"strings"

	"github.com/nikbrowser/nikbrowser/internal/common"
)

var ErrIncompleteIdentity = errors.New("identity must carry a nikmail address")

// Identity is the authenticated user's profile as known to this client.
// The authoritative copy lives in the auth service.
type Identity struct {
	ID          *int64  `json:"id,omitempty"`
	Email       *string `json:"email,omitempty"`
	Phone       *string `json:"phone,omitempty"`
	Nikmail     string  `json:"nikmail"`
	DisplayName *string `json:"display_name,omitempty"`
	AvatarURL   *string `json:"avatar_url,omitempty"`
	CreatedAt   *string `json:"created_at,omitempty"`
}

// Validate rejects cached identities that cannot have come from the auth
// service.
func (i Identity) Validate() error {
	if common.IsBlank(i.Nikmail) {
		return ErrIncompleteIdentity
	}
	return nil
}

// Name returns the display name, falling back to the nikmail local part.
func (i Identity) Name() string {
	if i.DisplayName != nil && !common.IsBlank(*i.DisplayName) {
		return *i.DisplayName
	}
	local, _, _ := strings.Cut(i.Nikmail, "@")
	return local
}

// Credentials are the inputs to register and login. Exactly one of Email
// or Phone must be set.
type Credentials struct {
	Email       string
	Phone       string
	Password    []byte
	DisplayName string
}

// Login returns whichever of Email or Phone is set.
func (c Credentials) Login() string {
	if c.Email != "" {
		return c.Email
	}
	return c.Phone
}
