package interfaces

import (
	"context"

	"golang.org/x/oauth2"
)

// Authenticator performs the interactive part of an OAuth authorization and
// returns the authorization code.
type Authenticator interface {
	RedirectURL() string
	Authenticate(ctx context.Context, authURL, state string) (string, error)
}

// TokenStore persists the mailbox OAuth token between runs. Load returns
// nil without error when nothing is stored.
type TokenStore interface {
	Load() (*oauth2.Token, error)
	Save(token *oauth2.Token) error
	Delete() error
}
