package interfaces

import (
	"context"
	"net/http"

	"github.com/customeros/fresh/internal/enum"
	"github.com/customeros/fresh/internal/models"
)

// Account is a site whose password can be reset over email. K is the key
// recovered from the confirmation email and handed back to SetPassword.
type Account[K any] interface {
	Site() string
	LoginURL() string
	InitiateReset(ctx context.Context, client *http.Client) error
	SearchQuery() models.Query
	ParseMessage(message *models.Message) (K, error)
	SetPassword(ctx context.Context, client *http.Client, key K, password string) error
	RedirectPolicy() enum.RedirectPolicy
}
