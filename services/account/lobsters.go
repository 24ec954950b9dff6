package account

import (
	"context"
	"net/http"
	"net/url"

	"github.com/customeros/mailsherpa/mailvalidate"
	"github.com/pkg/errors"

	er "github.com/customeros/fresh/internal/errors"
	"github.com/customeros/fresh/internal/enum"
	"github.com/customeros/fresh/internal/models"
	"github.com/customeros/fresh/services/markup"
)

const (
	LobstersSite    = "lobsters"
	LobstersBaseURL = "https://lobste.rs"

	lobstersInputAuthenticity = `input[name="authenticity_token"]`
	lobstersTokenRegex        = `token=([A-Za-z0-9-]+)`
	utf8Check                 = "✓"
)

var lobstersQuery = models.Query{From: "nobody@lobste.rs", Subject: "[Lobsters] Reset your password"}

// Lobsters resets a lobste.rs account identified by email.
type Lobsters struct {
	Email   string
	baseURL string
}

func NewLobsters(email string) (*Lobsters, error) {
	return NewLobstersAt(LobstersBaseURL, email)
}

func NewLobstersAt(baseURL, email string) (*Lobsters, error) {
	clean, err := validateEmail(email)
	if err != nil {
		return nil, err
	}
	return &Lobsters{Email: clean, baseURL: baseURL}, nil
}

func validateEmail(email string) (string, error) {
	result := mailvalidate.ValidateEmailSyntax(email)
	if !result.IsValid {
		return "", errors.Wrapf(er.ErrInvalidEmail, "%q", email)
	}
	return result.CleanEmail, nil
}

func (a *Lobsters) Site() string {
	return LobstersSite
}

func (a *Lobsters) LoginURL() string {
	return a.baseURL + "/login"
}

// RedirectPolicy is FollowNone: a successful password change answers 302
// and that response itself is the success signal.
func (a *Lobsters) RedirectPolicy() enum.RedirectPolicy {
	return enum.FollowNone
}

func (a *Lobsters) SearchQuery() models.Query {
	return lobstersQuery
}

func (a *Lobsters) InitiateReset(ctx context.Context, client *http.Client) error {
	doc, err := markup.GetOK(ctx, client, a.baseURL+"/login/forgot_password")
	if err != nil {
		return err
	}
	authenticity, err := markup.SelectAttribute(doc, lobstersInputAuthenticity, "value")
	if err != nil {
		return err
	}

	_, err = markup.PostOK(ctx, client, a.baseURL+"/login/reset_password", []markup.Field{
		{Key: "utf8", Value: utf8Check},
		{Key: "authenticity_token", Value: authenticity},
		{Key: "email", Value: a.Email},
	})
	return err
}

func (a *Lobsters) ParseMessage(message *models.Message) (string, error) {
	body, err := markup.DecodeMessagePart(message, "text/plain")
	if err != nil {
		return "", err
	}
	return markup.CaptureFirstGroup(lobstersTokenRegex, body)
}

func (a *Lobsters) SetPassword(ctx context.Context, client *http.Client, key string, password string) error {
	setURL := a.baseURL + "/login/set_new_password"
	doc, err := markup.GetOK(ctx, client, setURL+"?"+url.Values{"token": {key}}.Encode())
	if err != nil {
		return err
	}
	authenticity, err := markup.SelectAttribute(doc, lobstersInputAuthenticity, "value")
	if err != nil {
		return err
	}

	_, err = markup.SubmitForm(ctx, client, setURL, []markup.Field{
		{Key: "utf8", Value: utf8Check},
		{Key: "authenticity_token", Value: authenticity},
		{Key: "token", Value: key},
		{Key: "password", Value: password},
		{Key: "password_confirmation", Value: password},
	}, http.StatusFound)
	return err
}
