package account

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/pkg/errors"

	"github.com/customeros/fresh/config"
	"github.com/customeros/fresh/internal/enum"
	"github.com/customeros/fresh/internal/models"
	"github.com/customeros/fresh/services/markup"
)

const keyPlaceholder = "{key}"

// Form is a site described in the accounts file whose reset flow is the
// usual form exchange: request a link, read the token from the email,
// submit the new password.
type Form struct {
	site config.SiteConfig
	user string
}

func NewForm(site config.SiteConfig, user string) (*Form, error) {
	site.ApplyDefaults()
	if err := site.Validate(); err != nil {
		return nil, err
	}
	if user == "" {
		return nil, errors.Errorf("site %q needs a user", site.Name)
	}
	if site.IdentifierIsEmail {
		clean, err := validateEmail(user)
		if err != nil {
			return nil, err
		}
		user = clean
	}
	return &Form{site: site, user: user}, nil
}

func (a *Form) Site() string {
	return a.site.Name
}

func (a *Form) LoginURL() string {
	if a.site.LoginURL != "" {
		return a.site.LoginURL
	}
	return a.site.ForgotURL
}

func (a *Form) RedirectPolicy() enum.RedirectPolicy {
	if a.site.FollowRedirects != nil && !*a.site.FollowRedirects {
		return enum.FollowNone
	}
	return enum.FollowAll
}

func (a *Form) SearchQuery() models.Query {
	return models.Query{From: a.site.QueryFrom, Subject: a.site.QuerySubject}
}

func (a *Form) InitiateReset(ctx context.Context, client *http.Client) error {
	fields := []markup.Field{}

	if a.site.CsrfSelector != "" {
		doc, err := markup.GetOK(ctx, client, a.site.ForgotURL)
		if err != nil {
			return err
		}
		csrf, err := markup.SelectAttribute(doc, a.site.CsrfSelector, "value")
		if err != nil {
			return err
		}
		fields = append(fields, markup.Field{Key: a.site.CsrfField, Value: csrf})
	}
	for _, field := range a.site.Fields {
		fields = append(fields, markup.Field{Key: field.Key, Value: field.Value})
	}
	fields = append(fields, markup.Field{Key: a.site.IdentifierField, Value: a.user})

	_, err := markup.SubmitForm(ctx, client, a.site.RequestURL, fields, a.site.RequestStatus)
	return err
}

func (a *Form) ParseMessage(message *models.Message) (string, error) {
	body, err := markup.DecodeMessagePart(message, a.site.MimeType)
	if err != nil {
		return "", err
	}
	return markup.CaptureFirstGroup(a.site.KeyPattern, body)
}

func (a *Form) SetPassword(ctx context.Context, client *http.Client, key string, password string) error {
	fields := []markup.Field{}

	if a.site.ResetURL != "" {
		resetURL := expandKey(a.site.ResetURL, key)
		doc, err := markup.GetOK(ctx, client, resetURL)
		if err != nil {
			return err
		}
		if a.site.CsrfSelector != "" {
			csrf, err := markup.SelectAttribute(doc, a.site.CsrfSelector, "value")
			if err != nil {
				return err
			}
			fields = append(fields, markup.Field{Key: a.site.CsrfField, Value: csrf})
		}
	}
	if a.site.KeyField != "" {
		fields = append(fields, markup.Field{Key: a.site.KeyField, Value: key})
	}
	fields = append(fields, markup.Field{Key: a.site.PasswordField, Value: password})
	if a.site.ConfirmField != "" {
		fields = append(fields, markup.Field{Key: a.site.ConfirmField, Value: password})
	}

	_, err := markup.SubmitForm(ctx, client, expandKey(a.site.SubmitURL, key), fields, a.site.SubmitStatus)
	return err
}

func expandKey(template, key string) string {
	return strings.ReplaceAll(template, keyPlaceholder, url.QueryEscape(key))
}
