package account

import (
	"context"
	"net/http"
	"net/url"

	"github.com/pkg/errors"

	"github.com/customeros/fresh/internal/enum"
	"github.com/customeros/fresh/internal/models"
	"github.com/customeros/fresh/services/markup"
)

const (
	HackerNewsSite    = "hackernews"
	HackerNewsBaseURL = "https://news.ycombinator.com"

	hnInputFnid  = `input[name="fnid"]`
	hnTokenRegex = `fnid=([A-Za-z0-9]+)`
)

var hackerNewsQuery = models.Query{From: "hn@ycombinator.com", Subject: "Hacker News Password Recovery"}

// HackerNews resets a news.ycombinator.com account identified by username.
// The reset key is the fnid carried in the recovery link.
type HackerNews struct {
	Username string
	baseURL  string
}

func NewHackerNews(username string) (*HackerNews, error) {
	return NewHackerNewsAt(HackerNewsBaseURL, username)
}

// NewHackerNewsAt points the account at another host, such as a test server.
func NewHackerNewsAt(baseURL, username string) (*HackerNews, error) {
	if username == "" {
		return nil, errors.New("hacker news username is required")
	}
	return &HackerNews{Username: username, baseURL: baseURL}, nil
}

func (a *HackerNews) Site() string {
	return HackerNewsSite
}

func (a *HackerNews) LoginURL() string {
	return a.baseURL + "/login"
}

func (a *HackerNews) RedirectPolicy() enum.RedirectPolicy {
	return enum.FollowAll
}

func (a *HackerNews) SearchQuery() models.Query {
	return hackerNewsQuery
}

func (a *HackerNews) InitiateReset(ctx context.Context, client *http.Client) error {
	forgotURL := a.baseURL + "/forgot"
	doc, err := markup.GetOK(ctx, client, forgotURL)
	if err != nil {
		return err
	}
	fnid, err := markup.SelectAttribute(doc, hnInputFnid, "value")
	if err != nil {
		return err
	}

	_, err = markup.PostOK(ctx, client, a.baseURL+"/x", []markup.Field{
		{Key: "fnop", Value: "forgot-password"},
		{Key: "fnid", Value: fnid},
		{Key: "s", Value: a.Username},
	})
	return err
}

func (a *HackerNews) ParseMessage(message *models.Message) (string, error) {
	body, err := markup.DecodeMessagePart(message, "text/plain")
	if err != nil {
		return "", err
	}
	return markup.CaptureFirstGroup(hnTokenRegex, body)
}

// SetPassword opens the recovery link, which serves a form with a fresh
// fnid, and submits the new password through it.
func (a *HackerNews) SetPassword(ctx context.Context, client *http.Client, key string, password string) error {
	resetURL := a.baseURL + "/x?" + url.Values{"fnid": {key}}.Encode()
	doc, err := markup.GetOK(ctx, client, resetURL)
	if err != nil {
		return err
	}
	fnid, err := markup.SelectAttribute(doc, hnInputFnid, "value")
	if err != nil {
		return err
	}

	_, err = markup.PostOK(ctx, client, a.baseURL+"/x", []markup.Field{
		{Key: "fnid", Value: fnid},
		{Key: "fnop", Value: "reset-password"},
		{Key: "pw", Value: password},
		{Key: "pw2", Value: password},
	})
	return err
}
