package oauth

import (
	"context"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/opentracing/opentracing-go"
	"github.com/pkg/errors"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/gmail/v1"

	"github.com/customeros/fresh/config"
	"github.com/customeros/fresh/interfaces"
	er "github.com/customeros/fresh/internal/errors"
	"github.com/customeros/fresh/internal/logger"
	"github.com/customeros/fresh/internal/tracing"
)

// GoogleConfig is the OAuth client for reading and archiving Gmail messages.
func GoogleConfig(cfg *config.GmailConfig, redirectURL string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		Endpoint:     google.Endpoint,
		RedirectURL:  redirectURL,
		Scopes:       []string{gmail.GmailModifyScope},
	}
}

// Provider hands out a valid bearer token: the stored one, refreshed when
// expired, or a new one from the interactive flow when none is stored.
type Provider struct {
	oauthConfig *oauth2.Config
	store       interfaces.TokenStore
	auth        interfaces.Authenticator
	log         logger.Logger
}

// NewProvider takes a nil auth for non-interactive use, in which case a
// missing token is ErrNoToken.
func NewProvider(oauthConfig *oauth2.Config, store interfaces.TokenStore, auth interfaces.Authenticator, log logger.Logger) *Provider {
	return &Provider{
		oauthConfig: oauthConfig,
		store:       store,
		auth:        auth,
		log:         log,
	}
}

// Authorize runs the interactive flow and stores the resulting token.
func (p *Provider) Authorize(ctx context.Context) (*oauth2.Token, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "OAuthProvider.Authorize")
	defer span.Finish()
	tracing.TagComponentService(span)

	if p.auth == nil {
		return nil, er.ErrNoToken
	}

	state := uuid.New().String()
	authURL := p.oauthConfig.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce)

	code, err := p.auth.Authenticate(ctx, authURL, state)
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}

	token, err := p.oauthConfig.Exchange(ctx, code)
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, errors.Wrap(err, "exchanging authorization code")
	}
	if err := p.store.Save(token); err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}
	p.log.Info("mailbox authorization stored")
	return token, nil
}

// TokenSource returns a caching source that persists refreshed tokens.
func (p *Provider) TokenSource(ctx context.Context) (oauth2.TokenSource, error) {
	token, err := p.store.Load()
	if err != nil {
		return nil, err
	}
	if token == nil {
		if p.auth == nil {
			return nil, er.ErrNoToken
		}
		p.log.Info("no stored mailbox token, starting authorization")
		token, err = p.Authorize(ctx)
		if err != nil {
			return nil, err
		}
	}

	base := p.oauthConfig.TokenSource(context.WithoutCancel(ctx), token)
	return oauth2.ReuseTokenSource(token, &persistingSource{
		base:  base,
		store: p.store,
		log:   p.log,
		last:  token.AccessToken,
	}), nil
}

// Client is an HTTP client that authorizes every request with the token.
func (p *Provider) Client(ctx context.Context) (*http.Client, error) {
	source, err := p.TokenSource(ctx)
	if err != nil {
		return nil, err
	}
	return oauth2.NewClient(ctx, source), nil
}

// Logout forgets the stored token.
func (p *Provider) Logout() error {
	return p.store.Delete()
}

type persistingSource struct {
	base  oauth2.TokenSource
	store interfaces.TokenStore
	log   logger.Logger

	mu   sync.Mutex
	last string
}

func (s *persistingSource) Token() (*oauth2.Token, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	token, err := s.base.Token()
	if err != nil {
		return nil, errors.Wrap(err, "refreshing mailbox token")
	}
	if token.AccessToken != s.last {
		if err := s.store.Save(token); err != nil {
			s.log.Warnf("refreshed token not stored: %v", err)
		} else {
			s.last = token.AccessToken
		}
	}
	return token, nil
}
