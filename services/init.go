package services

import (
	"context"

	"github.com/pkg/errors"

	"github.com/customeros/fresh/config"
	"github.com/customeros/fresh/interfaces"
	er "github.com/customeros/fresh/internal/errors"
	"github.com/customeros/fresh/internal/enum"
	"github.com/customeros/fresh/internal/logger"
	"github.com/customeros/fresh/services/account"
	"github.com/customeros/fresh/services/gmail"
	"github.com/customeros/fresh/services/httpsession"
	"github.com/customeros/fresh/services/imap"
	"github.com/customeros/fresh/services/inbox"
	"github.com/customeros/fresh/services/oauth"
	"github.com/customeros/fresh/services/password"
	"github.com/customeros/fresh/services/reset"
	"github.com/customeros/fresh/services/rotation"
)

type Services struct {
	Accounts *config.AccountsFile
	Registry *account.Registry
	Inbox    *inbox.Client
	Reset    *reset.Service
	Rotator  *rotation.Rotator

	closers []func() error
}

// InitServices wires the mail backend, inbox and reset service. auth may
// be nil, in which case a missing Gmail token is an error instead of a
// browser prompt.
func InitServices(ctx context.Context, cfg *config.Config, log logger.Logger, auth interfaces.Authenticator) (*Services, error) {
	accounts, err := config.LoadAccounts(cfg.AppConfig.AccountsFile)
	if err != nil {
		return nil, err
	}
	registry, err := account.NewRegistry(accounts.Sites)
	if err != nil {
		return nil, err
	}

	generator, err := password.New(cfg.AppConfig.PasswordGenerator, "")
	if err != nil {
		return nil, err
	}

	services := &Services{Accounts: accounts, Registry: registry}

	mail, err := services.newMailService(ctx, cfg, log, auth)
	if err != nil {
		return nil, err
	}

	services.Inbox = inbox.NewClient(mail, log)
	services.Reset = reset.NewService(
		log,
		services.Inbox,
		generator,
		httpsession.NewFactory(httpsession.Options{
			Timeout:   cfg.AppConfig.HttpTimeout,
			UserAgent: cfg.AppConfig.UserAgent,
		}),
		reset.Options{
			Retry:          cfg.AppConfig.RetryPolicy(),
			PasswordLength: cfg.AppConfig.PasswordLength,
			Archive:        cfg.AppConfig.Archive,
		},
	)
	services.Rotator = rotation.NewRotator(registry, services.Reset, accounts.Accounts, log)

	return services, nil
}

func (s *Services) newMailService(ctx context.Context, cfg *config.Config, log logger.Logger, auth interfaces.Authenticator) (interfaces.MailService, error) {
	switch cfg.AppConfig.Backend() {
	case enum.MailBackendGmail:
		provider, err := NewOAuthProvider(cfg, log, auth)
		if err != nil {
			return nil, err
		}
		client, err := provider.Client(ctx)
		if err != nil {
			return nil, err
		}
		return gmail.NewService(ctx, client, cfg.GmailConfig.UserID, log)
	case enum.MailBackendImap:
		mail, err := imap.NewService(cfg.ImapConfig, log)
		if err != nil {
			return nil, err
		}
		s.closers = append(s.closers, mail.Close)
		return mail, nil
	}
	return nil, errors.Wrapf(er.ErrUnknownMailBackend, "%q", cfg.AppConfig.MailBackend)
}

// NewOAuthProvider opens the token store and builds the Gmail OAuth provider.
func NewOAuthProvider(cfg *config.Config, log logger.Logger, auth interfaces.Authenticator) (*oauth.Provider, error) {
	ring, err := oauth.OpenKeyring(cfg.KeyringConfig)
	if err != nil {
		return nil, err
	}
	redirectURL := ""
	if auth != nil {
		redirectURL = auth.RedirectURL()
	}
	return oauth.NewProvider(
		oauth.GoogleConfig(cfg.GmailConfig, redirectURL),
		oauth.NewKeyringStore(ring),
		auth,
		log,
	), nil
}

func (s *Services) Close() error {
	var firstErr error
	for _, closeFn := range s.closers {
		if err := closeFn(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
