package reset

import (
	"context"

	"github.com/customeros/fresh/interfaces"
	"github.com/customeros/fresh/internal/logger"
	"github.com/customeros/fresh/services/httpsession"
)

// Service holds everything a reset needs apart from the account itself.
type Service struct {
	log        logger.Logger
	inbox      interfaces.Inbox
	generator  interfaces.PasswordGenerator
	newSession httpsession.Factory
	opts       Options
}

func NewService(log logger.Logger, inbox interfaces.Inbox, generator interfaces.PasswordGenerator, newSession httpsession.Factory, opts Options) *Service {
	return &Service{
		log:        log,
		inbox:      inbox,
		generator:  generator,
		newSession: newSession,
		opts:       opts,
	}
}

// WithArchive returns a copy of s that archives (or keeps) confirmation emails.
func (s *Service) WithArchive(archive bool) *Service {
	clone := *s
	clone.opts.Archive = archive
	return &clone
}

func (s *Service) Options() Options {
	return s.opts
}

// Run resets account on a new HTTP session built for its redirect policy.
func Run[K any](ctx context.Context, s *Service, account interfaces.Account[K]) (*Result, error) {
	client, err := s.newSession(account.RedirectPolicy())
	if err != nil {
		return nil, err
	}
	return ResetPassword(ctx, s.log, account, s.generator, s.inbox, client, s.opts)
}
