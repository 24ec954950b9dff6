package reset

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/opentracing/opentracing-go"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/customeros/fresh/interfaces"
	er "github.com/customeros/fresh/internal/errors"
	"github.com/customeros/fresh/internal/enum"
	"github.com/customeros/fresh/internal/logger"
	"github.com/customeros/fresh/internal/models"
	"github.com/customeros/fresh/internal/tracing"
	"github.com/customeros/fresh/internal/utils"
)

const DefaultPasswordLength = 50

type Options struct {
	Retry          models.RetryPolicy
	PasswordLength int
	Archive        bool
}

// Result is what the operator needs after a successful reset. ArchiveErr is
// set when the password changed but the email could not be archived.
type Result struct {
	AttemptID  string
	Site       string
	LoginURL   string
	Password   string
	Archived   bool
	ArchiveErr error
}

// ResetPassword drives account through initiate, find, parse and set, then
// optionally archives the confirmation email. Each step runs once; only the
// inbox search polls. The first failing step ends the attempt.
func ResetPassword[K any](
	ctx context.Context,
	log logger.Logger,
	account interfaces.Account[K],
	generator interfaces.PasswordGenerator,
	inbox interfaces.Inbox,
	client *http.Client,
	opts Options,
) (*Result, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "Reset.ResetPassword")
	defer span.Finish()
	tracing.TagComponentService(span)

	attemptID := uuid.New().String()
	tracing.TagSite(span, account.Site())
	tracing.TagAttempt(span, attemptID)

	log = log.With(zap.String("site", account.Site()), zap.String("attemptId", attemptID))

	if opts.PasswordLength <= 0 {
		opts.PasswordLength = DefaultPasswordLength
	}

	err := phase(ctx, log, enum.PhaseInitiate, func(ctx context.Context) error {
		return account.InitiateReset(ctx, client)
	})
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}

	var message *models.Message
	err = phase(ctx, log, enum.PhaseFindMessage, func(ctx context.Context) error {
		query := account.SearchQuery()
		found, err := inbox.FindWithRetry(ctx, query, opts.Retry)
		if err != nil {
			return err
		}
		if found == nil {
			return er.MissingMessage(query.String())
		}
		message = found
		return nil
	})
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}

	var key K
	err = phase(ctx, log, enum.PhaseParse, func(ctx context.Context) error {
		parsed, err := account.ParseMessage(message)
		if err != nil {
			return err
		}
		key = parsed
		log.Logger().Debug("reset key parsed", zap.String("key", redactKey(key)))
		return nil
	})
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}

	var password string
	err = phase(ctx, log, enum.PhaseSetPassword, func(ctx context.Context) error {
		generated, err := generator.Generate(opts.PasswordLength)
		if err != nil {
			return errors.Wrap(err, "generating password")
		}
		password = generated
		return account.SetPassword(ctx, client, key, password)
	})
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}

	result := &Result{
		AttemptID: attemptID,
		Site:      account.Site(),
		LoginURL:  account.LoginURL(),
		Password:  password,
	}

	if opts.Archive {
		archiveErr := phase(ctx, log, enum.PhaseArchive, func(ctx context.Context) error {
			return inbox.Archive(ctx, message)
		})
		if archiveErr != nil {
			log.Logger().Warn("password changed but confirmation email was not archived", zap.Error(archiveErr))
			result.ArchiveErr = archiveErr
		} else {
			result.Archived = true
		}
	}

	log.Info("password reset complete")
	return result, nil
}

func phase(ctx context.Context, log logger.Logger, name enum.ResetPhase, fn func(ctx context.Context) error) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "Reset."+name.String())
	defer span.Finish()
	tracing.TagPhase(span, name.String())

	log.Logger().Debug("phase started", zap.String("phase", name.String()))
	if err := fn(ctx); err != nil {
		tracing.TraceErr(span, err)
		log.Logger().Error("phase failed", zap.String("phase", name.String()), zap.Error(err))
		return err
	}
	log.Logger().Debug("phase done", zap.String("phase", name.String()))
	return nil
}

func redactKey(key any) string {
	if s, ok := key.(string); ok {
		return utils.Redact(s)
	}
	return "<opaque>"
}
