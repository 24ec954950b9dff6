package inbox

import (
	"context"
	"time"

	"github.com/opentracing/opentracing-go"
	"github.com/opentracing/opentracing-go/log"
	"go.uber.org/zap"

	"github.com/customeros/fresh/interfaces"
	"github.com/customeros/fresh/internal/logger"
	"github.com/customeros/fresh/internal/models"
	"github.com/customeros/fresh/internal/tracing"
)

// Sleeper waits for d or until ctx is done.
type Sleeper func(ctx context.Context, d time.Duration) error

// Client polls a mail backend for confirmation emails. It holds no state
// between calls, so FindWithRetry can be restarted freely.
type Client struct {
	mail  interfaces.MailService
	log   logger.Logger
	sleep Sleeper
}

type Option func(*Client)

// WithSleeper replaces the wall-clock sleep, mostly for tests.
func WithSleeper(sleeper Sleeper) Option {
	return func(c *Client) {
		c.sleep = sleeper
	}
}

func NewClient(mail interfaces.MailService, log logger.Logger, opts ...Option) *Client {
	c := &Client{
		mail:  mail,
		log:   log,
		sleep: contextSleep,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func contextSleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Search runs a single query against the backend.
func (c *Client) Search(ctx context.Context, query models.Query) (*models.Message, error) {
	return c.mail.Search(ctx, query)
}

// FindWithRetry searches up to policy.Tries times, sleeping policy.Interval
// between empty attempts. It returns (nil, nil) when every attempt came back
// empty. Backend errors end the polling at once and are returned as is.
func (c *Client) FindWithRetry(ctx context.Context, query models.Query, policy models.RetryPolicy) (*models.Message, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "Inbox.FindWithRetry")
	defer span.Finish()
	tracing.TagComponentMailbox(span)
	span.LogFields(log.String("query", query.String()), log.Int("tries", policy.Tries), log.String("interval", policy.Interval.String()))

	if err := policy.Validate(); err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}

	for attempt := 1; attempt <= policy.Tries; attempt++ {
		message, err := c.Search(ctx, query)
		if err != nil {
			tracing.TraceErr(span, err)
			return nil, err
		}
		if message != nil {
			span.LogFields(log.Int("result.attempt", attempt), log.String("result.messageId", message.ID))
			c.log.Logger().Debug("confirmation email found", zap.Int("attempt", attempt), zap.String("messageId", message.ID))
			return message, nil
		}
		if attempt == policy.Tries {
			break
		}
		c.log.Logger().Debug("no matching email yet", zap.Int("attempt", attempt), zap.Int("tries", policy.Tries), zap.Duration("interval", policy.Interval))
		if err := c.sleep(ctx, policy.Interval); err != nil {
			tracing.TraceErr(span, err)
			return nil, err
		}
	}

	span.LogFields(log.Bool("result.found", false))
	return nil, nil
}

// Archive moves the message out of the inbox.
func (c *Client) Archive(ctx context.Context, message *models.Message) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "Inbox.Archive")
	defer span.Finish()
	tracing.TagComponentMailbox(span)
	span.LogFields(log.String("messageId", message.ID))

	if err := c.mail.Archive(ctx, message); err != nil {
		tracing.TraceErr(span, err)
		return err
	}
	return nil
}
