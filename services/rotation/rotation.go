package rotation

import (
	"context"

	"github.com/opentracing/opentracing-go"
	"github.com/opentracing/opentracing-go/log"
	"go.uber.org/zap"

	"github.com/customeros/fresh/config"
	er "github.com/customeros/fresh/internal/errors"
	"github.com/customeros/fresh/internal/logger"
	"github.com/customeros/fresh/internal/tracing"
	"github.com/customeros/fresh/services/account"
	"github.com/customeros/fresh/services/reset"
)

// Outcome is the result of one account in a rotation run.
type Outcome struct {
	Entry  config.AccountEntry
	Result *reset.Result
	Err    error
}

// Rotator resets every configured account, one after the other.
type Rotator struct {
	registry *account.Registry
	svc      *reset.Service
	accounts []config.AccountEntry
	log      logger.Logger
}

func NewRotator(registry *account.Registry, svc *reset.Service, accounts []config.AccountEntry, log logger.Logger) *Rotator {
	return &Rotator{
		registry: registry,
		svc:      svc,
		accounts: accounts,
		log:      log,
	}
}

// Rotate hands each outcome to report as soon as it is known. A failing
// account does not stop the run; all failures come back as one MultiErrors.
func (r *Rotator) Rotate(ctx context.Context, report func(Outcome)) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "Rotator.Rotate")
	defer span.Finish()
	tracing.TagComponentService(span)
	span.LogFields(log.Int("accounts", len(r.accounts)))

	failures := er.NewMultiErrors()
	for _, entry := range r.accounts {
		if err := ctx.Err(); err != nil {
			failures.Add(entry.Key(), "rotation cancelled", err)
			continue
		}

		outcome := Outcome{Entry: entry}
		outcome.Result, outcome.Err = r.rotateOne(ctx, entry)
		if outcome.Err != nil {
			r.log.Logger().Error("account reset failed", zap.String("account", entry.Key()), zap.Error(outcome.Err))
			failures.Add(entry.Key(), outcome.Err.Error(), outcome.Err)
		} else {
			r.log.Logger().Info("account reset", zap.String("account", entry.Key()))
		}
		if report != nil {
			report(outcome)
		}
	}

	err := failures.ErrorOrNil()
	tracing.TraceErr(span, err)
	return err
}

func (r *Rotator) rotateOne(ctx context.Context, entry config.AccountEntry) (*reset.Result, error) {
	runner, err := r.registry.Runner(entry.Site, entry.User)
	if err != nil {
		return nil, err
	}
	return runner(ctx, r.svc)
}
