package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/opentracing/opentracing-go"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"

	"github.com/customeros/fresh/config"
	"github.com/customeros/fresh/internal/cron"
	"github.com/customeros/fresh/internal/logger"
	"github.com/customeros/fresh/internal/tracing"
	"github.com/customeros/fresh/server"
	"github.com/customeros/fresh/services"
	"github.com/customeros/fresh/services/account"
	"github.com/customeros/fresh/services/password"
	"github.com/customeros/fresh/services/reset"
	"github.com/customeros/fresh/services/rotation"
)

type app struct {
	cfg          *config.Config
	log          logger.Logger
	tracerCloser io.Closer
}

func bootstrap(c *cli.Context) (*app, error) {
	cfg, err := config.InitConfig()
	if err != nil {
		return nil, err
	}
	if c.Bool("verbose") {
		cfg.Logger.LogLevel = "debug"
	}

	appLogger := logger.NewAppLogger(cfg.Logger)
	appLogger.InitLogger()

	tracer, closer, err := tracing.NewJaegerTracer(cfg.Tracing, appLogger)
	if err != nil {
		return nil, errors.Wrap(err, "initializing jaeger tracer")
	}
	opentracing.SetGlobalTracer(tracer)

	return &app{cfg: cfg, log: appLogger, tracerCloser: closer}, nil
}

func (a *app) close() {
	if a.tracerCloser != nil {
		_ = a.tracerCloser.Close()
	}
	_ = a.log.Sync()
}

func (a *app) callbackServer(out io.Writer) *server.CallbackServer {
	return server.NewCallbackServer(a.cfg.GmailConfig.CallbackPort, out, a.log)
}

func signalContext(c *cli.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
}

func resetCommand(c *cli.Context) error {
	if c.NArg() != 2 {
		return cli.ShowSubcommandHelp(c)
	}
	site, user := c.Args().Get(0), c.Args().Get(1)

	a, err := bootstrap(c)
	if err != nil {
		return err
	}
	defer a.close()

	if c.IsSet("tries") {
		a.cfg.AppConfig.RetryTries = c.Int("tries")
	}
	if c.IsSet("interval") {
		a.cfg.AppConfig.RetryInterval = c.Duration("interval")
	}
	if err := a.cfg.AppConfig.RetryPolicy().Validate(); err != nil {
		return err
	}

	ctx, cancel := signalContext(c)
	defer cancel()

	svcs, err := services.InitServices(ctx, a.cfg, a.log, a.callbackServer(c.App.ErrWriter))
	if err != nil {
		return err
	}
	defer svcs.Close()

	runner, err := svcs.Registry.Runner(site, user)
	if err != nil {
		return err
	}

	resetService := svcs.Reset
	if c.IsSet("archive") {
		resetService = resetService.WithArchive(c.Bool("archive"))
	}

	fmt.Fprintf(c.App.ErrWriter, "Resetting %s password for %s, waiting up to %s for the email...\n",
		site, user, a.cfg.AppConfig.RetryPolicy().Budget())

	result, err := runner(ctx, resetService)
	if err != nil {
		return err
	}
	printResult(c.App.Writer, c.App.ErrWriter, user, result)
	return nil
}

func rotateCommand(c *cli.Context) error {
	a, err := bootstrap(c)
	if err != nil {
		return err
	}
	defer a.close()

	ctx, cancel := signalContext(c)
	defer cancel()

	svcs, err := services.InitServices(ctx, a.cfg, a.log, nil)
	if err != nil {
		return err
	}
	defer svcs.Close()

	if len(svcs.Accounts.Accounts) == 0 {
		return errors.New("no [[account]] entries in the accounts file")
	}

	report := func(outcome rotation.Outcome) {
		if outcome.Err != nil {
			fmt.Fprintf(c.App.ErrWriter, "%s: %v\n", outcome.Entry.Key(), outcome.Err)
			return
		}
		printResult(c.App.Writer, c.App.ErrWriter, outcome.Entry.User, outcome.Result)
	}

	schedule := a.cfg.CronConfig.CronScheduleRotate
	if c.IsSet("schedule") {
		schedule = c.String("schedule")
	}
	if schedule == "" {
		return svcs.Rotator.Rotate(ctx, report)
	}

	cronManager := cron.NewCronManager(&config.CronConfig{CronScheduleRotate: schedule}, a.log, func(ctx context.Context) error {
		return svcs.Rotator.Rotate(ctx, report)
	})
	if err := cronManager.Start(ctx); err != nil {
		return errors.Wrap(err, "starting scheduler")
	}
	a.log.Infof("Rotating %d accounts on schedule %q, press Ctrl+C to stop", len(svcs.Accounts.Accounts), schedule)

	<-ctx.Done()
	cronManager.Stop()
	return nil
}

func authCommand(c *cli.Context) error {
	a, err := bootstrap(c)
	if err != nil {
		return err
	}
	defer a.close()

	ctx, cancel := signalContext(c)
	defer cancel()

	provider, err := services.NewOAuthProvider(a.cfg, a.log, a.callbackServer(c.App.ErrWriter))
	if err != nil {
		return err
	}
	if _, err := provider.Authorize(ctx); err != nil {
		return err
	}
	fmt.Fprintln(c.App.ErrWriter, "Mailbox authorized.")
	return nil
}

func logoutCommand(c *cli.Context) error {
	a, err := bootstrap(c)
	if err != nil {
		return err
	}
	defer a.close()

	provider, err := services.NewOAuthProvider(a.cfg, a.log, nil)
	if err != nil {
		return err
	}
	return provider.Logout()
}

func generateCommand(c *cli.Context) error {
	generator, err := password.New(c.String("kind"), c.String("seed"))
	if err != nil {
		return err
	}
	generated, err := generator.Generate(c.Int("length"))
	if err != nil {
		return err
	}
	fmt.Fprintln(c.App.Writer, generated)
	return nil
}

func sitesCommand(c *cli.Context) error {
	cfg, err := config.InitConfig()
	if err != nil {
		return err
	}
	accounts, err := config.LoadAccounts(cfg.AppConfig.AccountsFile)
	if err != nil {
		return err
	}
	registry, err := account.NewRegistry(accounts.Sites)
	if err != nil {
		return err
	}
	for _, site := range registry.Sites() {
		fmt.Fprintln(c.App.Writer, site)
	}
	return nil
}

// printResult writes the password alone on stdout so it can be piped.
func printResult(out, info io.Writer, user string, result *reset.Result) {
	fmt.Fprintf(info, "%s (%s): log in at %s\n", result.Site, user, result.LoginURL)
	if result.ArchiveErr != nil {
		fmt.Fprintf(info, "warning: confirmation email not archived: %v\n", result.ArchiveErr)
	}
	fmt.Fprintln(out, result.Password)
}
