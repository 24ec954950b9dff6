package main

import (
	"log"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/customeros/fresh/services/password"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatalf("fresh: %v", err)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "fresh",
		Usage: "reset website passwords through their email recovery flow",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "verbose", Aliases: []string{"v"}, Usage: "log every reset phase"},
		},
		Commands: []*cli.Command{
			{
				Name:      "reset",
				Usage:     "reset the password of one account",
				ArgsUsage: "<site> <user>",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "archive", Usage: "archive the confirmation email afterwards (default from FRESH_ARCHIVE)"},
					&cli.IntFlag{Name: "tries", Usage: "inbox searches before giving up (default from FRESH_RETRY_TRIES)"},
					&cli.DurationFlag{Name: "interval", Usage: "wait between inbox searches (default from FRESH_RETRY_INTERVAL)"},
				},
				Action: resetCommand,
			},
			{
				Name:  "rotate",
				Usage: "reset every account listed in the accounts file",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "schedule", Usage: "six-field cron schedule; keeps running and rotates on it (default from CRON_SCHEDULE_ROTATE)"},
				},
				Action: rotateCommand,
			},
			{
				Name:   "auth",
				Usage:  "authorize access to the Gmail mailbox",
				Action: authCommand,
			},
			{
				Name:   "logout",
				Usage:  "forget the stored Gmail authorization",
				Action: logoutCommand,
			},
			{
				Name:  "generate",
				Usage: "print a password without resetting anything",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "kind", Value: password.KindBase64, Usage: "one of base64, char, hex, nanoid, printable, str"},
					&cli.IntFlag{Name: "length", Value: 50},
					&cli.StringFlag{Name: "seed", Usage: "fill for the char and str generators"},
				},
				Action: generateCommand,
			},
			{
				Name:   "sites",
				Usage:  "list the sites fresh can reset",
				Action: sitesCommand,
			},
		},
	}
}
