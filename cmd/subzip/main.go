package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"runtime"

	"github.com/urfave/cli/v2"

	"github.com/ybirader/subzip"
)

const description = "subzip is a tool for listing and verifying the entries below a directory inside a zip or jar archive."

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := app.RunContext(ctx, os.Args); err != nil {
		log.Fatal(err)
	}
}

var app = &cli.App{
	Name:      "subzip",
	Usage:     description,
	ArgsUsage: "archive:file:/path/to/archive.jar!/sub/dir/",
	Flags: []cli.Flag{
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"v"},
			Usage:   "Log debug records to stderr",
			EnvVars: []string{"SUBZIP_VERBOSE"},
		},
	},
	Commands: []*cli.Command{
		{
			Name:      "ls",
			Aliases:   []string{"list"},
			Usage:     "Lists the entries below the locator's directory in archive order",
			ArgsUsage: "locator",
			Flags: []cli.Flag{
				&cli.BoolFlag{
					Name:    "long",
					Aliases: []string{"l"},
					Usage:   "Show the kind and size of each entry",
				},
				&cli.StringSliceFlag{
					Name:    "pattern",
					Aliases: []string{"p"},
					Usage:   "Only show entries whose relative path matches the glob `PATTERN`",
				},
			},
			Action: func(c *cli.Context) error {
				locator, err := locatorArg(c)
				if err != nil {
					return err
				}

				lister := subzip.ListerCLI{
					Locator:  locator,
					Patterns: c.StringSlice("pattern"),
					Long:     c.Bool("long"),
					Out:      c.App.Writer,
					Logger:   logger(c),
				}
				return lister.List(c.Context)
			},
		},
		{
			Name:      "verify",
			Usage:     "Reads every file below the locator's directory and checks its CRC32",
			ArgsUsage: "locator",
			Flags: []cli.Flag{
				&cli.IntFlag{
					Name:    "concurrency",
					Value:   runtime.GOMAXPROCS(0),
					Usage:   "allow up to n verification routines",
					EnvVars: []string{"SUBZIP_CONCURRENCY"},
				},
				&cli.StringSliceFlag{
					Name:    "pattern",
					Aliases: []string{"p"},
					Usage:   "Only verify files whose relative path matches the glob `PATTERN`",
				},
			},
			Action: func(c *cli.Context) error {
				locator, err := locatorArg(c)
				if err != nil {
					return err
				}

				verifier := subzip.VerifierCLI{
					Locator:     locator,
					Patterns:    c.StringSlice("pattern"),
					Concurrency: c.Int("concurrency"),
					Out:         c.App.Writer,
					Logger:      logger(c),
				}
				return verifier.Verify(c.Context)
			},
		},
	},
	Suggest: true,
}

func locatorArg(c *cli.Context) (string, error) {
	if c.NArg() != 1 {
		return "", cli.Exit("subzip error: invalid usage, expected exactly one locator", 1)
	}
	return c.Args().First(), nil
}

func logger(c *cli.Context) *slog.Logger {
	if !c.Bool("verbose") {
		return nil
	}
	return slog.New(slog.NewTextHandler(c.App.ErrWriter, &slog.HandlerOptions{Level: slog.LevelDebug}))
}
