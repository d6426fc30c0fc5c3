package main

import (
	"context"
	stderrors "errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/ZanzyTHEbar/procurement-lens/internal/config"
	"github.com/ZanzyTHEbar/procurement-lens/internal/errors"
	"github.com/ZanzyTHEbar/procurement-lens/internal/monitoring"
)

// Exit codes
const (
	exitFailure     = 1
	exitConfig      = 2
	exitNoData      = 3
	exitInterrupted = 130
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newApp().RunContext(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitFailure)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:           "procharts",
		Usage:          "turn OCDS record packages into chart-ready lens artifacts",
		DefaultCommand: "generate",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "YAML configuration overlaid on the built-in defaults",
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "log at debug level",
			},
			&cli.StringFlag{
				Name:  "log-format",
				Value: "json",
				Usage: "json or text",
			},
		},
		Commands: []*cli.Command{
			generateCommand(),
			serveCommand(),
			tokenCommand(),
		},
	}
}

func newLogger(c *cli.Context) *monitoring.Logger {
	return monitoring.NewLoggerWithOptions(monitoring.LogOptions{
		Format:  c.String("log-format"),
		Verbose: c.Bool("verbose"),
		Output:  c.App.ErrWriter,
	})
}

// loadConfig resolves defaults, file, .env, environment and then the
// flags set on the command line, in increasing precedence
func loadConfig(c *cli.Context, overrides func(*config.Config) map[string]*string) (*config.Config, error) {
	if err := config.LoadEnv(); err != nil {
		return nil, err
	}
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, err
	}
	cfg.ApplyEnv(os.LookupEnv)

	for flag, dst := range overrides(cfg) {
		if c.IsSet(flag) {
			*dst = c.String(flag)
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// exit maps an error onto a process exit code
func exit(err error) error {
	if err == nil {
		return nil
	}
	code := exitFailure
	switch {
	case stderrors.Is(err, context.Canceled):
		code = exitInterrupted
	case errors.IsCategory(err, errors.CategoryConfiguration):
		code = exitConfig
	case errors.IsCategory(err, errors.CategoryValidation):
		code = exitNoData
	}
	return cli.Exit(err.Error(), code)
}
