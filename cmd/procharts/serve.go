package main

import (
	"github.com/urfave/cli/v2"

	"github.com/ZanzyTHEbar/procurement-lens/internal/config"
	"github.com/ZanzyTHEbar/procurement-lens/internal/database"
	"github.com/ZanzyTHEbar/procurement-lens/internal/encoding"
	"github.com/ZanzyTHEbar/procurement-lens/internal/errors"
	"github.com/ZanzyTHEbar/procurement-lens/internal/monitoring"
	"github.com/ZanzyTHEbar/procurement-lens/internal/server"
)

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "serve generated artifacts over HTTP",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: "artifact directory to serve"},
			&cli.StringFlag{Name: "addr", Usage: "listen address"},
			&cli.IntFlag{Name: "rate", Usage: "requests per minute per client IP, 0 disables"},
			&cli.StringFlag{Name: "sqlite", Usage: "run ledger to expose under /api/runs"},
			&cli.StringFlag{Name: "jwt-secret", Usage: "require HS256 bearer tokens signed with this secret", EnvVars: []string{config.EnvJWTSecret}},
		},
		Action: func(c *cli.Context) error {
			cfg, err := loadConfig(c, func(cfg *config.Config) map[string]*string {
				return map[string]*string{
					"output":     &cfg.Output,
					"addr":       &cfg.Server.Addr,
					"sqlite":     &cfg.SQLite,
					"jwt-secret": &cfg.Server.JWTSecret,
				}
			})
			if err != nil {
				return exit(err)
			}
			if c.IsSet("rate") {
				cfg.Server.RatePerMinute = c.Int("rate")
			}

			logger := newLogger(c)
			metrics := monitoring.NewMetrics()

			dir, err := encoding.OpenArtifactDir(cfg.Output)
			if err != nil {
				return exit(errors.NewConfigurationError("cannot open artifact directory "+cfg.Output, err))
			}

			opts := server.Options{
				Addr:           cfg.Server.Addr,
				RatePerMinute:  cfg.Server.RatePerMinute,
				CacheTTL:       cfg.Server.CacheTTL,
				JWTSecret:      cfg.Server.JWTSecret,
				AllowedOrigins: cfg.Server.AllowedOrigins,
			}
			if cfg.SQLite != "" {
				db, err := database.Open(c.Context, cfg.SQLite)
				if err != nil {
					return exit(errors.NewConfigurationError("cannot open sqlite database "+cfg.SQLite, err))
				}
				defer errors.SafeClose(db, "sqlite database")
				opts.Runs = db
			}

			logger.Info("Serving artifacts",
				"dir", dir.Root(),
				"addr", opts.Addr,
				"auth", opts.JWTSecret != "",
				"runs", opts.Runs != nil,
			)
			srv := server.New(dir, opts, logger, metrics)
			defer errors.SafeClose(srv, "server")

			return exit(srv.Run(c.Context))
		},
	}
}
