package main

import (
	"fmt"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/ZanzyTHEbar/procurement-lens/internal/config"
	"github.com/ZanzyTHEbar/procurement-lens/internal/errors"
	"github.com/ZanzyTHEbar/procurement-lens/internal/server"
)

func tokenCommand() *cli.Command {
	return &cli.Command{
		Name:  "token",
		Usage: "mint a bearer token for a server started with --jwt-secret",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "jwt-secret", Usage: "signing secret", EnvVars: []string{config.EnvJWTSecret}},
			&cli.StringFlag{Name: "subject", Value: "dashboard", Usage: "token subject"},
			&cli.DurationFlag{Name: "ttl", Value: 24 * time.Hour, Usage: "token lifetime"},
		},
		Action: func(c *cli.Context) error {
			cfg, err := loadConfig(c, func(cfg *config.Config) map[string]*string {
				return map[string]*string{"jwt-secret": &cfg.Server.JWTSecret}
			})
			if err != nil {
				return exit(err)
			}
			if cfg.Server.JWTSecret == "" {
				return exit(errors.NewConfigurationError("no jwt secret configured", nil))
			}
			if c.Duration("ttl") <= 0 {
				return exit(errors.NewConfigurationError("--ttl must be positive", nil))
			}

			token, err := server.IssueToken([]byte(cfg.Server.JWTSecret), c.String("subject"), c.Duration("ttl"))
			if err != nil {
				return exit(err)
			}
			fmt.Fprintln(c.App.Writer, token)
			return nil
		},
	}
}
