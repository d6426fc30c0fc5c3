package main

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/ZanzyTHEbar/procurement-lens/internal/analysis"
	"github.com/ZanzyTHEbar/procurement-lens/internal/config"
	"github.com/ZanzyTHEbar/procurement-lens/internal/database"
	"github.com/ZanzyTHEbar/procurement-lens/internal/encoding"
	"github.com/ZanzyTHEbar/procurement-lens/internal/errors"
	"github.com/ZanzyTHEbar/procurement-lens/internal/ingest"
	"github.com/ZanzyTHEbar/procurement-lens/internal/lens"
	"github.com/ZanzyTHEbar/procurement-lens/internal/monitoring"
)

func generateCommand() *cli.Command {
	return &cli.Command{
		Name:      "generate",
		Usage:     "build the overview and every lens from a directory of record packages",
		ArgsUsage: "[SOURCE]",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: "artifact directory"},
			&cli.StringFlag{Name: "start", Usage: "first contract start date kept (YYYY-MM-DD)"},
			&cli.StringFlag{Name: "end", Usage: "last contract start date kept (YYYY-MM-DD)"},
			&cli.StringFlag{Name: "currency", Usage: "currency label used in the overview"},
			&cli.StringFlag{Name: "sqlite", Usage: "also export the prepared table to this SQLite file"},
		},
		Action: func(c *cli.Context) error {
			cfg, err := loadConfig(c, func(cfg *config.Config) map[string]*string {
				return map[string]*string{
					"output":   &cfg.Output,
					"start":    &cfg.StartDate,
					"end":      &cfg.EndDate,
					"currency": &cfg.Currency,
					"sqlite":   &cfg.SQLite,
				}
			})
			if err != nil {
				return exit(err)
			}
			if src := c.Args().First(); src != "" {
				cfg.Source = src
			}

			logger, runID := newLogger(c).WithRun()
			metrics := monitoring.NewMetrics()

			start := time.Now()
			_, err = generate(c.Context, cfg, runID, logger, metrics)
			logger.Info("Run finished",
				"duration_ms", time.Since(start).Milliseconds(),
				"success", err == nil,
				"stats", metrics.GetStats(),
			)
			if err != nil {
				errors.LogError(logger.Logger, errors.ToAppError(err))
			}
			return exit(err)
		},
	}
}

// generate runs ingest, preparation, the optional SQLite export and the
// lens pipeline. The returned run record is filled in as far as the run got.
func generate(ctx context.Context, cfg *config.Config, runID string, logger *monitoring.Logger, metrics *monitoring.Metrics) (*database.Run, error) {
	run := database.NewRun(runID, cfg.Source)

	window, err := cfg.DateRange()
	if err != nil {
		return run, err
	}

	raw, report, err := ingest.NewLoader(logger, metrics).Load(ctx, cfg.Source)
	run.FilesRead, run.FilesSkipped, run.RowsBuilt = report.FilesRead, report.FilesSkipped, report.Rows
	if err != nil {
		return run, err
	}
	if len(report.Skipped) > 0 {
		logger.Warn("Some source files were skipped", "count", len(report.Skipped))
	}

	analyzer := analysis.NewAnalyzer(cfg.Columns, window, cfg.Currency)

	prepStart := time.Now()
	prepared := analyzer.Prepare(raw)
	run.RowsFiltered = prepared.Len()
	metrics.SetRowsFiltered(prepared.Len())
	metrics.RecordStage("prepare", time.Since(prepStart))
	logger.StageLogger("prepare", prepared.Len(), time.Since(prepStart))

	var db *database.DB
	if cfg.SQLite != "" {
		db, err = database.Open(ctx, cfg.SQLite)
		if err != nil {
			return run, errors.NewConfigurationError("cannot open sqlite database "+cfg.SQLite, err)
		}
		defer errors.SafeClose(db, "sqlite database")

		if err := db.RecordRun(ctx, run); err != nil {
			return run, errors.NewInternalError("cannot record run", err)
		}

		exportStart := time.Now()
		n, err := db.ExportTable(ctx, prepared)
		if err != nil {
			return run, errors.NewInternalError("sqlite export failed", err)
		}
		metrics.RecordStage("export", time.Since(exportStart))
		logger.StageLogger("export", n, time.Since(exportStart))
	}

	out, err := encoding.NewArtifactDir(cfg.Output)
	if err != nil {
		return run, errors.NewConfigurationError("cannot create output directory "+cfg.Output, err)
	}

	logger.Debug("Writing artifacts", "dir", out.Root())
	err = lens.NewPipeline(cfg.Spec(), analyzer, logger, metrics).Run(ctx, prepared, out)
	run.Lenses = int(atomic.LoadInt64(&metrics.LensesWritten))
	if err != nil {
		return run, err
	}
	run.FinishedAt = time.Now().UTC()

	if db != nil {
		// the run context may already be done; the ledger entry is still wanted
		if err := db.RecordRun(context.WithoutCancel(ctx), run); err != nil {
			return run, errors.NewInternalError("cannot record run", err)
		}
	}
	return run, nil
}
