package ingest

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/ZanzyTHEbar/procurement-lens/internal/encoding"
	"github.com/ZanzyTHEbar/procurement-lens/internal/errors"
	"github.com/ZanzyTHEbar/procurement-lens/internal/monitoring"
	"github.com/ZanzyTHEbar/procurement-lens/internal/table"
	"github.com/ZanzyTHEbar/procurement-lens/internal/types"
)

// Report summarises one load
type Report struct {
	FilesRead    int
	FilesSkipped int
	Records      int
	Rows         int
	Skipped      []string
}

// Loader turns a directory of record packages into one table
type Loader struct {
	logger  *monitoring.Logger
	metrics *monitoring.Metrics
}

// NewLoader creates a loader. logger and metrics may be nil.
func NewLoader(logger *monitoring.Logger, metrics *monitoring.Metrics) *Loader {
	if logger == nil {
		logger = monitoring.NewNopLogger()
	}
	if metrics == nil {
		metrics = monitoring.NewMetrics()
	}
	return &Loader{logger: logger, metrics: metrics}
}

// ListFiles returns the regular files directly inside dir, sorted by name
func ListFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.NewConfigurationError("cannot read source directory "+dir, err)
	}

	var files []string
	for _, e := range entries {
		if e.Type().IsRegular() {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(files)
	return files, nil
}

// ReadPackage decodes and validates one record package file
func ReadPackage(path string) (*types.RecordPackage, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.NewInputError(path, "cannot open record package", err)
	}
	defer errors.SafeClose(f, path)

	var pkg types.RecordPackage
	if err := encoding.Decode(f, &pkg); err != nil {
		return nil, errors.NewInputError(path, "malformed record package", err)
	}
	for _, rec := range pkg.Records {
		if err := Validate(rec); err != nil {
			return nil, errors.NewInputError(path, "invalid record", err)
		}
	}
	return &pkg, nil
}

// Load reads every file in dir. A file that fails to decode or validate is
// skipped and reported; its rows never reach the table. Load fails when no
// file produced a row.
func (l *Loader) Load(ctx context.Context, dir string) (*table.Table, Report, error) {
	start := time.Now()
	var report Report

	files, err := ListFiles(dir)
	if err != nil {
		return nil, report, err
	}

	b := table.NewBuilder()
	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return nil, report, err
		}

		pkg, err := ReadPackage(path)
		if err != nil {
			report.FilesSkipped++
			report.Skipped = append(report.Skipped, path)
			l.metrics.IncrementFilesSkipped()
			l.logger.FileLogger(path, 0, 0, err)
			continue
		}

		rows := 0
		for _, rec := range pkg.Records {
			recRows := Denormalize(rec)
			b.AppendAll(recRows)
			rows += len(recRows)
		}

		report.FilesRead++
		report.Records += len(pkg.Records)
		report.Rows += rows
		l.metrics.IncrementFilesRead()
		l.metrics.AddRecords(len(pkg.Records))
		l.metrics.AddRows(rows)
		l.logger.FileLogger(path, len(pkg.Records), rows, nil)
	}

	if b.Len() == 0 {
		return nil, report, errors.NewValidationError("no contracts found in source directory", map[string]string{
			"source":        dir,
			"files_skipped": strconv.Itoa(report.FilesSkipped),
		})
	}

	elapsed := time.Since(start)
	l.metrics.RecordStage("ingest", elapsed)
	l.logger.StageLogger("ingest", report.Rows, elapsed)
	return b.Build(), report, nil
}
