package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/ZanzyTHEbar/procurement-lens/internal/errors"
	"github.com/ZanzyTHEbar/procurement-lens/internal/table"
)

// ContractsTable receives the exported rows
const ContractsTable = "contracts"

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// columnType picks the SQLite type for a column from the kinds it holds.
// Mixed or textual columns are TEXT.
func columnType(t *table.Table, column string) string {
	kind := table.KindNull
	for i := 0; i < t.Len(); i++ {
		k := t.Value(i, column).Kind()
		if k == table.KindNull {
			continue
		}
		if kind != table.KindNull && kind != k {
			return "TEXT"
		}
		kind = k
	}
	switch kind {
	case table.KindNumber:
		return "REAL"
	case table.KindBool:
		return "INTEGER"
	default:
		return "TEXT"
	}
}

func sqlValue(v table.Value, colType string) any {
	if v.IsNull() {
		return nil
	}
	if b, ok := v.AsBool(); ok && colType == "INTEGER" {
		if b {
			return 1
		}
		return 0
	}
	return v.String()
}

// ExportTable replaces the contracts table with the rows of t, one column
// per schema column in schema order, inside a single transaction
func (db *DB) ExportTable(ctx context.Context, t *table.Table) (int, error) {
	columns := t.Columns()
	if len(columns) == 0 {
		return 0, errors.NewValidationError("nothing to export", map[string]string{"table": ContractsTable})
	}

	types := make([]string, len(columns))
	defs := make([]string, len(columns))
	quoted := make([]string, len(columns))
	for i, c := range columns {
		types[i] = columnType(t, c)
		quoted[i] = quoteIdent(c)
		defs[i] = quoted[i] + " " + types[i]
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin export: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DROP TABLE IF EXISTS "+quoteIdent(ContractsTable)); err != nil {
		return 0, fmt.Errorf("failed to drop %s: %w", ContractsTable, err)
	}
	create := fmt.Sprintf("CREATE TABLE %s (%s)", quoteIdent(ContractsTable), strings.Join(defs, ", "))
	if _, err := tx.ExecContext(ctx, create); err != nil {
		return 0, fmt.Errorf("failed to create %s: %w", ContractsTable, err)
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(columns)), ", ")
	insert := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		quoteIdent(ContractsTable), strings.Join(quoted, ", "), placeholders)

	stmt, err := tx.PrepareContext(ctx, insert)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer errors.SafeClose(stmt, "export statement")

	args := make([]any, len(columns))
	for i := 0; i < t.Len(); i++ {
		for j, c := range columns {
			args[j] = sqlValue(t.Value(i, c), types[j])
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return 0, fmt.Errorf("failed to insert row %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit export: %w", err)
	}
	return t.Len(), nil
}

// RecordRun inserts or updates a run record
func (db *DB) RecordRun(ctx context.Context, run *Run) error {
	var finished any
	if !run.FinishedAt.IsZero() {
		finished = run.FinishedAt.UTC().Format(time.RFC3339Nano)
	}

	_, err := db.ExecContext(ctx, `
		INSERT INTO runs (id, source, started_at, finished_at, files_read, files_skipped, rows_built, rows_filtered, lenses)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			finished_at = excluded.finished_at,
			files_read = excluded.files_read,
			files_skipped = excluded.files_skipped,
			rows_built = excluded.rows_built,
			rows_filtered = excluded.rows_filtered,
			lenses = excluded.lenses
	`, run.ID, run.Source, run.StartedAt.UTC().Format(time.RFC3339Nano), finished,
		run.FilesRead, run.FilesSkipped, run.RowsBuilt, run.RowsFiltered, run.Lenses)
	if err != nil {
		return fmt.Errorf("failed to record run: %w", err)
	}
	return nil
}

// Runs returns the most recent runs first
func (db *DB) Runs(ctx context.Context, limit int) ([]Run, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, source, started_at, finished_at, files_read, files_skipped, rows_built, rows_filtered, lenses
		FROM runs
		ORDER BY started_at DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer errors.SafeClose(rows, "runs query")

	var runs []Run
	for rows.Next() {
		var r Run
		var started string
		var finished sql.NullString
		if err := rows.Scan(&r.ID, &r.Source, &started, &finished,
			&r.FilesRead, &r.FilesSkipped, &r.RowsBuilt, &r.RowsFiltered, &r.Lenses); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		r.StartedAt, _ = time.Parse(time.RFC3339Nano, started)
		if finished.Valid {
			r.FinishedAt, _ = time.Parse(time.RFC3339Nano, finished.String)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}
