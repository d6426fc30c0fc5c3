package database

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ZanzyTHEbar/procurement-lens/internal/errors"
	"github.com/ZanzyTHEbar/procurement-lens/internal/table"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(context.Background(), filepath.Join(t.TempDir(), "nested", "procharts.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func sampleTable() *table.Table {
	b := table.NewBuilder()
	b.Append(table.Row{
		"contract_id":    table.NewString("c-1"),
		"amount":         table.NewNumber(decimal.RequireFromString("1500.25")),
		"award_date":     table.NewTime(time.Date(2021, 3, 4, 0, 0, 0, 0, time.UTC)),
		"has_amendments": table.NewBool(true),
		"mixed":          table.NewInt(1),
	})
	b.Append(table.Row{
		"contract_id":    table.NewString(`c-"2"`),
		"has_amendments": table.NewBool(false),
		"mixed":          table.NewString("one"),
	})
	return b.Build()
}

func TestOpen_CreatesRunsTable(t *testing.T) {
	db := openTestDB(t)

	var name string
	err := db.QueryRow(`SELECT name FROM sqlite_master WHERE type = 'table' AND name = 'runs'`).Scan(&name)
	require.NoError(t, err)
	assert.Equal(t, "runs", name)
	assert.Contains(t, db.Path(), "procharts.db")
}

func TestExportTable(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	n, err := db.ExportTable(ctx, sampleTable())
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	types := map[string]string{}
	rows, err := db.Query(`SELECT name, type FROM pragma_table_info('contracts')`)
	require.NoError(t, err)
	for rows.Next() {
		var name, typ string
		require.NoError(t, rows.Scan(&name, &typ))
		types[name] = typ
	}
	require.NoError(t, rows.Close())

	assert.Equal(t, map[string]string{
		"contract_id":    "TEXT",
		"amount":         "REAL",
		"award_date":     "TEXT",
		"has_amendments": "INTEGER",
		"mixed":          "TEXT",
	}, types)

	var amount float64
	var awarded string
	var amended int
	err = db.QueryRow(`SELECT amount, award_date, has_amendments FROM contracts WHERE contract_id = 'c-1'`).
		Scan(&amount, &awarded, &amended)
	require.NoError(t, err)
	assert.InDelta(t, 1500.25, amount, 1e-9)
	assert.Equal(t, "2021-03-04T00:00:00Z", awarded)
	assert.Equal(t, 1, amended)

	var nullAmount *float64
	err = db.QueryRow(`SELECT amount FROM contracts WHERE contract_id = 'c-"2"'`).Scan(&nullAmount)
	require.NoError(t, err)
	assert.Nil(t, nullAmount)
}

func TestExportTable_Replaces(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	_, err := db.ExportTable(ctx, sampleTable())
	require.NoError(t, err)

	b := table.NewBuilder()
	b.Append(table.Row{"contract_id": table.NewString("only")})
	n, err := db.ExportTable(ctx, b.Build())
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	var count int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM contracts`).Scan(&count))
	assert.Equal(t, 1, count)
}

func TestExportTable_Empty(t *testing.T) {
	db := openTestDB(t)

	_, err := db.ExportTable(context.Background(), table.Empty())
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryValidation))
}

func TestRuns(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	first := NewRun("", "./data")
	first.StartedAt = time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	require.NoError(t, db.RecordRun(ctx, first))
	assert.NotEmpty(t, first.ID)

	second := NewRun("run-2", "./data")
	second.StartedAt = time.Date(2024, 1, 2, 10, 0, 0, 0, time.UTC)
	require.NoError(t, db.RecordRun(ctx, second))

	second.FinishedAt = second.StartedAt.Add(time.Minute)
	second.FilesRead, second.RowsBuilt, second.RowsFiltered, second.Lenses = 3, 40, 38, 7
	require.NoError(t, db.RecordRun(ctx, second))

	runs, err := db.Runs(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 2)

	assert.Equal(t, "run-2", runs[0].ID)
	assert.Equal(t, 3, runs[0].FilesRead)
	assert.Equal(t, 38, runs[0].RowsFiltered)
	assert.Equal(t, 7, runs[0].Lenses)
	assert.True(t, second.FinishedAt.Equal(runs[0].FinishedAt))

	assert.Equal(t, first.ID, runs[1].ID)
	assert.True(t, runs[1].FinishedAt.IsZero())

	limited, err := db.Runs(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}
