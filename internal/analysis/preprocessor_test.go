package analysis

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ZanzyTHEbar/procurement-lens/internal/table"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		name     string
		input    table.Value
		expected time.Time
		null     bool
	}{
		{"date only", table.NewString("2021-01-15"), day("2021-01-15"), false},
		{"rfc3339 with offset", table.NewString("2021-01-15T18:00:00-06:00"), time.Date(2021, 1, 16, 0, 0, 0, 0, time.UTC), false},
		{"compact offset", table.NewString("2021-01-15T10:00:00Z"), time.Date(2021, 1, 15, 10, 0, 0, 0, time.UTC), false},
		{"no zone", table.NewString("2021-01-15T10:30:00"), time.Date(2021, 1, 15, 10, 30, 0, 0, time.UTC), false},
		{"space separated", table.NewString("2021-01-15 10:30:00"), time.Date(2021, 1, 15, 10, 30, 0, 0, time.UTC), false},
		{"slashes", table.NewString("2021/01/15"), day("2021-01-15"), false},
		{"surrounding spaces", table.NewString("  2021-01-15 "), day("2021-01-15"), false},
		{"garbage", table.NewString("next tuesday"), time.Time{}, true},
		{"empty string", table.NewString(""), time.Time{}, true},
		{"number", table.NewInt(20210115), time.Time{}, true},
		{"null", table.Null, time.Time{}, true},
		{"already a time", table.NewTime(day("2020-02-29")), day("2020-02-29"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseDate(tt.input)
			if tt.null {
				assert.True(t, got.IsNull())
				return
			}
			ts, ok := got.AsTime()
			require.True(t, ok)
			assert.True(t, tt.expected.Equal(ts), "expected %v, got %v", tt.expected, ts)
			assert.Equal(t, time.UTC, ts.Location())
		})
	}
}

func rawRow(id, start string) table.Row {
	r := table.Row{"contract_id": table.NewString(id)}
	if start != "" {
		r["contract_period_startDate"] = table.NewString(start)
	}
	r["award_date"] = table.NewString("not a date")
	return r
}

func TestPreprocessor_Process(t *testing.T) {
	input := build(
		rawRow("before", "2020-12-31"),
		rawRow("on-start", "2021-01-01"),
		rawRow("inside", "2021-06-15T12:00:00Z"),
		rawRow("on-end", "2021-12-31"),
		rawRow("late-on-end", "2021-12-31T10:00:00Z"),
		rawRow("after", "2022-01-01"),
		rawRow("unparsable", "soon"),
		rawRow("missing", ""),
	)

	window := DayWindow(day("2021-01-01"), day("2021-12-31"))
	p := NewPreprocessor(DefaultColumns(), window)

	out := p.Process(input)

	var ids []string
	for i := 0; i < out.Len(); i++ {
		ids = append(ids, out.Value(i, "contract_id").String())
		assert.True(t, out.Value(i, "award_date").IsNull())
	}
	assert.Equal(t, []string{"on-start", "inside", "on-end", "late-on-end"}, ids)

	// the source table is untouched
	assert.Equal(t, 8, input.Len())
	assert.Equal(t, table.KindString, input.Value(0, "contract_period_startDate").Kind())
}

func TestPreprocessor_OpenWindow(t *testing.T) {
	input := build(rawRow("a", "1999-01-01"), rawRow("b", "2099-01-01"), rawRow("c", ""))
	p := NewPreprocessor(DefaultColumns(), DateRange{})

	assert.Equal(t, 2, p.Process(input).Len())
}

func TestPreprocessor_MissingPrimaryColumn(t *testing.T) {
	input := build(table.Row{"contract_id": table.NewString("c1")})
	p := NewPreprocessor(DefaultColumns(), DateRange{})

	assert.True(t, p.Process(input).IsEmpty())
}

func TestAnalyzer_EndToEnd(t *testing.T) {
	input := build(
		table.Row{
			"contract_id":               table.NewString("c1"),
			"contract_value_amount":     table.FromScalar(json.Number("100")),
			"contract_period_startDate": table.NewString("2021-01-15"),
			"award_suppliers_0_name":    table.NewString("ACME"),
			"buyer_name":                table.NewString("Ministry"),
		},
		table.Row{
			"contract_id":               table.NewString("c2"),
			"contract_value_amount":     table.FromScalar(json.Number("200")),
			"contract_period_startDate": table.NewString("2021-02-01"),
			"award_suppliers_0_name":    table.NewString("ACME"),
			"buyer_name":                table.NewString("Ministry"),
		},
	)

	a := NewAnalyzer(Columns{}, DateRange{Start: day("2021-01-01"), End: day("2021-12-31")}, "MXN")
	prepared := a.Prepare(input)
	require.Equal(t, 2, prepared.Len())

	items, err := a.Overview(prepared)
	require.NoError(t, err)
	assert.Equal(t, "2", items[0].Value)

	result, err := a.Compute(StatContractsTime, prepared)
	require.NoError(t, err)
	assert.Len(t, result.Data.([]TimePoint), 2)
}

func TestColumns_DateColumns(t *testing.T) {
	cols := DefaultColumns()
	assert.Equal(t, []string{
		"tender_publicationDate", "tender_tenderPeriod_startDate", "award_date", "contract_period_startDate",
	}, cols.DateColumns())

	cols.AwardDate = cols.PrimaryDate
	assert.Len(t, cols.DateColumns(), 3)

	assert.Equal(t, DefaultColumns(), Columns{Amount: "contract_value_amount"}.WithDefaults())
}

func TestDayWindow(t *testing.T) {
	w := DayWindow(time.Time{}, day("2021-12-31"))
	assert.True(t, w.Start.IsZero())
	assert.True(t, w.Contains(time.Date(2021, 12, 31, 23, 59, 59, 0, time.UTC)))
	assert.False(t, w.Contains(time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC)))

	assert.True(t, DayWindow(time.Time{}, time.Time{}).End.IsZero())
}
