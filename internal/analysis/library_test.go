package analysis

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ZanzyTHEbar/procurement-lens/internal/errors"
	"github.com/ZanzyTHEbar/procurement-lens/internal/table"
)

func day(s string) time.Time {
	ts, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return ts
}

// contract builds a prepared row with the default column names
func contract(id string, amount int64, start, supplier, buyer, abbr string) table.Row {
	return table.Row{
		"contract_id":               table.NewString(id),
		"contract_value_amount":     table.NewInt(amount),
		"contract_period_startDate": table.NewTime(day(start)),
		"award_suppliers_0_name":    table.NewString(supplier),
		"buyer_name":                table.NewString(buyer),
		"buyer_abbreviation":        table.NewString(abbr),
	}
}

func build(rows ...table.Row) *table.Table {
	b := table.NewBuilder()
	b.AppendAll(rows)
	return b.Build()
}

// threeContracts is the Jan:100, Jan:200, Feb:300 fixture
func threeContracts() *table.Table {
	return build(
		contract("c1", 100, "2021-01-15", "ACME", "Ministry of Works", "MW"),
		contract("c2", 200, "2021-01-20", "Globex", "Ministry of Health", "MH"),
		contract("c3", 300, "2021-02-01", "ACME", "Ministry of Works", "MW"),
	)
}

func TestCompute_EmptyTable(t *testing.T) {
	lib := NewLibrary(DefaultColumns(), "MXN")
	for _, stat := range Statistics() {
		t.Run(string(stat), func(t *testing.T) {
			result, err := lib.Compute(stat, table.Empty())
			require.NoError(t, err)
			assert.Nil(t, result.Data)
			assert.Empty(t, result.Domain)
		})
	}
}

func TestCompute_UnknownStatistic(t *testing.T) {
	lib := NewLibrary(DefaultColumns(), "MXN")
	_, err := lib.Compute(Statistic("pie"), threeContracts())
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryValidation))
}

func TestStatistic_UnmarshalText(t *testing.T) {
	var s Statistic
	require.NoError(t, s.UnmarshalText([]byte("relationships")))
	assert.Equal(t, StatRelationships, s)

	assert.Error(t, s.UnmarshalText([]byte("pie")))
}

func TestConservation(t *testing.T) {
	tbl := build(
		contract("c1", 100, "2021-01-15", "ACME", "Ministry", "M"),
		contract("c2", 250, "2021-03-02", "ACME", "Ministry", "M"),
		contract("c3", 1_000_000_001, "2021-07-31", "Globex", "Agency", "A"),
		table.Row{
			"contract_id":               table.NewString("c4"),
			"contract_period_startDate": table.NewTime(day("2021-05-05")),
		},
	)
	lib := NewLibrary(DefaultColumns(), "MXN")

	result, err := lib.Compute(StatAmountTime, tbl)
	require.NoError(t, err)

	sum := decimal.Zero
	for _, p := range result.Data.([]TimePoint) {
		if m, ok := p.Value.(Money); ok {
			sum = sum.Add(m.Decimal)
		}
	}
	assert.True(t, lib.TotalAmount(tbl).Equal(sum), "expected %s, got %s", lib.TotalAmount(tbl), sum)
}

func TestMoney_MarshalJSON(t *testing.T) {
	out, err := json.Marshal(map[string]Money{"amount": {decimal.RequireFromString("1234.50")}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"amount": 1234.5}`, string(out))
}

func TestAxisDomain_MarshalJSON(t *testing.T) {
	tests := []struct {
		name     string
		domain   AxisDomain
		expected string
	}{
		{"range", NewRange(0, 10), `[0,10]`},
		{"pairs", AxisDomain{Pairs: [][2]float64{{0, 5}, {5, 10}}}, `[[0,5],[5,10]]`},
		{"labels", AxisDomain{Labels: []string{"2021-01-01"}}, `["2021-01-01"]`},
		{"empty", AxisDomain{}, `null`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := json.Marshal(tt.domain)
			require.NoError(t, err)
			assert.JSONEq(t, tt.expected, string(out))
		})
	}
}
