package table

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildTable(rows ...Row) *Table {
	b := NewBuilder()
	b.AppendAll(rows)
	return b.Build()
}

func TestBuilder_SchemaUnion(t *testing.T) {
	tbl := buildTable(
		Row{"contract_id": NewString("c1"), "contract_value_amount": NewInt(100)},
		Row{"contract_id": NewString("c2"), "award_date": NewString("2021-01-01")},
	)

	require.Equal(t, 2, tbl.Len())
	assert.Equal(t, []string{"contract_id", "contract_value_amount", "award_date"}, tbl.Columns())

	// every column of every row is readable, missing ones as null
	for i := 0; i < tbl.Len(); i++ {
		for _, c := range tbl.Columns() {
			assert.NotPanics(t, func() { _ = tbl.Value(i, c) })
		}
	}
	assert.True(t, tbl.Value(0, "award_date").IsNull())
	assert.True(t, tbl.Value(1, "contract_value_amount").IsNull())
	assert.True(t, tbl.Value(5, "contract_id").IsNull())
	assert.True(t, tbl.Value(0, "no_such_column").IsNull())
}

func TestBuilder_CopiesRows(t *testing.T) {
	row := Row{"a": NewInt(1)}
	tbl := buildTable(row)
	row["a"] = NewInt(2)

	d, ok := tbl.Value(0, "a").AsDecimal()
	require.True(t, ok)
	assert.True(t, d.Equal(decimal.NewFromInt(1)))
}

func TestTable_Slice(t *testing.T) {
	tbl := buildTable(
		Row{"method": NewString("open"), "id": NewInt(1)},
		Row{"method": NewString("direct"), "id": NewInt(2)},
		Row{"method": NewString("open"), "id": NewInt(3)},
		Row{"id": NewInt(4)},
	)

	tests := []struct {
		name     string
		column   string
		value    Value
		expected int
	}{
		{"matching value", "method", NewString("open"), 2},
		{"single match", "method", NewString("direct"), 1},
		{"no matching value", "method", NewString("limited"), 0},
		{"unknown column", "procurement", NewString("open"), 0},
		{"number does not match string", "id", NewString("1"), 0},
		{"number match", "id", NewInt(3), 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sliced := tbl.Slice(tt.column, tt.value)
			require.NotNil(t, sliced)
			assert.Equal(t, tt.expected, sliced.Len())
			assert.Equal(t, tt.expected == 0, sliced.IsEmpty())
		})
	}

	// slicing never touches the parent
	assert.Equal(t, 4, tbl.Len())
}

func TestTable_MapLeavesReceiverUntouched(t *testing.T) {
	tbl := buildTable(Row{"d": NewString("2021-01-01")})
	mapped := tbl.Map(func(r Row) Row {
		r["d"] = NewTime(time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC))
		return r
	})

	_, isString := tbl.Value(0, "d").AsString()
	assert.True(t, isString)
	_, isTime := mapped.Value(0, "d").AsTime()
	assert.True(t, isTime)
	assert.Equal(t, tbl.Columns(), mapped.Columns())
}

func TestValue_Equal(t *testing.T) {
	assert.True(t, NewFloat(1.5).Equal(FromScalar(json.Number("1.50"))))
	assert.True(t, Null.Equal(Value{}))
	assert.False(t, NewString("1").Equal(NewInt(1)))
	assert.NotEqual(t, NewString("1").Key(), NewInt(1).Key())
}

func TestValue_MarshalJSON(t *testing.T) {
	tests := []struct {
		name     string
		value    Value
		expected string
	}{
		{"null", Null, `null`},
		{"string", NewString("ACME"), `"ACME"`},
		{"number", FromScalar(json.Number("1200.50")), `1200.5`},
		{"bool", NewBool(true), `true`},
		{"time", NewTime(time.Date(2021, 2, 1, 0, 0, 0, 0, time.UTC)), `"2021-02-01T00:00:00Z"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := json.Marshal(tt.value)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, string(out))
		})
	}
}
