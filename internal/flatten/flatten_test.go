package flatten

import (
	"encoding/json"
	"testing"

	"github.com/ZanzyTHEbar/procurement-lens/internal/table"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlatten(t *testing.T) {
	tests := []struct {
		name     string
		input    any
		expected table.Row
	}{
		{
			name:     "flat object",
			input:    map[string]any{"id": "c1", "status": "active"},
			expected: table.Row{"id": table.NewString("c1"), "status": table.NewString("active")},
		},
		{
			name: "nested object",
			input: map[string]any{
				"contract": map[string]any{
					"value":  map[string]any{"amount": json.Number("100"), "currency": "MXN"},
					"period": map[string]any{"startDate": "2021-01-15"},
				},
			},
			expected: table.Row{
				"contract_value_amount":     table.NewInt(100),
				"contract_value_currency":   table.NewString("MXN"),
				"contract_period_startDate": table.NewString("2021-01-15"),
			},
		},
		{
			name: "list indices become path segments",
			input: map[string]any{
				"award": map[string]any{
					"suppliers": []any{
						map[string]any{"name": "ACME"},
						map[string]any{"name": "Globex"},
					},
				},
			},
			expected: table.Row{
				"award_suppliers_0_name": table.NewString("ACME"),
				"award_suppliers_1_name": table.NewString("Globex"),
			},
		},
		{
			name:     "null leaf is kept",
			input:    map[string]any{"buyer": map[string]any{"name": nil}},
			expected: table.Row{"buyer_name": table.Null},
		},
		{
			name:     "empty containers produce nothing",
			input:    map[string]any{"items": []any{}, "meta": map[string]any{}},
			expected: table.Row{},
		},
		{
			name:     "scalar root",
			input:    "lonely",
			expected: table.Row{"": table.NewString("lonely")},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Flatten(tt.input, Separator)
			require.Len(t, result, len(tt.expected))
			for k, v := range tt.expected {
				got, ok := result[k]
				require.True(t, ok, "missing key %q", k)
				assert.True(t, v.Equal(got), "key %q: expected %v, got %v", k, v, got)
			}
		})
	}
}

func TestFlatten_Deterministic(t *testing.T) {
	input := map[string]any{
		"tender": map[string]any{"id": "t1", "items": []any{map[string]any{"qty": json.Number("3")}}},
		"buyer":  map[string]any{"name": "Ministry"},
	}

	first := Flatten(input, Separator)
	second := Flatten(input, Separator)
	assert.Equal(t, first, second)
}

func TestFlatten_CollisionIsStable(t *testing.T) {
	// "a_b" at the root and b under a both map to a_b; the sorted walk
	// visits "a" before "a_b", so the root key always wins
	input := map[string]any{
		"a":   map[string]any{"b": "nested"},
		"a_b": "root",
	}

	for i := 0; i < 20; i++ {
		out := Flatten(input, Separator)
		assert.Equal(t, "root", out["a_b"].String())
	}
}
