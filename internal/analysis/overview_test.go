package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ZanzyTHEbar/procurement-lens/internal/errors"
	"github.com/ZanzyTHEbar/procurement-lens/internal/table"
)

func TestOverview(t *testing.T) {
	lib := NewLibrary(DefaultColumns(), "MXN")

	items, err := lib.Overview(threeContracts())
	require.NoError(t, err)

	assert.Equal(t, []OverviewItem{
		{Label: "Total contracts", Value: "3"},
		{Label: "Total amount contracted", Value: "$ 0 mm (MXN)"},
		{Label: "Contract start dates between", Value: "15-01-2021 and 01-02-2021"},
		{Label: "Most active supplier", Value: "ACME"},
		{Label: "Most active buyer", Value: "Ministry of Works"},
	}, items)
}

func TestOverview_ThousandsSeparators(t *testing.T) {
	lib := NewLibrary(DefaultColumns(), "USD")

	var rows []table.Row
	for i := 0; i < 1200; i++ {
		rows = append(rows, contract(
			"c"+string(rune('A'+i%26))+string(rune('a'+i/26%26))+string(rune('0'+i/676)),
			1_500_000, "2021-01-15", "ACME", "Ministry", "M"))
	}

	items, err := lib.Overview(build(rows...))
	require.NoError(t, err)

	assert.Equal(t, "1,200", items[0].Value)
	assert.Equal(t, "$ 1,800 mm (USD)", items[1].Value)
}

func TestOverview_TieGoesToFirstSeen(t *testing.T) {
	lib := NewLibrary(DefaultColumns(), "MXN")
	tbl := build(
		contract("c1", 1, "2021-01-01", "Globex", "Agency", "A"),
		contract("c2", 1, "2021-01-02", "ACME", "Ministry", "M"),
		contract("c3", 1, "2021-01-03", "ACME", "Agency", "A"),
		contract("c4", 1, "2021-01-04", "Globex", "Ministry", "M"),
	)

	for i := 0; i < 10; i++ {
		items, err := lib.Overview(tbl)
		require.NoError(t, err)
		assert.Equal(t, "Globex", items[3].Value)
		assert.Equal(t, "Agency", items[4].Value)
	}
}

func TestOverview_Fatal(t *testing.T) {
	lib := NewLibrary(DefaultColumns(), "MXN")

	tests := []struct {
		name  string
		input *table.Table
	}{
		{"empty table", table.Empty()},
		{"no primary dates", build(table.Row{"contract_id": table.NewString("c1")})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := lib.Overview(tt.input)
			require.Error(t, err)
			assert.True(t, errors.IsCategory(err, errors.CategoryValidation))
		})
	}
}
