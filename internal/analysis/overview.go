package analysis

import (
	"github.com/ZanzyTHEbar/procurement-lens/internal/errors"
	"github.com/ZanzyTHEbar/procurement-lens/internal/table"
)

const overviewDateLayout = "02-01-2006"

// OverviewItem is one labelled headline figure
type OverviewItem struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Overview summarises the whole filtered table. An empty table, or one
// without any primary date, cannot be summarised and fails the run.
func (l *Library) Overview(t *table.Table) ([]OverviewItem, error) {
	if t.IsEmpty() {
		return nil, errors.NewValidationError("no contracts left after filtering", map[string]string{
			"stage": "overview",
		})
	}

	first, last, ok := l.dateSpan(t)
	if !ok {
		return nil, errors.NewValidationError("no contract has a start date", map[string]string{
			"column": l.cols.PrimaryDate,
		})
	}

	all := make([]int, t.Len())
	for i := range all {
		all[i] = i
	}

	millions := l.TotalAmount(t).Truncate(0).IntPart() / 1_000_000

	return []OverviewItem{
		{
			Label: "Total contracts",
			Value: l.printer.Sprintf("%d", distinct(t, all, l.cols.ContractID)),
		},
		{
			Label: "Total amount contracted",
			Value: "$ " + l.printer.Sprintf("%d", millions) + " mm (" + l.currency + ")",
		},
		{
			Label: "Contract start dates between",
			Value: first.Format(overviewDateLayout) + " and " + last.Format(overviewDateLayout),
		},
		{
			Label: "Most active supplier",
			Value: mostFrequent(t, l.cols.Supplier),
		},
		{
			Label: "Most active buyer",
			Value: mostFrequent(t, l.cols.BuyerName),
		},
	}, nil
}

// mostFrequent returns the most common non-null value of column. Ties go
// to the value seen first.
func mostFrequent(t *table.Table, column string) string {
	counts := make(map[string]int)
	var order []table.Value
	for i := 0; i < t.Len(); i++ {
		v := t.Value(i, column)
		if v.IsNull() {
			continue
		}
		k := v.Key()
		if _, ok := counts[k]; !ok {
			order = append(order, v)
		}
		counts[k]++
	}

	best, bestCount := "", 0
	for _, v := range order {
		if c := counts[v.Key()]; c > bestCount {
			best, bestCount = v.String(), c
		}
	}
	return best
}
