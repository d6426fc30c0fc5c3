package analysis

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/ZanzyTHEbar/procurement-lens/internal/table"
)

const topContractsLimit = 5

// Cell is one column of a ranking row
type Cell struct {
	Value   any    `json:"value"`
	Tooltip string `json:"tooltip,omitempty"`
	Format  string `json:"format,omitempty"`
}

// RelationshipPoint is one buying unit in the relationships scatter
type RelationshipPoint struct {
	Name      string `json:"name"`
	Suppliers int    `json:"suppliers"`
	Contracts int    `json:"contracts"`
	Amount    Money  `json:"amount"`
}

// ConcentrationPoint is one supplier in the concentration scatter
type ConcentrationPoint struct {
	Name      string `json:"name"`
	Contracts int    `json:"contracts"`
	Amount    Money  `json:"amount"`
}

func (l *Library) topContracts(t *table.Table) ChartData {
	type ranked struct {
		row    int
		amount decimal.Decimal
	}

	var rows []ranked
	for i := 0; i < t.Len(); i++ {
		if d, ok := t.Value(i, l.cols.Amount).AsDecimal(); ok {
			rows = append(rows, ranked{row: i, amount: d})
		}
	}
	sort.SliceStable(rows, func(a, b int) bool {
		return rows[a].amount.GreaterThan(rows[b].amount)
	})
	if len(rows) > topContractsLimit {
		rows = rows[:topContractsLimit]
	}

	out := make([][]Cell, 0, len(rows))
	for _, r := range rows {
		out = append(out, []Cell{
			{
				Value:   t.Value(r.row, l.cols.BuyerAbbreviation),
				Tooltip: t.Value(r.row, l.cols.BuyerName).String(),
			},
			{Value: t.Value(r.row, l.cols.Supplier)},
			{Value: Money{r.amount}, Format: "amount|million"},
		})
	}
	return ChartData{Data: out}
}

func (l *Library) relationships(t *table.Table) ChartData {
	groups := groupBy(t, l.cols.BuyerAbbreviation)
	if len(groups) == 0 {
		return ChartData{}
	}

	points := make([]RelationshipPoint, len(groups))
	xs := make([]float64, len(groups))
	ys := make([]float64, len(groups))
	rs := make([]float64, len(groups))
	for i, g := range groups {
		sum, _ := sumColumn(t, g.rows, l.cols.Amount)
		points[i] = RelationshipPoint{
			Name:      t.Value(g.rows[0], l.cols.BuyerName).String(),
			Suppliers: distinct(t, g.rows, l.cols.Supplier),
			Contracts: distinct(t, g.rows, l.cols.ContractID),
			Amount:    Money{sum},
		}
		xs[i] = sum.InexactFloat64()
		ys[i] = float64(points[i].Suppliers)
		rs[i] = float64(points[i].Contracts)
	}

	return ChartData{
		Data: points,
		Domain: Domain{
			AxisX: NewRange(minMax(xs)),
			AxisY: NewRange(minMax(ys)),
			AxisR: NewRange(minMax(rs)),
		},
	}
}

func (l *Library) concentrationWinning(t *table.Table) ChartData {
	groups := groupBy(t, l.cols.Supplier)
	if len(groups) == 0 {
		return ChartData{}
	}

	points := make([]ConcentrationPoint, len(groups))
	xs := make([]float64, len(groups))
	ys := make([]float64, len(groups))
	for i, g := range groups {
		sum, _ := sumColumn(t, g.rows, l.cols.Amount)
		points[i] = ConcentrationPoint{
			Name:      g.key.String(),
			Contracts: distinct(t, g.rows, l.cols.ContractID),
			Amount:    Money{sum},
		}
		xs[i] = sum.InexactFloat64()
		ys[i] = float64(points[i].Contracts)
	}

	return ChartData{
		Data: points,
		Domain: Domain{
			AxisX: NewRange(minMax(xs)),
			AxisY: NewRange(minMax(ys)),
		},
	}
}
