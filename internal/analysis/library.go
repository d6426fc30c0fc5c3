package analysis

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/ZanzyTHEbar/procurement-lens/internal/errors"
	"github.com/ZanzyTHEbar/procurement-lens/internal/table"
)

// Statistic names a chart function in the library
type Statistic string

const (
	StatContractsTime        Statistic = "contracts_time"
	StatAmountTime           Statistic = "amount_time"
	StatAverageTimeline      Statistic = "average_timeline"
	StatPriceVariation       Statistic = "price_variation"
	StatPriceDistribution    Statistic = "price_distribution"
	StatTopContracts         Statistic = "top_contracts"
	StatRelationships        Statistic = "relationships"
	StatConcentrationWinning Statistic = "concentration_winning"
)

// Statistics lists every chart statistic in a stable order
func Statistics() []Statistic {
	return []Statistic{
		StatContractsTime, StatAmountTime, StatAverageTimeline,
		StatPriceVariation, StatPriceDistribution, StatTopContracts,
		StatRelationships, StatConcentrationWinning,
	}
}

// Valid reports whether s is a known statistic
func (s Statistic) Valid() bool {
	for _, known := range Statistics() {
		if s == known {
			return true
		}
	}
	return false
}

// UnmarshalText rejects unknown statistic names while decoding config
func (s *Statistic) UnmarshalText(text []byte) error {
	v := Statistic(text)
	if v != "" && !v.Valid() {
		return fmt.Errorf("unknown statistic %q", string(text))
	}
	*s = v
	return nil
}

// Library computes chart statistics over a table. It never mutates its
// input, so one library can serve every slice of a run.
type Library struct {
	cols     Columns
	currency string
	printer  *message.Printer
}

// NewLibrary creates a statistic library for the given column bindings.
// currency labels the overview total.
func NewLibrary(cols Columns, currency string) *Library {
	return &Library{
		cols:     cols.WithDefaults(),
		currency: currency,
		printer:  message.NewPrinter(language.English),
	}
}

// Columns returns the bindings the library reads
func (l *Library) Columns() Columns { return l.cols }

// Compute runs one statistic. An empty table yields an empty ChartData.
func (l *Library) Compute(stat Statistic, t *table.Table) (ChartData, error) {
	if t.IsEmpty() {
		return ChartData{}, nil
	}

	switch stat {
	case StatContractsTime:
		return l.contractsTime(t), nil
	case StatAmountTime:
		return l.amountTime(t), nil
	case StatAverageTimeline:
		return l.averageTimeline(t), nil
	case StatPriceVariation:
		return l.priceVariation(t), nil
	case StatPriceDistribution:
		return l.priceDistribution(t), nil
	case StatTopContracts:
		return l.topContracts(t), nil
	case StatRelationships:
		return l.relationships(t), nil
	case StatConcentrationWinning:
		return l.concentrationWinning(t), nil
	}

	return ChartData{}, errors.NewValidationError("unknown statistic", map[string]string{
		"statistic": string(stat),
	})
}

// TotalAmount sums every numeric amount cell exactly
func (l *Library) TotalAmount(t *table.Table) decimal.Decimal {
	rows := make([]int, t.Len())
	for i := range rows {
		rows[i] = i
	}
	total, _ := sumColumn(t, rows, l.cols.Amount)
	return total
}

// group is the row indices sharing one grouping key
type group struct {
	key  table.Value
	rows []int
}

// groupBy partitions rows on column, skipping null keys. Groups are sorted
// ascending by key.
func groupBy(t *table.Table, column string) []group {
	index := make(map[string]int)
	var groups []group
	for i := 0; i < t.Len(); i++ {
		v := t.Value(i, column)
		if v.IsNull() {
			continue
		}
		k := v.Key()
		gi, ok := index[k]
		if !ok {
			gi = len(groups)
			index[k] = gi
			groups = append(groups, group{key: v})
		}
		groups[gi].rows = append(groups[gi].rows, i)
	}
	sort.SliceStable(groups, func(a, b int) bool {
		return groups[a].key.String() < groups[b].key.String()
	})
	return groups
}

// distinct counts distinct non-null values of column over rows
func distinct(t *table.Table, rows []int, column string) int {
	seen := make(map[string]struct{}, len(rows))
	for _, i := range rows {
		v := t.Value(i, column)
		if v.IsNull() {
			continue
		}
		seen[v.Key()] = struct{}{}
	}
	return len(seen)
}

// sumColumn adds the numeric cells of column over rows. The bool reports
// whether any cell was numeric.
func sumColumn(t *table.Table, rows []int, column string) (decimal.Decimal, bool) {
	total := decimal.Zero
	found := false
	for _, i := range rows {
		if d, ok := t.Value(i, column).AsDecimal(); ok {
			total = total.Add(d)
			found = true
		}
	}
	return total, found
}

// amounts collects the numeric cells of column across the whole table
func amounts(t *table.Table, column string) []decimal.Decimal {
	var out []decimal.Decimal
	for i := 0; i < t.Len(); i++ {
		if d, ok := t.Value(i, column).AsDecimal(); ok {
			out = append(out, d)
		}
	}
	return out
}
