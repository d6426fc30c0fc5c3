package analysis

import (
	"sort"

	"github.com/shopspring/decimal"
)

var two = decimal.NewFromInt(2)

func sortDecimals(xs []decimal.Decimal) []decimal.Decimal {
	cp := append([]decimal.Decimal(nil), xs...)
	sort.Slice(cp, func(i, j int) bool { return cp[i].LessThan(cp[j]) })
	return cp
}

// median expects sorted input
func median(sorted []decimal.Decimal) decimal.Decimal {
	n := len(sorted)
	if n == 0 {
		return decimal.Zero
	}
	mid := n / 2
	if n%2 == 1 {
		return sorted[mid]
	}
	return sorted[mid-1].Add(sorted[mid]).Div(two)
}

// quantileLower picks the order statistic at floor(q*(n-1)). Used for the
// box plot quartiles.
func quantileLower(sorted []decimal.Decimal, q float64) decimal.Decimal {
	n := len(sorted)
	if n == 0 {
		return decimal.Zero
	}
	pos := decimal.NewFromFloat(q).Mul(decimal.NewFromInt(int64(n - 1)))
	return sorted[pos.Floor().IntPart()]
}

// quantileLinear interpolates between the two order statistics around
// q*(n-1)
func quantileLinear(sorted []decimal.Decimal, q float64) decimal.Decimal {
	n := len(sorted)
	if n == 0 {
		return decimal.Zero
	}
	pos := decimal.NewFromFloat(q).Mul(decimal.NewFromInt(int64(n - 1)))
	idx := pos.Floor()
	i := idx.IntPart()
	if i >= int64(n-1) {
		return sorted[n-1]
	}
	frac := pos.Sub(idx)
	return sorted[i].Add(sorted[i+1].Sub(sorted[i]).Mul(frac))
}
