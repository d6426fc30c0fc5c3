package analysis

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// Axis names a chart axis
type Axis string

const (
	AxisX Axis = "x"
	AxisY Axis = "y"
	AxisR Axis = "r"
)

// AxisDomain is the extent of one axis. Exactly one representation is set:
// a numeric [min, max] range, a list of [lo, hi] pairs (histogram bins), or
// an ordered list of labels (calendar months).
type AxisDomain struct {
	Range  []float64
	Pairs  [][2]float64
	Labels []string
}

// NewRange builds a [lo, hi] domain
func NewRange(lo, hi float64) AxisDomain {
	return AxisDomain{Range: []float64{lo, hi}}
}

// IsZero reports whether no representation is set
func (d AxisDomain) IsZero() bool {
	return d.Range == nil && d.Pairs == nil && d.Labels == nil
}

func (d AxisDomain) MarshalJSON() ([]byte, error) {
	switch {
	case d.Range != nil:
		return json.Marshal(d.Range)
	case d.Pairs != nil:
		return json.Marshal(d.Pairs)
	case d.Labels != nil:
		return json.Marshal(d.Labels)
	default:
		return []byte("null"), nil
	}
}

// Domain maps axes to their extent for one slice or one merged chart
type Domain map[Axis]AxisDomain

// ChartData is the result of one statistic over one table
type ChartData struct {
	Data   any
	Domain Domain
}

// Money is an exact amount written to JSON as a bare number
type Money struct {
	decimal.Decimal
}

func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.Decimal.String()), nil
}

func minMax(xs []float64) (float64, float64) {
	lo, hi := xs[0], xs[0]
	for _, x := range xs[1:] {
		if x < lo {
			lo = x
		}
		if x > hi {
			hi = x
		}
	}
	return lo, hi
}
