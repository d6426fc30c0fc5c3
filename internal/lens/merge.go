package lens

import (
	"fmt"
	"sort"

	"github.com/ZanzyTHEbar/procurement-lens/internal/analysis"
)

// MergeFunc is the closed set of strategies for combining one axis domain
// across the slices of a chart. Every strategy is commutative and
// associative, so the merged domain does not depend on slice order.
type MergeFunc int

const (
	// MergeNone leaves the axis out of the chart's domain
	MergeNone MergeFunc = iota
	// MergeMinMax widens ranges to the smallest min and largest max. Pair
	// lists widen elementwise.
	MergeMinMax
	// MergeUnion takes the sorted union of label lists. Numeric domains
	// widen as with MergeMinMax.
	MergeUnion
)

var mergeNames = map[MergeFunc]string{
	MergeNone:   "none",
	MergeMinMax: "minmax",
	MergeUnion:  "union",
}

func (m MergeFunc) String() string {
	if name, ok := mergeNames[m]; ok {
		return name
	}
	return fmt.Sprintf("MergeFunc(%d)", int(m))
}

func (m MergeFunc) MarshalText() ([]byte, error) {
	if _, ok := mergeNames[m]; !ok {
		return nil, fmt.Errorf("unknown merge function %d", int(m))
	}
	return []byte(m.String()), nil
}

func (m *MergeFunc) UnmarshalText(text []byte) error {
	for k, name := range mergeNames {
		if name == string(text) {
			*m = k
			return nil
		}
	}
	return fmt.Errorf("unknown merge function %q", string(text))
}

// Merge combines two domains of the same axis. A zero side contributes
// nothing. Domains of different shapes keep the left side.
func (m MergeFunc) Merge(a, b analysis.AxisDomain) analysis.AxisDomain {
	switch {
	case m == MergeNone:
		return analysis.AxisDomain{}
	case b.IsZero():
		return a
	case a.IsZero():
		return b
	}

	switch {
	case a.Range != nil && b.Range != nil:
		return analysis.AxisDomain{Range: mergeRange(a.Range, b.Range)}
	case a.Pairs != nil && b.Pairs != nil:
		return analysis.AxisDomain{Pairs: mergePairs(a.Pairs, b.Pairs)}
	case a.Labels != nil && b.Labels != nil:
		return analysis.AxisDomain{Labels: unionLabels(a.Labels, b.Labels)}
	}
	return a
}

// mergeRange keeps the lowest first bound and the highest last bound
func mergeRange(a, b []float64) []float64 {
	if len(a) == 0 {
		return append([]float64(nil), b...)
	}
	if len(b) == 0 {
		return append([]float64(nil), a...)
	}
	return []float64{
		min(a[0], b[0]),
		max(a[len(a)-1], b[len(b)-1]),
	}
}

func mergePairs(a, b [][2]float64) [][2]float64 {
	n := max(len(a), len(b))
	out := make([][2]float64, n)
	for i := 0; i < n; i++ {
		switch {
		case i >= len(a):
			out[i] = b[i]
		case i >= len(b):
			out[i] = a[i]
		default:
			out[i] = [2]float64{min(a[i][0], b[i][0]), max(a[i][1], b[i][1])}
		}
	}
	return out
}

func unionLabels(a, b []string) []string {
	seen := make(map[string]struct{}, len(a)+len(b))
	out := make([]string, 0, len(a)+len(b))
	for _, list := range [][]string{a, b} {
		for _, s := range list {
			if _, ok := seen[s]; ok {
				continue
			}
			seen[s] = struct{}{}
			out = append(out, s)
		}
	}
	sort.Strings(out)
	return out
}
