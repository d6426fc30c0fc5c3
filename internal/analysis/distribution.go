package analysis

import (
	"github.com/shopspring/decimal"

	"github.com/ZanzyTHEbar/procurement-lens/internal/table"
)

const histogramBins = 10

var (
	fenceFactor = decimal.NewFromFloat(1.5)
	binCount    = decimal.NewFromInt(histogramBins)
)

// BoxPlot is the five-number summary plus the whiskers, in whole units
type BoxPlot struct {
	Min      int64 `json:"min"`
	Max      int64 `json:"max"`
	Whisker1 int64 `json:"whisker1"`
	Q1       int64 `json:"q1"`
	Median   int64 `json:"median"`
	Q3       int64 `json:"q3"`
	Whisker2 int64 `json:"whisker2"`
}

// BoxPlotOf summarises values. Whiskers are the extremes of the values
// strictly inside the Tukey fence; a value exactly on the fence is outside.
func BoxPlotOf(values []decimal.Decimal) (BoxPlot, bool) {
	if len(values) == 0 {
		return BoxPlot{}, false
	}
	sorted := sortDecimals(values)

	q1 := quantileLower(sorted, 0.25).IntPart()
	q3 := quantileLower(sorted, 0.75).IntPart()
	iqr := decimal.NewFromInt(q3 - q1).Mul(fenceFactor)
	lower := decimal.NewFromInt(q1).Sub(iqr)
	upper := decimal.NewFromInt(q3).Add(iqr)

	bp := BoxPlot{
		Min:      sorted[0].IntPart(),
		Max:      sorted[len(sorted)-1].IntPart(),
		Q1:       q1,
		Median:   median(sorted).IntPart(),
		Q3:       q3,
		Whisker1: q1,
		Whisker2: q3,
	}

	inside := false
	for _, v := range sorted {
		if !v.GreaterThan(lower) || !v.LessThan(upper) {
			continue
		}
		if !inside {
			bp.Whisker1 = v.IntPart()
			inside = true
		}
		bp.Whisker2 = v.IntPart()
	}
	return bp, true
}

func (l *Library) priceVariation(t *table.Table) ChartData {
	bp, ok := BoxPlotOf(amounts(t, l.cols.Amount))
	if !ok {
		return ChartData{}
	}
	return ChartData{
		Data: bp,
		Domain: Domain{
			AxisX: NewRange(float64(bp.Whisker1), float64(bp.Whisker2)),
		},
	}
}

// Histogram counts values up to the 95th percentile in ten equal-width
// bins over [0, max]. Bins are right-closed, (lo, hi], so a value on an
// edge belongs to the lower bin. Zero and negative values fall in no bin.
type Histogram struct {
	Counts []int
	Bins   [][2]float64
}

// HistogramOf bins values. ok is false when nothing survives the cut.
func HistogramOf(values []decimal.Decimal) (Histogram, bool) {
	if len(values) == 0 {
		return Histogram{}, false
	}
	sorted := sortDecimals(values)
	cut := quantileLinear(sorted, 0.95)

	var kept []decimal.Decimal
	for _, v := range sorted {
		if !v.IsPositive() || v.GreaterThan(cut) {
			continue
		}
		kept = append(kept, v)
	}
	if len(kept) == 0 {
		return Histogram{}, false
	}

	top := kept[len(kept)-1]
	width := top.Div(binCount)

	h := Histogram{
		Counts: make([]int, histogramBins),
		Bins:   make([][2]float64, histogramBins),
	}
	for i := 0; i < histogramBins; i++ {
		lo := width.Mul(decimal.NewFromInt(int64(i)))
		hi := width.Mul(decimal.NewFromInt(int64(i + 1)))
		if i == histogramBins-1 {
			hi = top
		}
		h.Bins[i] = [2]float64{lo.InexactFloat64(), hi.InexactFloat64()}
	}

	for _, v := range kept {
		idx := int(v.Div(width).Ceil().IntPart()) - 1
		idx = max(0, min(idx, histogramBins-1))
		h.Counts[idx]++
	}
	return h, true
}

func (l *Library) priceDistribution(t *table.Table) ChartData {
	h, ok := HistogramOf(amounts(t, l.cols.Amount))
	if !ok {
		return ChartData{}
	}

	peak := 0
	for _, c := range h.Counts {
		if c > peak {
			peak = c
		}
	}

	return ChartData{
		Data: h.Counts,
		Domain: Domain{
			AxisX: {Pairs: h.Bins},
			AxisY: NewRange(0, float64(peak)),
		},
	}
}
