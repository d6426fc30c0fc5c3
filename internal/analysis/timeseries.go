package analysis

import (
	"time"

	"github.com/ZanzyTHEbar/procurement-lens/internal/table"
)

const monthLayout = "2006-01-02"

// TimePoint is one calendar month of a series. Value is nil for a month
// without data.
type TimePoint struct {
	Date  string `json:"date"`
	Value any    `json:"value"`
}

func (l *Library) dateSpan(t *table.Table) (time.Time, time.Time, bool) {
	var first, last time.Time
	found := false
	for i := 0; i < t.Len(); i++ {
		ts, ok := t.Value(i, l.cols.PrimaryDate).AsTime()
		if !ok {
			continue
		}
		if !found || ts.Before(first) {
			first = ts
		}
		if !found || ts.After(last) {
			last = ts
		}
		found = true
	}
	return first, last, found
}

func monthStart(ts time.Time) time.Time {
	ts = ts.UTC()
	return time.Date(ts.Year(), ts.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// monthBuckets assigns every dated row to its calendar month. Months run
// contiguously from the earliest to the latest month present.
func (l *Library) monthBuckets(t *table.Table) ([]time.Time, [][]int) {
	first, last, ok := l.dateSpan(t)
	if !ok {
		return nil, nil
	}

	var months []time.Time
	for m := monthStart(first); !m.After(monthStart(last)); m = m.AddDate(0, 1, 0) {
		months = append(months, m)
	}

	base := monthStart(first)
	buckets := make([][]int, len(months))
	for i := 0; i < t.Len(); i++ {
		ts, ok := t.Value(i, l.cols.PrimaryDate).AsTime()
		if !ok {
			continue
		}
		m := monthStart(ts)
		idx := (m.Year()-base.Year())*12 + int(m.Month()-base.Month())
		buckets[idx] = append(buckets[idx], i)
	}
	return months, buckets
}

func monthLabels(months []time.Time) []string {
	labels := make([]string, len(months))
	for i, m := range months {
		labels[i] = m.Format(monthLayout)
	}
	return labels
}

func (l *Library) contractsTime(t *table.Table) ChartData {
	months, buckets := l.monthBuckets(t)
	if len(months) == 0 {
		return ChartData{}
	}

	points := make([]TimePoint, len(months))
	peak := 0
	for i, m := range months {
		points[i].Date = m.Format(monthLayout)
		n := distinct(t, buckets[i], l.cols.ContractID)
		if n == 0 {
			continue
		}
		points[i].Value = n
		if n > peak {
			peak = n
		}
	}

	return ChartData{
		Data: points,
		Domain: Domain{
			AxisX: {Labels: monthLabels(months)},
			AxisY: NewRange(0, float64(peak)),
		},
	}
}

func (l *Library) amountTime(t *table.Table) ChartData {
	months, buckets := l.monthBuckets(t)
	if len(months) == 0 {
		return ChartData{}
	}

	points := make([]TimePoint, len(months))
	peak := 0.0
	for i, m := range months {
		points[i].Date = m.Format(monthLayout)
		sum, ok := sumColumn(t, buckets[i], l.cols.Amount)
		if !ok {
			continue
		}
		points[i].Value = Money{sum}
		if f := sum.InexactFloat64(); f > peak {
			peak = f
		}
	}

	return ChartData{
		Data: points,
		Domain: Domain{
			AxisX: {Labels: monthLabels(months)},
			AxisY: NewRange(0, peak),
		},
	}
}

// averageTimeline reports the mean length in days of the three procurement
// stages. Each duration is taken in whole hours and the mean is truncated
// to whole days. A stage with no dated pairs is nil.
func (l *Library) averageTimeline(t *table.Table) ChartData {
	stages := [][2]string{
		{l.cols.PublicationDate, l.cols.TenderStart},
		{l.cols.TenderStart, l.cols.AwardDate},
		{l.cols.AwardDate, l.cols.PrimaryDate},
	}

	out := make([]*int, len(stages))
	for s, stage := range stages {
		var total float64
		n := 0
		for i := 0; i < t.Len(); i++ {
			from, ok1 := t.Value(i, stage[0]).AsTime()
			to, ok2 := t.Value(i, stage[1]).AsTime()
			if !ok1 || !ok2 {
				continue
			}
			total += float64(int64(to.Sub(from) / time.Hour))
			n++
		}
		if n == 0 {
			continue
		}
		days := int(total / float64(n) / 24)
		out[s] = &days
	}

	return ChartData{Data: out}
}
