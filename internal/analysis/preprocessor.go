package analysis

import (
	"strings"
	"time"

	"github.com/ZanzyTHEbar/procurement-lens/internal/table"
)

// dateLayouts are tried in order when coercing a string cell to a date
var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05Z0700",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"2006/01/02",
}

// DateRange is an inclusive [Start, End] window. A zero bound is open.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// DayWindow builds the window covering whole UTC days from start through
// end. Both bounds are day values as returned by ParseDay.
func DayWindow(start, end time.Time) DateRange {
	r := DateRange{Start: start}
	if !end.IsZero() {
		r.End = end.AddDate(0, 0, 1).Add(-time.Nanosecond)
	}
	return r
}

// Contains reports whether t lies inside the window, bounds included
func (r DateRange) Contains(t time.Time) bool {
	if !r.Start.IsZero() && t.Before(r.Start) {
		return false
	}
	if !r.End.IsZero() && t.After(r.End) {
		return false
	}
	return true
}

// Preprocessor coerces date columns and applies the date window. It is the
// only stage allowed to produce a modified table; everything after it reads.
type Preprocessor struct {
	dateColumns []string
	primary     string
	window      DateRange
}

// NewPreprocessor creates a preprocessor for the given bindings and window
func NewPreprocessor(cols Columns, window DateRange) *Preprocessor {
	return &Preprocessor{
		dateColumns: cols.DateColumns(),
		primary:     cols.PrimaryDate,
		window:      window,
	}
}

// Process normalizes dates and then filters by the primary date column.
// Rows whose primary date is null are dropped.
func (p *Preprocessor) Process(t *table.Table) *table.Table {
	normalized := p.normalizeDates(t)
	return p.filterRange(normalized)
}

func (p *Preprocessor) normalizeDates(t *table.Table) *table.Table {
	var present []string
	for _, col := range p.dateColumns {
		if t.HasColumn(col) {
			present = append(present, col)
		}
	}
	if len(present) == 0 {
		return t
	}

	return t.Map(func(r table.Row) table.Row {
		for _, col := range present {
			if v, ok := r[col]; ok {
				r[col] = ParseDate(v)
			}
		}
		return r
	})
}

func (p *Preprocessor) filterRange(t *table.Table) *table.Table {
	return t.Filter(func(i int) bool {
		ts, ok := t.Value(i, p.primary).AsTime()
		return ok && p.window.Contains(ts)
	})
}

// ParseDate coerces a cell to a UTC date value. Anything that is not a
// parseable string or already a time becomes Null.
func ParseDate(v table.Value) table.Value {
	if ts, ok := v.AsTime(); ok {
		return table.NewTime(ts.UTC())
	}
	s, ok := v.AsString()
	if !ok {
		return table.Null
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return table.Null
	}
	for _, layout := range dateLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return table.NewTime(ts.UTC())
		}
	}
	return table.Null
}

// ParseDay parses a YYYY-MM-DD bound as UTC midnight
func ParseDay(s string) (time.Time, error) {
	return time.Parse("2006-01-02", s)
}
