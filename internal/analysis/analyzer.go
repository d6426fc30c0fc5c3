package analysis

import (
	"github.com/ZanzyTHEbar/procurement-lens/internal/table"
)

// Analyzer pairs the preprocessor with the statistic library so callers
// hold one value for the whole run
type Analyzer struct {
	preprocessor *Preprocessor
	library      *Library
}

// NewAnalyzer creates an analyzer for the given bindings, window and
// currency label
func NewAnalyzer(cols Columns, window DateRange, currency string) *Analyzer {
	cols = cols.WithDefaults()
	return &Analyzer{
		preprocessor: NewPreprocessor(cols, window),
		library:      NewLibrary(cols, currency),
	}
}

// Prepare coerces dates and applies the window. The returned table is the
// read-only input of every later stage.
func (a *Analyzer) Prepare(t *table.Table) *table.Table {
	return a.preprocessor.Process(t)
}

// Overview computes the headline figures of a prepared table
func (a *Analyzer) Overview(t *table.Table) ([]OverviewItem, error) {
	return a.library.Overview(t)
}

// Compute runs one chart statistic
func (a *Analyzer) Compute(stat Statistic, t *table.Table) (ChartData, error) {
	return a.library.Compute(stat, t)
}

// Library exposes the underlying statistic library
func (a *Analyzer) Library() *Library {
	return a.library
}
