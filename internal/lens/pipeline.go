package lens

import (
	"context"
	"time"

	"github.com/ZanzyTHEbar/procurement-lens/internal/analysis"
	"github.com/ZanzyTHEbar/procurement-lens/internal/errors"
	"github.com/ZanzyTHEbar/procurement-lens/internal/monitoring"
	"github.com/ZanzyTHEbar/procurement-lens/internal/table"
)

// OverviewID names the overview artifact
const OverviewID = "general"

// Computer produces the statistics a pipeline needs.
// *analysis.Analyzer satisfies it.
type Computer interface {
	Overview(t *table.Table) ([]analysis.OverviewItem, error)
	Compute(stat analysis.Statistic, t *table.Table) (analysis.ChartData, error)
}

// Sink persists a finished artifact under an id
type Sink interface {
	Write(id string, v any) error
}

// Pipeline builds every lens of a Spec from one prepared table
type Pipeline struct {
	spec     Spec
	computer Computer
	logger   *monitoring.Logger
	metrics  *monitoring.Metrics
}

// NewPipeline creates a pipeline. logger and metrics may be nil.
func NewPipeline(spec Spec, computer Computer, logger *monitoring.Logger, metrics *monitoring.Metrics) *Pipeline {
	if logger == nil {
		logger = monitoring.NewNopLogger()
	}
	if metrics == nil {
		metrics = monitoring.NewMetrics()
	}
	return &Pipeline{spec: spec, computer: computer, logger: logger, metrics: metrics}
}

// Run writes the overview and then one lens per dimension/comparison pair.
// The table must not change while Run is in progress. Cancellation is
// checked between lenses; lenses already handed to the sink stay written.
func (p *Pipeline) Run(ctx context.Context, t *table.Table, sink Sink) error {
	start := time.Now()
	overview, err := p.computer.Overview(t)
	if err != nil {
		return err
	}
	if err := sink.Write(OverviewID, overview); err != nil {
		return errors.NewInternalError("failed to write overview", err)
	}
	p.metrics.RecordStage("overview", time.Since(start))

	for _, dim := range p.spec.Dimensions {
		for _, cmp := range p.spec.Comparisons {
			if err := ctx.Err(); err != nil {
				return err
			}

			lensStart := time.Now()
			l, slices, err := p.BuildLens(dim, cmp, t)
			if err != nil {
				return err
			}
			if err := sink.Write(l.Metadata.ID, l); err != nil {
				return errors.NewInternalError("failed to write lens "+l.Metadata.ID, err)
			}

			elapsed := time.Since(lensStart)
			p.metrics.IncrementLenses()
			p.metrics.RecordStage("lenses", elapsed)
			p.logger.LensLogger(l.Metadata.ID, len(l.Charts), slices, elapsed)
		}
	}
	return nil
}

// BuildLens assembles one lens in memory. It also reports how many slice
// data points were emitted across all charts.
func (p *Pipeline) BuildLens(dimension string, cmp Comparison, t *table.Table) (*Lens, int, error) {
	l := &Lens{
		Metadata: Metadata{ID: ID(dimension, cmp.ID)},
		Charts:   []ChartResult{},
	}

	emitted := 0
	for _, def := range p.spec.chartsFor(dimension) {
		chart, n, err := p.buildChart(def, cmp, t)
		if err != nil {
			return nil, 0, err
		}
		emitted += n
		l.Charts = append(l.Charts, chart)
	}
	return l, emitted, nil
}

func (p *Pipeline) buildChart(def ChartDefinition, cmp Comparison, t *table.Table) (ChartResult, int, error) {
	chart := ChartResult{ID: def.ID, Title: def.Title, Meta: def.Meta}
	if def.Function == "" {
		return chart, 0, nil
	}

	chart.Data = []SliceData{}
	var merged analysis.Domain
	for _, sl := range cmp.slices() {
		view := t
		if cmp.Compare != "" {
			view = t.Slice(cmp.Compare, sl.Value())
		}
		if view.IsEmpty() {
			p.metrics.IncrementEmptySlices()
			p.logger.SliceLogger(def.ID, cmp.Compare, sl.Value().String())
			continue
		}

		result, err := p.computer.Compute(def.Function, view)
		if err != nil {
			return ChartResult{}, 0, errors.WrapError(err, "chart %s, slice %s", def.ID, sl.ID)
		}
		p.metrics.IncrementCharts()

		chart.Data = append(chart.Data, SliceData{ID: sl.ID, Label: sl.Label, Data: result.Data})
		merged = mergeDomain(def.Domain, merged, result.Domain)
	}

	chart.Domain = merged
	return chart, len(chart.Data), nil
}

// mergeDomain folds one slice's domain into the running domain. Only axes
// with a merge function other than MergeNone are kept.
func mergeDomain(funcs map[analysis.Axis]MergeFunc, running, next analysis.Domain) analysis.Domain {
	for axis, fn := range funcs {
		if fn == MergeNone {
			continue
		}
		d := fn.Merge(running[axis], next[axis])
		if d.IsZero() {
			continue
		}
		if running == nil {
			running = analysis.Domain{}
		}
		running[axis] = d
	}
	return running
}
