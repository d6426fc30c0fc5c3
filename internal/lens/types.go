package lens

import (
	"github.com/ZanzyTHEbar/procurement-lens/internal/analysis"
	"github.com/ZanzyTHEbar/procurement-lens/internal/encoding"
	"github.com/ZanzyTHEbar/procurement-lens/internal/table"
)

// IDSeparator joins a dimension and a comparison id into a lens id
const IDSeparator = "--"

// ID returns the lens id for a dimension/comparison pair
func ID(dimension, comparisonID string) string {
	return dimension + IDSeparator + comparisonID
}

// Slice selects the rows whose grouping column equals Field
type Slice struct {
	ID    string `yaml:"id" json:"id"`
	Label string `yaml:"label" json:"label"`
	Field any    `yaml:"field,omitempty" json:"field,omitempty"`
}

// Value converts the configured grouping value into a table cell
func (s Slice) Value() table.Value {
	return table.FromScalar(s.Field)
}

// Comparison is an ordered set of slices over one grouping column. With no
// Compare column the whole table is a single slice.
type Comparison struct {
	ID      string  `yaml:"id"`
	Label   string  `yaml:"label"`
	Compare string  `yaml:"compare,omitempty"`
	Slices  []Slice `yaml:"slices"`
}

// slices returns the slices to iterate for this comparison
func (c Comparison) slices() []Slice {
	if c.Compare != "" {
		return c.Slices
	}
	if len(c.Slices) > 0 {
		return c.Slices[:1]
	}
	return []Slice{{ID: c.ID, Label: c.Label}}
}

// ChartDefinition binds a statistic to a dimension and says how each axis
// domain merges across slices. A chart without Function is static and is
// emitted with its metadata only.
type ChartDefinition struct {
	ID        string                      `yaml:"id"`
	Title     string                      `yaml:"title"`
	Dimension string                      `yaml:"dimension"`
	Function  analysis.Statistic          `yaml:"function,omitempty"`
	Domain    map[analysis.Axis]MergeFunc `yaml:"domain,omitempty"`
	Meta      map[string]any              `yaml:"meta,omitempty"`
}

// Spec is the immutable description of every lens a run produces
type Spec struct {
	Dimensions  []string          `yaml:"dimensions"`
	Comparisons []Comparison      `yaml:"comparisons"`
	Charts      []ChartDefinition `yaml:"charts"`
}

// chartsFor returns the charts bound to dimension, in declaration order
func (s Spec) chartsFor(dimension string) []ChartDefinition {
	var out []ChartDefinition
	for _, c := range s.Charts {
		if c.Dimension == dimension {
			out = append(out, c)
		}
	}
	return out
}

// Lens is the complete chart set for one dimension/comparison pair
type Lens struct {
	Metadata Metadata      `json:"metadata"`
	Charts   []ChartResult `json:"charts"`
}

type Metadata struct {
	ID string `json:"id"`
}

// ChartResult is a chart definition populated with per-slice data and the
// merged domain. Data is nil only for static charts; a computed chart whose
// slices were all empty carries an empty list.
type ChartResult struct {
	ID     string          `json:"id"`
	Title  string          `json:"title,omitempty"`
	Meta   map[string]any  `json:"meta,omitempty"`
	Data   []SliceData     `json:"data,omitempty"`
	Domain analysis.Domain `json:"domain,omitempty"`
}

// MarshalJSON writes "data": [] for computed charts with no slices and
// leaves the key out for static ones
func (c ChartResult) MarshalJSON() ([]byte, error) {
	type plain ChartResult
	out := struct {
		plain
		Data *[]SliceData `json:"data,omitempty"`
	}{plain: plain(c)}
	if c.Data != nil {
		out.Data = &c.Data
	}
	return encoding.Marshal(out)
}

// SliceData is one slice's statistic
type SliceData struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Data  any    `json:"data"`
}
