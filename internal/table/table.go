package table

import (
	"sort"
)

// Row is one flattened record: compound column key -> scalar cell.
// Rows may carry different key sets; absent keys read as Null.
type Row map[string]Value

// schema is the union of every column observed while building, in
// first-seen order. Shared read-only by a table and all of its views.
type schema struct {
	columns []string
	index   map[string]int
}

func (s *schema) has(column string) bool {
	_, ok := s.index[column]
	return ok
}

// Table is an ordered, read-only sequence of rows sharing one schema.
// Views produced by Filter and Slice hold the same Row maps as their
// parent; rows are never written after Build.
type Table struct {
	schema *schema
	rows   []Row
}

// Empty returns a table with no columns and no rows
func Empty() *Table {
	return &Table{schema: &schema{index: map[string]int{}}}
}

func (t *Table) Len() int { return len(t.rows) }

func (t *Table) IsEmpty() bool { return len(t.rows) == 0 }

// Columns returns a copy of the unified schema
func (t *Table) Columns() []string {
	out := make([]string, len(t.schema.columns))
	copy(out, t.schema.columns)
	return out
}

func (t *Table) HasColumn(column string) bool {
	return t.schema.has(column)
}

// Value returns the cell at row i, column. Out-of-range rows and columns
// missing from the row (or from the schema) read as Null.
func (t *Table) Value(i int, column string) Value {
	if i < 0 || i >= len(t.rows) {
		return Null
	}
	return t.rows[i][column]
}

// Filter returns a view of the rows for which keep returns true
func (t *Table) Filter(keep func(i int) bool) *Table {
	rows := make([]Row, 0, len(t.rows))
	for i, r := range t.rows {
		if keep(i) {
			rows = append(rows, r)
		}
	}
	return &Table{schema: t.schema, rows: rows}
}

// Slice returns the rows whose column equals value. A column absent from
// the schema, or a value that matches nothing, yields an empty table.
func (t *Table) Slice(column string, value Value) *Table {
	if !t.schema.has(column) {
		return &Table{schema: t.schema}
	}
	return t.Filter(func(i int) bool {
		return t.rows[i][column].Equal(value)
	})
}

// Map builds a new table whose rows are fn applied to copies of this
// table's rows. The receiver is left untouched.
func (t *Table) Map(fn func(Row) Row) *Table {
	b := NewBuilder()
	b.ensure(t.schema.columns)
	for _, r := range t.rows {
		cp := make(Row, len(r))
		for k, v := range r {
			cp[k] = v
		}
		b.Append(fn(cp))
	}
	return b.Build()
}

// Builder accumulates rows and unions their schemas. Append-only.
type Builder struct {
	columns []string
	index   map[string]int
	rows    []Row
}

func NewBuilder() *Builder {
	return &Builder{index: make(map[string]int)}
}

// Append copies r into the table and registers any new columns.
// New columns from one row are registered in sorted order so schema order
// does not depend on map iteration.
func (b *Builder) Append(r Row) {
	cp := make(Row, len(r))
	var fresh []string
	for k, v := range r {
		cp[k] = v
		if _, ok := b.index[k]; !ok {
			fresh = append(fresh, k)
		}
	}
	sort.Strings(fresh)
	b.ensure(fresh)
	b.rows = append(b.rows, cp)
}

// AppendAll appends every row in order
func (b *Builder) AppendAll(rows []Row) {
	for _, r := range rows {
		b.Append(r)
	}
}

func (b *Builder) ensure(columns []string) {
	for _, c := range columns {
		if _, ok := b.index[c]; ok {
			continue
		}
		b.index[c] = len(b.columns)
		b.columns = append(b.columns, c)
	}
}

func (b *Builder) Len() int { return len(b.rows) }

// Build freezes the accumulated rows into a Table and resets the builder
func (b *Builder) Build() *Table {
	t := &Table{
		schema: &schema{columns: b.columns, index: b.index},
		rows:   b.rows,
	}
	*b = Builder{index: make(map[string]int)}
	return t
}
