// Package flatten turns nested record trees into single-level rows keyed
// by compound paths.
package flatten

import (
	"sort"
	"strconv"

	"github.com/ZanzyTHEbar/procurement-lens/internal/table"
)

// Separator joins path components, e.g. award_suppliers_0_name
const Separator = "_"

// Flatten walks v and returns one cell per scalar leaf. Keyed structures
// append their key to the path, lists append the element's zero-based
// index. Keys are visited in sorted order so a collision between two paths
// always resolves to the same (last) value.
func Flatten(v any, sep string) table.Row {
	out := make(table.Row)
	walk(out, v, "", sep)
	return out
}

func walk(out table.Row, v any, path, sep string) {
	switch x := v.(type) {
	case map[string]any:
		keys := make([]string, 0, len(x))
		for k := range x {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			walk(out, x[k], path+k+sep, sep)
		}
	case []any:
		for i, item := range x {
			walk(out, item, path+strconv.Itoa(i)+sep, sep)
		}
	case []map[string]any:
		for i, item := range x {
			walk(out, item, path+strconv.Itoa(i)+sep, sep)
		}
	default:
		key := path
		if len(key) >= len(sep) {
			key = key[:len(key)-len(sep)]
		}
		out[key] = table.FromScalar(x)
	}
}
