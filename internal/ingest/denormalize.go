// Package ingest reads record packages from disk and denormalizes every
// contract into one flat table row.
package ingest

import (
	"fmt"

	"github.com/ZanzyTHEbar/procurement-lens/internal/flatten"
	"github.com/ZanzyTHEbar/procurement-lens/internal/table"
	"github.com/ZanzyTHEbar/procurement-lens/internal/types"
)

// Namespaces under which the joined sub-objects are flattened
const (
	NamespaceContract = "contract"
	NamespaceTender   = "tender"
	NamespaceBuyer    = "buyer"
	NamespaceAward    = "award"
)

// awardIndex maps an award id to the first award carrying it
type awardIndex map[string]map[string]any

func indexAwards(awards []map[string]any) awardIndex {
	idx := make(awardIndex, len(awards))
	for _, a := range awards {
		id := table.FromScalar(a["id"])
		if id.IsNull() {
			continue
		}
		if _, seen := idx[id.Key()]; !seen {
			idx[id.Key()] = a
		}
	}
	return idx
}

// Validate checks the fields the contract/award join depends on
func Validate(rec types.RawRecord) error {
	if rec.Tender == nil {
		return fmt.Errorf("record %q has no tender object", rec.OCID)
	}
	if rec.Buyer == nil {
		return fmt.Errorf("record %q has no buyer object", rec.OCID)
	}
	for i, c := range rec.Contracts {
		if c == nil || table.FromScalar(c["awardID"]).IsNull() {
			return fmt.Errorf("record %q contract %d has no awardID", rec.OCID, i)
		}
	}
	return nil
}

// Denormalize emits one row per contract of rec. The award whose id equals
// the contract's awardID is joined under the award namespace; when none
// matches the award columns are simply absent. Only the first supplier of
// an award is addressable by the index-0 columns; further suppliers get
// their own indexed columns.
func Denormalize(rec types.RawRecord) []table.Row {
	awards := indexAwards(rec.Awards)

	rows := make([]table.Row, 0, len(rec.Contracts))
	for _, c := range rec.Contracts {
		composite := map[string]any{
			NamespaceContract: c,
			NamespaceTender:   rec.Tender,
			NamespaceBuyer:    rec.Buyer,
		}
		if a, ok := awards[table.FromScalar(c["awardID"]).Key()]; ok {
			composite[NamespaceAward] = a
		}
		rows = append(rows, flatten.Flatten(composite, flatten.Separator))
	}
	return rows
}
