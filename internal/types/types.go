package types

// RecordPackage is one source file: a batch of contracting-process records
type RecordPackage struct {
	URI       string      `json:"uri,omitempty"`
	Publisher any         `json:"publisher,omitempty"`
	Records   []RawRecord `json:"records"`
}

// RawRecord holds the sub-objects of a single contracting process.
// Everything below the top level is kept as a decoded JSON tree so the
// flattener can walk arbitrary schemas.
type RawRecord struct {
	OCID      string           `json:"ocid,omitempty"`
	Tender    map[string]any   `json:"tender"`
	Buyer     map[string]any   `json:"buyer"`
	Awards    []map[string]any `json:"awards"`
	Contracts []map[string]any `json:"contracts"`
}
