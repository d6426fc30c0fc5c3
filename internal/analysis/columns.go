package analysis

// Columns binds the statistic library to flattened column names. The
// defaults match the names the denormalizer produces for OCDS record
// packages.
type Columns struct {
	ContractID        string `yaml:"contract_id"`
	Amount            string `yaml:"amount"`
	PrimaryDate       string `yaml:"primary_date"`
	PublicationDate   string `yaml:"publication_date"`
	TenderStart       string `yaml:"tender_start"`
	AwardDate         string `yaml:"award_date"`
	Supplier          string `yaml:"supplier"`
	BuyerName         string `yaml:"buyer_name"`
	BuyerAbbreviation string `yaml:"buyer_abbreviation"`
}

// DefaultColumns returns the column bindings for OCDS record packages
func DefaultColumns() Columns {
	return Columns{
		ContractID:        "contract_id",
		Amount:            "contract_value_amount",
		PrimaryDate:       "contract_period_startDate",
		PublicationDate:   "tender_publicationDate",
		TenderStart:       "tender_tenderPeriod_startDate",
		AwardDate:         "award_date",
		Supplier:          "award_suppliers_0_name",
		BuyerName:         "buyer_name",
		BuyerAbbreviation: "buyer_abbreviation",
	}
}

// WithDefaults fills every empty binding from DefaultColumns
func (c Columns) WithDefaults() Columns {
	d := DefaultColumns()
	fill := func(dst *string, def string) {
		if *dst == "" {
			*dst = def
		}
	}
	fill(&c.ContractID, d.ContractID)
	fill(&c.Amount, d.Amount)
	fill(&c.PrimaryDate, d.PrimaryDate)
	fill(&c.PublicationDate, d.PublicationDate)
	fill(&c.TenderStart, d.TenderStart)
	fill(&c.AwardDate, d.AwardDate)
	fill(&c.Supplier, d.Supplier)
	fill(&c.BuyerName, d.BuyerName)
	fill(&c.BuyerAbbreviation, d.BuyerAbbreviation)
	return c
}

// DateColumns lists the columns coerced to dates, without duplicates
func (c Columns) DateColumns() []string {
	seen := make(map[string]bool, 4)
	var out []string
	for _, col := range []string{c.PublicationDate, c.TenderStart, c.AwardDate, c.PrimaryDate} {
		if col == "" || seen[col] {
			continue
		}
		seen[col] = true
		out = append(out, col)
	}
	return out
}
