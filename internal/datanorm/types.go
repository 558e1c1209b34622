package datanorm

// Row is one raw record as received: header to cell value. Values are
// whatever the producer emitted (JSON decoding yields string, float64, bool,
// []any or nil; file row sources yield strings).
type Row map[string]any

// CatalogRow is a row after header and shape normalization. String fields
// are trimmed, list fields are never nil, and absent data takes the zero
// value.
type CatalogRow struct {
	Name             string   `json:"name" validate:"required,max=255"`
	ShortDescription string   `json:"shortDescription"`
	Description      string   `json:"description"`
	URL              string   `json:"url"`
	LogoURL          string   `json:"logoUrl"`
	Types            []string `json:"types"`
	Costs            string   `json:"costs"`
	Available        bool     `json:"available"`

	NameEN             string `json:"nameEn"`
	ShortDescriptionEN string `json:"shortDescriptionEn"`
	DescriptionEN      string `json:"descriptionEn"`
	CostsEN            string `json:"costsEn"`

	Features     string `json:"features"`
	Alternatives string `json:"alternatives"`
	Notes        string `json:"notes"`

	// Names as written in the source; resolved to IDs later.
	Categories   []string `json:"categories"`
	TargetGroups []string `json:"targetGroups"`

	// Non-blank cells under headers no field recognizes.
	Extra map[string]string `json:"extra,omitempty"`
}
