package datanorm

import (
	"sort"
	"strings"
)

// CanonicalField is a normalized field name used across all import sources.
type CanonicalField string

const (
	FieldName               CanonicalField = "name"
	FieldShortDescription   CanonicalField = "short_description"
	FieldDescription        CanonicalField = "description"
	FieldURL                CanonicalField = "url"
	FieldLogoURL            CanonicalField = "logo_url"
	FieldTypes              CanonicalField = "types"
	FieldCosts              CanonicalField = "costs"
	FieldAvailable          CanonicalField = "available"
	FieldNameEN             CanonicalField = "name_en"
	FieldShortDescriptionEN CanonicalField = "short_description_en"
	FieldDescriptionEN      CanonicalField = "description_en"
	FieldCostsEN            CanonicalField = "costs_en"
	FieldFeatures           CanonicalField = "features"
	FieldAlternatives       CanonicalField = "alternatives"
	FieldNotes              CanonicalField = "notes"
	FieldCategories         CanonicalField = "categories"
	FieldTargetGroups       CanonicalField = "target_groups"
)

// Fields lists every canonical field in export column order.
var Fields = []CanonicalField{
	FieldName, FieldShortDescription, FieldDescription, FieldURL, FieldLogoURL,
	FieldTypes, FieldCosts, FieldAvailable, FieldCategories, FieldTargetGroups,
	FieldFeatures, FieldAlternatives, FieldNotes,
	FieldNameEN, FieldShortDescriptionEN, FieldDescriptionEN, FieldCostsEN,
}

// headerAliases lists the accepted header variants per field, probed in order.
// The first entry is the canonical JSON key, the second the preferred
// spreadsheet header.
var headerAliases = map[CanonicalField][]string{
	FieldName:               {"name", "Name", "Softwarename", "Software", "Titel", "title", "Produkt"},
	FieldShortDescription:   {"shortDescription", "Kurzbeschreibung", "short_description", "Short description", "Kurztext", "summary"},
	FieldDescription:        {"description", "Beschreibung", "Langbeschreibung", "Description", "long_description"},
	FieldURL:                {"url", "Website", "URL", "Webseite", "Link", "Homepage"},
	FieldLogoURL:            {"logoUrl", "Logo", "logo_url", "logo", "Logo URL", "Bild"},
	FieldTypes:              {"types", "Typ", "Typen", "Type", "Plattform", "Plattformen", "platform"},
	FieldCosts:              {"costs", "Kosten", "Preis", "Lizenz", "pricing", "price"},
	FieldAvailable:          {"available", "Verfügbar", "Verfuegbar", "verfügbar", "Available", "Aktiv", "active"},
	FieldNameEN:             {"nameEn", "Name (EN)", "name_en", "Name EN", "English name"},
	FieldShortDescriptionEN: {"shortDescriptionEn", "Kurzbeschreibung (EN)", "short_description_en", "Short description EN"},
	FieldDescriptionEN:      {"descriptionEn", "Beschreibung (EN)", "description_en", "Description EN"},
	FieldCostsEN:            {"costsEn", "Kosten (EN)", "costs_en", "Costs EN"},
	FieldFeatures:           {"features", "Funktionen", "Features", "Merkmale"},
	FieldAlternatives:       {"alternatives", "Alternativen", "Alternatives"},
	FieldNotes:              {"notes", "Anmerkungen", "Hinweise", "Notizen", "Notes", "Bemerkungen"},
	FieldCategories:         {"categories", "Kategorien", "Kategorie", "Categories", "category"},
	FieldTargetGroups:       {"targetGroups", "Zielgruppen", "Zielgruppe", "target_groups", "Target groups", "audience"},
}

// knownHeaders is the folded set of every accepted header variant.
var knownHeaders = func() map[string]CanonicalField {
	m := make(map[string]CanonicalField)
	for field, variants := range headerAliases {
		for _, v := range variants {
			m[foldHeader(v)] = field
		}
	}
	return m
}()

func foldHeader(h string) string {
	h = strings.ToLower(strings.TrimSpace(h))
	return strings.Trim(h, "\"'")
}

// HeaderFor returns the preferred spreadsheet header for a field. Files
// written with these headers import without any mapping.
func HeaderFor(f CanonicalField) string {
	variants := headerAliases[f]
	if len(variants) > 1 {
		return variants[1]
	}
	if len(variants) == 1 {
		return variants[0]
	}
	return string(f)
}

// FieldForHeader reports which canonical field a raw header maps to.
func FieldForHeader(header string) (CanonicalField, bool) {
	f, ok := knownHeaders[foldHeader(header)]
	return f, ok
}

// headerIndex is a case-insensitive view of one row's keys, used when no
// exact variant matched.
type headerIndex map[string]string

func indexHeaders(row Row) headerIndex {
	keys := make([]string, 0, len(row))
	for k := range row {
		keys = append(keys, k)
	}
	// Sorted so that two keys folding to the same header resolve the same way
	// on every run.
	sort.Strings(keys)

	idx := make(headerIndex, len(keys))
	for _, k := range keys {
		folded := foldHeader(k)
		if _, exists := idx[folded]; !exists {
			idx[folded] = k
		}
	}
	return idx
}

// lookup probes the field's variants against the row: exact keys first, then
// case-insensitively. The first present non-blank value wins.
func lookup(row Row, idx headerIndex, f CanonicalField) (any, bool) {
	variants := headerAliases[f]
	for _, v := range variants {
		if val, ok := row[v]; ok && !isBlank(val) {
			return val, true
		}
	}
	for _, v := range variants {
		key, ok := idx[foldHeader(v)]
		if !ok {
			continue
		}
		if val := row[key]; !isBlank(val) {
			return val, true
		}
	}
	return nil, false
}
