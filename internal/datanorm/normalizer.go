// Package datanorm maps loosely structured catalog rows (localized headers,
// comma-joined lists, yes/no flags) onto one canonical row shape.
package datanorm

// Normalize maps a raw row onto the canonical catalog shape. It never fails:
// missing required data is left for validation to reject.
func Normalize(row Row) CatalogRow {
	idx := indexHeaders(row)

	str := func(f CanonicalField) string {
		v, _ := lookup(row, idx, f)
		return scalarString(v)
	}
	list := func(f CanonicalField) []string {
		v, _ := lookup(row, idx, f)
		return listValue(v)
	}

	avail, _ := lookup(row, idx, FieldAvailable)

	out := CatalogRow{
		Name:               str(FieldName),
		ShortDescription:   str(FieldShortDescription),
		Description:        str(FieldDescription),
		URL:                str(FieldURL),
		LogoURL:            str(FieldLogoURL),
		Types:              list(FieldTypes),
		Costs:              str(FieldCosts),
		Available:          availability(avail),
		NameEN:             str(FieldNameEN),
		ShortDescriptionEN: str(FieldShortDescriptionEN),
		DescriptionEN:      str(FieldDescriptionEN),
		CostsEN:            str(FieldCostsEN),
		Features:           str(FieldFeatures),
		Alternatives:       str(FieldAlternatives),
		Notes:              str(FieldNotes),
		Categories:         list(FieldCategories),
		TargetGroups:       list(FieldTargetGroups),
	}

	for k, v := range row {
		if _, known := FieldForHeader(k); known || isBlank(v) {
			continue
		}
		if out.Extra == nil {
			out.Extra = make(map[string]string)
		}
		out.Extra[k] = scalarString(v)
	}
	return out
}
