package datanorm

import (
	"encoding/json"
	"reflect"
	"testing"
)

func TestNormalize_NameVariants(t *testing.T) {
	tests := []struct {
		name string
		row  Row
		want string
	}{
		{"canonical key", Row{"name": "  Nextcloud "}, "Nextcloud"},
		{"localized header", Row{"Softwarename": "Moodle"}, "Moodle"},
		{"case variant", Row{"NAME": "Zoom"}, "Zoom"},
		{"padded header", Row{" name ": "Jitsi"}, "Jitsi"},
		{"first non-empty variant wins", Row{"name": "   ", "Software": "BigBlueButton"}, "BigBlueButton"},
		{"exact match beats case-insensitive", Row{"Name": "Exact", "NAME": "Folded"}, "Exact"},
		{"absent", Row{"Website": "https://example.org"}, ""},
		{"numeric name", Row{"name": float64(2024)}, "2024"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize(tt.row).Name
			if got != tt.want {
				t.Errorf("Normalize(%v).Name = %q, want %q", tt.row, got, tt.want)
			}
		})
	}
}

func TestNormalize_Lists(t *testing.T) {
	tests := []struct {
		name string
		row  Row
		want []string
	}{
		{"comma string", Row{"Kategorien": "Kollaboration, Office,, "}, []string{"Kollaboration", "Office"}},
		{"native list", Row{"categories": []any{" Office ", "", "Lernen"}}, []string{"Office", "Lernen"}},
		{"string slice", Row{"categories": []string{"A", " "}}, []string{"A"}},
		{"absent", Row{"name": "x"}, []string{}},
		{"null", Row{"categories": nil}, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize(tt.row).Categories
			if got == nil {
				t.Fatal("Categories is nil")
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Categories = %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestNormalize_Availability(t *testing.T) {
	tests := []struct {
		value any
		want  bool
	}{
		{"ja", true},
		{"JA", true},
		{" Yes ", true},
		{"true", true},
		{true, true},
		{false, false},
		{"nein", false},
		{"1", false},
		{float64(1), false},
		{nil, false},
	}

	for _, tt := range tests {
		got := Normalize(Row{"Verfügbar": tt.value}).Available
		if got != tt.want {
			t.Errorf("Available for %#v = %v, want %v", tt.value, got, tt.want)
		}
	}
}

func TestNormalize_NoNilFields(t *testing.T) {
	got := Normalize(Row{})
	if got.Types == nil || got.Categories == nil || got.TargetGroups == nil {
		t.Errorf("list fields must be empty, not nil: %+v", got)
	}
	if got.Extra != nil {
		t.Errorf("Extra = %v, want nil", got.Extra)
	}
}

func TestNormalize_FullLocalizedRow(t *testing.T) {
	var row Row
	raw := `{
		"Name": "Nextcloud",
		"Kurzbeschreibung": "Dateiablage",
		"Website": "https://nextcloud.com",
		"Typ": "Web, Desktop, Mobile",
		"Kosten": "kostenlos",
		"Verfügbar": "Ja",
		"Kategorien": "Kollaboration",
		"Zielgruppen": ["Lehrkräfte", "Schüler"],
		"Interne ID": 17
	}`
	if err := json.Unmarshal([]byte(raw), &row); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	got := Normalize(row)
	want := CatalogRow{
		Name:             "Nextcloud",
		ShortDescription: "Dateiablage",
		URL:              "https://nextcloud.com",
		Types:            []string{"Web", "Desktop", "Mobile"},
		Costs:            "kostenlos",
		Available:        true,
		Categories:       []string{"Kollaboration"},
		TargetGroups:     []string{"Lehrkräfte", "Schüler"},
		Extra:            map[string]string{"Interne ID": "17"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Normalize() =\n%+v\nwant\n%+v", got, want)
	}
}

func TestHeaderFor_RoundTrips(t *testing.T) {
	for _, f := range Fields {
		h := HeaderFor(f)
		got, ok := FieldForHeader(h)
		if !ok || got != f {
			t.Errorf("FieldForHeader(HeaderFor(%s)) = %s, %v", f, got, ok)
		}
	}
}
