package catalogimport

import (
	"errors"
	"strings"
	"testing"

	"github.com/ignite/software-catalog/internal/datanorm"
)

func TestRowValidator_Constraints(t *testing.T) {
	rv := newRowValidator(newStructValidator(), false, nil)

	tests := []struct {
		name    string
		row     datanorm.CatalogRow
		wantMsg string
	}{
		{"valid", datanorm.CatalogRow{Name: "Moodle"}, ""},
		{"missing name", datanorm.CatalogRow{}, "name missing"},
		{"name too long", datanorm.CatalogRow{Name: strings.Repeat("x", 256)}, "name exceeds 255 characters"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := rv.Validate(7, tt.row)
			if tt.wantMsg == "" {
				if !d.Accepted || d.Error != nil {
					t.Errorf("Validate() = %+v, want accepted", d)
				}
				return
			}
			if d.Accepted || d.Error == nil {
				t.Fatalf("Validate() = %+v, want rejected", d)
			}
			if d.Error.Row != 7 || d.Error.Message != tt.wantMsg {
				t.Errorf("error = %+v, want row 7 %q", *d.Error, tt.wantMsg)
			}
		})
	}
}

func TestRowValidator_DuplicatesOnlyWhenEnabled(t *testing.T) {
	off := newRowValidator(newStructValidator(), false, []string{"Moodle"})
	if d := off.Validate(1, datanorm.CatalogRow{Name: "moodle"}); !d.Accepted {
		t.Errorf("duplicate check disabled, got %+v", d)
	}

	on := newRowValidator(newStructValidator(), true, []string{"Moodle"})
	d := on.Validate(1, datanorm.CatalogRow{Name: "MOODLE"})
	if d.Accepted || d.Error.Message != `entry "Moodle" already exists` {
		t.Errorf("Validate() = %+v", d)
	}

	on.remember("Jitsi")
	if d := on.Validate(2, datanorm.CatalogRow{Name: " jitsi"}); d.Accepted {
		t.Error("name created earlier in the batch should be rejected")
	}
}

func TestDecodeRows(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr error
		rows    int
	}{
		{"array of objects", `[{"name":"a"},{"Name":"b"}]`, nil, 2},
		{"leading whitespace", "\n  [{\"name\":\"a\"}]", nil, 1},
		{"empty array", `[]`, ErrNoData, 0},
		{"object", `{"name":"a"}`, ErrInvalidInput, 0},
		{"empty body", ``, ErrInvalidInput, 0},
		{"string element", `["a"]`, ErrInvalidInput, 0},
		{"null element", `[{"name":"a"}, null]`, ErrInvalidInput, 0},
		{"malformed", `[{"name":}]`, ErrInvalidInput, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows, err := DecodeRows([]byte(tt.body))
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("err = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(rows) != tt.rows {
				t.Errorf("rows = %d, want %d", len(rows), tt.rows)
			}
		})
	}
}
