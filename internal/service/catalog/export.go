package catalog

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/ignite/software-catalog/internal/datanorm"
	"github.com/ignite/software-catalog/internal/domain"
)

const (
	exportSheet    = "Katalog"
	exportPageSize = 500
)

// ExportXLSX writes every entry to a workbook whose header row uses the
// import's preferred headers, so the file can be edited and imported again.
func (s *Service) ExportXLSX(ctx context.Context, w io.Writer) (int, error) {
	entries, err := s.allEntries(ctx)
	if err != nil {
		return 0, err
	}
	cats, err := s.repo.ListCategories(ctx)
	if err != nil {
		return 0, err
	}
	groups, err := s.repo.ListTargetGroups(ctx)
	if err != nil {
		return 0, err
	}
	catNames := make(map[string]string, len(cats))
	for _, c := range cats {
		catNames[c.ID] = c.Name
	}
	groupNames := make(map[string]string, len(groups))
	for _, g := range groups {
		groupNames[g.ID] = g.Name
	}

	f := excelize.NewFile()
	defer f.Close()
	if err := f.SetSheetName(f.GetSheetName(0), exportSheet); err != nil {
		return 0, fmt.Errorf("rename sheet: %w", err)
	}

	header := make([]any, len(datanorm.Fields))
	for i, field := range datanorm.Fields {
		header[i] = datanorm.HeaderFor(field)
	}
	if err := f.SetSheetRow(exportSheet, "A1", &header); err != nil {
		return 0, fmt.Errorf("write header: %w", err)
	}

	for i, e := range entries {
		row := make([]any, len(datanorm.Fields))
		for j, field := range datanorm.Fields {
			row[j] = exportCell(e, field, catNames, groupNames)
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return 0, err
		}
		if err := f.SetSheetRow(exportSheet, cell, &row); err != nil {
			return 0, fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	if err := f.Write(w); err != nil {
		return 0, fmt.Errorf("write workbook: %w", err)
	}
	return len(entries), nil
}

func (s *Service) allEntries(ctx context.Context) ([]domain.CatalogEntry, error) {
	var out []domain.CatalogEntry
	for offset := 0; ; offset += exportPageSize {
		page, total, err := s.repo.ListEntries(ctx, ListFilter{Limit: exportPageSize, Offset: offset})
		if err != nil {
			return nil, err
		}
		out = append(out, page...)
		if len(page) < exportPageSize || len(out) >= total {
			return out, nil
		}
	}
}

func exportCell(e domain.CatalogEntry, field datanorm.CanonicalField, catNames, groupNames map[string]string) string {
	switch field {
	case datanorm.FieldName:
		return e.Name
	case datanorm.FieldShortDescription:
		return e.ShortDescription
	case datanorm.FieldDescription:
		return e.Description
	case datanorm.FieldURL:
		return e.URL
	case datanorm.FieldLogoURL:
		return e.LogoURL
	case datanorm.FieldTypes:
		return strings.Join(e.Types, ", ")
	case datanorm.FieldCosts:
		return e.Costs
	case datanorm.FieldAvailable:
		if e.Available {
			return "ja"
		}
		return "nein"
	case datanorm.FieldCategories:
		return joinNames(e.CategoryIDs, catNames)
	case datanorm.FieldTargetGroups:
		return joinNames(e.TargetGroupIDs, groupNames)
	case datanorm.FieldFeatures:
		return e.Features
	case datanorm.FieldAlternatives:
		return e.Alternatives
	case datanorm.FieldNotes:
		return e.Notes
	case datanorm.FieldNameEN:
		return e.NameEN
	case datanorm.FieldShortDescriptionEN:
		return e.ShortDescriptionEN
	case datanorm.FieldDescriptionEN:
		return e.DescriptionEN
	case datanorm.FieldCostsEN:
		return e.CostsEN
	}
	return ""
}

func joinNames(ids []string, names map[string]string) string {
	parts := make([]string, 0, len(ids))
	for _, id := range ids {
		if n, ok := names[id]; ok {
			parts = append(parts, n)
		}
	}
	return strings.Join(parts, ", ")
}
