package catalogimport

import (
	"context"
	"fmt"

	"github.com/ignite/software-catalog/internal/domain"
)

// LinkError is a join row that could not be created for an entry that was.
type LinkError struct {
	Kind  string // "category" or "target group"
	RefID string
	Err   error
}

func (e LinkError) Error() string {
	return fmt.Sprintf("link %s %s: %v", e.Kind, e.RefID, e.Err)
}

func (e LinkError) Unwrap() error { return e.Err }

// EntityWriter persists one accepted row. The entry is written first and
// the links after it, as separate steps: a failed link leaves the entry in
// place and is reported back instead of failing the row.
type EntityWriter struct {
	store EntryStore
}

// NewEntityWriter creates a writer over the given store.
func NewEntityWriter(store EntryStore) *EntityWriter {
	return &EntityWriter{store: store}
}

// Write creates the entry attributed to actorID and links it to every
// resolved reference. It returns the new entry ID and any link failures.
func (w *EntityWriter) Write(ctx context.Context, row ResolvedRow, actorID string) (string, []LinkError, error) {
	entry := entryFromRow(row, actorID)
	id, err := w.store.CreateEntry(ctx, entry)
	if err != nil {
		return "", nil, fmt.Errorf("create entry: %w", err)
	}

	var linkErrs []LinkError
	for _, catID := range row.CategoryIDs {
		if err := w.store.LinkCategory(ctx, id, catID); err != nil {
			linkErrs = append(linkErrs, LinkError{Kind: "category", RefID: catID, Err: err})
		}
	}
	for _, tgID := range row.TargetGroupIDs {
		if err := w.store.LinkTargetGroup(ctx, id, tgID); err != nil {
			linkErrs = append(linkErrs, LinkError{Kind: "target group", RefID: tgID, Err: err})
		}
	}
	return id, linkErrs, nil
}

func entryFromRow(row ResolvedRow, actorID string) *domain.CatalogEntry {
	return &domain.CatalogEntry{
		Name:               row.Name,
		ShortDescription:   row.ShortDescription,
		Description:        row.Description,
		URL:                row.URL,
		LogoURL:            row.LogoURL,
		Types:              row.Types,
		Costs:              row.Costs,
		Available:          row.Available,
		NameEN:             row.NameEN,
		ShortDescriptionEN: row.ShortDescriptionEN,
		DescriptionEN:      row.DescriptionEN,
		CostsEN:            row.CostsEN,
		Features:           row.Features,
		Alternatives:       row.Alternatives,
		Notes:              row.Notes,
		CategoryIDs:        row.CategoryIDs,
		TargetGroupIDs:     row.TargetGroupIDs,
		CreatedBy:          actorID,
	}
}
