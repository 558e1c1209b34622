package catalogimport

import (
	"context"

	"github.com/ignite/software-catalog/internal/domain"
)

// ReferenceStore gives access to the categories and target groups rows refer
// to by name.
type ReferenceStore interface {
	ListCategories(ctx context.Context) ([]domain.Category, error)
	ListTargetGroups(ctx context.Context) ([]domain.TargetGroup, error)

	// CreateCategory inserts a category and returns its ID.
	CreateCategory(ctx context.Context, c *domain.Category) (string, error)
	// CreateTargetGroup inserts a target group and returns its ID.
	CreateTargetGroup(ctx context.Context, g *domain.TargetGroup) (string, error)
}

// EntryStore persists catalog entries and their join rows.
type EntryStore interface {
	// CreateEntry inserts the entry and returns its ID.
	CreateEntry(ctx context.Context, e *domain.CatalogEntry) (string, error)

	// LinkCategory and LinkTargetGroup are idempotent: linking the same pair
	// twice is not an error.
	LinkCategory(ctx context.Context, entryID, categoryID string) error
	LinkTargetGroup(ctx context.Context, entryID, targetGroupID string) error

	// ListEntryNames returns the names of all stored entries.
	ListEntryNames(ctx context.Context) ([]string, error)
}

// Repository is everything the import pipeline needs from storage.
type Repository interface {
	ReferenceStore
	EntryStore
}

// AuditRecorder appends an immutable audit record and returns its ID.
type AuditRecorder interface {
	Record(ctx context.Context, rec *domain.AuditRecord) (string, error)
}
