package catalog

import (
	"context"

	"github.com/ignite/software-catalog/internal/domain"
)

// Repository defines the data access contract for catalog administration.
type Repository interface {
	// ListEntries returns entries with their category and target group IDs.
	ListEntries(ctx context.Context, f ListFilter) ([]domain.CatalogEntry, int, error)
	// GetEntry returns ErrNotFound if the entry does not exist.
	GetEntry(ctx context.Context, id string) (*domain.CatalogEntry, error)
	// DeleteEntry removes the entry and its join rows. Returns ErrNotFound
	// if it does not exist.
	DeleteEntry(ctx context.Context, id string) error

	ListCategories(ctx context.Context) ([]domain.Category, error)
	CreateCategory(ctx context.Context, c *domain.Category) (string, error)
	ListTargetGroups(ctx context.Context) ([]domain.TargetGroup, error)
	CreateTargetGroup(ctx context.Context, g *domain.TargetGroup) (string, error)
}

// AuditRecorder appends an audit record and returns its ID.
type AuditRecorder interface {
	Record(ctx context.Context, rec *domain.AuditRecord) (string, error)
}

// ListFilter controls pagination and search for entry lists.
type ListFilter struct {
	Search     string
	CategoryID string
	Limit      int
	Offset     int
}
