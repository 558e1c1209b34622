package api

import (
	"context"
	"io"
	"time"

	"github.com/ignite/software-catalog/internal/assist"
	"github.com/ignite/software-catalog/internal/config"
	"github.com/ignite/software-catalog/internal/datanorm"
	"github.com/ignite/software-catalog/internal/domain"
	"github.com/ignite/software-catalog/internal/service/catalog"
	"github.com/ignite/software-catalog/internal/service/catalogimport"
	"github.com/ignite/software-catalog/internal/storage"
	"github.com/ignite/software-catalog/internal/worker"
)

// ImportService runs import batches.
type ImportService interface {
	Import(ctx context.Context, b catalogimport.Batch) (*catalogimport.Summary, error)
	ImportDemo(ctx context.Context, ds *catalogimport.DemoDataset, actorID string) (*catalogimport.DemoSummary, error)
}

// CatalogService is the admin CRUD surface.
type CatalogService interface {
	ListEntries(ctx context.Context, f catalog.ListFilter) ([]domain.CatalogEntry, int, error)
	GetEntry(ctx context.Context, id string) (*domain.CatalogEntry, error)
	DeleteEntry(ctx context.Context, id, actorID string) error
	ListCategories(ctx context.Context) ([]domain.Category, error)
	CreateCategory(ctx context.Context, c *domain.Category, actorID string) (*domain.Category, error)
	ListTargetGroups(ctx context.Context) ([]domain.TargetGroup, error)
	CreateTargetGroup(ctx context.Context, g *domain.TargetGroup, actorID string) (*domain.TargetGroup, error)
	ExportXLSX(ctx context.Context, w io.Writer) (int, error)
}

// JobQueue accepts async import jobs.
type JobQueue interface {
	Enqueue(ctx context.Context, rows []datanorm.Row, actorID string, headerRows int, lines []int) (*worker.ImportJob, error)
	GetJob(ctx context.Context, id string) (*worker.ImportJob, error)
}

// DescriptionDrafter produces description suggestions.
type DescriptionDrafter interface {
	DraftDescription(ctx context.Context, req assist.DraftRequest) (*assist.Draft, error)
}

// RowLimiter meters imported rows per admin.
type RowLimiter interface {
	Allow(ctx context.Context, key string, n int) (bool, time.Duration, error)
}

// Handlers holds the HTTP handlers for the admin API.
type Handlers struct {
	importer ImportService
	catalog  CatalogService
	queue    JobQueue
	archive  storage.Archive
	drafter  DescriptionDrafter
	limiter  RowLimiter
	cfg      config.ImportConfig
}

// NewHandlers creates handlers from deps.
func NewHandlers(deps Deps) *Handlers {
	cfg := deps.Import
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = 10 << 20
	}
	return &Handlers{
		importer: deps.Importer,
		catalog:  deps.Catalog,
		queue:    deps.Queue,
		archive:  deps.Archive,
		drafter:  deps.Drafter,
		limiter:  deps.Limiter,
		cfg:      cfg,
	}
}
