package catalogimport

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/ignite/software-catalog/internal/datanorm"
	"github.com/ignite/software-catalog/internal/domain"
	"github.com/ignite/software-catalog/internal/pkg/logger"
)

// Options tunes import policy.
type Options struct {
	// RejectDuplicateNames rejects rows whose name matches a stored entry or
	// one created earlier in the same batch.
	RejectDuplicateNames bool
	// MaxRows caps batch size; 0 means no limit.
	MaxRows int
}

// Service runs import batches. It is safe for concurrent use; each call to
// Import works on its own snapshot.
type Service struct {
	repo     Repository
	audit    AuditRecorder
	writer   *EntityWriter
	validate *validator.Validate
	opts     Options
	now      func() time.Time
}

// NewService creates an import service over the given store and audit log.
func NewService(repo Repository, audit AuditRecorder, opts Options) *Service {
	return &Service{
		repo:     repo,
		audit:    audit,
		writer:   NewEntityWriter(repo),
		validate: newStructValidator(),
		opts:     opts,
		now:      time.Now,
	}
}

// Import processes every row of the batch in order. Row failures are
// collected in the returned Summary; only structural problems (no rows, too
// many rows, references unavailable) return an error, and in that case
// nothing has been written or audited.
func (s *Service) Import(ctx context.Context, b Batch) (*Summary, error) {
	total := len(b.Rows)
	b.report(Progress{State: StateValidating, Total: total})

	if total == 0 {
		b.report(Progress{State: StateFailed})
		return nil, ErrNoData
	}
	if s.opts.MaxRows > 0 && total > s.opts.MaxRows {
		b.report(Progress{State: StateFailed, Total: total})
		return nil, fmt.Errorf("%w: %d rows, limit is %d", ErrTooManyRows, total, s.opts.MaxRows)
	}

	// Rows already written stay written; an aborted request must not stop
	// the batch halfway without an audit record.
	ctx = context.WithoutCancel(ctx)

	idx, err := s.loadReferences(ctx)
	if err != nil {
		b.report(Progress{State: StateFailed, Total: total})
		return nil, err
	}

	var existing []string
	if s.opts.RejectDuplicateNames {
		existing, err = s.repo.ListEntryNames(ctx)
		if err != nil {
			b.report(Progress{State: StateFailed, Total: total})
			return nil, fmt.Errorf("load entry names: %w", err)
		}
	}
	rv := newRowValidator(s.validate, s.opts.RejectDuplicateNames, existing)

	started := s.now()
	sum := &Summary{Total: total, BatchID: "import-" + uuid.New().String()}
	b.report(Progress{State: StateProcessing, Total: total})

	for i, raw := range b.Rows {
		rowNum := b.rowNumber(i)
		sum.add(s.processRow(ctx, rowNum, raw, idx, rv, b.ActorID))
		b.report(Progress{State: StateProcessing, Processed: i + 1, Total: total})
	}

	b.report(Progress{State: StateFinalizing, Processed: total, Total: total})
	sum.Message = summaryMessage(sum.Imported, sum.Total, sum.Failed())
	sum.AuditID = s.recordAudit(ctx, b, sum)

	logger.Info("catalog import finished",
		"batch_id", sum.BatchID,
		"source", string(b.Source),
		"actor", b.ActorID,
		"imported", sum.Imported,
		"total", sum.Total,
		"failed", sum.Failed(),
		"warnings", len(sum.Warnings),
		"duration_ms", s.now().Sub(started).Milliseconds(),
	)
	b.report(Progress{State: StateDone, Processed: total, Total: total})
	return sum, nil
}

func (s *Service) loadReferences(ctx context.Context) (*ReferenceIndex, error) {
	cats, err := s.repo.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("load categories: %w", err)
	}
	groups, err := s.repo.ListTargetGroups(ctx)
	if err != nil {
		return nil, fmt.Errorf("load target groups: %w", err)
	}
	return BuildReferenceIndex(cats, groups), nil
}

// processRow runs one row through normalize, resolve, validate and write.
// It never panics and never returns an error; the outcome is a value.
func (s *Service) processRow(ctx context.Context, rowNum int, raw datanorm.Row, idx *ReferenceIndex, rv *rowValidator, actorID string) (res rowResult) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("catalog import: row panicked", "row", rowNum, "panic", r)
			res = rowResult{err: &ImportError{Row: rowNum, Message: fmt.Sprintf("unexpected error: %v", r)}}
		}
	}()

	row := datanorm.Normalize(raw)
	resolved := idx.Resolve(row)

	if d := rv.Validate(rowNum, row); !d.Accepted {
		return rowResult{err: d.Error}
	}

	id, linkErrs, err := s.writer.Write(ctx, resolved, actorID)
	if err != nil {
		logger.Warn("catalog import: row not written", "row", rowNum, "error", err)
		return rowResult{err: &ImportError{Row: rowNum, Message: err.Error()}}
	}
	rv.remember(row.Name)

	warnings := idx.unmatchedWarnings(rowNum, resolved)
	for _, le := range linkErrs {
		logger.Warn("catalog import: link failed", "row", rowNum, "entry_id", id, "error", le)
		warnings = append(warnings, fmt.Sprintf("Row %d: %s", rowNum, le.Error()))
	}
	return rowResult{entryID: id, warnings: warnings}
}

type auditDetails struct {
	Imported int    `json:"imported"`
	Total    int    `json:"total"`
	Failed   int    `json:"failed"`
	Warnings int    `json:"warnings"`
	Source   Source `json:"source"`
}

// recordAudit writes the batch's single audit record. A failure is logged
// and leaves the summary without an audit ID.
func (s *Service) recordAudit(ctx context.Context, b Batch, sum *Summary) string {
	details, err := json.Marshal(auditDetails{
		Imported: sum.Imported,
		Total:    sum.Total,
		Failed:   sum.Failed(),
		Warnings: len(sum.Warnings),
		Source:   b.Source,
	})
	if err != nil {
		logger.Error("catalog import: encode audit details", "batch_id", sum.BatchID, "error", err)
		return ""
	}

	rec := &domain.AuditRecord{
		Action:     domain.AuditImport,
		EntityType: domain.EntityCatalogEntry,
		EntityID:   sum.BatchID,
		ActorID:    b.ActorID,
		Details:    string(details),
		CreatedAt:  s.now().UTC(),
	}
	id, err := s.audit.Record(ctx, rec)
	if err != nil {
		logger.Error("catalog import: audit record failed", "batch_id", sum.BatchID, "error", err)
		return ""
	}
	return id
}
