package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ignite/software-catalog/internal/domain"
)

// AuditRepo appends audit records to the audit_log table. Records are never
// updated or deleted.
type AuditRepo struct{ db *sql.DB }

// NewAuditRepo creates a Postgres-backed audit log.
func NewAuditRepo(db *sql.DB) *AuditRepo { return &AuditRepo{db: db} }

func (r *AuditRepo) Record(ctx context.Context, rec *domain.AuditRecord) (string, error) {
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	details := rec.Details
	if details == "" {
		details = "{}"
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO audit_log (id, action, entity_type, entity_id, actor_id, details, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, rec.ID, string(rec.Action), rec.EntityType, rec.EntityID, rec.ActorID, details, rec.CreatedAt)
	if err != nil {
		return "", fmt.Errorf("record audit: %w", err)
	}
	return rec.ID, nil
}
