// Package repository selects persistence backends from configuration. The
// concrete stores live in the postgres and dynamo subpackages.
package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ignite/software-catalog/internal/config"
	"github.com/ignite/software-catalog/internal/domain"
	"github.com/ignite/software-catalog/internal/repository/dynamo"
	"github.com/ignite/software-catalog/internal/repository/postgres"
	"github.com/ignite/software-catalog/internal/storage"
)

// AuditRecorder appends audit records.
type AuditRecorder interface {
	Record(ctx context.Context, rec *domain.AuditRecord) (string, error)
}

// NewAuditRecorder returns the audit backend named by cfg.Audit.Backend.
// DynamoDB uses the storage section's region and profile.
func NewAuditRecorder(ctx context.Context, cfg *config.Config, db *sql.DB) (AuditRecorder, error) {
	switch cfg.Audit.Backend {
	case "", "postgres":
		return postgres.NewAuditRepo(db), nil
	case "dynamodb":
		awsCfg, err := storage.LoadAWSConfig(ctx, cfg.Storage.AWSRegion, cfg.Storage)
		if err != nil {
			return nil, err
		}
		return dynamo.NewAuditRepoFromConfig(awsCfg, cfg.Audit.DynamoDBTable), nil
	default:
		return nil, fmt.Errorf("audit: unknown backend %q", cfg.Audit.Backend)
	}
}
