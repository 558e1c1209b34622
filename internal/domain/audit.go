package domain

import "time"

// AuditAction tags what an audit record describes.
type AuditAction string

const (
	AuditImport AuditAction = "IMPORT"
	AuditCreate AuditAction = "CREATE"
	AuditDelete AuditAction = "DELETE"
)

// Entity types recorded in the audit log.
const (
	EntityCatalogEntry = "catalog_entry"
	EntityCategory     = "category"
	EntityTargetGroup  = "target_group"
)

// AuditRecord is an append-only log line. Details holds a JSON document.
type AuditRecord struct {
	ID         string      `json:"id" db:"id"`
	Action     AuditAction `json:"action" db:"action"`
	EntityType string      `json:"entityType" db:"entity_type"`
	EntityID   string      `json:"entityId" db:"entity_id"`
	ActorID    string      `json:"actorId" db:"actor_id"`
	Details    string      `json:"details" db:"details"`
	CreatedAt  time.Time   `json:"createdAt" db:"created_at"`
}
