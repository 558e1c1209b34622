package catalog

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/ignite/software-catalog/internal/domain"
	"github.com/ignite/software-catalog/internal/pkg/logger"
)

// Service implements catalog administration. It is safe for concurrent use.
type Service struct {
	repo  Repository
	audit AuditRecorder
}

// NewService creates a catalog service backed by the given repository.
func NewService(repo Repository, audit AuditRecorder) *Service {
	return &Service{repo: repo, audit: audit}
}

// ListEntries returns entries matching the filter and the total count.
func (s *Service) ListEntries(ctx context.Context, f ListFilter) ([]domain.CatalogEntry, int, error) {
	if f.Limit <= 0 || f.Limit > 500 {
		f.Limit = 100
	}
	f.Search = strings.TrimSpace(f.Search)
	return s.repo.ListEntries(ctx, f)
}

// GetEntry returns a single entry.
func (s *Service) GetEntry(ctx context.Context, id string) (*domain.CatalogEntry, error) {
	return s.repo.GetEntry(ctx, id)
}

// DeleteEntry removes an entry and records who did it.
func (s *Service) DeleteEntry(ctx context.Context, id, actorID string) error {
	if err := s.repo.DeleteEntry(ctx, id); err != nil {
		return err
	}
	s.record(ctx, domain.AuditDelete, domain.EntityCatalogEntry, id, actorID, nil)
	return nil
}

// ListCategories returns all categories.
func (s *Service) ListCategories(ctx context.Context) ([]domain.Category, error) {
	return s.repo.ListCategories(ctx)
}

// ListTargetGroups returns all target groups.
func (s *Service) ListTargetGroups(ctx context.Context) ([]domain.TargetGroup, error) {
	return s.repo.ListTargetGroups(ctx)
}

// CreateCategory adds a category. Names are unique case-insensitively.
func (s *Service) CreateCategory(ctx context.Context, c *domain.Category, actorID string) (*domain.Category, error) {
	c.Name = strings.TrimSpace(c.Name)
	if c.Name == "" {
		return nil, ErrNameRequired
	}
	existing, err := s.repo.ListCategories(ctx)
	if err != nil {
		return nil, err
	}
	for _, e := range existing {
		if domain.FoldName(e.Name) == domain.FoldName(c.Name) {
			return nil, ErrDuplicateName
		}
	}
	if _, err := s.repo.CreateCategory(ctx, c); err != nil {
		return nil, err
	}
	s.record(ctx, domain.AuditCreate, domain.EntityCategory, c.ID, actorID, map[string]string{"name": c.Name})
	return c, nil
}

// CreateTargetGroup adds a target group. Names are unique case-insensitively.
func (s *Service) CreateTargetGroup(ctx context.Context, g *domain.TargetGroup, actorID string) (*domain.TargetGroup, error) {
	g.Name = strings.TrimSpace(g.Name)
	if g.Name == "" {
		return nil, ErrNameRequired
	}
	existing, err := s.repo.ListTargetGroups(ctx)
	if err != nil {
		return nil, err
	}
	for _, e := range existing {
		if domain.FoldName(e.Name) == domain.FoldName(g.Name) {
			return nil, ErrDuplicateName
		}
	}
	if _, err := s.repo.CreateTargetGroup(ctx, g); err != nil {
		return nil, err
	}
	s.record(ctx, domain.AuditCreate, domain.EntityTargetGroup, g.ID, actorID, map[string]string{"name": g.Name})
	return g, nil
}

// record writes an audit entry. Failures are logged only.
func (s *Service) record(ctx context.Context, action domain.AuditAction, entityType, entityID, actorID string, details map[string]string) {
	if s.audit == nil {
		return
	}
	payload := "{}"
	if len(details) > 0 {
		if b, err := json.Marshal(details); err == nil {
			payload = string(b)
		}
	}
	_, err := s.audit.Record(ctx, &domain.AuditRecord{
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		ActorID:    actorID,
		Details:    payload,
		CreatedAt:  time.Now().UTC(),
	})
	if err != nil {
		logger.Error("catalog: audit record failed", "action", string(action), "entity_id", entityID, "error", err)
	}
}
