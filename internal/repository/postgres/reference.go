package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/ignite/software-catalog/internal/domain"
)

func (r *CatalogRepo) ListCategories(ctx context.Context) ([]domain.Category, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, description, name_en, description_en, created_at
		FROM catalog_categories
		ORDER BY created_at, id
	`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var out []domain.Category
	for rows.Next() {
		var c domain.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Description, &c.NameEN, &c.DescriptionEN, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *CatalogRepo) CreateCategory(ctx context.Context, c *domain.Category) (string, error) {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO catalog_categories (id, name, description, name_en, description_en, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
	`, c.ID, c.Name, c.Description, c.NameEN, c.DescriptionEN)
	if err != nil {
		return "", fmt.Errorf("create category: %w", err)
	}
	return c.ID, nil
}

func (r *CatalogRepo) ListTargetGroups(ctx context.Context) ([]domain.TargetGroup, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, description, name_en, description_en, created_at
		FROM catalog_target_groups
		ORDER BY created_at, id
	`)
	if err != nil {
		return nil, fmt.Errorf("list target groups: %w", err)
	}
	defer rows.Close()

	var out []domain.TargetGroup
	for rows.Next() {
		var g domain.TargetGroup
		if err := rows.Scan(&g.ID, &g.Name, &g.Description, &g.NameEN, &g.DescriptionEN, &g.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan target group: %w", err)
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

func (r *CatalogRepo) CreateTargetGroup(ctx context.Context, g *domain.TargetGroup) (string, error) {
	if g.ID == "" {
		g.ID = uuid.New().String()
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO catalog_target_groups (id, name, description, name_en, description_en, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
	`, g.ID, g.Name, g.Description, g.NameEN, g.DescriptionEN)
	if err != nil {
		return "", fmt.Errorf("create target group: %w", err)
	}
	return g.ID, nil
}
