package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/ignite/software-catalog/internal/domain"
	"github.com/ignite/software-catalog/internal/service/catalog"
)

// CatalogRepo implements catalog.Repository and catalogimport.Repository
// against PostgreSQL.
type CatalogRepo struct{ db *sql.DB }

// NewCatalogRepo creates a Postgres-backed catalog repository.
func NewCatalogRepo(db *sql.DB) *CatalogRepo { return &CatalogRepo{db: db} }

const entryColumns = `id, name, short_description, description, url, logo_url,
		       types, costs, available, name_en, short_description_en,
		       description_en, costs_en, features, alternatives, notes,
		       created_by, created_at, updated_at`

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanEntry(s scanner, e *domain.CatalogEntry) error {
	var types pq.StringArray
	if err := s.Scan(
		&e.ID, &e.Name, &e.ShortDescription, &e.Description, &e.URL, &e.LogoURL,
		&types, &e.Costs, &e.Available, &e.NameEN, &e.ShortDescriptionEN,
		&e.DescriptionEN, &e.CostsEN, &e.Features, &e.Alternatives, &e.Notes,
		&e.CreatedBy, &e.CreatedAt, &e.UpdatedAt,
	); err != nil {
		return err
	}
	e.Types = []string(types)
	if e.Types == nil {
		e.Types = []string{}
	}
	return nil
}

func (r *CatalogRepo) CreateEntry(ctx context.Context, e *domain.CatalogEntry) (string, error) {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	types := e.Types
	if types == nil {
		types = []string{}
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO catalog_entries
			(id, name, short_description, description, url, logo_url, types,
			 costs, available, name_en, short_description_en, description_en,
			 costs_en, features, alternatives, notes, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, NOW(), NOW())
	`, e.ID, e.Name, e.ShortDescription, e.Description, e.URL, e.LogoURL, pq.Array(types),
		e.Costs, e.Available, e.NameEN, e.ShortDescriptionEN, e.DescriptionEN,
		e.CostsEN, e.Features, e.Alternatives, e.Notes, e.CreatedBy)
	if err != nil {
		return "", fmt.Errorf("create entry: %w", err)
	}
	return e.ID, nil
}

func (r *CatalogRepo) LinkCategory(ctx context.Context, entryID, categoryID string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO catalog_entry_categories (entry_id, category_id)
		VALUES ($1, $2)
		ON CONFLICT DO NOTHING
	`, entryID, categoryID)
	if err != nil {
		return fmt.Errorf("link category: %w", err)
	}
	return nil
}

func (r *CatalogRepo) LinkTargetGroup(ctx context.Context, entryID, targetGroupID string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO catalog_entry_target_groups (entry_id, target_group_id)
		VALUES ($1, $2)
		ON CONFLICT DO NOTHING
	`, entryID, targetGroupID)
	if err != nil {
		return fmt.Errorf("link target group: %w", err)
	}
	return nil
}

func (r *CatalogRepo) ListEntryNames(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT name FROM catalog_entries`)
	if err != nil {
		return nil, fmt.Errorf("list entry names: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, fmt.Errorf("scan entry name: %w", err)
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

func (r *CatalogRepo) ListEntries(ctx context.Context, f catalog.ListFilter) ([]domain.CatalogEntry, int, error) {
	limit := f.Limit
	if limit <= 0 {
		limit = 100
	}

	where := ""
	var args []interface{}
	idx := 1
	if f.Search != "" {
		where += fmt.Sprintf(" AND (name ILIKE $%d OR short_description ILIKE $%d)", idx, idx)
		args = append(args, "%"+escapeLike(f.Search)+"%")
		idx++
	}
	if f.CategoryID != "" {
		where += fmt.Sprintf(" AND id IN (SELECT entry_id FROM catalog_entry_categories WHERE category_id = $%d)", idx)
		args = append(args, f.CategoryID)
		idx++
	}

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM catalog_entries WHERE TRUE`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count entries: %w", err)
	}

	q := `SELECT ` + entryColumns + ` FROM catalog_entries WHERE TRUE` + where +
		fmt.Sprintf(" ORDER BY LOWER(name), id LIMIT $%d OFFSET $%d", idx, idx+1)
	rows, err := r.db.QueryContext(ctx, q, append(args, limit, f.Offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("list entries: %w", err)
	}
	defer rows.Close()

	var out []domain.CatalogEntry
	for rows.Next() {
		var e domain.CatalogEntry
		if err := scanEntry(rows, &e); err != nil {
			return nil, 0, fmt.Errorf("scan entry: %w", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	if err := r.loadLinks(ctx, out); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (r *CatalogRepo) GetEntry(ctx context.Context, id string) (*domain.CatalogEntry, error) {
	e := &domain.CatalogEntry{}
	err := scanEntry(r.db.QueryRowContext(ctx, `SELECT `+entryColumns+` FROM catalog_entries WHERE id = $1`, id), e)
	if err == sql.ErrNoRows {
		return nil, catalog.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get entry: %w", err)
	}
	entries := []domain.CatalogEntry{*e}
	if err := r.loadLinks(ctx, entries); err != nil {
		return nil, err
	}
	return &entries[0], nil
}

func (r *CatalogRepo) DeleteEntry(ctx context.Context, id string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM catalog_entry_categories WHERE entry_id = $1`, id); err != nil {
		return fmt.Errorf("delete category links: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM catalog_entry_target_groups WHERE entry_id = $1`, id); err != nil {
		return fmt.Errorf("delete target group links: %w", err)
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM catalog_entries WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete entry: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return catalog.ErrNotFound
	}
	return tx.Commit()
}

// loadLinks fills CategoryIDs and TargetGroupIDs for the given entries in
// two queries.
func (r *CatalogRepo) loadLinks(ctx context.Context, entries []domain.CatalogEntry) error {
	if len(entries) == 0 {
		return nil
	}
	pos := make(map[string]int, len(entries))
	ids := make([]string, len(entries))
	for i := range entries {
		ids[i] = entries[i].ID
		pos[entries[i].ID] = i
		entries[i].CategoryIDs = []string{}
		entries[i].TargetGroupIDs = []string{}
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT entry_id, category_id FROM catalog_entry_categories
		WHERE entry_id = ANY($1) ORDER BY entry_id, category_id
	`, pq.Array(ids))
	if err != nil {
		return fmt.Errorf("load category links: %w", err)
	}
	for rows.Next() {
		var entryID, refID string
		if err := rows.Scan(&entryID, &refID); err != nil {
			rows.Close()
			return fmt.Errorf("scan category link: %w", err)
		}
		if i, ok := pos[entryID]; ok {
			entries[i].CategoryIDs = append(entries[i].CategoryIDs, refID)
		}
	}
	err = rows.Err()
	rows.Close()
	if err != nil {
		return fmt.Errorf("load category links: %w", err)
	}

	rows, err = r.db.QueryContext(ctx, `
		SELECT entry_id, target_group_id FROM catalog_entry_target_groups
		WHERE entry_id = ANY($1) ORDER BY entry_id, target_group_id
	`, pq.Array(ids))
	if err != nil {
		return fmt.Errorf("load target group links: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var entryID, refID string
		if err := rows.Scan(&entryID, &refID); err != nil {
			return fmt.Errorf("scan target group link: %w", err)
		}
		if i, ok := pos[entryID]; ok {
			entries[i].TargetGroupIDs = append(entries[i].TargetGroupIDs, refID)
		}
	}
	return rows.Err()
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
