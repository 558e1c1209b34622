package postgres

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignite/software-catalog/internal/domain"
	"github.com/ignite/software-catalog/internal/service/catalog"
	"github.com/ignite/software-catalog/internal/service/catalogimport"
)

var (
	_ catalog.Repository          = (*CatalogRepo)(nil)
	_ catalogimport.Repository    = (*CatalogRepo)(nil)
	_ catalogimport.AuditRecorder = (*AuditRepo)(nil)
	_ catalog.AuditRecorder       = (*AuditRepo)(nil)
)

func setupRepo(t *testing.T) (*CatalogRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewCatalogRepo(db), mock
}

func entryRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "name", "short_description", "description", "url", "logo_url",
		"types", "costs", "available", "name_en", "short_description_en",
		"description_en", "costs_en", "features", "alternatives", "notes",
		"created_by", "created_at", "updated_at",
	})
}

func TestCreateEntry_AssignsID(t *testing.T) {
	repo, mock := setupRepo(t)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO catalog_entries")).
		WillReturnResult(sqlmock.NewResult(0, 1))

	e := &domain.CatalogEntry{Name: "Nextcloud", Types: []string{"Web"}, Available: true}
	id, err := repo.CreateEntry(context.Background(), e)
	require.NoError(t, err)
	assert.NotEmpty(t, id)
	assert.Equal(t, id, e.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateEntry_WrapsError(t *testing.T) {
	repo, mock := setupRepo(t)
	boom := errors.New("connection reset")

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO catalog_entries")).WillReturnError(boom)

	_, err := repo.CreateEntry(context.Background(), &domain.CatalogEntry{Name: "x"})
	assert.ErrorIs(t, err, boom)
}

func TestLinkCategory_IsIdempotentInsert(t *testing.T) {
	repo, mock := setupRepo(t)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO catalog_entry_categories (entry_id, category_id)") + `(.|\n)*ON CONFLICT DO NOTHING`).
		WithArgs("e1", "c1").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO catalog_entry_target_groups (entry_id, target_group_id)")).
		WithArgs("e1", "t1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.LinkCategory(context.Background(), "e1", "c1"))
	require.NoError(t, repo.LinkTargetGroup(context.Background(), "e1", "t1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListEntryNames(t *testing.T) {
	repo, mock := setupRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT name FROM catalog_entries")).
		WillReturnRows(sqlmock.NewRows([]string{"name"}).AddRow("Nextcloud").AddRow("Moodle"))

	names, err := repo.ListEntryNames(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Nextcloud", "Moodle"}, names)
}

func TestListEntries_FiltersAndLoadsLinks(t *testing.T) {
	repo, mock := setupRepo(t)
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM catalog_entries WHERE TRUE AND (name ILIKE $1")).
		WithArgs("%cloud%", "c1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(regexp.QuoteMeta("LIMIT $3 OFFSET $4")).
		WithArgs("%cloud%", "c1", 20, 0).
		WillReturnRows(entryRows().AddRow(
			"e1", "Nextcloud", "Dateien teilen", "", "https://nextcloud.com", "",
			"{Web,Mobile}", "kostenlos", true, "", "",
			"", "", "", "", "",
			"admin@example.org", now, now,
		))
	mock.ExpectQuery(regexp.QuoteMeta("FROM catalog_entry_categories")).
		WillReturnRows(sqlmock.NewRows([]string{"entry_id", "category_id"}).AddRow("e1", "c1").AddRow("e1", "c2"))
	mock.ExpectQuery(regexp.QuoteMeta("FROM catalog_entry_target_groups")).
		WillReturnRows(sqlmock.NewRows([]string{"entry_id", "target_group_id"}))

	got, total, err := repo.ListEntries(context.Background(), catalog.ListFilter{Search: "cloud", CategoryID: "c1", Limit: 20})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, got, 1)
	assert.Equal(t, []string{"Web", "Mobile"}, got[0].Types)
	assert.Equal(t, []string{"c1", "c2"}, got[0].CategoryIDs)
	assert.Equal(t, []string{}, got[0].TargetGroupIDs)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetEntry_CategoryLinkIterationError(t *testing.T) {
	repo, mock := setupRepo(t)
	now := time.Now()
	broken := errors.New("connection reset by peer")

	mock.ExpectQuery(regexp.QuoteMeta("FROM catalog_entries WHERE id = $1")).
		WithArgs("e1").
		WillReturnRows(entryRows().AddRow(
			"e1", "Nextcloud", "", "", "", "",
			"{}", "", true, "", "",
			"", "", "", "", "",
			"admin@example.org", now, now,
		))
	mock.ExpectQuery(regexp.QuoteMeta("FROM catalog_entry_categories")).
		WillReturnRows(sqlmock.NewRows([]string{"entry_id", "category_id"}).
			AddRow("e1", "c1").
			AddRow("e1", "c2").
			RowError(1, broken))

	_, err := repo.GetEntry(context.Background(), "e1")
	require.Error(t, err)
	assert.ErrorIs(t, err, broken)
	assert.Contains(t, err.Error(), "load category links")
	assert.NoError(t, mock.ExpectationsWereMet(), "target group links must not be queried")
}

func TestGetEntry_NotFound(t *testing.T) {
	repo, mock := setupRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM catalog_entries WHERE id = $1")).
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetEntry(context.Background(), "missing")
	assert.ErrorIs(t, err, catalog.ErrNotFound)
}

func TestDeleteEntry(t *testing.T) {
	t.Run("removes joins then entry", func(t *testing.T) {
		repo, mock := setupRepo(t)
		mock.ExpectBegin()
		mock.ExpectExec(regexp.QuoteMeta("DELETE FROM catalog_entry_categories")).WithArgs("e1").WillReturnResult(sqlmock.NewResult(0, 2))
		mock.ExpectExec(regexp.QuoteMeta("DELETE FROM catalog_entry_target_groups")).WithArgs("e1").WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(regexp.QuoteMeta("DELETE FROM catalog_entries")).WithArgs("e1").WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		require.NoError(t, repo.DeleteEntry(context.Background(), "e1"))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unknown id rolls back", func(t *testing.T) {
		repo, mock := setupRepo(t)
		mock.ExpectBegin()
		mock.ExpectExec(regexp.QuoteMeta("DELETE FROM catalog_entry_categories")).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec(regexp.QuoteMeta("DELETE FROM catalog_entry_target_groups")).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec(regexp.QuoteMeta("DELETE FROM catalog_entries")).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectRollback()

		assert.ErrorIs(t, repo.DeleteEntry(context.Background(), "nope"), catalog.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestReferences(t *testing.T) {
	repo, mock := setupRepo(t)
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta("FROM catalog_categories")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "description", "name_en", "description_en", "created_at"}).
			AddRow("c1", "Kollaboration", "", "Collaboration", "", now))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO catalog_target_groups")).
		WillReturnResult(sqlmock.NewResult(0, 1))

	cats, err := repo.ListCategories(context.Background())
	require.NoError(t, err)
	require.Len(t, cats, 1)
	assert.Equal(t, "Collaboration", cats[0].NameEN)

	g := &domain.TargetGroup{Name: "Eltern"}
	id, err := repo.CreateTargetGroup(context.Background(), g)
	require.NoError(t, err)
	assert.Equal(t, g.ID, id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAuditRepo_Record(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewAuditRepo(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO audit_log")).
		WithArgs(sqlmock.AnyArg(), "IMPORT", domain.EntityCatalogEntry, "import-1", "admin@example.org", `{"imported":1}`, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	id, err := repo.Record(context.Background(), &domain.AuditRecord{
		Action:     domain.AuditImport,
		EntityType: domain.EntityCatalogEntry,
		EntityID:   "import-1",
		ActorID:    "admin@example.org",
		Details:    `{"imported":1}`,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, id)
	assert.NoError(t, mock.ExpectationsWereMet())
}
