package sqldb_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/cts/internal/adapters/sqldb"
	"github.com/example/cts/internal/core/errs"
	"github.com/example/cts/internal/ports/secondary"
)

func strPtr(s string) *string { return &s }

func intPtr(i int) *int { return &i }

func TestFormTemplateRepository_CRUD(t *testing.T) {
	ctx := context.Background()
	repo := sqldb.NewFormTemplateRepository(setupTestDB(t))

	rec := &secondary.FormTemplateRecord{
		ID:          "T1",
		Name:        "survey",
		Title:       "Site survey",
		Content:     `{"form":{}}`,
		Version:     "1.0",
		Description: strPtr("first"),
		CreatedAt:   time.Now(),
	}
	require.NoError(t, repo.Create(ctx, rec))

	got, err := repo.GetByID(ctx, "T1")
	require.NoError(t, err)
	assert.Equal(t, "survey", got.Name)
	assert.Equal(t, "first", *got.Description)
	assert.Nil(t, got.Remark)
	assert.Nil(t, got.UpdatedAt)

	now := time.Now()
	got.Title = "Renamed"
	got.UpdatedAt = &now
	require.NoError(t, repo.Update(ctx, got))

	got, err = repo.GetByID(ctx, "T1")
	require.NoError(t, err)
	assert.Equal(t, "Renamed", got.Title)
	assert.NotNil(t, got.UpdatedAt)

	require.NoError(t, repo.SoftDelete(ctx, "T1", time.Now()))
	_, err = repo.GetByID(ctx, "T1")
	assert.ErrorIs(t, err, errs.ErrNotFound)

	raw, err := repo.GetAnyByID(ctx, "T1")
	require.NoError(t, err)
	assert.NotNil(t, raw.DeletedAt)

	assert.ErrorIs(t, repo.SoftDelete(ctx, "T1", time.Now()), errs.ErrNotFound, "already deleted")

	require.NoError(t, repo.Delete(ctx, "T1"))
	assert.ErrorIs(t, repo.Delete(ctx, "T1"), errs.ErrNotFound)
}

func TestFormTemplateRepository_DuplicateName(t *testing.T) {
	ctx := context.Background()
	repo := sqldb.NewFormTemplateRepository(setupTestDB(t))

	require.NoError(t, repo.Create(ctx, &secondary.FormTemplateRecord{ID: "T1", Name: "dup", Content: "{}", CreatedAt: time.Now()}))
	err := repo.Create(ctx, &secondary.FormTemplateRecord{ID: "T2", Name: "dup", Content: "{}", CreatedAt: time.Now()})
	assert.ErrorIs(t, err, errs.ErrConflict)
}

func TestFormTemplateRepository_Search(t *testing.T) {
	ctx := context.Background()
	testDB := setupTestDB(t)
	repo := sqldb.NewFormTemplateRepository(testDB)

	base := time.Now()
	for i, name := range []string{"water survey", "road survey", "census"} {
		require.NoError(t, repo.Create(ctx, &secondary.FormTemplateRecord{
			ID:        "T" + name[:1],
			Name:      name,
			Title:     "t",
			Content:   "{}",
			Version:   "1.0",
			CreatedAt: base.Add(time.Duration(i) * time.Second),
		}))
	}
	require.NoError(t, repo.SoftDelete(ctx, "Tc", time.Now()))

	records, total, err := repo.Search(ctx, secondary.FormTemplateFilters{Name: "survey", PageNo: 1, PageSize: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, records, 2)
	assert.Equal(t, "road survey", records[0].Name, "newest first")

	records, total, err = repo.Search(ctx, secondary.FormTemplateFilters{PageNo: 2, PageSize: 1})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total, "soft-deleted templates are excluded")
	require.Len(t, records, 1)
	assert.Equal(t, "water survey", records[0].Name)

	records, _, err = repo.Search(ctx, secondary.FormTemplateFilters{Version: "2.0"})
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestProjectRepository_CRUD(t *testing.T) {
	ctx := context.Background()
	testDB := setupTestDB(t)
	seedTemplate(t, testDB, "T1", "survey")
	repo := sqldb.NewProjectRepository(testDB)

	seedProject(t, testDB, "P1", "C-1", "T1")

	got, err := repo.GetByID(ctx, "P1")
	require.NoError(t, err)
	assert.Equal(t, "C-1", got.Code)
	assert.Equal(t, "abc", got.DataTableName)

	now := time.Now()
	got.Status = 3
	got.Remark = strPtr("checked")
	got.UpdatedAt = &now
	require.NoError(t, repo.Update(ctx, got))

	got, err = repo.GetByID(ctx, "P1")
	require.NoError(t, err)
	assert.Equal(t, 3, got.Status)
	assert.Equal(t, "checked", *got.Remark)

	n, err := repo.CountByTemplate(ctx, "T1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	require.NoError(t, repo.SoftDelete(ctx, "P1", time.Now()))
	_, err = repo.GetByID(ctx, "P1")
	assert.ErrorIs(t, err, errs.ErrNotFound)

	n, err = repo.CountByTemplate(ctx, "T1")
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)

	assert.ErrorIs(t, repo.Update(ctx, got), errs.ErrNotFound, "soft-deleted projects are not updated")
}

func TestProjectRepository_Search(t *testing.T) {
	ctx := context.Background()
	testDB := setupTestDB(t)
	seedTemplate(t, testDB, "T1", "survey")
	repo := sqldb.NewProjectRepository(testDB)

	seedProject(t, testDB, "P1", "C-1", "T1")
	seedProject(t, testDB, "P2", "C-2", "T1")
	require.NoError(t, repo.Create(ctx, &secondary.ProjectRecord{
		ID: "P3", Name: "Other", Code: "X-3", FormTemplateID: "T1", DataTableName: "def", Type: 2, CreatedAt: time.Now(),
	}))

	tests := []struct {
		name      string
		filters   secondary.ProjectFilters
		wantTotal int64
	}{
		{name: "all", filters: secondary.ProjectFilters{}, wantTotal: 3},
		{name: "by name", filters: secondary.ProjectFilters{Name: "Project"}, wantTotal: 2},
		{name: "by code", filters: secondary.ProjectFilters{Code: "X-3"}, wantTotal: 1},
		{name: "by type", filters: secondary.ProjectFilters{Type: intPtr(2)}, wantTotal: 1},
		{name: "by status", filters: secondary.ProjectFilters{Status: intPtr(0)}, wantTotal: 3},
		{name: "no match", filters: secondary.ProjectFilters{Code: "nope"}, wantTotal: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records, total, err := repo.Search(ctx, tt.filters)
			require.NoError(t, err)
			assert.Equal(t, tt.wantTotal, total)
			assert.Len(t, records, int(tt.wantTotal))
		})
	}
}

func TestUserRepository(t *testing.T) {
	ctx := context.Background()
	repo := sqldb.NewUserRepository(setupTestDB(t))

	require.NoError(t, repo.Create(ctx, &secondary.UserRecord{
		ID: "U1", Username: "admin", PasswordHash: "hash", CreatedAt: time.Now(),
	}))

	u, err := repo.GetByUsername(ctx, "admin")
	require.NoError(t, err)
	assert.Equal(t, "U1", u.ID)
	assert.Nil(t, u.Nickname)

	_, err = repo.GetByUsername(ctx, "ghost")
	assert.ErrorIs(t, err, errs.ErrNotFound)

	err = repo.Create(ctx, &secondary.UserRecord{ID: "U2", Username: "admin", PasswordHash: "x", CreatedAt: time.Now()})
	assert.ErrorIs(t, err, errs.ErrConflict)
}

func TestFormTemplateRepository_DeleteReferencedIsConflict(t *testing.T) {
	ctx := context.Background()
	testDB := setupTestDB(t)
	seedTemplate(t, testDB, "T1", "survey")
	seedProject(t, testDB, "P1", "C-1", "T1")

	err := sqldb.NewFormTemplateRepository(testDB).Delete(ctx, "T1")
	assert.ErrorIs(t, err, errs.ErrConflict)
}
