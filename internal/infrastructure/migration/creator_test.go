package migration

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/QodexGroup/gym-management-system-sub002/migrations"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"add bills table", "add_bills_table"},
		{"Add-Bills-Table", "add_bills_table"},
		{"ADD_BILLS_TABLE", "add_bills_table"},
		{"add__bills__table", "add_bills_table"},
		{"Add Plans 123", "add_plans_123"},
		{"   spaces   ", "spaces"},
		{"special!@#$chars", "specialchars"},
		{"trailing_", "trailing"},
		{"_leading", "leading"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, sanitizeName(tt.input))
		})
	}
}

func TestCreateMigration(t *testing.T) {
	tmpDir := t.TempDir()

	mf, err := CreateMigration(tmpDir, "add payment notes", "Free-form notes on payments")
	require.NoError(t, err)
	assert.Equal(t, "000001", mf.Version)
	assert.Equal(t, "000001_add_payment_notes.up.sql", filepath.Base(mf.UpPath))
	assert.Equal(t, "000001_add_payment_notes.down.sql", filepath.Base(mf.DownPath))

	upContent, err := os.ReadFile(mf.UpPath)
	require.NoError(t, err)
	assert.Contains(t, string(upContent), "add payment notes")
	assert.Contains(t, string(upContent), "Free-form notes on payments")

	downContent, err := os.ReadFile(mf.DownPath)
	require.NoError(t, err)
	assert.Contains(t, string(downContent), "Rollback")

	next, err := CreateMigration(tmpDir, "index payment dates", "")
	require.NoError(t, err)
	assert.Equal(t, "000002", next.Version)
}

func TestCreateMigration_ContinuesSequence(t *testing.T) {
	tmpDir := t.TempDir()
	for _, f := range []string{"000007_seed.up.sql", "000007_seed.down.sql"} {
		require.NoError(t, os.WriteFile(filepath.Join(tmpDir, f), []byte("-- seed"), 0o644))
	}

	mf, err := CreateMigration(tmpDir, "next", "")
	require.NoError(t, err)
	assert.Equal(t, "000008", mf.Version)
}

func TestCreateMigration_Errors(t *testing.T) {
	t.Run("unusable name", func(t *testing.T) {
		_, err := CreateMigration(t.TempDir(), "!!!", "")
		assert.Error(t, err)
	})

	t.Run("non-numeric existing version", func(t *testing.T) {
		tmpDir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "20240101_init.up.sql"), nil, 0o644))
		require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "init.up.sql"), nil, 0o644))

		_, err := CreateMigration(tmpDir, "next", "")
		assert.ErrorContains(t, err, "non-numeric version")
	})
}

func TestCreateMigration_CreatesDirectory(t *testing.T) {
	nestedPath := filepath.Join(t.TempDir(), "nested", "migrations")

	_, err := CreateMigration(nestedPath, "test", "test migration")
	require.NoError(t, err)

	info, err := os.Stat(nestedPath)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestListMigrations(t *testing.T) {
	tmpDir := t.TempDir()
	files := []string{
		"000002_add_payments.up.sql",
		"000002_add_payments.down.sql",
		"000001_init_schema.up.sql",
		"000001_init_schema.down.sql",
		"README.md",
	}
	for _, f := range files {
		require.NoError(t, os.WriteFile(filepath.Join(tmpDir, f), []byte("-- test"), 0o644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(tmpDir, "subdir.up.sql"), 0o755))

	list, err := ListMigrations(os.DirFS(tmpDir))
	require.NoError(t, err)
	assert.Equal(t, []string{"000001_init_schema", "000002_add_payments"}, list)
}

func TestListMigrations_NonexistentDirectory(t *testing.T) {
	list, err := ListMigrations(os.DirFS("/nonexistent/path/to/migrations"))
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestEmbeddedMigrations(t *testing.T) {
	list, err := ListMigrations(migrations.FS)
	require.NoError(t, err)
	require.NotEmpty(t, list)
	assert.Equal(t, "000001_create_ledger", list[0])

	for _, base := range list {
		up, err := migrations.FS.ReadFile(base + ".up.sql")
		require.NoError(t, err)
		assert.NotEmpty(t, strings.TrimSpace(string(up)))

		_, err = migrations.FS.ReadFile(base + ".down.sql")
		assert.NoError(t, err, "missing down migration for %s", base)
	}

	up, err := migrations.FS.ReadFile("000001_create_ledger.up.sql")
	require.NoError(t, err)
	assert.Contains(t, string(up), "idx_memberships_one_active")
}
