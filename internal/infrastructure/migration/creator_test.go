package migration

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"add ledger index", "add_ledger_index"},
		{"Add-Ledger-Index", "add_ledger_index"},
		{"ADD_LEDGER_INDEX", "add_ledger_index"},
		{"add__ledger__index", "add_ledger_index"},
		{"Store Items 2", "store_items_2"},
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

func TestCreate(t *testing.T) {
	dir := t.TempDir()

	first, err := Create(dir, "create ledger tables", "Ledger documents and master data")
	require.NoError(t, err)
	assert.Equal(t, uint(1), first.Version)
	assert.Equal(t, filepath.Join(dir, "000001_create_ledger_tables.up.sql"), first.UpPath)
	assert.Equal(t, filepath.Join(dir, "000001_create_ledger_tables.down.sql"), first.DownPath)

	up, err := os.ReadFile(first.UpPath)
	require.NoError(t, err)
	assert.Contains(t, string(up), "-- create_ledger_tables")
	assert.Contains(t, string(up), "-- Ledger documents and master data")

	down, err := os.ReadFile(first.DownPath)
	require.NoError(t, err)
	assert.Contains(t, string(down), "Rollback: create_ledger_tables")

	second, err := Create(dir, "add account index", "")
	require.NoError(t, err)
	assert.Equal(t, uint(2), second.Version)

	up, err = os.ReadFile(second.UpPath)
	require.NoError(t, err)
	assert.NotContains(t, string(up), "-- \n")
}

func TestCreate_RejectsEmptyName(t *testing.T) {
	_, err := Create(t.TempDir(), "!!!", "")
	require.Error(t, err)
}

func TestCreate_DoesNotOverwrite(t *testing.T) {
	dir := t.TempDir()
	// A stray down file without its up file is invisible to List.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "000001_dup.down.sql"), []byte("keep"), 0o644))

	_, err := Create(dir, "dup", "")
	require.Error(t, err)

	_, statErr := os.Stat(filepath.Join(dir, "000001_dup.up.sql"))
	assert.True(t, os.IsNotExist(statErr), "up file is removed when the down file fails")

	kept, err := os.ReadFile(filepath.Join(dir, "000001_dup.down.sql"))
	require.NoError(t, err)
	assert.Equal(t, "keep", string(kept))
}

func TestList(t *testing.T) {
	t.Run("missing directory", func(t *testing.T) {
		files, err := List(filepath.Join(t.TempDir(), "absent"))
		require.NoError(t, err)
		assert.Empty(t, files)
	})

	t.Run("orders by version and skips unrelated files", func(t *testing.T) {
		dir := t.TempDir()
		for _, name := range []string{
			"000010_later.up.sql",
			"000010_later.down.sql",
			"000002_earlier.up.sql",
			"000002_earlier.down.sql",
			"README.md",
			"notaversion_x.up.sql",
		} {
			require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0o644))
		}
		require.NoError(t, os.Mkdir(filepath.Join(dir, "000003_dir.up.sql"), 0o755))

		files, err := List(dir)
		require.NoError(t, err)
		require.Len(t, files, 2)
		assert.Equal(t, uint(2), files[0].Version)
		assert.Equal(t, "earlier", files[0].Name)
		assert.Equal(t, uint(10), files[1].Version)
		assert.Equal(t, filepath.Join(dir, "000010_later.down.sql"), files[1].DownPath)
	})
}

func TestListShippedMigrations(t *testing.T) {
	files, err := List(filepath.Join("..", "..", "..", "migrations"))
	require.NoError(t, err)
	require.NotEmpty(t, files)
	assert.Equal(t, uint(1), files[0].Version)
	for _, f := range files {
		_, err := os.Stat(f.DownPath)
		assert.NoError(t, err, "missing rollback for %s", f.Name)
	}
}
