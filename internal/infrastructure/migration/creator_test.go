package migration

import (
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storefront/backend/migrations"
)

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"add channel index", "add_channel_index"},
		{"Add-Channel-Index", "add_channel_index"},
		{"ADD__CHANNEL__INDEX", "add_channel_index"},
		{"   spaces   ", "spaces"},
		{"special!@#$chars", "specialchars"},
		{"_leading", "leading"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, sanitizeName(tt.input))
		})
	}
}

func TestCreateMigration_NumbersSequentially(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "migrations")

	first, err := CreateMigration(dir, "add sku index", "Index variants by sku")
	require.NoError(t, err)
	assert.EqualValues(t, 1, first.Version)
	assert.Equal(t, "000001_add_sku_index", first.Name)

	up, err := os.ReadFile(first.UpPath)
	require.NoError(t, err)
	assert.Contains(t, string(up), "Index variants by sku")
	down, err := os.ReadFile(first.DownPath)
	require.NoError(t, err)
	assert.Contains(t, string(down), "Rollback of 000001_add_sku_index")

	second, err := CreateMigration(dir, "drop legacy column", "")
	require.NoError(t, err)
	assert.EqualValues(t, 2, second.Version)
	assert.Equal(t, filepath.Join(dir, "000002_drop_legacy_column.up.sql"), second.UpPath)
}

func TestCreateMigration_RejectsEmptyName(t *testing.T) {
	_, err := CreateMigration(t.TempDir(), "!!!", "")
	assert.Error(t, err)
}

func TestListMigrations(t *testing.T) {
	fsys := fstest.MapFS{
		"000002_add_orders.up.sql":   {Data: []byte("--")},
		"000002_add_orders.down.sql": {Data: []byte("--")},
		"000001_init.up.sql":         {Data: []byte("--")},
		"000001_init.down.sql":       {Data: []byte("--")},
		"000003_no_rollback.up.sql":  {Data: []byte("--")},
		"README.md":                  {Data: []byte("docs")},
		"notes_without_version.sql":  {Data: []byte("--")},
		"subdir.up.sql/file":         {Data: []byte("--")},
	}

	list, err := ListMigrations(fsys)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, Entry{Version: 1, Name: "000001_init", HasDown: true}, list[0])
	assert.Equal(t, Entry{Version: 2, Name: "000002_add_orders", HasDown: true}, list[1])
	assert.Equal(t, "000003_no_rollback (no down)", list[2].String())
}

func TestListMigrations_NonexistentDirectory(t *testing.T) {
	list, err := ListMigrations(os.DirFS("/nonexistent/path/to/migrations"))
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestEmbeddedMigrationsArePaired(t *testing.T) {
	list, err := ListMigrations(migrations.FS)
	require.NoError(t, err)
	require.NotEmpty(t, list)
	for i, e := range list {
		assert.EqualValues(t, i+1, e.Version, "versions must be contiguous")
		assert.True(t, e.HasDown, "%s has no down migration", e.Name)
	}
}
