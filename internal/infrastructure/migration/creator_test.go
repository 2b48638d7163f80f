package migration

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeName(t *testing.T) {
	assert.Equal(t, "create_ledger_entries", sanitizeName("Create Ledger Entries"))
	assert.Equal(t, "add_index", sanitizeName("add-index"))
	assert.Equal(t, "v2_schema", sanitizeName("v2  schema!!"))
	assert.Equal(t, "trailing", sanitizeName("trailing-"))
}

func TestCreateMigration(t *testing.T) {
	dir := t.TempDir()

	mf, err := CreateMigration(dir, "create ledger entries")
	require.NoError(t, err)

	assert.FileExists(t, mf.UpPath)
	assert.FileExists(t, mf.DownPath)
	assert.Contains(t, mf.UpPath, "_create_ledger_entries.up.sql")

	up, err := os.ReadFile(mf.UpPath)
	require.NoError(t, err)
	assert.Contains(t, string(up), "create ledger entries")
}

func TestListMigrations(t *testing.T) {
	t.Run("lists pairs once, sorted", func(t *testing.T) {
		dir := t.TempDir()
		for _, name := range []string{
			"002_b.up.sql", "002_b.down.sql",
			"001_a.up.sql", "001_a.down.sql",
		} {
			require.NoError(t, os.WriteFile(dir+"/"+name, []byte("-- sql"), 0644))
		}

		migrations, err := ListMigrations(dir)
		require.NoError(t, err)
		assert.Equal(t, []string{"001_a", "002_b"}, migrations)
	})

	t.Run("missing directory yields empty list", func(t *testing.T) {
		migrations, err := ListMigrations("/nonexistent/migrations")
		require.NoError(t, err)
		assert.Empty(t, migrations)
	})
}
