package migrations

import (
	"io/fs"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEmbeddedMigrations(t *testing.T) {
	entries, err := fs.ReadDir(FS, "postgres")
	require.NoError(t, err)
	require.NotEmpty(t, entries, "at least one migration must be embedded")

	var names []string
	for _, entry := range entries {
		require.False(t, entry.IsDir())
		require.True(t, strings.HasSuffix(entry.Name(), ".sql"), "unexpected file %s", entry.Name())
		names = append(names, entry.Name())
	}

	// Lexical order is the apply order; numeric prefixes must keep it stable.
	require.True(t, sort.StringsAreSorted(names))

	for _, name := range names {
		data, err := fs.ReadFile(FS, "postgres/"+name)
		require.NoError(t, err)
		require.NotEmpty(t, strings.TrimSpace(string(data)), "migration %s is empty", name)
	}
}

func TestInitialSchema(t *testing.T) {
	data, err := fs.ReadFile(FS, "postgres/001_init.sql")
	require.NoError(t, err)

	schema := string(data)
	for _, table := range []string{"markets", "price_points", "change_windows"} {
		require.Contains(t, schema, "CREATE TABLE IF NOT EXISTS "+table, "table %s missing", table)
	}
}
