package source

import (
	"path/filepath"
	"testing"

	"github.com/huangsam/stepviz/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrateUnsupportedBackend(t *testing.T) {
	_, err := Migrate(schema.FileBackend, "", -1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "migrations are not supported")
}

func TestMigrateSQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "metrics.db")

	res, err := Migrate(schema.SQLiteBackend, path, 1)
	require.NoError(t, err)
	assert.Equal(t, MigrationResult{From: 0, To: 1, Changed: true}, res)

	res, err = Migrate(schema.SQLiteBackend, path, -1)
	require.NoError(t, err)
	assert.Equal(t, MigrationResult{From: 1, To: 2, Changed: true}, res)

	res, err = Migrate(schema.SQLiteBackend, path, -1)
	require.NoError(t, err)
	assert.False(t, res.Changed)
	assert.Equal(t, uint(2), res.To)

	res, err = Migrate(schema.SQLiteBackend, path, 0)
	require.NoError(t, err)
	assert.Equal(t, MigrationResult{From: 2, To: 0, Changed: true}, res)
}
