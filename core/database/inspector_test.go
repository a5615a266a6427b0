package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetTableColumns(t *testing.T) {
	db, err := Connect(Config{Driver: DriverSQLite, Path: ":memory:"})
	require.NoError(t, err)

	err = db.Exec("CREATE TABLE test_items (id INTEGER PRIMARY KEY, name TEXT, description TEXT)").Error
	require.NoError(t, err)

	columns, err := GetTableColumns(db, "test_items")
	assert.NoError(t, err)
	assert.Len(t, columns, 3)

	colMap := make(map[string]string)
	for _, col := range columns {
		colMap[col.Field] = col.Type
	}

	assert.Equal(t, "integer", colMap["id"])
	assert.Equal(t, "text", colMap["name"])
	assert.Equal(t, "text", colMap["description"])

	// PRAGMA table_info returns an empty result for a non-existent table.
	cols, err := GetTableColumns(db, "non_existent")
	assert.NoError(t, err)
	assert.Empty(t, cols)
}

func TestMissingColumns(t *testing.T) {
	db, err := Connect(Config{Driver: DriverSQLite, Path: ":memory:"})
	require.NoError(t, err)
	require.NoError(t, db.Exec("CREATE TABLE state (id INTEGER PRIMARY KEY, watched INTEGER)").Error)

	missing, err := MissingColumns(db, "state", []string{"id", "WATCHED", "updated"})
	require.NoError(t, err)
	assert.Equal(t, []string{"updated"}, missing)
}
