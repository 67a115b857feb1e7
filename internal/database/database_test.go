// internal/database/database_test.go
package database

import (
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/liftoff-sim/simcore/internal/model"
)

func TestDumpMemoryToDisk(t *testing.T) {
	m := NewManager(zerolog.Nop())
	db, err := m.GetSqliteDB("")
	require.NoError(t, err)
	m.DB = db
	m.IsValid = true
	require.NoError(t, m.Setup())

	require.NoError(t, m.DB.Create(&model.Attempt{Phase: "orbit", Score: 700}).Error)

	// no target path set yet
	require.Error(t, m.DumpMemoryToDisk())

	m.SqliteFilePath = filepath.Join(t.TempDir(), "simcore_local.db")
	require.NoError(t, m.DumpMemoryToDisk())

	// dumping again overwrites the previous snapshot
	require.NoError(t, m.DumpMemoryToDisk())

	onDisk, err := GetSqliteDBStandalone(m.SqliteFilePath)
	require.NoError(t, err)
	var n int64
	require.NoError(t, onDisk.Model(&model.Attempt{}).Count(&n).Error)
	assert.EqualValues(t, 1, n)
}

func TestGetSqliteDBStandaloneOnDisk(t *testing.T) {
	path := filepath.Join(t.TempDir(), "standalone.db")
	db, err := GetSqliteDBStandalone(path)
	require.NoError(t, err)

	var version int
	require.NoError(t, db.Raw("PRAGMA user_version;").Scan(&version).Error)
	assert.Equal(t, 1, version)
}
