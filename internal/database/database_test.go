package database

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rasim/simcore/internal/config"
	"github.com/rasim/simcore/internal/model"
)

func TestPostgresDSN(t *testing.T) {
	dsn := PostgresDSN(config.DBConfig{Host: "db", Port: "5433", Username: "u", Password: "p", Database: "rasim"})
	assert.Equal(t, "host=db port=5433 user=u password=p dbname=rasim sslmode=disable connect_timeout=5", dsn)
}

func TestOpenSqlite_InMemoryDatabasesAreIsolated(t *testing.T) {
	a, err := OpenSqlite("")
	require.NoError(t, err)
	b, err := OpenSqlite("")
	require.NoError(t, err)

	require.NoError(t, Migrate(a))
	assert.True(t, a.Migrator().HasTable(&model.Session{}))
	assert.False(t, b.Migrator().HasTable(&model.Session{}))
}

func TestDumpMemoryDBToDisk(t *testing.T) {
	db, err := OpenSqlite("")
	require.NoError(t, err)
	require.NoError(t, Migrate(db))
	require.NoError(t, db.Create(&model.Session{UUID: "dumped", GameType: "normal"}).Error)

	path := filepath.Join(t.TempDir(), "rasim.db")
	require.NoError(t, DumpMemoryDBToDisk(db, path))
	require.NoError(t, DumpMemoryDBToDisk(db, path), "an existing dump is replaced")

	disk, err := OpenSqlite(path)
	require.NoError(t, err)
	var got model.Session
	require.NoError(t, disk.First(&got).Error)
	assert.Equal(t, "dumped", got.UUID)

	assert.Error(t, DumpMemoryDBToDisk(db, ""))
}

func TestManager_FallsBackToSqlite(t *testing.T) {
	var buf bytes.Buffer
	m := NewManager(zerolog.New(&buf))

	err := m.Connect(config.DBConfig{Host: "127.0.0.1", Port: "1", Username: "x", Password: "x", Database: "x"})
	require.NoError(t, err)
	assert.True(t, m.IsValid)
	assert.True(t, m.ShouldSaveLocal)
	assert.Equal(t, "sqlite", m.DB.Dialector.Name())
	assert.Contains(t, buf.String(), "trying SQLite")

	require.NoError(t, m.Setup())
	assert.True(t, m.DB.Migrator().HasTable(&model.TeamRecord{}))
	require.NoError(t, m.Close())
	assert.False(t, m.IsValid)
}

func TestManager_SetupWithoutConnection(t *testing.T) {
	m := NewManager(zerolog.Nop())
	assert.Error(t, m.Setup())
	assert.NoError(t, m.Close())
}
