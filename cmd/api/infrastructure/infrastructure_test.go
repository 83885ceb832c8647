package infrastructure

import (
	"context"
	"path/filepath"
	"testing"

	"user-fixture-service/internal/config"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func testConfig(t *testing.T) *config.Config {
	cfg, err := config.LoadConfig(t.TempDir())
	require.NoError(t, err)
	return cfg
}

func TestNewDatabase_SQLite(t *testing.T) {
	cfg := testConfig(t)
	cfg.DB.Driver = config.DriverSQLite
	cfg.DB.SQLitePath = filepath.Join(t.TempDir(), "users.db")

	db, err := NewDatabase(cfg, zaptest.NewLogger(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = CloseDatabase(db) })

	assert.True(t, db.Migrator().HasTable("users"))
}

func TestNewDatabase_MemoryHasNoDatabase(t *testing.T) {
	cfg := testConfig(t)

	_, err := NewDatabase(cfg, zaptest.NewLogger(t))
	assert.Error(t, err)
}

func TestCloseDatabase_Nil(t *testing.T) {
	assert.NoError(t, CloseDatabase(nil))
}

func TestNewRedisClient(t *testing.T) {
	cfg := testConfig(t)

	rdb, err := NewRedisClient(context.Background(), cfg, zaptest.NewLogger(t))
	require.NoError(t, err)
	assert.Nil(t, rdb)

	mr := miniredis.RunT(t)
	cfg.Redis.Enabled = true
	cfg.Redis.Host = mr.Host()
	cfg.Redis.Port = mr.Port()

	rdb, err = NewRedisClient(context.Background(), cfg, zaptest.NewLogger(t))
	require.NoError(t, err)
	require.NotNil(t, rdb)
	assert.NoError(t, rdb.Close())
}
