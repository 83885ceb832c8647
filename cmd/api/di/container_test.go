package di

import (
	"context"
	"path/filepath"
	"testing"

	"user-fixture-service/internal/adapter/db/sqlstore"
	"user-fixture-service/internal/config"
	"user-fixture-service/internal/usecase/user"
	apperrors "user-fixture-service/pkg/errors"

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

func TestNewContainer_Memory(t *testing.T) {
	cfg := testConfig(t)

	c, err := NewContainer(context.Background(), cfg, zaptest.NewLogger(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	assert.Nil(t, c.DB)
	assert.Nil(t, c.RedisClient)

	require.NoError(t, c.Seed(context.Background()))

	got, err := c.UserUC.FetchUser(context.Background(), user.FetchUserRequest{ID: 0})
	require.NoError(t, err)
	assert.Equal(t, "admin", got.Name)

	settings, err := c.UserUC.LoadConfig(context.Background())
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"debug": true, "port": 8080}, settings.Settings)
}

func TestNewContainer_SQLiteWithRedis(t *testing.T) {
	mr := miniredis.RunT(t)

	cfg := testConfig(t)
	cfg.DB.Driver = config.DriverSQLite
	cfg.DB.SQLitePath = filepath.Join(t.TempDir(), "users.db")
	cfg.Redis.Enabled = true
	cfg.Redis.Host = mr.Host()
	cfg.Redis.Port = mr.Port()

	c, err := NewContainer(context.Background(), cfg, zaptest.NewLogger(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	require.NotNil(t, c.DB)
	require.NotNil(t, c.RedisClient)

	_, err = c.UserUC.AddUser(context.Background(), user.AddUserRequest{ID: 4, Name: "Dora"})
	require.NoError(t, err)

	got, err := c.UserUC.FetchUser(context.Background(), user.FetchUserRequest{ID: 4})
	require.NoError(t, err)
	assert.Equal(t, "Dora", got.Name)
	assert.True(t, mr.Exists("user:"+c.Generation+":4"))

	var count int64
	require.NoError(t, c.DB.Model(&sqlstore.UserSchema{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestNewContainer_InvalidConfig(t *testing.T) {
	cfg := testConfig(t)
	cfg.DB.Driver = "oracle"

	_, err := NewContainer(context.Background(), cfg, zaptest.NewLogger(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config validation failed")
}

func TestContainer_SeedFileError(t *testing.T) {
	cfg := testConfig(t)
	cfg.Seed.File = filepath.Join(t.TempDir(), "missing.yaml")

	c, err := NewContainer(context.Background(), cfg, zaptest.NewLogger(t))
	require.NoError(t, err)

	err = c.Seed(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "after 1 records")
}

func TestNewContainer_CacheScopedToStore(t *testing.T) {
	mr := miniredis.RunT(t)
	ctx := context.Background()

	newContainer := func(driver, sqlitePath string) *Container {
		cfg := testConfig(t)
		cfg.DB.Driver = driver
		cfg.DB.SQLitePath = sqlitePath
		cfg.Redis.Enabled = true
		cfg.Redis.Host = mr.Host()
		cfg.Redis.Port = mr.Port()

		c, err := NewContainer(ctx, cfg, zaptest.NewLogger(t))
		require.NoError(t, err)
		t.Cleanup(func() { _ = c.Close() })
		return c
	}

	dbPath := filepath.Join(t.TempDir(), "users.db")
	first := newContainer(config.DriverSQLite, dbPath)
	_, err := first.UserUC.AddUser(ctx, user.AddUserRequest{ID: 5, Name: "ghost"})
	require.NoError(t, err)
	_, err = first.UserUC.FetchUser(ctx, user.FetchUserRequest{ID: 5})
	require.NoError(t, err)

	// Reopening the same database keeps the cache namespace.
	reopened := newContainer(config.DriverSQLite, dbPath)
	assert.Equal(t, first.Generation, reopened.Generation)

	// A fresh database or memory store sharing Redis never sees the record.
	for _, c := range []*Container{
		newContainer(config.DriverSQLite, filepath.Join(t.TempDir(), "fresh.db")),
		newContainer(config.DriverMemory, ""),
	} {
		assert.NotEqual(t, first.Generation, c.Generation)
		_, err := c.UserUC.FetchUser(ctx, user.FetchUserRequest{ID: 5})
		assert.True(t, apperrors.IsNotFound(err))
	}
}
