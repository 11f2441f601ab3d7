package database

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/recipebox/config"
	"github.com/pageza/recipebox/internal/model"
)

func TestOpenSQLite(t *testing.T) {
	cfg := &config.Config{
		DBDriver:   "sqlite",
		SQLitePath: filepath.Join(t.TempDir(), "test.db"),
	}

	db, err := Open(cfg)
	require.NoError(t, err)
	require.NoError(t, Migrate(db))
	assert.NoError(t, HealthCheck(context.Background(), db))

	account := model.Account{Email: "test@example.com", PasswordHash: "x"}
	require.NoError(t, db.Create(&account).Error)
	assert.NotEmpty(t, account.ID)

	// email is unique
	dup := model.Account{Email: "test@example.com", PasswordHash: "y"}
	assert.Error(t, db.Create(&dup).Error)

	// migrating twice is a no-op
	assert.NoError(t, Migrate(db))
}

func TestOpenUnsupportedDriver(t *testing.T) {
	_, err := Open(&config.Config{DBDriver: "mysql"})
	assert.ErrorContains(t, err, "unsupported database driver")
}

func TestNewRedisClientBadURL(t *testing.T) {
	_, err := NewRedisClient(context.Background(), &config.Config{RedisURL: "not-a-url://"})
	assert.Error(t, err)
}

func TestRedisOptions(t *testing.T) {
	opts, err := RedisOptions(&config.Config{RedisHost: "cache", RedisDB: 2})
	require.NoError(t, err)
	assert.Equal(t, "cache:6379", opts.Addr)
	assert.Equal(t, 2, opts.DB)

	opts, err = RedisOptions(&config.Config{RedisHost: "ignored", RedisURL: "redis://:pw@redis.test:6380/1"})
	require.NoError(t, err)
	assert.Equal(t, "redis.test:6380", opts.Addr)
	assert.Equal(t, "pw", opts.Password)
	assert.Equal(t, 1, opts.DB)
}
