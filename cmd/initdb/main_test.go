package main

import (
	"path/filepath"
	"testing"

	"spots/internal/config"
	"spots/internal/database"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setEnv(t *testing.T) string {
	t.Helper()
	dsn := filepath.Join(t.TempDir(), "spots.db")
	t.Setenv("DATABASE_DRIVER", config.DriverSQLite)
	t.Setenv("DATABASE_DSN", dsn)
	t.Setenv("JWT_SECRET", "test_jwt_secret")
	t.Setenv("LOG_LEVEL", "disabled")
	return dsn
}

func TestRun_MigratesAndReset(t *testing.T) {
	dsn := setEnv(t)

	require.NoError(t, run(false, false))
	require.NoError(t, run(true, false))
	require.NoError(t, run(false, true))

	db, err := database.Open(config.DatabaseConfig{Driver: config.DriverSQLite, DSN: dsn})
	require.NoError(t, err)
	defer database.Close(db)

	version, err := database.Version(db, config.DriverSQLite)
	require.NoError(t, err)
	assert.Positive(t, version)
}

func TestRun_ReturnsErrors(t *testing.T) {
	setEnv(t)
	t.Setenv("DATABASE_DRIVER", "mysql")
	assert.Error(t, run(false, false))

	setEnv(t)
	t.Setenv("JWT_SECRET", "")
	assert.Error(t, run(false, false))
}
