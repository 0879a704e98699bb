package database_test

import (
	"context"
	"testing"

	"spots/internal/config"
	"spots/internal/database"
	"spots/internal/database/dbtest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDialect(t *testing.T) {
	assert.Equal(t, "sqlite3", database.Dialect(config.DriverSQLite))
	assert.Equal(t, "postgres", database.Dialect(config.DriverPostgres))
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := database.Open(config.DatabaseConfig{Driver: "mysql", DSN: "x"})
	assert.Error(t, err)
}

func TestMigrate_CreatesSchema(t *testing.T) {
	db := dbtest.New(t)

	for _, table := range []string{"users", "spots", "reviews", "favorites"} {
		assert.True(t, db.Migrator().HasTable(table), "missing table %s", table)
	}

	version, err := database.Version(db, config.DriverSQLite)
	require.NoError(t, err)
	assert.Equal(t, int64(1), version)

	// Applying again is a no-op.
	require.NoError(t, database.Migrate(context.Background(), db, config.DriverSQLite))
}

func TestReset_DropsSchema(t *testing.T) {
	db := dbtest.New(t)

	require.NoError(t, database.Reset(context.Background(), db, config.DriverSQLite))
	assert.False(t, db.Migrator().HasTable("spots"))
}
