// Package dbtest provides migrated in-memory SQLite databases for tests.
package dbtest

import (
	"context"
	"fmt"
	"testing"

	"spots/internal/config"
	"spots/internal/database"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// New opens a fresh, fully migrated in-memory database that is closed when
// the test ends.
func New(t testing.TB) *gorm.DB {
	t.Helper()

	cfg := config.DatabaseConfig{
		Driver: config.DriverSQLite,
		DSN:    fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()),
	}
	db, err := database.Open(cfg)
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	t.Cleanup(func() { _ = database.Close(db) })

	if err := database.Migrate(context.Background(), db, cfg.Driver); err != nil {
		t.Fatalf("migrate test database: %v", err)
	}
	return db
}
