package database

import (
	"context"
	"embed"
	"fmt"
	"strings"

	"github.com/pressly/goose/v3"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

//go:embed migrations/sqlite3/*.sql migrations/postgres/*.sql
var migrations embed.FS

type gooseLogger struct{}

func (gooseLogger) Printf(format string, v ...interface{}) {
	log.Info().Msgf(strings.TrimSpace(format), v...)
}

func (gooseLogger) Fatalf(format string, v ...interface{}) {
	log.Fatal().Msgf(strings.TrimSpace(format), v...)
}

func prepareGoose(driver string) (string, error) {
	dialect := Dialect(driver)
	goose.SetBaseFS(migrations)
	goose.SetLogger(gooseLogger{})
	if err := goose.SetDialect(dialect); err != nil {
		return "", fmt.Errorf("set goose dialect: %w", err)
	}
	return "migrations/" + dialect, nil
}

// Migrate applies every pending schema migration for the driver.
func Migrate(ctx context.Context, db *gorm.DB, driver string) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("getting sql db handle: %w", err)
	}
	dir, err := prepareGoose(driver)
	if err != nil {
		return err
	}
	if err := goose.UpContext(ctx, sqlDB, dir); err != nil {
		return fmt.Errorf("goose up: %w", err)
	}
	return nil
}

// Reset rolls back every applied migration, dropping all tables.
func Reset(ctx context.Context, db *gorm.DB, driver string) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("getting sql db handle: %w", err)
	}
	dir, err := prepareGoose(driver)
	if err != nil {
		return err
	}
	if err := goose.ResetContext(ctx, sqlDB, dir); err != nil {
		return fmt.Errorf("goose reset: %w", err)
	}
	return nil
}

// Version returns the currently applied schema version.
func Version(db *gorm.DB, driver string) (int64, error) {
	sqlDB, err := db.DB()
	if err != nil {
		return 0, fmt.Errorf("getting sql db handle: %w", err)
	}
	if _, err := prepareGoose(driver); err != nil {
		return 0, err
	}
	return goose.GetDBVersion(sqlDB)
}
