// Command initdb creates or resets the database schema.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"spots/internal/config"
	"spots/internal/database"
	"spots/internal/logging"

	"github.com/rs/zerolog/log"
)

func main() {
	reset := flag.Bool("reset", false, "drop every table before migrating")
	status := flag.Bool("status", false, "print the schema version and exit")
	flag.Parse()

	if err := run(*reset, *status); err != nil {
		fmt.Fprintf(os.Stderr, "initdb: %v\n", err)
		os.Exit(1)
	}
}

func run(reset, status bool) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	logging.Init("initdb", cfg.Log.Level, cfg.Log.Format)

	db, err := database.Open(cfg.Database)
	if err != nil {
		return err
	}
	defer database.Close(db)

	ctx := context.Background()

	if status {
		version, err := database.Version(db, cfg.Database.Driver)
		if err != nil {
			return fmt.Errorf("failed to read schema version: %w", err)
		}
		fmt.Println("schema version:", version)
		return nil
	}

	if reset {
		if err := database.Reset(ctx, db, cfg.Database.Driver); err != nil {
			return fmt.Errorf("failed to reset schema: %w", err)
		}
		log.Info().Msg("schema dropped")
	}

	if err := database.Migrate(ctx, db, cfg.Database.Driver); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}

	version, err := database.Version(db, cfg.Database.Driver)
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}
	log.Info().Str("driver", cfg.Database.Driver).Int64("version", version).Msg("database initialized")
	return nil
}
