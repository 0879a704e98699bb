// Command importspots loads spots from an Overpass JSON export.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"spots/internal/config"
	"spots/internal/database"
	"spots/internal/geo"
	"spots/internal/importer"
	"spots/internal/logging"
	"spots/internal/repositories"

	"github.com/rs/zerolog/log"
)

func main() {
	file := flag.String("file", "harvard_spots.json", "Overpass JSON export to import")
	flag.Parse()

	if err := run(*file); err != nil {
		fmt.Fprintf(os.Stderr, "importspots: %v\n", err)
		os.Exit(1)
	}
}

func run(file string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	logging.Init("importspots", cfg.Log.Level, cfg.Log.Format)

	f, err := os.Open(file)
	if err != nil {
		return fmt.Errorf("failed to open export: %w", err)
	}
	defer f.Close()

	db, err := database.Open(cfg.Database)
	if err != nil {
		return err
	}
	defer database.Close(db)

	ctx := context.Background()
	if cfg.Database.AutoMigrate {
		if err := database.Migrate(ctx, db, cfg.Database.Driver); err != nil {
			return fmt.Errorf("failed to migrate schema: %w", err)
		}
	}

	spots, err := repositories.NewGORMSpotRepository(db, database.Dialect(cfg.Database.Driver))
	if err != nil {
		return err
	}
	classifier := geo.Classifier{
		Reference:   geo.Point{Lat: cfg.Landmark.Lat, Lon: cfg.Landmark.Lon},
		ThresholdKm: cfg.Landmark.RadiusKm,
	}

	res, err := importer.New(spots, classifier).Import(ctx, f)
	if err != nil {
		return fmt.Errorf("import failed: %w", err)
	}
	log.Info().Str("file", file).Int64("inserted", res.Inserted).Msg("import finished")
	return nil
}
