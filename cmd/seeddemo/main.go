// Command seeddemo creates fake users with reviews and favorites.
package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"time"

	"spots/internal/config"
	"spots/internal/database"
	"spots/internal/logging"
	"spots/internal/repositories"
	"spots/internal/seed"
	"spots/internal/services"

	"github.com/jaswdr/faker"
	"github.com/rs/zerolog/log"
)

func main() {
	users := flag.Int("users", 10, "number of demo users")
	reviews := flag.Int("reviews", 3, "reviews per demo user")
	password := flag.String("password", "demo-password", "password shared by every demo user")
	seedValue := flag.Int64("seed", 0, "random seed (0 = time based)")
	flag.Parse()

	if *seedValue == 0 {
		*seedValue = time.Now().UnixNano()
	}
	opts := seed.Options{
		Users:          *users,
		ReviewsPerUser: *reviews,
		Password:       *password,
	}
	if err := run(opts, *seedValue); err != nil {
		fmt.Fprintf(os.Stderr, "seeddemo: %v\n", err)
		os.Exit(1)
	}
}

func run(opts seed.Options, seedValue int64) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	logging.Init("seeddemo", cfg.Log.Level, cfg.Log.Format)

	db, err := database.Open(cfg.Database)
	if err != nil {
		return err
	}
	defer database.Close(db)

	spotRepo, err := repositories.NewGORMSpotRepository(db, database.Dialect(cfg.Database.Driver))
	if err != nil {
		return err
	}
	reviewRepo := repositories.NewGORMReviewRepository(db)
	favoriteRepo := repositories.NewGORMFavoriteRepository(db)
	auth := services.NewAuthService(repositories.NewGORMUserRepository(db), cfg.Session.Secret,
		services.WithEmailDomain(cfg.Auth.EmailDomain))

	seeder := seed.New(
		auth,
		services.NewReviewService(reviewRepo, spotRepo, nil),
		services.NewFavoriteService(favoriteRepo, spotRepo, nil),
		spotRepo,
		faker.NewWithSeed(rand.NewSource(seedValue)),
	)

	opts.EmailDomain = cfg.Auth.EmailDomain
	sum, err := seeder.Run(context.Background(), opts)
	if err != nil {
		return fmt.Errorf("seeding failed: %w", err)
	}
	log.Info().
		Int("users", sum.Users).
		Int("reviews", sum.Reviews).
		Int("favorites", sum.Favorites).
		Int64("seed", seedValue).
		Msg("demo data created")
	return nil
}
