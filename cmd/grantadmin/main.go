// Command grantadmin grants or revokes the admin flag of a user.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"spots/internal/config"
	"spots/internal/database"
	"spots/internal/logging"
	"spots/internal/repositories"
	"spots/internal/services"

	"github.com/rs/zerolog/log"
)

func main() {
	username := flag.String("user", "", "username to update (required)")
	revoke := flag.Bool("revoke", false, "remove the admin flag instead of granting it")
	flag.Parse()

	if *username == "" {
		fmt.Fprintln(os.Stderr, "missing -user")
		flag.Usage()
		os.Exit(2)
	}

	if err := run(*username, !*revoke); err != nil {
		fmt.Fprintf(os.Stderr, "grantadmin: %v\n", err)
		os.Exit(1)
	}
}

func run(username string, admin bool) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	logging.Init("grantadmin", cfg.Log.Level, cfg.Log.Format)

	db, err := database.Open(cfg.Database)
	if err != nil {
		return err
	}
	defer database.Close(db)

	auth := services.NewAuthService(repositories.NewGORMUserRepository(db), cfg.Session.Secret)
	if err := auth.SetAdmin(context.Background(), username, admin); err != nil {
		return fmt.Errorf("failed to update user %q: %w", username, err)
	}
	log.Info().Str("username", username).Bool("admin", admin).Msg("admin flag updated")
	return nil
}
