// Package seed fills a database with fake users, reviews and favorites for
// local development.
package seed

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"spots/internal/repositories"
	"spots/internal/services"
	"spots/internal/spotquery"

	"github.com/jaswdr/faker"
	"github.com/rs/zerolog/log"
)

// Options controls how much demo data is generated.
type Options struct {
	Users          int
	ReviewsPerUser int
	Password       string
	// EmailDomain must match the service's AUTH_EMAIL_DOMAIN when set.
	EmailDomain string
}

// Summary counts what a run created.
type Summary struct {
	Users     int
	Reviews   int
	Favorites int
}

// Seeder generates demo data through the regular services so every
// business rule applies to it.
type Seeder struct {
	auth      *services.AuthService
	reviews   *services.ReviewService
	favorites *services.FavoriteService
	spots     repositories.SpotRepository
	fake      faker.Faker
}

func New(
	auth *services.AuthService,
	reviews *services.ReviewService,
	favorites *services.FavoriteService,
	spots repositories.SpotRepository,
	fake faker.Faker,
) *Seeder {
	return &Seeder{
		auth:      auth,
		reviews:   reviews,
		favorites: favorites,
		spots:     spots,
		fake:      fake,
	}
}

const usernameAttempts = 5

// Run creates opts.Users users, each reviewing opts.ReviewsPerUser random
// spots and favoriting some of them.
func (s *Seeder) Run(ctx context.Context, opts Options) (Summary, error) {
	var sum Summary

	spots, err := s.spots.Browse(ctx, spotquery.Filter{})
	if err != nil {
		return sum, err
	}
	if len(spots) == 0 && opts.ReviewsPerUser > 0 {
		return sum, errors.New("no spots to review, import some first")
	}

	for i := 0; i < opts.Users; i++ {
		ident, err := s.createUser(ctx, opts)
		if err != nil {
			return sum, err
		}
		sum.Users++

		favorited := make(map[uint]bool)
		for j := 0; j < opts.ReviewsPerUser; j++ {
			spot := spots[s.fake.IntBetween(0, len(spots)-1)]
			in := services.ReviewInput{
				Rating: s.fake.IntBetween(services.MinRating, services.MaxRating),
				Text:   s.fake.Lorem().Sentence(s.fake.IntBetween(4, 12)),
			}
			if _, err := s.reviews.AddReview(ctx, ident, spot.ID, in); err != nil {
				return sum, fmt.Errorf("failed to add demo review: %w", err)
			}
			sum.Reviews++

			if !favorited[spot.ID] && s.fake.Boolean().Bool() {
				if err := s.favorites.Add(ctx, ident, spot.ID); err != nil {
					return sum, fmt.Errorf("failed to add demo favorite: %w", err)
				}
				favorited[spot.ID] = true
				sum.Favorites++
			}
		}
		log.Debug().Str("username", ident.Username).Msg("demo user seeded")
	}
	return sum, nil
}

func (s *Seeder) createUser(ctx context.Context, opts Options) (*services.Identity, error) {
	for attempt := 0; attempt < usernameAttempts; attempt++ {
		username := fmt.Sprintf("%s.%s%d",
			strings.ToLower(s.fake.Person().FirstName()),
			strings.ToLower(s.fake.Person().LastName()),
			s.fake.IntBetween(1, 9999))

		in := services.RegisterInput{Username: username, Password: opts.Password}
		if opts.EmailDomain != "" {
			in.Email = username + "@" + strings.TrimPrefix(opts.EmailDomain, "@")
		}

		user, err := s.auth.RegisterUser(ctx, in)
		if errors.Is(err, services.ErrUsernameTaken) || errors.Is(err, services.ErrEmailTaken) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to create demo user: %w", err)
		}
		return &services.Identity{UserID: user.ID, Username: user.Username}, nil
	}
	return nil, fmt.Errorf("no free username after %d attempts", usernameAttempts)
}
