package services

import (
	"context"

	"spots/internal/models"
	"spots/internal/repositories"
)

// FavoriteService manages the caller's favorite spots.
type FavoriteService struct {
	favorites repositories.FavoriteRepository
	spots     repositories.SpotRepository
	events    eventSink
}

// NewFavoriteService creates a new FavoriteService. publisher may be nil.
func NewFavoriteService(favorites repositories.FavoriteRepository, spots repositories.SpotRepository, publisher EventPublisher) *FavoriteService {
	return &FavoriteService{
		favorites: favorites,
		spots:     spots,
		events:    eventSink{publisher: publisher},
	}
}

// Add marks a spot as favorite. Repeating it is a no-op.
func (s *FavoriteService) Add(ctx context.Context, ident *Identity, spotID uint) error {
	if err := requireUser(ident); err != nil {
		return err
	}
	if _, err := s.spots.GetByID(ctx, spotID); err != nil {
		return spotError(err)
	}
	if err := s.favorites.Add(ctx, ident.UserID, spotID); err != nil {
		return err
	}
	s.events.publish(EventFavoriteAdded, map[string]interface{}{
		"spot_id": spotID,
		"user_id": ident.UserID,
	})
	return nil
}

// Remove unmarks a spot. Removing a missing favorite succeeds.
func (s *FavoriteService) Remove(ctx context.Context, ident *Identity, spotID uint) error {
	if err := requireUser(ident); err != nil {
		return err
	}
	if err := s.favorites.Remove(ctx, ident.UserID, spotID); err != nil {
		return err
	}
	s.events.publish(EventFavoriteRemoved, map[string]interface{}{
		"spot_id": spotID,
		"user_id": ident.UserID,
	})
	return nil
}

// List returns the caller's favorite spots ordered by name.
func (s *FavoriteService) List(ctx context.Context, ident *Identity) ([]models.Spot, error) {
	if err := requireUser(ident); err != nil {
		return nil, err
	}
	return s.favorites.ListSpots(ctx, ident.UserID)
}
