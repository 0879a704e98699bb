package repositories

import (
	"context"

	"spots/internal/models"
)

// FavoriteRepository defines the interface for favorite data access.
type FavoriteRepository interface {
	Add(ctx context.Context, userID, spotID uint) error
	Remove(ctx context.Context, userID, spotID uint) error
	Exists(ctx context.Context, userID, spotID uint) (bool, error)
	ListSpots(ctx context.Context, userID uint) ([]models.Spot, error)
}
