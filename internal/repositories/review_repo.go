package repositories

import (
	"context"

	"spots/internal/models"
)

// ReviewRepository defines the interface for review data access.
type ReviewRepository interface {
	Create(ctx context.Context, review *models.Review) error
	ListBySpot(ctx context.Context, spotID uint) ([]models.ReviewView, error)
	ListByUser(ctx context.Context, userID uint) ([]models.UserReview, error)
}
