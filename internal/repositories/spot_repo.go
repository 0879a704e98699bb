package repositories

import (
	"context"

	"spots/internal/models"
	"spots/internal/spotquery"
)

// SpotRepository defines the interface for spot data access.
type SpotRepository interface {
	Create(ctx context.Context, spot *models.Spot) error
	CreateBatch(ctx context.Context, spots []models.Spot) (int64, error)
	GetByID(ctx context.Context, id uint) (*models.Spot, error)
	Update(ctx context.Context, spot *models.Spot) error
	Delete(ctx context.Context, id uint) error

	Browse(ctx context.Context, filter spotquery.Filter) ([]models.SpotSummary, error)
	TopRated(ctx context.Context, limit uint) ([]models.SpotSummary, error)
	Stats(ctx context.Context, id uint) (avgRating *float64, reviewCount int, err error)
}
