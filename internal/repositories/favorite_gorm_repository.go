package repositories

import (
	"context"
	"fmt"

	"spots/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GORMFavoriteRepository is a GORM implementation of FavoriteRepository.
type GORMFavoriteRepository struct {
	db *gorm.DB
}

// NewGORMFavoriteRepository creates a new instance of GORMFavoriteRepository.
func NewGORMFavoriteRepository(db *gorm.DB) *GORMFavoriteRepository {
	return &GORMFavoriteRepository{db: db}
}

// Add stores the pair and ignores duplicates.
func (r *GORMFavoriteRepository) Add(ctx context.Context, userID, spotID uint) error {
	fav := models.Favorite{UserID: userID, SpotID: spotID}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&fav).Error
	if err != nil {
		return fmt.Errorf("failed to add favorite: %w", err)
	}
	return nil
}

// Remove deletes the pair if it exists.
func (r *GORMFavoriteRepository) Remove(ctx context.Context, userID, spotID uint) error {
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND spot_id = ?", userID, spotID).
		Delete(&models.Favorite{}).Error
	if err != nil {
		return fmt.Errorf("failed to remove favorite: %w", err)
	}
	return nil
}

// Exists reports whether the user has favorited the spot.
func (r *GORMFavoriteRepository) Exists(ctx context.Context, userID, spotID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Favorite{}).
		Where("user_id = ? AND spot_id = ?", userID, spotID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check favorite: %w", err)
	}
	return count > 0, nil
}

// ListSpots returns the user's favorite spots ordered by name.
func (r *GORMFavoriteRepository) ListSpots(ctx context.Context, userID uint) ([]models.Spot, error) {
	spots := make([]models.Spot, 0)
	err := r.db.WithContext(ctx).
		Select("spots.*").
		Joins("JOIN favorites ON favorites.spot_id = spots.id").
		Where("favorites.user_id = ?", userID).
		Order("spots.name").
		Order("spots.id").
		Find(&spots).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list favorites of user %d: %w", userID, err)
	}
	return spots, nil
}
