package repositories

import (
	"context"
	"fmt"

	"spots/internal/models"

	"gorm.io/gorm"
)

// GORMReviewRepository is a GORM implementation of ReviewRepository.
type GORMReviewRepository struct {
	db *gorm.DB
}

// NewGORMReviewRepository creates a new instance of GORMReviewRepository.
func NewGORMReviewRepository(db *gorm.DB) *GORMReviewRepository {
	return &GORMReviewRepository{db: db}
}

// Create stores a new review.
func (r *GORMReviewRepository) Create(ctx context.Context, review *models.Review) error {
	if err := r.db.WithContext(ctx).Create(review).Error; err != nil {
		return fmt.Errorf("failed to create review: %w", err)
	}
	return nil
}

// ListBySpot returns the reviews of a spot, newest (highest id) first.
func (r *GORMReviewRepository) ListBySpot(ctx context.Context, spotID uint) ([]models.ReviewView, error) {
	views := make([]models.ReviewView, 0)
	err := r.db.WithContext(ctx).
		Table("reviews").
		Select("reviews.id, reviews.rating, reviews.text, reviews.created_at, COALESCE(users.username, '') AS username").
		Joins("LEFT JOIN users ON users.id = reviews.user_id").
		Where("reviews.spot_id = ?", spotID).
		Order("reviews.id DESC").
		Scan(&views).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list reviews of spot %d: %w", spotID, err)
	}
	return views, nil
}

// ListByUser returns a user's reviews with the reviewed spot, newest first.
func (r *GORMReviewRepository) ListByUser(ctx context.Context, userID uint) ([]models.UserReview, error) {
	reviews := make([]models.UserReview, 0)
	err := r.db.WithContext(ctx).
		Table("reviews").
		Select("reviews.id, reviews.rating, reviews.text, reviews.created_at, spots.id AS spot_id, spots.name AS spot_name").
		Joins("JOIN spots ON spots.id = reviews.spot_id").
		Where("reviews.user_id = ?", userID).
		Order("reviews.created_at DESC").
		Order("reviews.id DESC").
		Scan(&reviews).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list reviews of user %d: %w", userID, err)
	}
	return reviews, nil
}
