package services

import (
	"context"
	"fmt"
	"strings"

	"spots/internal/models"
	"spots/internal/repositories"
)

const (
	MinRating = 1
	MaxRating = 5
)

// ReviewService handles business logic related to reviews.
type ReviewService struct {
	reviews repositories.ReviewRepository
	spots   repositories.SpotRepository
	events  eventSink
}

// NewReviewService creates a new ReviewService. publisher may be nil.
func NewReviewService(reviews repositories.ReviewRepository, spots repositories.SpotRepository, publisher EventPublisher) *ReviewService {
	return &ReviewService{
		reviews: reviews,
		spots:   spots,
		events:  eventSink{publisher: publisher},
	}
}

// ReviewInput is a rating with an optional comment.
type ReviewInput struct {
	Rating int    `json:"rating" form:"rating" validate:"required,min=1,max=5"`
	Text   string `json:"text" form:"text" validate:"max=2000"`
}

// AddReview stores the caller's review of an existing spot.
func (s *ReviewService) AddReview(ctx context.Context, ident *Identity, spotID uint, in ReviewInput) (*models.Review, error) {
	if err := requireUser(ident); err != nil {
		return nil, err
	}
	if in.Rating < MinRating || in.Rating > MaxRating {
		return nil, fmt.Errorf("%w: rating must be between %d and %d", ErrInvalidInput, MinRating, MaxRating)
	}
	if _, err := s.spots.GetByID(ctx, spotID); err != nil {
		return nil, spotError(err)
	}

	review := &models.Review{
		SpotID: spotID,
		UserID: ident.UserID,
		Rating: in.Rating,
		Text:   strings.TrimSpace(in.Text),
	}
	if err := s.reviews.Create(ctx, review); err != nil {
		return nil, err
	}

	s.events.publish(EventReviewCreated, map[string]interface{}{
		"review_id": review.ID,
		"spot_id":   spotID,
		"user_id":   ident.UserID,
		"rating":    review.Rating,
	})
	return review, nil
}

// ListByUser returns the caller's reviews, newest first.
func (s *ReviewService) ListByUser(ctx context.Context, ident *Identity) ([]models.UserReview, error) {
	if err := requireUser(ident); err != nil {
		return nil, err
	}
	return s.reviews.ListByUser(ctx, ident.UserID)
}
