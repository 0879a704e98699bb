package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"spots/internal/geo"
	"spots/internal/models"
	"spots/internal/repositories"
	"spots/internal/spotquery"
)

// SpotService handles business logic related to spots.
type SpotService struct {
	spots      repositories.SpotRepository
	reviews    repositories.ReviewRepository
	favorites  repositories.FavoriteRepository
	classifier geo.Classifier
	events     eventSink
}

// NewSpotService creates a new SpotService. publisher may be nil.
func NewSpotService(
	spots repositories.SpotRepository,
	reviews repositories.ReviewRepository,
	favorites repositories.FavoriteRepository,
	classifier geo.Classifier,
	publisher EventPublisher,
) *SpotService {
	return &SpotService{
		spots:      spots,
		reviews:    reviews,
		favorites:  favorites,
		classifier: classifier,
		events:     eventSink{publisher: publisher},
	}
}

// SpotInput holds the user editable fields of a spot.
type SpotInput struct {
	Name            string   `json:"name" form:"name" validate:"required,max=200"`
	Category        string   `json:"category" form:"category" validate:"max=100"`
	Latitude        *float64 `json:"latitude" form:"latitude" validate:"omitempty,gte=-90,lte=90"`
	Longitude       *float64 `json:"longitude" form:"longitude" validate:"omitempty,gte=-180,lte=180"`
	LateNight       bool     `json:"late_night" form:"late_night"`
	FineDining      bool     `json:"fine_dining" form:"fine_dining"`
	HealthConscious bool     `json:"health_conscious" form:"health_conscious"`
	Affordable      bool     `json:"affordable" form:"affordable"`
	SweetTreat      bool     `json:"sweet_treat" form:"sweet_treat"`
}

func (in SpotInput) apply(spot *models.Spot) error {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	spot.Name = name
	spot.Category = strings.TrimSpace(in.Category)
	spot.Latitude = in.Latitude
	spot.Longitude = in.Longitude
	spot.LateNight = in.LateNight
	spot.FineDining = in.FineDining
	spot.HealthConscious = in.HealthConscious
	spot.Affordable = in.Affordable
	spot.SweetTreat = in.SweetTreat
	return nil
}

// BrowseResult is a filtered spot listing plus the map pins for it.
type BrowseResult struct {
	Spots   []models.SpotSummary `json:"spots"`
	Markers []models.MapMarker   `json:"markers"`
}

// TopRated returns the best rated reviewed spots for the home page.
func (s *SpotService) TopRated(ctx context.Context) ([]models.SpotSummary, error) {
	return s.spots.TopRated(ctx, spotquery.TopRatedLimit)
}

// Browse returns the spots matching filter, alphabetically.
func (s *SpotService) Browse(ctx context.Context, filter spotquery.Filter) (*BrowseResult, error) {
	summaries, err := s.spots.Browse(ctx, filter)
	if err != nil {
		return nil, err
	}
	markers := make([]models.MapMarker, 0, len(summaries))
	for _, sp := range summaries {
		if !sp.HasCoordinates() {
			continue
		}
		markers = append(markers, models.MapMarker{
			ID:        sp.ID,
			Name:      sp.Name,
			Latitude:  *sp.Latitude,
			Longitude: *sp.Longitude,
		})
	}
	return &BrowseResult{Spots: summaries, Markers: markers}, nil
}

// Detail assembles the spot page: the spot, its reviews newest first, the
// rating statistics and whether the caller has favorited it.
func (s *SpotService) Detail(ctx context.Context, ident *Identity, id uint) (*models.SpotDetail, error) {
	spot, err := s.spots.GetByID(ctx, id)
	if err != nil {
		return nil, spotError(err)
	}

	reviews, err := s.reviews.ListBySpot(ctx, id)
	if err != nil {
		return nil, err
	}

	avg, count, err := s.spots.Stats(ctx, id)
	if err != nil {
		return nil, err
	}

	detail := &models.SpotDetail{
		Spot:        *spot,
		Reviews:     reviews,
		AvgRating:   avg,
		ReviewCount: count,
	}
	if ident.Authenticated() {
		detail.IsFavorite, err = s.favorites.Exists(ctx, ident.UserID, id)
		if err != nil {
			return nil, err
		}
	}
	return detail, nil
}

// Create stores a new spot. The close tag is derived from the coordinates
// here and nowhere else.
func (s *SpotService) Create(ctx context.Context, ident *Identity, in SpotInput) (*models.Spot, error) {
	if err := requireUser(ident); err != nil {
		return nil, err
	}

	spot := &models.Spot{}
	if err := in.apply(spot); err != nil {
		return nil, err
	}
	spot.Close = s.classifier.IsClose(spot.Latitude, spot.Longitude)

	if err := s.spots.Create(ctx, spot); err != nil {
		return nil, err
	}

	s.events.publish(EventSpotCreated, map[string]interface{}{
		"spot_id": spot.ID,
		"name":    spot.Name,
		"user_id": ident.UserID,
		"close":   spot.Close,
	})
	return spot, nil
}

// Get returns a spot for editing.
func (s *SpotService) Get(ctx context.Context, ident *Identity, id uint) (*models.Spot, error) {
	if err := requireAdmin(ident); err != nil {
		return nil, err
	}
	spot, err := s.spots.GetByID(ctx, id)
	if err != nil {
		return nil, spotError(err)
	}
	return spot, nil
}

// Update overwrites the editable fields of a spot. The stored close tag is
// kept even when the coordinates change.
func (s *SpotService) Update(ctx context.Context, ident *Identity, id uint, in SpotInput) (*models.Spot, error) {
	if err := requireAdmin(ident); err != nil {
		return nil, err
	}

	spot, err := s.spots.GetByID(ctx, id)
	if err != nil {
		return nil, spotError(err)
	}
	if err := in.apply(spot); err != nil {
		return nil, err
	}
	if err := s.spots.Update(ctx, spot); err != nil {
		return nil, spotError(err)
	}

	s.events.publish(EventSpotUpdated, map[string]interface{}{
		"spot_id": spot.ID,
		"user_id": ident.UserID,
	})
	return spot, nil
}

// Delete removes a spot along with its reviews and favorites.
func (s *SpotService) Delete(ctx context.Context, ident *Identity, id uint) error {
	if err := requireAdmin(ident); err != nil {
		return err
	}
	if err := s.spots.Delete(ctx, id); err != nil {
		return spotError(err)
	}

	s.events.publish(EventSpotDeleted, map[string]interface{}{
		"spot_id": id,
		"user_id": ident.UserID,
	})
	return nil
}

// spotError maps a repository miss to ErrSpotNotFound.
func spotError(err error) error {
	if errors.Is(err, repositories.ErrNotFound) {
		return fmt.Errorf("%w: %v", ErrSpotNotFound, err)
	}
	return err
}
