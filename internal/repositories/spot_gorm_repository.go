package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"spots/internal/models"
	"spots/internal/spotquery"

	"gorm.io/gorm"
)

// editableSpotColumns are overwritten by Update. close is deliberately
// absent: it is only derived at creation.
var editableSpotColumns = []string{
	"name", "category", "latitude", "longitude",
	"late_night", "fine_dining", "health_conscious", "affordable", "sweet_treat",
}

// GORMSpotRepository is a GORM implementation of SpotRepository. Aggregated
// reads go through spotquery and the raw connection.
type GORMSpotRepository struct {
	db      *gorm.DB
	queries *spotquery.Builder
}

// NewGORMSpotRepository creates a new instance of GORMSpotRepository for the
// given SQL dialect ("sqlite3" or "postgres").
func NewGORMSpotRepository(db *gorm.DB, dialect string) (*GORMSpotRepository, error) {
	queries, err := spotquery.NewBuilder(dialect)
	if err != nil {
		return nil, err
	}
	return &GORMSpotRepository{
		db:      db,
		queries: queries,
	}, nil
}

// Create creates a new spot in the database.
func (r *GORMSpotRepository) Create(ctx context.Context, spot *models.Spot) error {
	if err := r.db.WithContext(ctx).Create(spot).Error; err != nil {
		return fmt.Errorf("failed to create spot: %w", err)
	}
	return nil
}

// CreateBatch inserts spots in chunks and returns how many were written.
func (r *GORMSpotRepository) CreateBatch(ctx context.Context, spots []models.Spot) (int64, error) {
	if len(spots) == 0 {
		return 0, nil
	}
	res := r.db.WithContext(ctx).CreateInBatches(spots, 100)
	if res.Error != nil {
		return 0, fmt.Errorf("failed to create spots: %w", res.Error)
	}
	return res.RowsAffected, nil
}

// GetByID retrieves a single spot by its ID from the database.
func (r *GORMSpotRepository) GetByID(ctx context.Context, id uint) (*models.Spot, error) {
	var spot models.Spot
	if err := r.db.WithContext(ctx).First(&spot, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("spot with ID %d: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get spot by ID %d: %w", id, err)
	}
	return &spot, nil
}

// Update overwrites the editable fields of an existing spot.
func (r *GORMSpotRepository) Update(ctx context.Context, spot *models.Spot) error {
	res := r.db.WithContext(ctx).
		Model(&models.Spot{}).
		Where("id = ?", spot.ID).
		Select(editableSpotColumns).
		Updates(spot)
	if res.Error != nil {
		return fmt.Errorf("failed to update spot: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("spot with ID %d not updated: %w", spot.ID, ErrNotFound)
	}
	return nil
}

// Delete removes a spot together with its reviews and favorites in one
// transaction.
func (r *GORMSpotRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("spot_id = ?", id).Delete(&models.Review{}).Error; err != nil {
			return fmt.Errorf("failed to delete reviews of spot %d: %w", id, err)
		}
		if err := tx.Where("spot_id = ?", id).Delete(&models.Favorite{}).Error; err != nil {
			return fmt.Errorf("failed to delete favorites of spot %d: %w", id, err)
		}
		res := tx.Delete(&models.Spot{}, "id = ?", id)
		if res.Error != nil {
			return fmt.Errorf("failed to delete spot: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("spot with ID %d not deleted: %w", id, ErrNotFound)
		}
		return nil
	})
}

// Browse returns the spots matching filter with their review statistics.
func (r *GORMSpotRepository) Browse(ctx context.Context, filter spotquery.Filter) ([]models.SpotSummary, error) {
	query, args, err := r.queries.Browse(filter)
	if err != nil {
		return nil, fmt.Errorf("failed to build browse query: %w", err)
	}
	return r.summaries(ctx, query, args)
}

// TopRated returns at most limit reviewed spots, best rated first.
func (r *GORMSpotRepository) TopRated(ctx context.Context, limit uint) ([]models.SpotSummary, error) {
	query, args, err := r.queries.TopRated(limit)
	if err != nil {
		return nil, fmt.Errorf("failed to build top rated query: %w", err)
	}
	return r.summaries(ctx, query, args)
}

// Stats returns the rounded average rating (nil without reviews) and the
// review count of one spot.
func (r *GORMSpotRepository) Stats(ctx context.Context, id uint) (*float64, int, error) {
	query, args, err := r.queries.SpotStats(id)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build stats query: %w", err)
	}
	sqlDB, err := r.db.DB()
	if err != nil {
		return nil, 0, fmt.Errorf("getting sql db handle: %w", err)
	}

	var avg sql.NullFloat64
	var count int
	if err := sqlDB.QueryRowContext(ctx, query, args...).Scan(&avg, &count); err != nil {
		return nil, 0, fmt.Errorf("failed to get stats of spot %d: %w", id, err)
	}
	return nullFloat(avg), count, nil
}

func (r *GORMSpotRepository) summaries(ctx context.Context, query string, args []interface{}) ([]models.SpotSummary, error) {
	sqlDB, err := r.db.DB()
	if err != nil {
		return nil, fmt.Errorf("getting sql db handle: %w", err)
	}

	rows, err := sqlDB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query spots: %w", err)
	}
	defer rows.Close()

	result := make([]models.SpotSummary, 0)
	for rows.Next() {
		var (
			s             models.SpotSummary
			lat, lon, avg sql.NullFloat64
		)
		if err := rows.Scan(
			&s.ID, &s.Name, &s.Category, &lat, &lon,
			&s.LateNight, &s.FineDining, &s.HealthConscious, &s.Affordable, &s.SweetTreat, &s.Close,
			&avg, &s.ReviewCount,
		); err != nil {
			return nil, fmt.Errorf("failed to scan spot row: %w", err)
		}
		s.Latitude = nullFloat(lat)
		s.Longitude = nullFloat(lon)
		s.AvgRating = nullFloat(avg)
		result = append(result, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read spot rows: %w", err)
	}
	return result, nil
}

func nullFloat(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}
