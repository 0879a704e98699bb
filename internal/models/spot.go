package models

// Spot represents a place users can review and favorite.
type Spot struct {
	ID              uint     `json:"id" gorm:"primaryKey"`
	Name            string   `json:"name" gorm:"not null"`
	Category        string   `json:"category"`
	Latitude        *float64 `json:"latitude"`
	Longitude       *float64 `json:"longitude"`
	LateNight       bool     `json:"late_night"`
	FineDining      bool     `json:"fine_dining"`
	HealthConscious bool     `json:"health_conscious"`
	Affordable      bool     `json:"affordable"`
	SweetTreat      bool     `json:"sweet_treat"`
	// Close is derived from the coordinates when the spot is created and
	// stored as is afterwards.
	Close bool `json:"close"`
}

// HasCoordinates reports whether both latitude and longitude are set.
func (s Spot) HasCoordinates() bool {
	return s.Latitude != nil && s.Longitude != nil
}

// SpotSummary is a spot together with its review statistics.
// AvgRating is nil when the spot has no reviews.
type SpotSummary struct {
	Spot
	AvgRating   *float64 `json:"avg_rating"`
	ReviewCount int      `json:"review_count"`
}

// MapMarker is the minimal spot data needed to pin it on a map.
type MapMarker struct {
	ID        uint    `json:"id"`
	Name      string  `json:"name"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// SpotDetail is the single spot view.
type SpotDetail struct {
	Spot        Spot         `json:"spot"`
	Reviews     []ReviewView `json:"reviews"`
	AvgRating   *float64     `json:"avg_rating"`
	ReviewCount int          `json:"review_count"`
	IsFavorite  bool         `json:"is_favorite"`
}
