package geo

import "math"

// EarthRadiusKm is the mean Earth radius used by the haversine formula.
const EarthRadiusKm = 6371.0

// DefaultThresholdKm is the radius within which a spot counts as "close".
const DefaultThresholdKm = 0.8

// Point is a latitude/longitude pair in decimal degrees.
type Point struct {
	Lat float64
	Lon float64
}

// DefaultReference is the fixed landmark spots are measured against.
var DefaultReference = Point{Lat: 42.374528, Lon: -71.117194}

// Distance returns the great-circle distance between a and b in kilometres.
func Distance(a, b Point) float64 {
	dLat := degreesToRadians(b.Lat - a.Lat)
	dLon := degreesToRadians(b.Lon - a.Lon)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(degreesToRadians(a.Lat))*math.Cos(degreesToRadians(b.Lat))*
			math.Sin(dLon/2)*math.Sin(dLon/2)

	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
	return EarthRadiusKm * c
}

// IsClose reports whether (lat, lon) lies within thresholdKm of ref.
// Missing coordinates are never close.
func IsClose(lat, lon *float64, ref Point, thresholdKm float64) bool {
	if lat == nil || lon == nil {
		return false
	}
	return Distance(Point{Lat: *lat, Lon: *lon}, ref) <= thresholdKm
}

// Classifier binds a reference point and radius so callers don't have to
// carry both around.
type Classifier struct {
	Reference   Point
	ThresholdKm float64
}

// NewClassifier returns a classifier for the default landmark and radius.
func NewClassifier() Classifier {
	return Classifier{Reference: DefaultReference, ThresholdKm: DefaultThresholdKm}
}

// IsClose applies the classifier's reference and radius.
func (c Classifier) IsClose(lat, lon *float64) bool {
	return IsClose(lat, lon, c.Reference, c.ThresholdKm)
}

func degreesToRadians(deg float64) float64 {
	return deg * math.Pi / 180.0
}
