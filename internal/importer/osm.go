// Package importer loads seed spots from OpenStreetMap Overpass exports.
package importer

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"spots/internal/geo"
	"spots/internal/models"
	"spots/internal/repositories"

	"github.com/rs/zerolog/log"
)

// Export is the top level of an Overpass JSON response.
type Export struct {
	Elements []Element `json:"elements"`
}

// Element is a node, way or relation. Nodes carry their own coordinates,
// the others a center point (Overpass "out center").
type Element struct {
	Type   string            `json:"type"`
	ID     int64             `json:"id"`
	Lat    *float64          `json:"lat"`
	Lon    *float64          `json:"lon"`
	Center *Coordinates      `json:"center"`
	Tags   map[string]string `json:"tags"`
}

type Coordinates struct {
	Lat *float64 `json:"lat"`
	Lon *float64 `json:"lon"`
}

// Position returns the element's coordinates, if it has both.
func (e Element) Position() (lat, lon float64, ok bool) {
	var la, lo *float64
	if e.Type == "node" {
		la, lo = e.Lat, e.Lon
	} else if e.Center != nil {
		la, lo = e.Center.Lat, e.Center.Lon
	}
	if la == nil || lo == nil {
		return 0, 0, false
	}
	return *la, *lo, true
}

// Parse decodes an Overpass JSON export.
func Parse(r io.Reader) (*Export, error) {
	var export Export
	if err := json.NewDecoder(r).Decode(&export); err != nil {
		return nil, fmt.Errorf("failed to decode OSM export: %w", err)
	}
	return &export, nil
}

// ClassifyCategory maps the OSM amenity tag to a spot category.
func ClassifyCategory(tags map[string]string) string {
	switch tags["amenity"] {
	case "cafe":
		return "Cafe"
	case "fast_food":
		return "Fast Food"
	case "ice_cream":
		return "Dessert"
	case "pub", "bar":
		return "Bar"
	default:
		return "Restaurant"
	}
}

// Result summarizes one import run.
type Result struct {
	Elements        int   `json:"elements"`
	Inserted        int64 `json:"inserted"`
	SkippedNoName   int   `json:"skipped_no_name"`
	SkippedNoCoords int   `json:"skipped_no_coords"`
}

// Spots converts the export into spots. Elements without a name or without
// coordinates are skipped and counted in the result.
func Spots(export *Export, classifier geo.Classifier) ([]models.Spot, Result) {
	res := Result{Elements: len(export.Elements)}
	spots := make([]models.Spot, 0, len(export.Elements))

	for _, el := range export.Elements {
		name := strings.TrimSpace(el.Tags["name"])
		if name == "" {
			res.SkippedNoName++
			continue
		}
		lat, lon, ok := el.Position()
		if !ok {
			res.SkippedNoCoords++
			continue
		}

		spot := models.Spot{
			Name:      name,
			Category:  ClassifyCategory(el.Tags),
			Latitude:  &lat,
			Longitude: &lon,
		}
		spot.Close = classifier.IsClose(spot.Latitude, spot.Longitude)
		spots = append(spots, spot)
	}
	return spots, res
}

// Importer writes OSM exports into the spot store.
type Importer struct {
	spots      repositories.SpotRepository
	classifier geo.Classifier
}

func New(spots repositories.SpotRepository, classifier geo.Classifier) *Importer {
	return &Importer{spots: spots, classifier: classifier}
}

// Import parses r and inserts every usable element as a spot.
func (im *Importer) Import(ctx context.Context, r io.Reader) (Result, error) {
	export, err := Parse(r)
	if err != nil {
		return Result{}, err
	}

	spots, res := Spots(export, im.classifier)
	log.Info().
		Int("elements", res.Elements).
		Int("usable", len(spots)).
		Int("skipped_no_name", res.SkippedNoName).
		Int("skipped_no_coords", res.SkippedNoCoords).
		Msg("parsed OSM export")

	inserted, err := im.spots.CreateBatch(ctx, spots)
	if err != nil {
		return res, err
	}
	res.Inserted = inserted
	return res, nil
}
