package handlers

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"spots/internal/middleware"
	"spots/internal/services"
	"spots/internal/spotquery"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

// SpotHandler handles HTTP requests for spots.
type SpotHandler struct {
	service  *services.SpotService
	validate *validator.Validate
}

// NewSpotHandler creates a new SpotHandler.
func NewSpotHandler(service *services.SpotService) *SpotHandler {
	return &SpotHandler{
		service:  service,
		validate: validator.New(),
	}
}

// RegisterRoutes registers the spot routes with the Fiber app.
func (h *SpotHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/", h.HandleTopRated)

	loggedIn := middleware.AuthRequired()
	router.Get("/spots", loggedIn, h.HandleBrowse)
	router.Get("/spot/:id", loggedIn, h.HandleDetail)
	router.Get("/add-spot", loggedIn, h.HandleAddSpotForm)
	router.Post("/add-spot", loggedIn, h.HandleCreate)

	admin := middleware.AdminRequired()
	router.Get("/spot/:id/edit", admin, h.HandleEditForm)
	router.Post("/spot/:id/edit", admin, h.HandleUpdate)
	router.Post("/spot/:id/delete", admin, h.HandleDelete)
}

// HandleTopRated returns the home page list of best rated spots.
func (h *SpotHandler) HandleTopRated(c *fiber.Ctx) error {
	spots, err := h.service.TopRated(c.UserContext())
	if err != nil {
		return respondError(c, err, "retrieve top rated spots")
	}
	return c.JSON(fiber.Map{
		"spots":    spots,
		"identity": middleware.Identity(c),
	})
}

// HandleBrowse returns the spots matching the query string filter along
// with their map markers.
func (h *SpotHandler) HandleBrowse(c *fiber.Ctx) error {
	filter, err := parseFilter(c)
	if err != nil {
		return badRequest(c, "Invalid filter", err)
	}

	result, err := h.service.Browse(c.UserContext(), filter)
	if err != nil {
		return respondError(c, err, "retrieve spots")
	}
	return c.JSON(result)
}

// parseFilter reads q, min_rating and one boolean parameter per tag.
// Missing or empty parameters impose no constraint.
func parseFilter(c *fiber.Ctx) (spotquery.Filter, error) {
	filter := spotquery.Filter{Term: c.Query("q")}

	if raw := strings.TrimSpace(c.Query("min_rating")); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			return filter, fmt.Errorf("min_rating %q is not a number", raw)
		}
		filter.MinRating = &v
	}

	for _, tag := range spotquery.Tags {
		raw := strings.TrimSpace(c.Query(string(tag)))
		if raw == "" {
			continue
		}
		on, err := parseFlag(raw)
		if err != nil {
			return filter, fmt.Errorf("%s %q is not a boolean", tag, raw)
		}
		if on {
			filter.Tags = append(filter.Tags, tag)
		}
	}
	return filter, nil
}

// parseFlag accepts strconv booleans plus the "on" sent by HTML checkboxes.
func parseFlag(raw string) (bool, error) {
	if strings.EqualFold(raw, "on") {
		return true, nil
	}
	return strconv.ParseBool(raw)
}

// HandleDetail returns a spot with its reviews, rating and favorite state.
func (h *SpotHandler) HandleDetail(c *fiber.Ctx) error {
	id, ok, err := spotID(c)
	if !ok {
		return err
	}

	detail, err := h.service.Detail(c.UserContext(), middleware.Identity(c), id)
	if err != nil {
		return respondError(c, err, "retrieve spot")
	}
	return c.JSON(detail)
}

// HandleAddSpotForm describes the spot creation form.
func (h *SpotHandler) HandleAddSpotForm(c *fiber.Ctx) error {
	tags := make([]string, 0, len(spotquery.Tags))
	for _, t := range spotquery.Tags {
		if t == spotquery.TagClose {
			continue
		}
		tags = append(tags, string(t))
	}
	return c.JSON(fiber.Map{
		"fields": []string{"name", "category", "latitude", "longitude"},
		"tags":   tags,
	})
}

// HandleCreate creates a new spot.
func (h *SpotHandler) HandleCreate(c *fiber.Ctx) error {
	in, ok, err := h.parseSpotInput(c)
	if !ok {
		return err
	}

	spot, err := h.service.Create(c.UserContext(), middleware.Identity(c), in)
	if err != nil {
		return respondError(c, err, "create spot")
	}

	log.Info().Uint("spot_id", spot.ID).Bool("close", spot.Close).Msg("spot created")
	return c.Status(fiber.StatusCreated).JSON(spot)
}

// HandleEditForm returns the current values of a spot for editing.
func (h *SpotHandler) HandleEditForm(c *fiber.Ctx) error {
	id, ok, err := spotID(c)
	if !ok {
		return err
	}

	spot, err := h.service.Get(c.UserContext(), middleware.Identity(c), id)
	if err != nil {
		return respondError(c, err, "retrieve spot")
	}
	return c.JSON(spot)
}

// HandleUpdate overwrites the editable fields of a spot.
func (h *SpotHandler) HandleUpdate(c *fiber.Ctx) error {
	id, ok, err := spotID(c)
	if !ok {
		return err
	}
	in, ok, err := h.parseSpotInput(c)
	if !ok {
		return err
	}

	spot, err := h.service.Update(c.UserContext(), middleware.Identity(c), id, in)
	if err != nil {
		return respondError(c, err, "update spot")
	}
	return c.JSON(spot)
}

// HandleDelete deletes a spot together with its reviews.
func (h *SpotHandler) HandleDelete(c *fiber.Ctx) error {
	id, ok, err := spotID(c)
	if !ok {
		return err
	}

	if err := h.service.Delete(c.UserContext(), middleware.Identity(c), id); err != nil {
		return respondError(c, err, "delete spot")
	}

	log.Info().Uint("spot_id", id).Msg("spot deleted")
	return c.JSON(fiber.Map{
		"message": fmt.Sprintf("Spot %d deleted", id),
	})
}

func (h *SpotHandler) parseSpotInput(c *fiber.Ctx) (services.SpotInput, bool, error) {
	var in services.SpotInput
	if err := c.BodyParser(&in); err != nil {
		log.Debug().Err(err).Msg("error parsing spot request body")
		return in, false, badRequest(c, "Invalid request body", err)
	}
	if ok, err := validateBody(c, h.validate, in); !ok {
		return in, false, err
	}
	return in, true, nil
}
