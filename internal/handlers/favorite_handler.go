package handlers

import (
	"spots/internal/middleware"
	"spots/internal/services"

	"github.com/gofiber/fiber/v2"
)

// FavoriteHandler handles HTTP requests for favorites.
type FavoriteHandler struct {
	service *services.FavoriteService
}

// NewFavoriteHandler creates a new FavoriteHandler.
func NewFavoriteHandler(service *services.FavoriteService) *FavoriteHandler {
	return &FavoriteHandler{service: service}
}

// RegisterRoutes registers the favorite routes with the Fiber app.
func (h *FavoriteHandler) RegisterRoutes(router fiber.Router) {
	loggedIn := middleware.AuthRequired()
	router.Post("/spot/:id/favorite", loggedIn, h.HandleFavorite)
	router.Post("/spot/:id/unfavorite", loggedIn, h.HandleUnfavorite)
	router.Get("/favorites", loggedIn, h.HandleList)
}

func (h *FavoriteHandler) HandleFavorite(c *fiber.Ctx) error {
	id, ok, err := spotID(c)
	if !ok {
		return err
	}
	if err := h.service.Add(c.UserContext(), middleware.Identity(c), id); err != nil {
		return respondError(c, err, "add favorite")
	}
	return c.JSON(fiber.Map{"spot_id": id, "is_favorite": true})
}

func (h *FavoriteHandler) HandleUnfavorite(c *fiber.Ctx) error {
	id, ok, err := spotID(c)
	if !ok {
		return err
	}
	if err := h.service.Remove(c.UserContext(), middleware.Identity(c), id); err != nil {
		return respondError(c, err, "remove favorite")
	}
	return c.JSON(fiber.Map{"spot_id": id, "is_favorite": false})
}

// HandleList returns the caller's favorite spots.
func (h *FavoriteHandler) HandleList(c *fiber.Ctx) error {
	spots, err := h.service.List(c.UserContext(), middleware.Identity(c))
	if err != nil {
		return respondError(c, err, "retrieve favorites")
	}
	return c.JSON(fiber.Map{"spots": spots})
}
