package handlers

import (
	"spots/internal/middleware"
	"spots/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

// ReviewHandler handles HTTP requests for reviews.
type ReviewHandler struct {
	service  *services.ReviewService
	validate *validator.Validate
}

// NewReviewHandler creates a new ReviewHandler.
func NewReviewHandler(service *services.ReviewService) *ReviewHandler {
	return &ReviewHandler{
		service:  service,
		validate: validator.New(),
	}
}

// RegisterRoutes registers the review routes with the Fiber app.
func (h *ReviewHandler) RegisterRoutes(router fiber.Router) {
	loggedIn := middleware.AuthRequired()
	router.Post("/spot/:id/review", loggedIn, h.HandleAddReview)
	router.Get("/my-reviews", loggedIn, h.HandleMyReviews)
}

// HandleAddReview stores the caller's review of a spot.
func (h *ReviewHandler) HandleAddReview(c *fiber.Ctx) error {
	id, ok, err := spotID(c)
	if !ok {
		return err
	}

	var in services.ReviewInput
	if err := c.BodyParser(&in); err != nil {
		log.Debug().Err(err).Msg("error parsing review request body")
		return badRequest(c, "Invalid request body", err)
	}
	if ok, err := validateBody(c, h.validate, in); !ok {
		return err
	}

	review, err := h.service.AddReview(c.UserContext(), middleware.Identity(c), id, in)
	if err != nil {
		return respondError(c, err, "add review")
	}
	return c.Status(fiber.StatusCreated).JSON(review)
}

// HandleMyReviews lists the caller's reviews, newest first.
func (h *ReviewHandler) HandleMyReviews(c *fiber.Ctx) error {
	reviews, err := h.service.ListByUser(c.UserContext(), middleware.Identity(c))
	if err != nil {
		return respondError(c, err, "retrieve reviews")
	}
	return c.JSON(fiber.Map{
		"reviews": reviews,
	})
}
