package handlers

import (
	"errors"
	"fmt"

	"spots/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

// respondError maps service errors to HTTP responses. Unexpected errors are
// logged and reported as 500 with a generic message built from action.
func respondError(c *fiber.Ctx, err error, action string) error {
	switch {
	case errors.Is(err, services.ErrInvalidInput), errors.Is(err, services.ErrEmailDomain):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Validation failed",
			"error":   err.Error(),
		})
	case errors.Is(err, services.ErrUsernameTaken), errors.Is(err, services.ErrEmailTaken):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"message": "Registration failed",
			"error":   err.Error(),
		})
	case errors.Is(err, services.ErrInvalidCredentials):
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"message": "Authentication failed",
			"error":   err.Error(),
		})
	case errors.Is(err, services.ErrUnauthenticated):
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"message": "Login required",
		})
	case errors.Is(err, services.ErrForbidden):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"message": "Admin privileges required",
		})
	case errors.Is(err, services.ErrSpotNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"message": "Spot not found",
		})
	}

	log.Error().Err(err).Str("path", c.Path()).Msg(action + " failed")
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"message": "Could not " + action,
	})
}

func badRequest(c *fiber.Ctx, message string, err error) error {
	body := fiber.Map{"message": message}
	if err != nil {
		body["error"] = err.Error()
	}
	return c.Status(fiber.StatusBadRequest).JSON(body)
}

// validateBody runs the struct's validate tags. On failure it writes the
// 400 response and returns false.
func validateBody(c *fiber.Ctx, validate *validator.Validate, body interface{}) (bool, error) {
	err := validate.Struct(body)
	if err == nil {
		return true, nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return false, badRequest(c, "Validation failed", err)
	}
	errorMessages := make(map[string]string, len(validationErrors))
	for _, e := range validationErrors {
		errorMessages[e.Field()] = fmt.Sprintf("Field '%s' failed on the '%s' tag", e.Field(), e.Tag())
	}
	return false, c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"message": "Validation failed",
		"errors":  errorMessages,
	})
}

// spotID reads the :id route parameter. Non positive or malformed ids
// answer 404 like an unknown spot.
func spotID(c *fiber.Ctx) (uint, bool, error) {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return 0, false, c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"message": "Spot not found",
		})
	}
	return uint(id), true, nil
}
