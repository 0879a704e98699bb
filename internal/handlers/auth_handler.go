package handlers

import (
	"time"

	"spots/internal/middleware"
	"spots/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

// AuthHandler handles HTTP requests for authentication.
type AuthHandler struct {
	authService *services.AuthService
	validate    *validator.Validate
	cookieName  string
}

// NewAuthHandler creates a new AuthHandler. Sessions are stored in the
// cookieName cookie.
func NewAuthHandler(authService *services.AuthService, cookieName string) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		validate:    validator.New(),
		cookieName:  cookieName,
	}
}

// RegisterRoutes registers the authentication routes with the Fiber app.
func (h *AuthHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/register", h.HandleRegisterForm)
	router.Post("/register", h.HandleRegister)
	router.Get("/login", h.HandleLoginForm)
	router.Post("/login", h.HandleLogin)
	router.Get("/logout", h.HandleLogout)
}

// HandleRegisterForm describes the registration form.
func (h *AuthHandler) HandleRegisterForm(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"fields": []string{"username", "email", "password"},
	})
}

// HandleRegister handles new user registration.
func (h *AuthHandler) HandleRegister(c *fiber.Ctx) error {
	var in services.RegisterInput
	if err := c.BodyParser(&in); err != nil {
		log.Debug().Err(err).Msg("error parsing register request body")
		return badRequest(c, "Invalid request body", err)
	}
	if ok, err := validateBody(c, h.validate, in); !ok {
		return err
	}

	user, err := h.authService.RegisterUser(c.UserContext(), in)
	if err != nil {
		return respondError(c, err, "register user")
	}

	log.Info().Uint("user_id", user.ID).Str("username", user.Username).Msg("user registered")
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "User registered successfully",
		"user":    user,
	})
}

// LoginRequest represents the request body for login.
type LoginRequest struct {
	Username string `json:"username" form:"username" validate:"required"`
	Password string `json:"password" form:"password" validate:"required"`
}

// HandleLoginForm describes the login form.
func (h *AuthHandler) HandleLoginForm(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"fields":   []string{"username", "password"},
		"identity": middleware.Identity(c),
	})
}

// HandleLogin authenticates the user and starts a session. The token is set
// as an HttpOnly cookie and returned in the body for API clients.
func (h *AuthHandler) HandleLogin(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		log.Debug().Err(err).Msg("error parsing login request body")
		return badRequest(c, "Invalid request body", err)
	}
	if ok, err := validateBody(c, h.validate, req); !ok {
		return err
	}

	token, err := h.authService.LoginUser(c.UserContext(), req.Username, req.Password)
	if err != nil {
		log.Info().Str("username", req.Username).Msg("login rejected")
		return respondError(c, err, "log in")
	}

	c.Cookie(&fiber.Cookie{
		Name:     h.cookieName,
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(h.authService.TokenTTL()),
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	return c.JSON(fiber.Map{
		"message": "Login successful",
		"token":   token,
	})
}

// HandleLogout ends the session by clearing the cookie.
func (h *AuthHandler) HandleLogout(c *fiber.Ctx) error {
	c.ClearCookie(h.cookieName)
	return c.JSON(fiber.Map{
		"message": "Logged out",
	})
}
