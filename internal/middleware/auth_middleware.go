package middleware

import (
	"strings"

	"spots/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

const identityKey = "identity"

// LoginPath is where browsers without a session are sent.
const LoginPath = "/login"

// Authenticate resolves the session token, if any, into a services.Identity
// stored in the request locals. Requests without a valid token continue as
// anonymous.
func Authenticate(authService *services.AuthService, cookieName string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString := bearerToken(c.Get(fiber.HeaderAuthorization))
		if tokenString == "" {
			tokenString = c.Cookies(cookieName)
		}
		if tokenString == "" {
			return c.Next()
		}

		ident, err := authService.Authenticate(c.UserContext(), tokenString)
		if err != nil {
			log.Debug().Err(err).Str("path", c.Path()).Msg("ignoring invalid session")
			return c.Next()
		}

		c.Locals(identityKey, ident)
		return c.Next()
	}
}

// AuthRequired rejects anonymous requests. Browsers are redirected to the
// login page, API clients get 401.
func AuthRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if Identity(c).Authenticated() {
			return c.Next()
		}
		if wantsHTML(c) {
			return c.Redirect(LoginPath, fiber.StatusSeeOther)
		}
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"message": "Login required",
		})
	}
}

// AdminRequired rejects callers without the admin flag with 403.
// Anonymous callers are handled like AuthRequired does.
func AdminRequired() fiber.Handler {
	requireLogin := AuthRequired()
	return func(c *fiber.Ctx) error {
		ident := Identity(c)
		if !ident.Authenticated() {
			return requireLogin(c)
		}
		if !ident.IsAdmin {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"message": "Admin privileges required",
			})
		}
		return c.Next()
	}
}

// Identity returns the caller stored by Authenticate, or nil.
func Identity(c *fiber.Ctx) *services.Identity {
	ident, _ := c.Locals(identityKey).(*services.Identity)
	return ident
}

func bearerToken(header string) string {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func wantsHTML(c *fiber.Ctx) bool {
	return strings.Contains(c.Get(fiber.HeaderAccept), fiber.MIMETextHTML)
}
