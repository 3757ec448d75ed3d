package middlewares

import (
	"strings"

	"github.com/edustack/campusaudit/internal/auth"
	"github.com/gofiber/fiber/v2"
)

const claimsLocalKey = "authClaims"

// RequireRole authenticates the bearer token and asserts the given role
// claim. Role checks run against the signed token, never raw headers.
func RequireRole(authService *auth.AuthService, role string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get(fiber.HeaderAuthorization)
		token, found := strings.CutPrefix(header, "Bearer ")
		if !found || token == "" {
			return fiber.ErrUnauthorized
		}
		claims, err := authService.Verify(token)
		if err != nil {
			return fiber.ErrUnauthorized
		}
		if role != "" && !claims.HasRole(role) {
			return fiber.ErrForbidden
		}
		c.Locals(claimsLocalKey, claims)
		return c.Next()
	}
}

// ClaimsFromCtx returns the verified claims set by RequireRole, or nil.
func ClaimsFromCtx(c *fiber.Ctx) *auth.Claims {
	claims, _ := c.Locals(claimsLocalKey).(*auth.Claims)
	return claims
}
