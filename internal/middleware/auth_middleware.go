package middleware

import (
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"

	"ulasan/internal/apperrors"
	"ulasan/internal/models"
	"ulasan/internal/permissions"
	"ulasan/internal/services"
)

const userKey = "user"

// Authenticate resolves an optional bearer token to a user stored in the
// Fiber context. Requests without an Authorization header continue as
// anonymous; a present but invalid token is rejected with 401.
func Authenticate(authService *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get(fiber.HeaderAuthorization)
		if authHeader == "" {
			return c.Next()
		}

		// Expected format: "Bearer <token>"
		parts := strings.SplitN(authHeader, " ", 2)
		if !(len(parts) == 2 && parts[0] == "Bearer" && parts[1] != "") {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Authorization header format must be 'Bearer <token>'",
			})
		}

		user, err := authService.Authenticate(parts[1])
		if err != nil {
			log.Printf("Bearer authentication failed: %v", err)
			status := fiber.StatusUnauthorized
			if apperrors.KindOf(err) == apperrors.KindInternal {
				status = fiber.StatusInternalServerError
			}
			return c.Status(status).JSON(fiber.Map{
				"message": "Invalid or expired token",
			})
		}

		c.Locals(userKey, user)
		return c.Next()
	}
}

// CurrentUser returns the authenticated user, or nil for anonymous callers.
func CurrentUser(c *fiber.Ctx) *models.User {
	user, _ := c.Locals(userKey).(*models.User)
	return user
}

// Require rejects the request before it reaches a handler unless the
// collection-level predicate of policy allows it.
func Require(policy permissions.Policy) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := permissions.Check(policy, CurrentUser(c), c.Method()); err != nil {
			return c.Status(statusFor(err)).JSON(fiber.Map{
				"message": err.Error(),
			})
		}
		return c.Next()
	}
}

func statusFor(err error) int {
	if apperrors.KindOf(err) == apperrors.KindAuthentication {
		return fiber.StatusUnauthorized
	}
	return fiber.StatusForbidden
}
