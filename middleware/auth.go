// middleware/auth.go
package middleware

import (
	"strings"

	"questboard/models"
	"questboard/services"

	"github.com/gofiber/fiber/v2"
)

const (
	localUserID = "userId"
	localRole   = "role"
)

// Auth requires a valid Bearer token and stores the caller in Locals
func Auth(tokens *services.TokenIssuer) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"success": false, "error": "Missing authorization header"})
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"success": false, "error": "Invalid authorization header format"})
		}

		claims, err := tokens.Parse(parts[1])
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"success": false, "error": "Invalid or expired token"})
		}

		c.Locals(localUserID, claims.UserID)
		c.Locals(localRole, claims.Role)
		return c.Next()
	}
}

// RequireAdmin must run after Auth
func RequireAdmin(c *fiber.Ctx) error {
	if role, _ := c.Locals(localRole).(models.Role); role != models.RoleAdmin {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"success": false, "error": "Access denied. Admin privileges required."})
	}
	return c.Next()
}

func GetUserID(c *fiber.Ctx) (uint, error) {
	id, ok := c.Locals(localUserID).(uint)
	if !ok {
		return 0, fiber.NewError(fiber.StatusUnauthorized, "User not authenticated")
	}
	return id, nil
}

// GetActor returns the authenticated caller as a service actor
func GetActor(c *fiber.Ctx) (services.Actor, error) {
	id, err := GetUserID(c)
	if err != nil {
		return services.Actor{}, err
	}
	role, _ := c.Locals(localRole).(models.Role)
	return services.Actor{UserID: id, Admin: role == models.RoleAdmin}, nil
}
