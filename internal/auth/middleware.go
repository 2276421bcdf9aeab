package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

const userIDKey = "userID"

// Middleware rejects requests without a valid bearer token and stores the user id in Locals.
func Middleware(tokens *Tokens) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authz := c.Get(fiber.HeaderAuthorization)
		if !strings.HasPrefix(authz, "Bearer ") {
			return fiber.NewError(fiber.StatusUnauthorized, "missing bearer token")
		}
		uid, err := tokens.Parse(strings.TrimPrefix(authz, "Bearer "))
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid token")
		}
		c.Locals(userIDKey, uid)
		return c.Next()
	}
}

// UserID returns the id set by Middleware, or "" when absent.
func UserID(c *fiber.Ctx) string {
	uid, _ := c.Locals(userIDKey).(string)
	return uid
}
