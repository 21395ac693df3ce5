package middleware

import (
	"github.com/gofiber/fiber/v2"
)

// ClientKeyRequired is a Fiber middleware that guards mutating routes with
// a shared client key sent in the X-Client-Key header. It is a placeholder
// client check, not an authentication model: an empty configured key
// disables the check entirely.
func ClientKeyRequired(key string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if key == "" {
			return c.Next()
		}

		provided := c.Get("X-Client-Key")
		if provided == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "X-Client-Key header is required",
			})
		}
		if provided != key {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Invalid client key",
			})
		}

		return c.Next()
	}
}
