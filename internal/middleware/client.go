package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const ClientIDKey = "clientID"

// EnsureClientID stores a client identifier in locals, taken from the
// X-Client-ID header or the clientId query parameter. Anonymous clients get
// a fresh one, echoed back in the response header.
func EnsureClientID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if c.Locals(ClientIDKey) != nil {
			return c.Next()
		}

		clientID := c.Get("X-Client-ID")
		if clientID == "" {
			clientID = c.Query("clientId")
		}
		if clientID == "" {
			clientID = uuid.New().String()
		}

		c.Set("X-Client-ID", clientID)
		c.Locals(ClientIDKey, clientID)
		return c.Next()
	}
}
