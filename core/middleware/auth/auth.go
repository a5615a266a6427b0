package auth

import (
	"crypto/subtle"

	"github.com/gofiber/fiber/v2"
)

// Header carries the API key.
const Header = "X-API-Key"

// Config holds the auth middleware settings.
type Config struct {
	// ApiKey is the expected key. Empty disables the check.
	ApiKey string
	// Public lists paths served without a key.
	Public []string
}

// New returns middleware that rejects requests without the configured API key.
// The key is read from the header or the api_key query parameter.
func New(cfg Config) fiber.Handler {
	public := make(map[string]struct{}, len(cfg.Public))
	for _, p := range cfg.Public {
		public[p] = struct{}{}
	}

	return func(c *fiber.Ctx) error {
		if cfg.ApiKey == "" {
			return c.Next()
		}
		if _, ok := public[c.Path()]; ok {
			return c.Next()
		}

		key := c.Get(Header)
		if key == "" {
			key = c.Query("api_key")
		}
		if subtle.ConstantTimeCompare([]byte(key), []byte(cfg.ApiKey)) != 1 {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
		}
		return c.Next()
	}
}
