package middleware

import (
	"crypto/subtle"
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/karage/integrations/internal/pkg/env"
)

const eventSecretHeader = "x-event-secret"

// WebhookSecretAuth guards inbound provider webhooks with a shared secret
// header. A missing configuration is a server fault, not a client one.
func WebhookSecretAuth(secretEnvKey string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		secret := strings.TrimSpace(env.GetEnv(secretEnvKey, ""))
		if secret == "" {
			log.Printf("webhook secret middleware: %s is not configured", secretEnvKey)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Webhook secret not configured"})
		}

		got := strings.TrimSpace(c.Get(eventSecretHeader))
		if got == "" || subtle.ConstantTimeCompare([]byte(got), []byte(secret)) != 1 {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized", "message": "Invalid event secret"})
		}

		return c.Next()
	}
}
