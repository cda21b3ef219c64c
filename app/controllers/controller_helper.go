package controllers

import (
	"encoding/json"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// parseJSONBody decodes the request body into dst. A missing or malformed
// body is a client error (400), never a crash.
func parseJSONBody(c *fiber.Ctx, dst any) error {
	body := c.Body()
	if len(strings.TrimSpace(string(body))) == 0 {
		return badRequest(c, "Request body is required")
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return badRequest(c, "Invalid JSON body")
	}
	return nil
}

func badRequest(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": message})
}

func notFound(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not_found", "message": message})
}

func internalError(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": message})
}

// upstreamError reports a failed external-API call to the client. The
// upstream gave no structured payload (clients log it), so the message is
// the whole story.
func upstreamError(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "upstream_failed", "message": message})
}

func firstHeaderValue(c *fiber.Ctx, keys ...string) string {
	for _, key := range keys {
		if v := strings.TrimSpace(c.Get(key)); v != "" {
			return v
		}
	}
	return ""
}
