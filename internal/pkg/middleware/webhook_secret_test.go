package middleware

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newWebhookTestApp() *fiber.App {
	app := fiber.New()
	app.Post("/events", WebhookSecretAuth("TEST_EVENT_SECRET"), func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"ok": true})
	})
	return app
}

func TestWebhookSecretAuthUnconfiguredSecretIsServerError(t *testing.T) {
	t.Setenv("TEST_EVENT_SECRET", "")

	app := newWebhookTestApp()
	req := httptest.NewRequest("POST", "/events", nil)
	req.Header.Set("x-event-secret", "whatever")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
}

func TestWebhookSecretAuthRejectsWrongSecret(t *testing.T) {
	t.Setenv("TEST_EVENT_SECRET", "expected")

	app := newWebhookTestApp()

	tests := []struct {
		name   string
		secret string
	}{
		{name: "missing header", secret: ""},
		{name: "wrong value", secret: "not-expected"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest("POST", "/events", nil)
			if tc.secret != "" {
				req.Header.Set("x-event-secret", tc.secret)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
		})
	}
}

func TestWebhookSecretAuthAcceptsMatchingSecret(t *testing.T) {
	t.Setenv("TEST_EVENT_SECRET", "expected")

	app := newWebhookTestApp()
	req := httptest.NewRequest("POST", "/events", nil)
	req.Header.Set("x-event-secret", "expected")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}
