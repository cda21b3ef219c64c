package middleware

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testJWTSecret = "test-secret"

func signTestToken(t *testing.T, claims jwt.MapClaims, secret string) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func TestVerifyCustomerToken(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name   string
		token  string
		wantID uint
		wantOK bool
	}{
		{
			name: "valid token",
			token: signTestToken(t, jwt.MapClaims{
				"iss":         "karage",
				"customer_id": 42,
				"exp":         now.Add(time.Hour).Unix(),
			}, testJWTSecret),
			wantID: 42,
			wantOK: true,
		},
		{
			name: "wrong issuer",
			token: signTestToken(t, jwt.MapClaims{
				"iss":         "someone-else",
				"customer_id": 42,
				"exp":         now.Add(time.Hour).Unix(),
			}, testJWTSecret),
			wantOK: false,
		},
		{
			name: "expired with zero leeway",
			token: signTestToken(t, jwt.MapClaims{
				"iss":         "karage",
				"customer_id": 42,
				"exp":         now.Add(-time.Second).Unix(),
			}, testJWTSecret),
			wantOK: false,
		},
		{
			name: "missing expiry",
			token: signTestToken(t, jwt.MapClaims{
				"iss":         "karage",
				"customer_id": 42,
			}, testJWTSecret),
			wantOK: false,
		},
		{
			name: "wrong secret",
			token: signTestToken(t, jwt.MapClaims{
				"iss":         "karage",
				"customer_id": 42,
				"exp":         now.Add(time.Hour).Unix(),
			}, "other-secret"),
			wantOK: false,
		},
		{
			name: "missing customer claim",
			token: signTestToken(t, jwt.MapClaims{
				"iss": "karage",
				"exp": now.Add(time.Hour).Unix(),
			}, testJWTSecret),
			wantOK: false,
		},
		{
			name:   "garbage token",
			token:  "not.a.jwt",
			wantOK: false,
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			id, ok := VerifyCustomerToken(tc.token, testJWTSecret)
			assert.Equal(t, tc.wantOK, ok)
			if tc.wantOK {
				assert.Equal(t, tc.wantID, id)
			}
		})
	}
}

func TestJWTQueryAuthRejectsMissingToken(t *testing.T) {
	t.Setenv("JWT_SECRET", testJWTSecret)

	app := fiber.New()
	app.Get("/confirm", JWTQueryAuth(), func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"ok": true})
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/confirm", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestJWTQueryAuthAcceptsValidToken(t *testing.T) {
	t.Setenv("JWT_SECRET", testJWTSecret)

	token := signTestToken(t, jwt.MapClaims{
		"iss":         "karage",
		"customer_id": 7,
		"exp":         time.Now().Add(time.Hour).Unix(),
	}, testJWTSecret)

	app := fiber.New()
	app.Get("/confirm", JWTQueryAuth(), func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"ok": true})
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/confirm?token="+token, nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}
