package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"

	"github.com/karage/integrations/internal/pkg/env"
	"github.com/karage/integrations/internal/pkg/principal"
)

const jwtIssuer = "karage"

// JWTQueryAuth validates a signed JWT passed in the "token" query parameter,
// as used by e-signature confirmation links. The token must be HS256 under
// the shared secret, carry the karage issuer and an unexpired lifetime with
// no clock-skew tolerance. The customer_id claim becomes the principal.
// Every verification failure is a 401; this middleware fails closed.
func JWTQueryAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		raw := strings.TrimSpace(c.Query("token"))
		if raw == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized", "message": "Missing token"})
		}

		secret := env.GetEnv("JWT_SECRET", "")
		if secret == "" {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Token verification not configured"})
		}

		customerID, ok := VerifyCustomerToken(raw, secret)
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized", "message": "Invalid token"})
		}

		principal.Set(c, principal.Principal{
			CustomerID: customerID,
			IsResolved: true,
		})

		return c.Next()
	}
}

// VerifyCustomerToken checks the signature, issuer and expiry of a customer
// JWT and extracts the customer_id claim. Returns false on any failure.
func VerifyCustomerToken(raw, secret string) (uint, bool) {
	tok, err := jwt.Parse(raw,
		func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrTokenSignatureInvalid
			}
			return []byte(secret), nil
		},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithIssuer(jwtIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(0),
	)
	if err != nil || !tok.Valid {
		return 0, false
	}

	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return 0, false
	}
	id, ok := claims["customer_id"].(float64)
	if !ok || id <= 0 {
		return 0, false
	}
	return uint(id), true
}
