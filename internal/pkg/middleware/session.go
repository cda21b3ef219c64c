package middleware

import (
	"context"
	"errors"
	"log"
	"regexp"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/karage/integrations/app/repository"
	"github.com/karage/integrations/internal/pkg/database"
	"github.com/karage/integrations/internal/pkg/identity"
	"github.com/karage/integrations/internal/pkg/principal"
)

// Session tokens embed the issuing company's code after a fixed marker,
// e.g. "v2.krg_ACME42.8f3a...". The code is the first run of alphanumerics
// after the marker, at most maxCompanyCodeLen characters, upper-cased.
const (
	companyCodeMarker = "krg_"
	maxCompanyCodeLen = 12
)

var companyCodePattern = regexp.MustCompile(`^[A-Za-z0-9]+`)

// SessionValidator validates a session token for a user against the
// upstream identity API. Satisfied by *identity.Client.
type SessionValidator interface {
	ValidateSession(ctx context.Context, userID uint, token string) (*identity.LoginSession, error)
}

// SessionAuth authenticates requests carrying a bearer session token issued
// by the Karage identity service. The embedded company code selects the
// local user; the upstream validation call confirms the session and yields
// the location scope.
func SessionAuth(validator SessionValidator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := extractBearerToken(c)
		if token == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized", "message": "Missing session token"})
		}

		companyCode, ok := ExtractCompanyCode(token)
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized", "message": "Invalid session token"})
		}

		if database.GetDB() == nil {
			log.Print("session middleware: database unavailable")
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Database unavailable"})
		}

		repo := repository.GetGlobalFactory().GetUserRepository()
		user, err := repo.GetByCompanyCode(companyCode)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized", "message": "Unknown company code"})
			}
			log.Printf("company code lookup failed: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Session verification failed"})
		}

		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		session, err := validator.ValidateSession(ctx, user.ID, token)
		if err != nil {
			if errors.Is(err, identity.ErrSessionRejected) {
				return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized", "message": "Session rejected"})
			}
			log.Printf("identity validation call failed for user %d: %v", user.ID, err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Session validation unavailable"})
		}

		locationID := session.LocationID
		if locationID == 0 {
			locationID = user.LocationID
		}

		principal.Set(c, principal.Principal{
			UserID:      user.ID,
			LocationID:  locationID,
			CompanyCode: user.CompanyCode,
			IsResolved:  true,
		})

		return c.Next()
	}
}

// ExtractCompanyCode pulls the embedded company code out of a session token.
// Returns false when the marker is absent or no valid run follows it.
func ExtractCompanyCode(token string) (string, bool) {
	idx := strings.Index(token, companyCodeMarker)
	if idx < 0 {
		return "", false
	}
	rest := token[idx+len(companyCodeMarker):]
	code := companyCodePattern.FindString(rest)
	if code == "" {
		return "", false
	}
	if len(code) > maxCompanyCodeLen {
		code = code[:maxCompanyCodeLen]
	}
	return strings.ToUpper(code), true
}

func extractBearerToken(c *fiber.Ctx) string {
	auth := strings.TrimSpace(c.Get("Authorization"))
	if strings.HasPrefix(strings.ToLower(auth), "bearer ") {
		return strings.TrimSpace(auth[7:])
	}
	return ""
}
