package principal

import "github.com/gofiber/fiber/v2"

// Principal is the resolved local identity of a request, derived from a
// validated credential. It lives for one request only.
type Principal struct {
	UserID      uint   `json:"user_id"`
	CustomerID  uint   `json:"customer_id"`
	LocationID  uint   `json:"location_id"`
	CompanyCode string `json:"company_code"`
	IsResolved  bool   `json:"is_resolved"`
}

// Shared Locals keys used across controllers and middlewares
const (
	ContextKey    = "PRINCIPAL"
	KeyUserID     = "user_id"
	KeyLocationID = "location_id"
	KeyResolved   = "credential_resolved"
)

// Get retrieves the principal from the fiber context, or an unresolved
// principal when no credential middleware ran.
func Get(c *fiber.Ctx) Principal {
	if p := c.Locals(ContextKey); p != nil {
		return p.(Principal)
	}
	return Principal{IsResolved: false}
}

// Set stores the principal and its convenience keys in the fiber context.
func Set(c *fiber.Ctx, p Principal) {
	c.Locals(ContextKey, p)
	c.Locals(KeyResolved, p.IsResolved)
	c.Locals(KeyUserID, p.UserID)
	c.Locals(KeyLocationID, p.LocationID)
}

// IsResolved checks whether the current request carries a validated credential.
func IsResolved(c *fiber.Ctx) bool {
	return Get(c).IsResolved
}
