package controllers

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"gorm.io/gorm"

	"github.com/karage/integrations/app/models"
	"github.com/karage/integrations/app/repository"
	"github.com/karage/integrations/internal/pkg/env"
	"github.com/karage/integrations/internal/pkg/integrations/esign"
	"github.com/karage/integrations/internal/pkg/mapping"
	"github.com/karage/integrations/internal/pkg/principal"
)

const signatureLinkTTL = 72 * time.Hour

type createSignatureRequest struct {
	OrderReference string `json:"OrderReference"`
	DocumentTitle  string `json:"DocumentTitle"`
}

// HandleCreateSignatureRequest opens an e-signature request for an order
// contract. Repeated calls for the same order return the existing request.
func HandleCreateSignatureRequest(c *fiber.Ctx) error {
	p := principal.Get(c)
	if !p.IsResolved {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized", "message": "Missing or invalid authentication"})
	}

	var req createSignatureRequest
	if err := parseJSONBody(c, &req); err != nil {
		return err
	}
	if req.OrderReference == "" {
		return badRequest(c, "OrderReference is required")
	}

	factory := repository.GetGlobalFactory()
	order, err := factory.GetOrderRepository().GetByReference(req.OrderReference)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return notFound(c, "Order not found")
		}
		return internalError(c, "Failed to load order")
	}

	customer, err := factory.GetCustomerRepository().GetByID(order.CustomerID)
	if err != nil {
		return internalError(c, "Failed to load order customer")
	}

	secret := env.GetEnv("JWT_SECRET", "")
	if secret == "" {
		return internalError(c, "Signature links are not configured")
	}
	confirmToken, err := signConfirmToken(customer.ID, secret)
	if err != nil {
		return internalError(c, "Failed to build confirmation link")
	}
	callbackURL := strings.TrimRight(env.GetEnv("PUBLIC_BASE_URL", ""), "/") +
		"/api/v1/esign/confirm?ref=" + order.Reference + "&token=" + confirmToken

	title := req.DocumentTitle
	if title == "" {
		title = "Sales contract " + order.Reference
	}

	mapper := mapping.New(factory.GetMappingRepository())
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	client := esign.NewClientFromEnv()
	var signURL string
	requestID, _, err := mapper.ResolveOrCreate(ctx, models.IntegrationEsign, models.EntityContract, order.ID, order.LocationID,
		func(ctx context.Context) (string, error) {
			result := client.CreateSignatureRequest(ctx, esign.SignatureRequest{
				Reference:     order.Reference,
				SignerName:    customer.Name,
				SignerPhone:   customer.Phone,
				DocumentTitle: title,
				CallbackURL:   callbackURL,
			})
			if result == nil {
				return "", errors.New("e-sign provider did not open the request")
			}
			signURL = result.SignURL
			return result.RequestID, nil
		})
	if err != nil {
		return upstreamError(c, "Signature request failed")
	}

	if order.SignatureStatus == models.SIGNATURE_STATUS_NONE {
		order.SignatureStatus = models.SIGNATURE_STATUS_REQUESTED
		if err := factory.GetOrderRepository().Update(order); err != nil {
			return internalError(c, "Failed to record signature request")
		}
	}

	resp := fiber.Map{"request_id": requestID}
	if signURL != "" {
		resp["sign_url"] = signURL
	}
	return c.Status(fiber.StatusCreated).JSON(resp)
}

// HandleConfirmSignature marks an order contract signed. The caller was
// authenticated by the signed-JWT middleware; the token's customer must own
// the order named in the ref query parameter.
func HandleConfirmSignature(c *fiber.Ctx) error {
	p := principal.Get(c)
	if !p.IsResolved || p.CustomerID == 0 {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized", "message": "Missing or invalid authentication"})
	}

	ref := strings.TrimSpace(c.Query("ref"))
	if ref == "" {
		return badRequest(c, "ref is required")
	}

	factory := repository.GetGlobalFactory()
	order, err := factory.GetOrderRepository().GetByReference(ref)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return notFound(c, "Order not found")
		}
		return internalError(c, "Failed to load order")
	}
	if order.CustomerID != p.CustomerID {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized", "message": "Token does not match this order"})
	}

	if order.SignatureStatus != models.SIGNATURE_STATUS_SIGNED {
		now := time.Now()
		order.SignatureStatus = models.SIGNATURE_STATUS_SIGNED
		order.SignedAt = &now
		if err := factory.GetOrderRepository().Update(order); err != nil {
			return internalError(c, "Failed to record signature")
		}
	}

	return c.JSON(fiber.Map{"ok": true, "signature_status": order.SignatureStatus})
}

// signConfirmToken issues the HS256 token embedded in signature confirmation
// links. The verifying middleware requires the karage issuer and rejects any
// expired token with zero leeway.
func signConfirmToken(customerID uint, secret string) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"iss":         "karage",
		"customer_id": customerID,
		"iat":         now.Unix(),
		"exp":         now.Add(signatureLinkTTL).Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(secret))
}
