package controllers

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/karage/integrations/app/models"
	"github.com/karage/integrations/app/repository"
	"github.com/karage/integrations/internal/pkg/integrations/loyalty"
	"github.com/karage/integrations/internal/pkg/mapping"
	"github.com/karage/integrations/internal/pkg/principal"
)

const loyaltyProviderName = "walletcards"

type createCardRequest struct {
	CustomerID uint `json:"CustomerId"`
}

// HandleCreateLoyaltyCard creates a wallet loyalty card for a customer.
// Creation is idempotent: an existing mapping is returned without touching
// the provider again.
func HandleCreateLoyaltyCard(c *fiber.Ctx) error {
	p := principal.Get(c)
	if !p.IsResolved {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized", "message": "Missing or invalid authentication"})
	}

	var req createCardRequest
	if err := parseJSONBody(c, &req); err != nil {
		return err
	}
	if req.CustomerID == 0 {
		return badRequest(c, "CustomerId is required")
	}

	factory := repository.GetGlobalFactory()
	customer, err := factory.GetCustomerRepository().GetByID(req.CustomerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return notFound(c, "Customer not found")
		}
		return internalError(c, "Failed to load customer")
	}

	mapper := mapping.New(factory.GetMappingRepository())
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	existing, err := mapper.Resolve(models.IntegrationLoyalty, models.EntityCustomerCard, customer.ID, p.LocationID)
	if err == nil {
		return c.JSON(fiber.Map{"card_id": existing, "created": false})
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return internalError(c, "Failed to resolve card mapping")
	}

	client := loyalty.NewClientFromEnv()
	var installURL string
	cardID, created, err := mapper.ResolveOrCreate(ctx, models.IntegrationLoyalty, models.EntityCustomerCard, customer.ID, p.LocationID,
		func(ctx context.Context) (string, error) {
			result := client.CreateCard(ctx, loyalty.CardRequest{
				CustomerName:  customer.Name,
				CustomerPhone: customer.Phone,
				Reference:     uuid.NewString(),
			})
			if result == nil {
				return "", errors.New("loyalty provider did not create the card")
			}
			installURL = result.InstallURL
			return result.CardID, nil
		})
	if err != nil {
		return upstreamError(c, "Loyalty card creation failed")
	}

	// A lost insert race resolves to the concurrently stored card, which is
	// not a create from the caller's point of view.
	resp := fiber.Map{"card_id": cardID, "created": created}
	if created && installURL != "" {
		resp["install_url"] = installURL
	}
	status := fiber.StatusOK
	if created {
		status = fiber.StatusCreated
	}
	return c.Status(status).JSON(resp)
}

type cardEventRequest struct {
	EventID   string `json:"EventId"`
	EventType string `json:"EventType"`
	CardID    string `json:"CardId"`
}

// HandleLoyaltyCardEvent ingests card install/uninstall webhooks. The
// endpoint always answers 200 once the request parses, even when internal
// processing fails, to keep the provider from hammering us with retries.
// Failures are logged and recorded on the event row instead.
func HandleLoyaltyCardEvent(c *fiber.Ctx) error {
	rawBody := append([]byte(nil), c.Body()...)

	var req cardEventRequest
	if err := parseJSONBody(c, &req); err != nil {
		return err
	}
	if req.EventType == "" || req.CardID == "" {
		return badRequest(c, "EventType and CardId are required")
	}

	eventID := req.EventID
	if eventID == "" {
		eventID = firstHeaderValue(c, "X-Event-Id", "X-Delivery-Id")
	}
	if eventID == "" {
		eventID = uuid.NewString()
	}

	repo := repository.GetGlobalFactory().GetWebhookRepository()
	created, stored, err := repo.CreateCardEventIfNotExists(&models.CardEvent{
		Provider:        loyaltyProviderName,
		ProviderEventID: eventID,
		EventType:       req.EventType,
		ExternalCardID:  req.CardID,
		PayloadJSON:     string(rawBody),
	})
	if err != nil {
		log.Printf("loyalty webhook: failed to persist card event %s: %v", eventID, err)
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"ok": true})
	}
	if !created {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"ok": true, "duplicate": true})
	}

	if err := processCardEvent(stored); err != nil {
		log.Printf("loyalty webhook: failed to process card event %s: %v", eventID, err)
		_ = repo.MarkCardEventProcessed(stored.ID, err.Error())
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"ok": true})
	}

	_ = repo.MarkCardEventProcessed(stored.ID, "")
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"ok": true})
}

func processCardEvent(event *models.CardEvent) error {
	switch event.EventType {
	case models.CARD_EVENT_INSTALL, models.CARD_EVENT_UNINSTALL:
		return nil
	default:
		return errors.New("unknown card event type: " + event.EventType)
	}
}
