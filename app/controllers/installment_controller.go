package controllers

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/karage/integrations/app/models"
	"github.com/karage/integrations/app/repository"
	"github.com/karage/integrations/internal/pkg/database"
	"github.com/karage/integrations/internal/pkg/integrations/installments"
	"github.com/karage/integrations/internal/pkg/principal"
)

const installmentProviderName = "installpay"

type createCheckoutRequest struct {
	OrderReference string `json:"OrderReference"`
	SuccessURL     string `json:"SuccessUrl"`
	CancelURL      string `json:"CancelUrl"`
}

// HandleCreateInstallmentCheckout opens an installment checkout session for
// an open order and marks the order pending payment.
func HandleCreateInstallmentCheckout(c *fiber.Ctx) error {
	p := principal.Get(c)
	if !p.IsResolved {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized", "message": "Missing or invalid authentication"})
	}

	var req createCheckoutRequest
	if err := parseJSONBody(c, &req); err != nil {
		return err
	}
	if req.OrderReference == "" {
		return badRequest(c, "OrderReference is required")
	}
	if req.SuccessURL == "" || req.CancelURL == "" {
		return badRequest(c, "SuccessUrl and CancelUrl are required")
	}

	factory := repository.GetGlobalFactory()
	order, err := factory.GetOrderRepository().GetByReference(req.OrderReference)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return notFound(c, "Order not found")
		}
		return internalError(c, "Failed to load order")
	}
	if order.Status != models.ORDER_STATUS_OPEN {
		return badRequest(c, "Order is not open for payment")
	}

	customer, err := factory.GetCustomerRepository().GetByID(order.CustomerID)
	if err != nil {
		return internalError(c, "Failed to load order customer")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	client := installments.NewClientFromEnv()
	result := client.CreateCheckout(ctx, installments.CheckoutRequest{
		OrderReference: order.Reference,
		Amount:         order.Total,
		Currency:       order.Currency,
		CustomerPhone:  customer.Phone,
		SuccessURL:     req.SuccessURL,
		CancelURL:      req.CancelURL,
	})
	if result == nil {
		return upstreamError(c, "Installment checkout creation failed")
	}

	db := database.GetDB()
	err = db.Transaction(func(tx *gorm.DB) error {
		payment := &models.Payment{
			OrderID:           order.ID,
			ExternalPaymentID: result.CheckoutID,
			Provider:          installmentProviderName,
			Amount:            order.Total,
			Status:            models.PAYMENT_STATUS_PENDING,
		}
		if err := tx.Create(payment).Error; err != nil {
			return err
		}
		return tx.Model(&models.Order{}).
			Where("id = ?", order.ID).
			Update("status", models.ORDER_STATUS_PENDING).Error
	})
	if err != nil {
		log.Printf("installments: checkout %s created upstream but local persist failed: %v", result.CheckoutID, err)
		return internalError(c, "Failed to record checkout")
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"checkout_id": result.CheckoutID,
		"payment_url": result.PaymentURL,
	})
}

type paymentWebhookRequest struct {
	PaymentID      string  `json:"PaymentId"`
	OrderReference string  `json:"OrderReference"`
	Status         string  `json:"Status"`
	Amount         float64 `json:"Amount"`
}

// HandleInstallmentWebhook ingests payment status notifications. The row is
// upserted by the provider's payment ID, then the payment and order status
// are updated together in one transaction; any step failing rolls the whole
// update back. The endpoint answers 200 once the request parses, regardless
// of processing outcome, to avoid provider retry storms.
func HandleInstallmentWebhook(c *fiber.Ctx) error {
	rawBody := append([]byte(nil), c.Body()...)

	var req paymentWebhookRequest
	if err := parseJSONBody(c, &req); err != nil {
		return err
	}
	if req.PaymentID == "" || req.Status == "" {
		return badRequest(c, "PaymentId and Status are required")
	}

	repo := repository.GetGlobalFactory().GetWebhookRepository()
	stored, err := repo.UpsertPaymentEvent(&models.PaymentWebhookEvent{
		Provider:       installmentProviderName,
		PaymentID:      req.PaymentID,
		OrderReference: req.OrderReference,
		Status:         req.Status,
		PayloadJSON:    string(rawBody),
	})
	if err != nil {
		log.Printf("installment webhook: failed to persist event for payment %s: %v", req.PaymentID, err)
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"ok": true})
	}

	if err := applyPaymentStatus(database.GetDB(), stored.ID, req.PaymentID, req.Status); err != nil {
		log.Printf("installment webhook: status update for payment %s failed: %v", req.PaymentID, err)
		_ = repo.MarkPaymentEventProcessed(stored.ID, err.Error())
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"ok": true})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"ok": true})
}

// applyPaymentStatus updates the payment row, its order and the event ledger
// inside one transaction, so a processed mark can never outlive or precede
// the status it records. A provider status we cannot map, or a payment we
// never issued, fails the whole update.
func applyPaymentStatus(db *gorm.DB, eventID uint, externalPaymentID, providerStatus string) error {
	paymentStatus, orderStatus, ok := mapProviderPaymentStatus(providerStatus)
	if !ok {
		return errors.New("unknown provider payment status: " + providerStatus)
	}

	return db.Transaction(func(tx *gorm.DB) error {
		var payment models.Payment
		if err := tx.Where("external_payment_id = ?", externalPaymentID).First(&payment).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Payment{}).
			Where("id = ?", payment.ID).
			Update("status", paymentStatus).Error; err != nil {
			return err
		}
		if orderStatus != "" {
			if err := tx.Model(&models.Order{}).
				Where("id = ?", payment.OrderID).
				Update("status", orderStatus).Error; err != nil {
				return err
			}
		}

		now := time.Now()
		return tx.Model(&models.PaymentWebhookEvent{}).
			Where("id = ?", eventID).
			Updates(map[string]interface{}{
				"processed_at":     &now,
				"processing_error": "",
			}).Error
	})
}

// mapProviderPaymentStatus translates the provider's payment states to local
// payment and order statuses. An empty order status leaves the order as is.
func mapProviderPaymentStatus(providerStatus string) (paymentStatus, orderStatus string, ok bool) {
	switch strings.ToLower(strings.TrimSpace(providerStatus)) {
	case "captured", "authorised", "authorized":
		return models.PAYMENT_STATUS_CAPTURED, models.ORDER_STATUS_PAID, true
	case "declined", "expired":
		return models.PAYMENT_STATUS_DECLINED, models.ORDER_STATUS_FAILED, true
	case "refunded":
		return models.PAYMENT_STATUS_REFUNDED, "", true
	default:
		return "", "", false
	}
}
