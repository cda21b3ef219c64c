package router

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"github.com/karage/integrations/app/controllers"
	"github.com/karage/integrations/internal/pkg/identity"
	"github.com/karage/integrations/internal/pkg/middleware"
	"github.com/karage/integrations/internal/pkg/tokencache"
)

type ApiRouter struct {
	tokens tokencache.Cache
}

func NewApiRouter(tokens tokencache.Cache) *ApiRouter {
	return &ApiRouter{tokens: tokens}
}

func (h *ApiRouter) InstallRouter(app *fiber.App) {
	api := app.Group("/api", limiter.New())
	api.Get("/", func(ctx *fiber.Ctx) error {
		return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
			"message": "Karage integrations API",
		})
	})

	v1 := api.Group("/v1")

	apiKeyAuth := middleware.APIKeyAuth()
	sessionAuth := middleware.SessionAuth(identity.NewClientFromEnv())

	smsController := controllers.NewSmsController()
	accountingController := controllers.NewAccountingController(h.tokens)

	loyaltyGroup := v1.Group("/loyalty")
	loyaltyGroup.Post("/cards", apiKeyAuth, controllers.HandleCreateLoyaltyCard)
	loyaltyGroup.Post("/events", middleware.WebhookSecretAuth("LOYALTY_EVENT_SECRET"), controllers.HandleLoyaltyCardEvent)

	installmentsGroup := v1.Group("/installments")
	installmentsGroup.Post("/checkouts", sessionAuth, controllers.HandleCreateInstallmentCheckout)
	installmentsGroup.Post("/webhook", middleware.WebhookSecretAuth("INSTALLMENTS_EVENT_SECRET"), controllers.HandleInstallmentWebhook)

	esignGroup := v1.Group("/esign")
	esignGroup.Post("/requests", apiKeyAuth, controllers.HandleCreateSignatureRequest)
	esignGroup.Get("/confirm", middleware.JWTQueryAuth(), controllers.HandleConfirmSignature)

	otpGroup := v1.Group("/otp")
	otpGroup.Post("/send", sessionAuth, smsController.HandleSendOTP)
	otpGroup.Post("/verify", sessionAuth, smsController.HandleVerifyOTP)

	accountingGroup := v1.Group("/accounting")
	accountingGroup.Post("/sync/catalog", apiKeyAuth, accountingController.HandleSyncCatalog)
	accountingGroup.Post("/bills", apiKeyAuth, accountingController.HandlePushBill)
}
