package controllers

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/karage/integrations/app/models"
	"github.com/karage/integrations/app/repository"
	"github.com/karage/integrations/internal/pkg/integrations/accounting"
	"github.com/karage/integrations/internal/pkg/mapping"
	"github.com/karage/integrations/internal/pkg/principal"
	"github.com/karage/integrations/internal/pkg/tokencache"
)

// AccountingController serves the accounting sync endpoints. The token cache
// is injected at assembly time and shared across requests so the provider
// login happens once per expiry window, not once per request.
type AccountingController struct {
	tokens tokencache.Cache
}

// NewAccountingController creates the accounting controller with the given
// provider token cache.
func NewAccountingController(tokens tokencache.Cache) *AccountingController {
	return &AccountingController{tokens: tokens}
}

// HandleSyncCatalog pushes units, categories, suppliers and products of the
// caller's location to the accounting provider. Entities already mapped are
// skipped; the sync is safe to repeat.
func (ac *AccountingController) HandleSyncCatalog(c *fiber.Ctx) error {
	p := principal.Get(c)
	if !p.IsResolved {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized", "message": "Missing or invalid authentication"})
	}

	factory := repository.GetGlobalFactory()
	catalog := factory.GetCatalogRepository()
	mapper := mapping.New(factory.GetMappingRepository())
	client := accounting.NewClientFromEnv(ac.tokens)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	synced := map[string]int{}
	failed := 0

	units, err := catalog.ListUnits(p.LocationID)
	if err != nil {
		return internalError(c, "Failed to load units")
	}
	for _, unit := range units {
		unit := unit
		_, _, err := mapper.ResolveOrCreate(ctx, models.IntegrationAccounting, models.EntityUnit, unit.ID, p.LocationID,
			func(ctx context.Context) (string, error) {
				return client.EnsureUnit(ctx, accounting.UnitPayload{Name: unit.Name, ShortName: unit.ShortName})
			})
		if err != nil {
			log.Printf("accounting sync: unit %d failed: %v", unit.ID, err)
			failed++
			continue
		}
		synced["units"]++
	}

	categories, err := catalog.ListCategories(p.LocationID)
	if err != nil {
		return internalError(c, "Failed to load categories")
	}
	for _, category := range categories {
		category := category
		_, _, err := mapper.ResolveOrCreate(ctx, models.IntegrationAccounting, models.EntityCategory, category.ID, p.LocationID,
			func(ctx context.Context) (string, error) {
				return client.EnsureCategory(ctx, accounting.CategoryPayload{Name: category.Name})
			})
		if err != nil {
			log.Printf("accounting sync: category %d failed: %v", category.ID, err)
			failed++
			continue
		}
		synced["categories"]++
	}

	suppliers, err := catalog.ListSuppliers(p.LocationID)
	if err != nil {
		return internalError(c, "Failed to load suppliers")
	}
	for _, supplier := range suppliers {
		supplier := supplier
		_, _, err := mapper.ResolveOrCreate(ctx, models.IntegrationAccounting, models.EntitySupplier, supplier.ID, p.LocationID,
			func(ctx context.Context) (string, error) {
				return client.EnsureSupplier(ctx, accounting.SupplierPayload{
					Name:      supplier.Name,
					Phone:     supplier.Phone,
					TaxNumber: supplier.TaxNumber,
				})
			})
		if err != nil {
			log.Printf("accounting sync: supplier %d failed: %v", supplier.ID, err)
			failed++
			continue
		}
		synced["suppliers"]++
	}

	products, err := catalog.ListProducts(p.LocationID)
	if err != nil {
		return internalError(c, "Failed to load products")
	}
	for _, product := range products {
		product := product
		_, _, err := mapper.ResolveOrCreate(ctx, models.IntegrationAccounting, models.EntityProduct, product.ID, p.LocationID,
			func(ctx context.Context) (string, error) {
				unitExt, err := mapper.Resolve(models.IntegrationAccounting, models.EntityUnit, product.UnitID, p.LocationID)
				if err != nil {
					return "", fmt.Errorf("product %d: unit %d is not mapped yet", product.ID, product.UnitID)
				}
				categoryExt, err := mapper.Resolve(models.IntegrationAccounting, models.EntityCategory, product.CategoryID, p.LocationID)
				if err != nil {
					return "", fmt.Errorf("product %d: category %d is not mapped yet", product.ID, product.CategoryID)
				}
				return client.EnsureProduct(ctx, accounting.ProductPayload{
					Name:       product.Name,
					SKU:        product.SKU,
					Price:      product.Price,
					UnitID:     unitExt,
					CategoryID: categoryExt,
				})
			})
		if err != nil {
			log.Printf("accounting sync: product %d failed: %v", product.ID, err)
			failed++
			continue
		}
		synced["products"]++
	}

	return c.JSON(fiber.Map{"synced": synced, "failed": failed})
}

type pushBillRequest struct {
	OrderReference string `json:"OrderReference"`
}

// HandlePushBill records an order as a sales bill with the accounting
// provider. The bill mapping makes the push idempotent per order.
func (ac *AccountingController) HandlePushBill(c *fiber.Ctx) error {
	p := principal.Get(c)
	if !p.IsResolved {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized", "message": "Missing or invalid authentication"})
	}

	var req pushBillRequest
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

	mapper := mapping.New(factory.GetMappingRepository())
	client := accounting.NewClientFromEnv(ac.tokens)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	billID, _, err := mapper.ResolveOrCreate(ctx, models.IntegrationAccounting, models.EntityBill, order.ID, order.LocationID,
		func(ctx context.Context) (string, error) {
			lines := make([]accounting.BillLine, 0, len(order.Items))
			for _, item := range order.Items {
				productExt, err := mapper.Resolve(models.IntegrationAccounting, models.EntityProduct, item.ProductID, order.LocationID)
				if err != nil {
					return "", fmt.Errorf("product %d is not mapped, run catalog sync first", item.ProductID)
				}
				lines = append(lines, accounting.BillLine{
					ProductID: productExt,
					Quantity:  item.Quantity,
					UnitPrice: item.UnitPrice,
				})
			}
			return client.PushBill(ctx, accounting.BillPayload{
				Reference: order.Reference,
				IssuedAt:  order.CreatedAt.UTC().Format(time.RFC3339),
				Lines:     lines,
			})
		})
	if err != nil {
		return upstreamError(c, "Bill push failed")
	}

	return c.JSON(fiber.Map{"bill_id": billID})
}
