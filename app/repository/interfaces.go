package repository

import (
	"github.com/karage/integrations/app/models"
)

// UserRepository defines user (API principal) database operations.
type UserRepository interface {
	Create(user *models.User) error
	GetByID(id uint) (*models.User, error)
	GetByCompanyCode(code string) (*models.User, error)
	GetByAPIKeyHash(hash string) (*models.User, error)
	TouchAPIKeyUsage(id uint) error
	Update(user *models.User) error
}

// CustomerRepository defines customer database operations.
type CustomerRepository interface {
	Create(customer *models.Customer) error
	GetByID(id uint) (*models.Customer, error)
	GetByPhone(phone, locationScope string) (*models.Customer, error)
	Update(customer *models.Customer) error
}

// OrderRepository defines order/checkout database operations.
type OrderRepository interface {
	Create(order *models.Order) error
	GetByID(id uint) (*models.Order, error)
	GetByReference(reference string) (*models.Order, error)
	Update(order *models.Order) error
	UpdateStatus(id uint, status string) error
}

// CatalogRepository defines read access to the entities pushed during
// accounting sync.
type CatalogRepository interface {
	ListUnits(locationID uint) ([]models.Unit, error)
	ListCategories(locationID uint) ([]models.Category, error)
	ListSuppliers(locationID uint) ([]models.Supplier, error)
	ListProducts(locationID uint) ([]models.Product, error)
	GetProduct(id uint) (*models.Product, error)
}

// MappingRepository defines external-mapping persistence. InsertIfAbsent is
// atomic under the composite unique index: it reports whether the given row
// won the insert and always returns the stored mapping.
type MappingRepository interface {
	Find(integration, entityType string, localID, locationID uint) (*models.ExternalMapping, error)
	InsertIfAbsent(mapping *models.ExternalMapping) (bool, *models.ExternalMapping, error)
	UpdateExternalID(id uint, externalID string) error
}

// WebhookRepository defines webhook event persistence for the installment
// payment and loyalty card notifications.
type WebhookRepository interface {
	UpsertPaymentEvent(event *models.PaymentWebhookEvent) (*models.PaymentWebhookEvent, error)
	MarkPaymentEventProcessed(id uint, processingError string) error
	CreateCardEventIfNotExists(event *models.CardEvent) (bool, *models.CardEvent, error)
	MarkCardEventProcessed(id uint, processingError string) error
}
