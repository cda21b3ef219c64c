package repository

import (
	"sync"

	"gorm.io/gorm"
)

// Repositories bundles all repository implementations.
type Repositories struct {
	User     UserRepository
	Customer CustomerRepository
	Order    OrderRepository
	Catalog  CatalogRepository
	Mapping  MappingRepository
	Webhook  WebhookRepository
}

// NewRepositories creates all repositories backed by the given DB handle.
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		User:     NewUserRepository(db),
		Customer: NewCustomerRepository(db),
		Order:    NewOrderRepository(db),
		Catalog:  NewCatalogRepository(db),
		Mapping:  NewMappingRepository(db),
		Webhook:  NewWebhookRepository(db),
	}
}

// Factory manages repository instances and ensures they are singletons.
type Factory struct {
	db    *gorm.DB
	repos *Repositories
	once  sync.Once
}

// NewFactory creates a new repository factory.
func NewFactory(db *gorm.DB) *Factory {
	return &Factory{db: db}
}

// GetRepositories returns a singleton instance of all repositories.
func (f *Factory) GetRepositories() *Repositories {
	f.once.Do(func() {
		f.repos = NewRepositories(f.db)
	})
	return f.repos
}

func (f *Factory) GetUserRepository() UserRepository {
	return f.GetRepositories().User
}

func (f *Factory) GetCustomerRepository() CustomerRepository {
	return f.GetRepositories().Customer
}

func (f *Factory) GetOrderRepository() OrderRepository {
	return f.GetRepositories().Order
}

func (f *Factory) GetCatalogRepository() CatalogRepository {
	return f.GetRepositories().Catalog
}

func (f *Factory) GetMappingRepository() MappingRepository {
	return f.GetRepositories().Mapping
}

func (f *Factory) GetWebhookRepository() WebhookRepository {
	return f.GetRepositories().Webhook
}

// Global factory instance
var globalFactory *Factory
var factoryOnce sync.Once

// InitializeFactory initializes the global repository factory.
func InitializeFactory(db *gorm.DB) {
	factoryOnce.Do(func() {
		globalFactory = NewFactory(db)
	})
}

// GetGlobalFactory returns the global repository factory. It panics when the
// factory has not been initialized during application startup.
func GetGlobalFactory() *Factory {
	if globalFactory == nil {
		panic("repository factory not initialized - call InitializeFactory first")
	}
	return globalFactory
}

// ResetGlobalFactory clears the global factory. Test helper.
func ResetGlobalFactory() {
	globalFactory = nil
	factoryOnce = sync.Once{}
}
