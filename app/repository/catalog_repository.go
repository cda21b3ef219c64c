package repository

import (
	"gorm.io/gorm"

	"github.com/karage/integrations/app/models"
)

type catalogRepository struct {
	db *gorm.DB
}

// NewCatalogRepository creates a new catalog repository instance.
func NewCatalogRepository(db *gorm.DB) CatalogRepository {
	return &catalogRepository{db: db}
}

func (r *catalogRepository) ListUnits(locationID uint) ([]models.Unit, error) {
	var units []models.Unit
	err := r.db.Where("location_id = ?", locationID).Find(&units).Error
	return units, err
}

func (r *catalogRepository) ListCategories(locationID uint) ([]models.Category, error) {
	var categories []models.Category
	err := r.db.Where("location_id = ?", locationID).Find(&categories).Error
	return categories, err
}

func (r *catalogRepository) ListSuppliers(locationID uint) ([]models.Supplier, error) {
	var suppliers []models.Supplier
	err := r.db.Where("location_id = ?", locationID).Find(&suppliers).Error
	return suppliers, err
}

func (r *catalogRepository) ListProducts(locationID uint) ([]models.Product, error) {
	var products []models.Product
	err := r.db.Where("location_id = ?", locationID).Find(&products).Error
	return products, err
}

func (r *catalogRepository) GetProduct(id uint) (*models.Product, error) {
	var product models.Product
	err := r.db.First(&product, id).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}
