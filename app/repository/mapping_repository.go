package repository

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/karage/integrations/app/models"
)

type mappingRepository struct {
	db *gorm.DB
}

// NewMappingRepository creates a new external-mapping repository instance.
func NewMappingRepository(db *gorm.DB) MappingRepository {
	return &mappingRepository{db: db}
}

func (r *mappingRepository) Find(integration, entityType string, localID, locationID uint) (*models.ExternalMapping, error) {
	var m models.ExternalMapping
	err := r.db.
		Where("integration = ? AND entity_type = ? AND local_id = ? AND location_id = ?",
			integration, entityType, localID, locationID).
		First(&m).Error
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// InsertIfAbsent inserts the mapping unless one already exists for its
// (integration, entity_type, local_id, location_id) scope. The unique index
// turns a concurrent double-insert into a no-op for the loser; the stored
// row is read back either way.
func (r *mappingRepository) InsertIfAbsent(mapping *models.ExternalMapping) (bool, *models.ExternalMapping, error) {
	tx := r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "integration"},
			{Name: "entity_type"},
			{Name: "local_id"},
			{Name: "location_id"},
		},
		DoNothing: true,
	}).Create(mapping)
	if tx.Error != nil {
		return false, nil, tx.Error
	}

	created := tx.RowsAffected > 0
	stored, err := r.Find(mapping.Integration, mapping.EntityType, mapping.LocalID, mapping.LocationID)
	if err != nil {
		return false, nil, err
	}
	return created, stored, nil
}

func (r *mappingRepository) UpdateExternalID(id uint, externalID string) error {
	return r.db.Model(&models.ExternalMapping{}).
		Where("id = ?", id).
		Update("external_id", externalID).Error
}
