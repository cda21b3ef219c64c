package repository

import (
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/karage/integrations/app/models"
)

type webhookRepository struct {
	db *gorm.DB
}

// NewWebhookRepository creates a new webhook event repository instance.
func NewWebhookRepository(db *gorm.DB) WebhookRepository {
	return &webhookRepository{db: db}
}

// UpsertPaymentEvent inserts a payment notification or, when the payment ID
// was seen before, updates the stored row in place.
func (r *webhookRepository) UpsertPaymentEvent(event *models.PaymentWebhookEvent) (*models.PaymentWebhookEvent, error) {
	if err := r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "payment_id"},
		},
		DoUpdates: clause.AssignmentColumns([]string{
			"provider",
			"order_reference",
			"status",
			"payload_json",
			"updated_at",
		}),
	}).Create(event).Error; err != nil {
		return nil, err
	}

	var stored models.PaymentWebhookEvent
	if err := r.db.Where("payment_id = ?", event.PaymentID).First(&stored).Error; err != nil {
		return nil, err
	}
	return &stored, nil
}

func (r *webhookRepository) MarkPaymentEventProcessed(id uint, processingError string) error {
	now := time.Now()
	updates := map[string]interface{}{
		"processed_at":     &now,
		"processing_error": processingError,
	}
	return r.db.Model(&models.PaymentWebhookEvent{}).Where("id = ?", id).Updates(updates).Error
}

// CreateCardEventIfNotExists inserts a card event unless the provider event
// ID was already recorded. Returns whether this call created the row.
func (r *webhookRepository) CreateCardEventIfNotExists(event *models.CardEvent) (bool, *models.CardEvent, error) {
	tx := r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "provider"},
			{Name: "provider_event_id"},
		},
		DoNothing: true,
	}).Create(event)
	if tx.Error != nil {
		return false, nil, tx.Error
	}

	created := tx.RowsAffected > 0
	var stored models.CardEvent
	if err := r.db.Where("provider = ? AND provider_event_id = ?", event.Provider, event.ProviderEventID).
		First(&stored).Error; err != nil {
		return false, nil, err
	}
	return created, &stored, nil
}

func (r *webhookRepository) MarkCardEventProcessed(id uint, processingError string) error {
	now := time.Now()
	updates := map[string]interface{}{
		"processed_at":     &now,
		"processing_error": processingError,
	}
	return r.db.Model(&models.CardEvent{}).Where("id = ?", id).Updates(updates).Error
}
