package models

import "time"

// PaymentWebhookEvent stores installment-provider payment notifications,
// upserted by the provider's payment ID so a redelivered notification
// updates the existing row instead of creating a duplicate.
type PaymentWebhookEvent struct {
	ID              uint       `gorm:"primaryKey" json:"id"`
	Provider        string     `gorm:"type:varchar(32);not null;index" json:"provider"`
	PaymentID       string     `gorm:"type:varchar(64);not null;uniqueIndex:ux_payment_webhook_events_payment" json:"payment_id"`
	OrderReference  string     `gorm:"type:varchar(64);index" json:"order_reference"`
	Status          string     `gorm:"type:varchar(32);not null" json:"status"`
	PayloadJSON     string     `gorm:"type:longtext;not null" json:"payload_json"`
	ProcessedAt     *time.Time `gorm:"type:timestamp;default:null" json:"processed_at,omitempty"`
	ProcessingError string     `gorm:"type:text" json:"processing_error"`
	CreatedAt       time.Time  `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt       time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}
