package models

import "time"

const (
	CARD_EVENT_INSTALL   = "card:install"
	CARD_EVENT_UNINSTALL = "card:uninstall"
)

// CardEvent logs loyalty wallet card install/uninstall notifications with
// deduplication on the provider's event ID.
type CardEvent struct {
	ID              uint       `gorm:"primaryKey" json:"id"`
	Provider        string     `gorm:"type:varchar(32);not null;index:ux_card_events_provider_event,unique,priority:1" json:"provider"`
	ProviderEventID string     `gorm:"type:varchar(191);not null;default:'';index:ux_card_events_provider_event,unique,priority:2" json:"provider_event_id"`
	EventType       string     `gorm:"type:varchar(50);not null;index" json:"event_type"`
	ExternalCardID  string     `gorm:"type:varchar(191);not null;index" json:"external_card_id"`
	PayloadJSON     string     `gorm:"type:longtext;not null" json:"payload_json"`
	ProcessedAt     *time.Time `gorm:"type:timestamp;default:null" json:"processed_at,omitempty"`
	ProcessingError string     `gorm:"type:text" json:"processing_error"`
	CreatedAt       time.Time  `gorm:"autoCreateTime;index" json:"created_at"`
}
