package models

import "time"

const (
	IntegrationLoyalty     = "loyalty"
	IntegrationAccounting  = "accounting"
	IntegrationInstallment = "installment"
	IntegrationEsign       = "esign"

	EntityCustomerCard = "customer_card"
	EntityUnit         = "unit"
	EntityCategory     = "category"
	EntitySupplier     = "supplier"
	EntityProduct      = "product"
	EntityBill         = "bill"
	EntityContract     = "contract"
)

// ExternalMapping associates a local entity, scoped to a location, with its
// identifier in an external system. The composite unique index makes the
// lookup-or-create path race-free: concurrent creators collide on insert and
// the loser reads back the stored row.
type ExternalMapping struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Integration string    `gorm:"type:varchar(32);not null;index:ux_external_mappings_scope,unique,priority:1" json:"integration"`
	EntityType  string    `gorm:"type:varchar(32);not null;index:ux_external_mappings_scope,unique,priority:2" json:"entity_type"`
	LocalID     uint      `gorm:"not null;index:ux_external_mappings_scope,unique,priority:3" json:"local_id"`
	LocationID  uint      `gorm:"not null;index:ux_external_mappings_scope,unique,priority:4" json:"location_id"`
	ExternalID  string    `gorm:"type:varchar(191);not null" json:"external_id"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
