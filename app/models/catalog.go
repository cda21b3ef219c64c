package models

import "time"

// Catalog entities pushed to the accounting provider during sync. Each type
// gets its own mapping rows in external_mappings, keyed by local ID and
// location.

type Unit struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Name       string    `gorm:"type:varchar(100);not null" json:"name"`
	ShortName  string    `gorm:"type:varchar(20)" json:"short_name"`
	LocationID uint      `gorm:"index" json:"location_id"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type Category struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Name       string    `gorm:"type:varchar(150);not null" json:"name"`
	LocationID uint      `gorm:"index" json:"location_id"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type Supplier struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Name       string    `gorm:"type:varchar(200);not null" json:"name"`
	Phone      string    `gorm:"type:varchar(20)" json:"phone"`
	TaxNumber  string    `gorm:"type:varchar(30)" json:"tax_number"`
	LocationID uint      `gorm:"index" json:"location_id"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type Product struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Name       string    `gorm:"type:varchar(200);not null" json:"name"`
	SKU        string    `gorm:"type:varchar(64);index" json:"sku"`
	Price      float64   `gorm:"not null;default:0" json:"price"`
	UnitID     uint      `gorm:"index" json:"unit_id"`
	CategoryID uint      `gorm:"index" json:"category_id"`
	LocationID uint      `gorm:"index" json:"location_id"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
