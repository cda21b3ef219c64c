package models

import "time"

// Location is a merchant branch. Every external mapping is scoped to one
// location, so the same local entity can map to different external entities
// per branch.
type Location struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"type:varchar(150);not null" json:"name"`
	CompanyCode string    `gorm:"type:varchar(12);index" json:"company_code"`
	City        string    `gorm:"type:varchar(100)" json:"city"`
	IsActive    bool      `gorm:"default:true;index" json:"is_active"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
