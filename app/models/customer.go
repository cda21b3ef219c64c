package models

import (
	"time"

	"github.com/go-playground/validator/v10"
)

type Customer struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Name       string    `gorm:"type:varchar(200);not null" json:"name" validate:"required,max=200"`
	Phone      string    `gorm:"type:varchar(20);index" json:"phone" validate:"max=20"`
	Email      string    `gorm:"type:varchar(200)" json:"email" validate:"omitempty,email"`
	LocationID uint      `gorm:"index" json:"location_id"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (c *Customer) Validate() error {
	v := validator.New()

	return v.Struct(c)
}
