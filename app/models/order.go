package models

import "time"

const (
	ORDER_STATUS_OPEN      = "open"
	ORDER_STATUS_PENDING   = "pending_payment"
	ORDER_STATUS_PAID      = "paid"
	ORDER_STATUS_FAILED    = "payment_failed"
	ORDER_STATUS_CANCELLED = "cancelled"

	SIGNATURE_STATUS_NONE      = "none"
	SIGNATURE_STATUS_REQUESTED = "requested"
	SIGNATURE_STATUS_SIGNED    = "signed"
)

// Order is a POS checkout. Payment and signature state are updated by the
// installment webhook and the e-signature confirmation link respectively.
type Order struct {
	ID              uint        `gorm:"primaryKey" json:"id"`
	Reference       string      `gorm:"type:varchar(64);uniqueIndex;not null" json:"reference"`
	CustomerID      uint        `gorm:"index;not null" json:"customer_id"`
	LocationID      uint        `gorm:"index;not null" json:"location_id"`
	Total           float64     `gorm:"not null;default:0" json:"total"`
	Currency        string      `gorm:"type:varchar(8);not null;default:'SAR'" json:"currency"`
	Status          string      `gorm:"type:varchar(32);not null;default:'open';index" json:"status"`
	SignatureStatus string      `gorm:"type:varchar(32);not null;default:'none'" json:"signature_status"`
	SignedAt        *time.Time  `gorm:"type:timestamp;default:null" json:"signed_at,omitempty"`
	Items           []OrderItem `gorm:"foreignKey:OrderID" json:"items,omitempty"`
	CreatedAt       time.Time   `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time   `gorm:"autoUpdateTime" json:"updated_at"`
}

type OrderItem struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	OrderID   uint      `gorm:"index;not null" json:"order_id"`
	ProductID uint      `gorm:"index;not null" json:"product_id"`
	Quantity  int       `gorm:"not null;default:1" json:"quantity"`
	UnitPrice float64   `gorm:"not null;default:0" json:"unit_price"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

const (
	PAYMENT_STATUS_PENDING  = "pending"
	PAYMENT_STATUS_CAPTURED = "captured"
	PAYMENT_STATUS_DECLINED = "declined"
	PAYMENT_STATUS_REFUNDED = "refunded"
)

// Payment is the local record of an installment-provider payment attached to
// an order. Status transitions are driven by provider webhooks and applied
// together with the order status in one transaction.
type Payment struct {
	ID                uint      `gorm:"primaryKey" json:"id"`
	OrderID           uint      `gorm:"index;not null" json:"order_id"`
	ExternalPaymentID string    `gorm:"type:varchar(64);uniqueIndex;not null" json:"external_payment_id"`
	Provider          string    `gorm:"type:varchar(32);not null" json:"provider"`
	Amount            float64   `gorm:"not null;default:0" json:"amount"`
	Status            string    `gorm:"type:varchar(32);not null;default:'pending';index" json:"status"`
	CreatedAt         time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
