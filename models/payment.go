package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Payment statuses
const (
	PaymentStatusPending = "Pending"
	PaymentStatusPaid    = "Paid"
	PaymentStatusRefused = "Refused"
)

// Payment methods
const (
	PaymentMethodCard = "card"
	PaymentMethodCash = "cash"
)

// OrderPayment is the single payment record for an order. Gateway correlation
// fields are populated only on a verified callback.
type OrderPayment struct {
	ID             uint            `gorm:"primaryKey" json:"id"`
	OrderID        uint            `gorm:"not null;uniqueIndex" json:"order_id"`
	UserID         uint            `gorm:"not null;index" json:"user_id"` // the payer
	TotalAmount    decimal.Decimal `gorm:"type:numeric;not null" json:"total_amount"`
	TotalHours     *int            `json:"total_hours"` // set for hourly orders only
	PaymentMethod  string          `gorm:"not null" json:"payment_method"` // "card" or "cash"
	Status         string          `gorm:"not null;default:'Pending'" json:"status"`
	PaymentURL     *string         `json:"payment_url"` // hosted checkout redirect, card only
	TransactionID  *string         `json:"transaction_id"`
	KashierOrderID *string         `json:"kashier_order_id"`
	Signature      *string         `json:"-"`
	CardBrand      *string         `json:"card_brand"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// TableName specifies the table name for the OrderPayment model
func (OrderPayment) TableName() string {
	return "order_payments"
}
