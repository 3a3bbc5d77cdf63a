package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Service represents a nursing service category (e.g. elderly care, wound care)
type Service struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"not null" json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for the Service model
func (Service) TableName() string {
	return "services"
}

// SpecificService is a fixed-price service offered under a Service category.
// Orders with the Services payment type are priced from this row.
type SpecificService struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	ServiceID uint            `gorm:"not null;index" json:"service_id"`
	Service   Service         `gorm:"foreignKey:ServiceID" json:"service"`
	Name      string          `gorm:"not null" json:"name"`
	Price     decimal.Decimal `gorm:"type:numeric;not null" json:"price"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// TableName specifies the table name for the SpecificService model
func (SpecificService) TableName() string {
	return "specific_services"
}
