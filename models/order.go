package models

import (
	"time"
)

// Order statuses. Stale means claimed by a nurse but not yet confirmed by the
// patient; there is no Cancelled status, cancelled orders are deleted.
const (
	OrderStatusPending   = "Pending"
	OrderStatusStale     = "Stale"
	OrderStatusAccepted  = "Accepted"
	OrderStatusCompleted = "Completed"
)

// Schedule kinds
const (
	TimeTypeOnSpot    = "OnSpot"
	TimeTypeScheduled = "Scheduled"
)

// Payment types
const (
	PaymentTypeHourly   = "Hourly"
	PaymentTypeServices = "Services"
)

// Order represents a home-nursing request placed by a patient.
// NurseID is set only while the order is Stale, Accepted or Completed.
// Orders are hard-deleted on cancel, so there is no soft-delete column.
type Order struct {
	ID                    uint             `gorm:"primaryKey" json:"id"`
	UserID                uint             `gorm:"not null;index" json:"user_id"` // the patient
	User                  User             `gorm:"foreignKey:UserID" json:"user"`
	NurseID               *uint            `gorm:"index" json:"nurse_id"` // nullable, at most one active nurse
	Nurse                 *User            `gorm:"foreignKey:NurseID" json:"nurse,omitempty"`
	ServiceID             uint             `gorm:"not null;index" json:"service_id"`
	Service               Service          `gorm:"foreignKey:ServiceID" json:"service"`
	SpecificServiceID     *uint            `gorm:"index" json:"specific_service_id"`
	SpecificService       *SpecificService `gorm:"foreignKey:SpecificServiceID" json:"specific_service,omitempty"`
	Title                 string           `gorm:"not null" json:"title"`
	Description           *string          `json:"description"`
	EmploymentType        string           `gorm:"not null" json:"employment_type"`
	Type                  string           `gorm:"not null" json:"type"`         // "OnSpot" or "Scheduled"
	PaymentType           string           `gorm:"not null" json:"payment_type"` // "Hourly" or "Services"
	Gender                string           `gorm:"not null" json:"gender"`
	Age                   int              `gorm:"not null" json:"age"`
	AdditionalInformation *string          `json:"additional_information"`
	Latitude              float64          `gorm:"not null" json:"latitude"`
	Longitude             float64          `gorm:"not null" json:"longitude"`
	Date                  *time.Time       `json:"date"` // required for Scheduled orders
	Status                string           `gorm:"not null;default:'Pending';index" json:"status"`
	CreatedAt             time.Time        `json:"created_at"`
	UpdatedAt             time.Time        `json:"updated_at"`
}

// TableName specifies the table name for the Order model
func (Order) TableName() string {
	return "orders"
}

// RefusedOrder is a permanent (order, nurse) exclusion created when either side
// refuses a claim. The composite key is genuinely unique; inserts are
// find-or-create and there is no deletion path.
type RefusedOrder struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	OrderID   uint      `gorm:"not null;uniqueIndex:idx_refused_order_nurse" json:"order_id"`
	NurseID   uint      `gorm:"not null;uniqueIndex:idx_refused_order_nurse" json:"nurse_id"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName specifies the table name for the RefusedOrder model
func (RefusedOrder) TableName() string {
	return "refused_orders"
}

// InProgressOrder tracks a claimed order for its patient. Created when a nurse
// claims, deleted when the patient refuses or the order is cancelled.
type InProgressOrder struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	OrderID   uint      `gorm:"not null;index" json:"order_id"`
	UserID    uint      `gorm:"not null;index" json:"user_id"` // the patient
	Status    string    `gorm:"not null" json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for the InProgressOrder model
func (InProgressOrder) TableName() string {
	return "in_progress_orders"
}
