package models

import (
	"time"

	"gorm.io/gorm"
)

// User types. Patients create orders, nurses claim them.
const (
	UserTypePatient = "Patient"
	UserTypeNurse   = "Nurse"
)

// User represents a user in the system (patient or nurse)
type User struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	Username    string         `gorm:"not null" json:"username"`
	Email       string         `gorm:"uniqueIndex;not null" json:"email"`
	PhoneNumber string         `gorm:"uniqueIndex;not null" json:"phone_number"`
	Type        string         `gorm:"not null;default:'Patient'" json:"type"` // "Patient" or "Nurse"
	IsVerified  bool           `gorm:"not null;default:false" json:"is_verified"`
	Latitude    *float64       `json:"latitude"`  // nullable, a nurse must set a location before searching
	Longitude   *float64       `json:"longitude"` // nullable
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the User model
func (User) TableName() string {
	return "users"
}

// HasLocation reports whether the user has coordinates set
func (u *User) HasLocation() bool {
	return u.Latitude != nil && u.Longitude != nil
}
