package services

import (
	"testing"

	"github.com/CoreVine/nursy-backend/middleware"
	"github.com/CoreVine/nursy-backend/models"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupServiceTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.Service{},
		&models.SpecificService{},
		&models.Order{},
		&models.RefusedOrder{},
		&models.InProgressOrder{},
		&models.OrderPayment{},
		&models.Wallet{},
		&models.WalletHistory{},
	); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	return db
}

func createTestPatient(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()

	user := models.User{
		Username:    "patient",
		Email:       email,
		PhoneNumber: "p-" + email,
		Type:        models.UserTypePatient,
		IsVerified:  true,
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("Failed to create test patient: %v", err)
	}
	return &user
}

func createTestNurse(t *testing.T, db *gorm.DB, email string, lat, lon float64) *models.User {
	t.Helper()

	user := models.User{
		Username:    "nurse",
		Email:       email,
		PhoneNumber: "n-" + email,
		Type:        models.UserTypeNurse,
		IsVerified:  true,
		Latitude:    &lat,
		Longitude:   &lon,
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("Failed to create test nurse: %v", err)
	}
	return &user
}

func createTestService(t *testing.T, db *gorm.DB) *models.Service {
	t.Helper()

	service := models.Service{Name: "Home nursing"}
	if err := db.Create(&service).Error; err != nil {
		t.Fatalf("Failed to create test service: %v", err)
	}
	return &service
}

func createTestSpecificService(t *testing.T, db *gorm.DB, serviceID uint, price float64) *models.SpecificService {
	t.Helper()

	specific := models.SpecificService{
		ServiceID: serviceID,
		Name:      "Wound dressing",
		Price:     decimal.NewFromFloat(price),
	}
	if err := db.Create(&specific).Error; err != nil {
		t.Fatalf("Failed to create test specific service: %v", err)
	}
	return &specific
}

func createPendingOrder(t *testing.T, db *gorm.DB, patient *models.User, serviceID uint, lat, lon float64) *models.Order {
	t.Helper()

	order := models.Order{
		UserID:         patient.ID,
		ServiceID:      serviceID,
		Title:          "Post-surgery care",
		EmploymentType: "FullTime",
		Type:           models.TimeTypeOnSpot,
		PaymentType:    models.PaymentTypeHourly,
		Gender:         "Female",
		Age:            60,
		Latitude:       lat,
		Longitude:      lon,
		Status:         models.OrderStatusPending,
	}
	if err := db.Create(&order).Error; err != nil {
		t.Fatalf("Failed to create test order: %v", err)
	}
	return &order
}

func principalFor(user *models.User) middleware.Principal {
	return middleware.Principal{ID: user.ID, Type: user.Type, IsVerified: user.IsVerified}
}
