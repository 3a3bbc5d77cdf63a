package controllers

import (
	"net/http/httptest"
	"testing"

	"github.com/CoreVine/nursy-backend/config"
	"github.com/CoreVine/nursy-backend/middleware"
	"github.com/CoreVine/nursy-backend/models"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupControllerTestDB(t *testing.T) *gorm.DB {
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

	config.SetDB(db)
	config.SetConfig(&config.Config{
		AppURL:            "https://app.example.com",
		JWTSecret:         "test-secret",
		HourlyRate:        100,
		PlatformFee:       10,
		KashierBaseURL:    "https://checkout.kashier.io",
		KashierMerchantID: "MID-test",
		KashierAPIKey:     "test-api-key",
		KashierTestMode:   true,
	})

	return db
}

func createControllerUser(t *testing.T, db *gorm.DB, email, userType string) *models.User {
	t.Helper()

	lat, lon := 30.0, 31.0
	user := models.User{
		Username:    email,
		Email:       email,
		PhoneNumber: "p-" + email,
		Type:        userType,
		IsVerified:  true,
		Latitude:    &lat,
		Longitude:   &lon,
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}
	return &user
}

func createControllerOrder(t *testing.T, db *gorm.DB, patient *models.User, nurseID *uint, status string) *models.Order {
	t.Helper()

	service := models.Service{Name: "Home Nursing"}
	if err := db.Create(&service).Error; err != nil {
		t.Fatalf("Failed to create test service: %v", err)
	}

	order := models.Order{
		UserID:         patient.ID,
		NurseID:        nurseID,
		ServiceID:      service.ID,
		Title:          "Post-surgery care",
		EmploymentType: "Per visit",
		Type:           models.TimeTypeOnSpot,
		PaymentType:    models.PaymentTypeHourly,
		Gender:         "Female",
		Age:            60,
		Latitude:       30.0,
		Longitude:      31.0,
		Status:         status,
	}
	if err := db.Create(&order).Error; err != nil {
		t.Fatalf("Failed to create test order: %v", err)
	}
	return &order
}

func createControllerPayment(t *testing.T, db *gorm.DB, order *models.Order, method string) *models.OrderPayment {
	t.Helper()

	payment := models.OrderPayment{
		OrderID:       order.ID,
		UserID:        order.UserID,
		TotalAmount:   decimal.NewFromInt(200),
		PaymentMethod: method,
		Status:        models.PaymentStatusPending,
	}
	if err := db.Create(&payment).Error; err != nil {
		t.Fatalf("Failed to create test payment: %v", err)
	}
	return &payment
}

// asPrincipal injects an already-resolved principal, bypassing token checks.
func asPrincipal(user *models.User) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("principal", middleware.Principal{
			ID:         user.ID,
			Type:       user.Type,
			IsVerified: user.IsVerified,
		})
		c.Next()
	}
}

func performRequest(router *gin.Engine, method, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, nil)
	router.ServeHTTP(w, req)
	return w
}

func newTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	return gin.New()
}
