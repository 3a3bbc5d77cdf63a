package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/CoreVine/nursy-backend/config"
	"github.com/CoreVine/nursy-backend/controllers"
	"github.com/CoreVine/nursy-backend/middleware"
	"github.com/CoreVine/nursy-backend/models"
	"github.com/CoreVine/nursy-backend/realtime"
	"github.com/CoreVine/nursy-backend/services"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func main() {
	// Basic logging
	log.Println("Starting Nursy dispatch server...")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Connect to database
	if err := config.ConnectDatabase(); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Auto-migrate database models
	db := config.GetDB()
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
		log.Fatalf("Failed to migrate database: %v", err)
	}
	log.Println("Database migration completed successfully")

	// Payment gateway adapter
	services.InitKashierService()

	// Core services
	resolver := middleware.NewJWTResolver(cfg.JWTSecret)
	refusal := services.NewRefusalLedger(db)
	wallet := services.NewWalletLedger(db)
	matching := services.NewMatchingService(db, refusal)
	dispatch := services.NewDispatchService(db, refusal)
	payments := services.NewPaymentService(db, wallet, services.GetKashierService(), cfg.HourlyRate, cfg.PlatformFee)

	// Realtime gateway: one instance, explicit lifecycle
	gateway := realtime.NewGateway(resolver, dispatch, matching, payments)
	gateway.Start()

	// Initialize Gin router
	router := gin.Default()
	router.Use(cors.Default())

	// Websocket transport
	router.GET("/ws", gateway.HandleWS)

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		// Health check endpoint
		v1.GET("/health", healthCheck)

		// Payment gateway webhook (no principal; signature-authenticated)
		v1.GET("/payments/:orderId/verify", controllers.VerifyPayment)

		// Nurse endpoints
		nurse := v1.Group("/nurse", middleware.Authenticate(resolver), middleware.RequireUserType(models.UserTypeNurse))
		{
			nurse.GET("/requests", controllers.GetNurseRequests)
			nurse.GET("/requests/pending", controllers.HasPendingRequest)
			nurse.GET("/requests/:orderId", controllers.GetNurseRequestByID)
			nurse.GET("/wallet", controllers.GetNurseWallet)
		}

		// Patient endpoints
		patient := v1.Group("/patient", middleware.Authenticate(resolver), middleware.RequireUserType(models.UserTypePatient))
		{
			patient.GET("/requests", controllers.GetPatientRequests)
			patient.GET("/requests/:orderId", controllers.GetPatientRequestByID)
		}
	}

	// Start server
	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Printf("Server is running on http://localhost:%s", cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Graceful shutdown: stop accepting connections, then stop the gateway
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}
	gateway.Stop()
	log.Println("Server stopped")
}

// healthCheck handles the health check endpoint
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Nursy API is running",
	})
}
