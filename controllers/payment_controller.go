package controllers

import (
	"net/http"
	"strconv"

	"github.com/CoreVine/nursy-backend/apperrors"
	"github.com/CoreVine/nursy-backend/config"
	"github.com/CoreVine/nursy-backend/services"
	"github.com/gin-gonic/gin"
)

// VerifyPayment handles GET /api/v1/payments/:orderId/verify - the gateway
// redirect/webhook. A tampered or replayed signature yields a neutral
// {isVerified:false} body, indistinguishable from any other failed probe.
func VerifyPayment(c *gin.Context) {
	orderID, err := strconv.Atoi(c.Param("orderId"))
	if err != nil || orderID <= 0 {
		respondError(c, apperrors.BadRequest("Invalid order ID"))
		return
	}

	cfg := config.GetConfig()
	db := config.GetDB()
	paymentService := services.NewPaymentService(
		db,
		services.NewWalletLedger(db),
		services.GetKashierService(),
		cfg.HourlyRate,
		cfg.PlatformFee,
	)

	signature := c.Query("signature")
	verified, order, verifyErr := paymentService.VerifyGatewayCallback(uint(orderID), signature, c.Request.URL.RawQuery)
	if verifyErr != nil {
		respondError(c, verifyErr)
		return
	}
	if !verified {
		c.JSON(http.StatusOK, gin.H{
			"success":    false,
			"isVerified": false,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"isVerified": true,
		"data": gin.H{
			"order": order,
		},
	})
}
