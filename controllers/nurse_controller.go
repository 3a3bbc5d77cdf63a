package controllers

import (
	"net/http"
	"strconv"

	"github.com/CoreVine/nursy-backend/apperrors"
	"github.com/CoreVine/nursy-backend/config"
	"github.com/CoreVine/nursy-backend/middleware"
	"github.com/CoreVine/nursy-backend/models"
	"github.com/CoreVine/nursy-backend/services"
	"github.com/CoreVine/nursy-backend/utils"
	"github.com/gin-gonic/gin"
)

var validOrderStatuses = map[string]bool{
	models.OrderStatusPending:   true,
	models.OrderStatusStale:     true,
	models.OrderStatusAccepted:  true,
	models.OrderStatusCompleted: true,
}

// GetNurseRequests handles GET /api/v1/nurse/requests - lists the nurse's
// orders with an optional status filter and pagination
func GetNurseRequests(c *gin.Context) {
	principal, err := middleware.GetPrincipal(c)
	if err != nil {
		respondError(c, err)
		return
	}

	status := c.Query("status")
	if status != "" && !validOrderStatuses[status] {
		respondError(c, apperrors.BadRequest("Invalid status provided"))
		return
	}

	page, pageSize := utils.ParsePage(c.Query("page"), c.Query("pageSize"))

	db := config.GetDB()
	query := db.Model(&models.Order{}).Where("nurse_id = ?", principal.ID)
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		respondError(c, apperrors.Database(err))
		return
	}

	var orders []models.Order
	err = query.Scopes(utils.Paginate(page, pageSize)).
		Preload("User").Preload("Nurse").Preload("Service").Preload("SpecificService").
		Order("id desc").
		Find(&orders).Error
	if err != nil {
		respondError(c, apperrors.Database(err))
		return
	}

	respondOK(c, gin.H{
		"requests":   orders,
		"pagination": utils.NewPagination(page, pageSize, total),
	})
}

// GetNurseRequestByID handles GET /api/v1/nurse/requests/:orderId
func GetNurseRequestByID(c *gin.Context) {
	principal, err := middleware.GetPrincipal(c)
	if err != nil {
		respondError(c, err)
		return
	}

	orderID, err := strconv.Atoi(c.Param("orderId"))
	if err != nil || orderID <= 0 {
		respondError(c, apperrors.BadRequest("Invalid order ID"))
		return
	}

	db := config.GetDB()
	var order models.Order
	findErr := db.Preload("User").Preload("Nurse").Preload("Service").Preload("SpecificService").
		Where("id = ? AND nurse_id = ?", orderID, principal.ID).
		First(&order).Error
	if findErr != nil {
		respondError(c, apperrors.NotFound("Request not found"))
		return
	}

	respondOK(c, order)
}

// HasPendingRequest handles GET /api/v1/nurse/requests/pending - reports
// whether the nurse has an order still in flight
func HasPendingRequest(c *gin.Context) {
	principal, err := middleware.GetPrincipal(c)
	if err != nil {
		respondError(c, err)
		return
	}

	db := config.GetDB()
	var order models.Order
	findErr := db.Preload("User").Preload("Nurse").Preload("Service").Preload("SpecificService").
		Where("nurse_id = ?", principal.ID).
		Where("status IN ?", []string{models.OrderStatusPending, models.OrderStatusStale, models.OrderStatusAccepted}).
		First(&order).Error

	if findErr != nil {
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"data": gin.H{
				"hasPendingRequest": false,
				"request":           nil,
			},
		})
		return
	}

	respondOK(c, gin.H{
		"hasPendingRequest": true,
		"request":           order,
	})
}

// GetNurseWallet handles GET /api/v1/nurse/wallet - returns the nurse's
// balance, debit and history
func GetNurseWallet(c *gin.Context) {
	principal, err := middleware.GetPrincipal(c)
	if err != nil {
		respondError(c, err)
		return
	}

	ledger := services.NewWalletLedger(config.GetDB())
	wallet, err := ledger.WalletOf(principal.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	history, err := ledger.HistoryOf(principal.ID)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, gin.H{
		"wallet":  wallet,
		"history": history,
	})
}
