package controllers

import (
	"strconv"

	"github.com/CoreVine/nursy-backend/apperrors"
	"github.com/CoreVine/nursy-backend/config"
	"github.com/CoreVine/nursy-backend/middleware"
	"github.com/CoreVine/nursy-backend/models"
	"github.com/CoreVine/nursy-backend/utils"
	"github.com/gin-gonic/gin"
)

// GetPatientRequests handles GET /api/v1/patient/requests - lists the
// patient's own orders with an optional status filter and pagination
func GetPatientRequests(c *gin.Context) {
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
	query := db.Model(&models.Order{}).Where("user_id = ?", principal.ID)
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

// GetPatientRequestByID handles GET /api/v1/patient/requests/:orderId
func GetPatientRequestByID(c *gin.Context) {
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
		Where("id = ? AND user_id = ?", orderID, principal.ID).
		First(&order).Error
	if findErr != nil {
		respondError(c, apperrors.NotFound("Request not found"))
		return
	}

	respondOK(c, order)
}
