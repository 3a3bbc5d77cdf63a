package controllers

import (
	"net/http"

	"github.com/CoreVine/nursy-backend/apperrors"
	"github.com/gin-gonic/gin"
)

// respondError renders an error in the standard envelope.
func respondError(c *gin.Context, err error) {
	appErr := apperrors.From(err)
	c.JSON(appErr.Status, gin.H{
		"success": false,
		"error": gin.H{
			"code":    appErr.Code,
			"message": appErr.Message,
		},
	})
}

// respondOK renders data in the standard envelope.
func respondOK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    data,
	})
}
