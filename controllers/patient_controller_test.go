package controllers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/CoreVine/nursy-backend/models"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func patientRouter(user *models.User) *gin.Engine {
	router := newTestRouter()
	group := router.Group("/api/v1/patient", asPrincipal(user))
	group.GET("/requests", GetPatientRequests)
	group.GET("/requests/:orderId", GetPatientRequestByID)
	return router
}

func TestGetPatientRequests(t *testing.T) {
	db := setupControllerTestDB(t)
	patient := createControllerUser(t, db, "patient@example.com", models.UserTypePatient)
	other := createControllerUser(t, db, "other@example.com", models.UserTypePatient)

	createControllerOrder(t, db, patient, nil, models.OrderStatusPending)
	createControllerOrder(t, db, patient, nil, models.OrderStatusPending)
	createControllerOrder(t, db, other, nil, models.OrderStatusPending)

	router := patientRouter(patient)

	w := performRequest(router, http.MethodGet, "/api/v1/patient/requests")
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Success bool `json:"success"`
		Data    struct {
			Requests []models.Order `json:"requests"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.True(t, body.Success)
	require.Len(t, body.Data.Requests, 2)
	for _, order := range body.Data.Requests {
		assert.Equal(t, patient.ID, order.UserID)
	}
}

func TestGetPatientRequestsPagination(t *testing.T) {
	db := setupControllerTestDB(t)
	patient := createControllerUser(t, db, "patient@example.com", models.UserTypePatient)

	for i := 0; i < 3; i++ {
		createControllerOrder(t, db, patient, nil, models.OrderStatusPending)
	}

	router := patientRouter(patient)

	w := performRequest(router, http.MethodGet, "/api/v1/patient/requests?page=2&pageSize=2")
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Data struct {
			Requests []models.Order `json:"requests"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Len(t, body.Data.Requests, 1)
}

func TestGetPatientRequestByID(t *testing.T) {
	db := setupControllerTestDB(t)
	patient := createControllerUser(t, db, "patient@example.com", models.UserTypePatient)
	other := createControllerUser(t, db, "other@example.com", models.UserTypePatient)

	mine := createControllerOrder(t, db, patient, nil, models.OrderStatusPending)
	theirs := createControllerOrder(t, db, other, nil, models.OrderStatusPending)

	router := patientRouter(patient)

	w := performRequest(router, http.MethodGet, fmt.Sprintf("/api/v1/patient/requests/%d", mine.ID))
	assert.Equal(t, http.StatusOK, w.Code)

	// Another patient's order is invisible
	w = performRequest(router, http.MethodGet, fmt.Sprintf("/api/v1/patient/requests/%d", theirs.ID))
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = performRequest(router, http.MethodGet, "/api/v1/patient/requests/0")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
