// Package admin provides HTTP handlers for admin-only operations.
package admin

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"HandyHire-backend/internal/database"
	"HandyHire-backend/internal/model"
	"HandyHire-backend/internal/utilities"
)

// AdminController handles admin endpoints
type AdminController struct {
	DB *database.DBinstanceStruct
}

// NewAdminController creates a new instance of AdminController
func NewAdminController(db *database.DBinstanceStruct) *AdminController {
	return &AdminController{
		DB: db,
	}
}

type verifyRequest struct {
	Status string `json:"status" binding:"required"`
}

// GetEmployers lists employers, optionally filtered by verification status.
// @Summary List employers
// @Description Only admin can access this endpoint
// @Tags Admin
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Param status query string false "Filter by verification status (pending, verified, rejected)"
// @Success 200 {array} model.Employer "Employers matching the filter"
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Failure 403 {object} utilities.ErrorResponse "Not logged in as admin"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /admin/employers [get]
func (ac *AdminController) GetEmployers(c *gin.Context) {
	result := ac.DB.Preload("Staff").Preload("Staff.User")

	if status := c.Query("status"); status != "" {
		result = result.Where("verified_status = ?", status)
	}

	var employers []model.Employer
	if err := result.Find(&employers).Error; err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to fetch employers: %s", err.Error()),
		})
		return
	}

	c.JSON(http.StatusOK, employers)
}

// VerifyEmployer sets an employer's verification status.
// @Summary Verify employer
// @Description Only admin can access this endpoint. Status must be verified or rejected.
// @Tags Admin
// @Accept json
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Param id path string true "ID of the employer"
// @Param status body verifyRequest true "New verification status"
// @Success 200 {object} model.Employer "Employer after the update"
// @Failure 400 {object} utilities.ErrorResponse "Invalid status"
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Failure 403 {object} utilities.ErrorResponse "Not logged in as admin"
// @Failure 404 {object} utilities.ErrorResponse "Employer not found"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /admin/verify-employer/{id} [patch]
func (ac *AdminController) VerifyEmployer(c *gin.Context) {
	id := c.Param("id")

	req := verifyRequest{}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{
			Error: fmt.Sprintf("Invalid request body: %s", err.Error()),
		})
		return
	}
	if req.Status != model.StatusVerified && req.Status != model.StatusRejected {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{
			Error: fmt.Sprintf("Invalid verification status %q", req.Status),
		})
		return
	}

	employer := model.Employer{}
	if err := ac.DB.Where("id = ?", id).First(&employer).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, utilities.ErrorResponse{Error: "Employer not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to retrieve employer: %s", err.Error()),
		})
		return
	}

	if err := ac.DB.Model(&employer).UpdateColumn("verified_status", req.Status).Error; err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to update employer: %s", err.Error()),
		})
		return
	}
	employer.VerifiedStatus = req.Status

	c.JSON(http.StatusOK, employer)
}
