// Package employer provides HTTP handlers for employer profile operations.
package employer

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"HandyHire-backend/internal/authz"
	"HandyHire-backend/internal/database"
	"HandyHire-backend/internal/model"
	"HandyHire-backend/internal/utilities"
)

// EmployerController handles employer profile endpoints
type EmployerController struct {
	DB *database.DBinstanceStruct
}

// NewEmployerController creates a new instance of EmployerController
func NewEmployerController(db *database.DBinstanceStruct) *EmployerController {
	return &EmployerController{
		DB: db,
	}
}

// EditProfile updates the non-empty fields of the caller's employer profile.
// @Summary Edit employer profile
// @Description Only staff of the employer can access this endpoint. Empty fields in the body are ignored.
// @Tags Employer
// @Accept json
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Param profile body model.EditableEmployerInfo true "Profile fields to update"
// @Success 200 {object} model.Employer "Updated employer profile"
// @Failure 400 {object} utilities.ErrorResponse "Invalid request body"
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Failure 403 {object} utilities.ErrorResponse "Caller is not employer staff"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /employer/profile [patch]
func (ec *EmployerController) EditProfile(c *gin.Context) {
	user, err := utilities.ExtractUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, utilities.ErrorResponse{Error: err.Error()})
		return
	}

	staff, err := authz.ResolveEmployee(ec.DB.DB, user.ID)
	if err != nil || !staff.IsStaff() {
		c.JSON(http.StatusForbidden, utilities.ErrorResponse{Error: "Only employer staff can edit the employer profile"})
		return
	}

	employer := model.Employer{}
	if err := ec.DB.First(&employer, "id = ?", *staff.EmployerID).Error; err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to retrieve employer profile: %s", err.Error()),
		})
		return
	}

	edited := model.Employer{}
	if err := c.ShouldBindJSON(&edited.EditableEmployerInfo); err != nil {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{
			Error: fmt.Sprintf("Invalid request body: %s", err.Error()),
		})
		return
	}

	utilities.MergeNonEmpty(&employer.EditableEmployerInfo, &edited.EditableEmployerInfo)

	if err := ec.DB.Save(&employer).Error; err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to update employer profile: %s", err.Error()),
		})
		return
	}

	c.JSON(http.StatusOK, employer)
}

// GetMyProfile returns the employer profile the caller is staff of.
// @Summary Get my employer profile
// @Description Only staff of an employer can access this endpoint
// @Tags Employer
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Success 200 {object} model.Employer "Employer profile with staff and postings"
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Failure 403 {object} utilities.ErrorResponse "Caller is not employer staff"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /employer/myprofile [get]
func (ec *EmployerController) GetMyProfile(c *gin.Context) {
	user, err := utilities.ExtractUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, utilities.ErrorResponse{Error: err.Error()})
		return
	}

	staff, err := authz.ResolveEmployee(ec.DB.DB, user.ID)
	if err != nil || !staff.IsStaff() {
		c.JSON(http.StatusForbidden, utilities.ErrorResponse{Error: "Only employer staff can access the employer profile"})
		return
	}

	employer := model.Employer{}
	if err := ec.DB.Preload("Staff").
		Preload("Staff.User").
		Preload("JobPostings").
		First(&employer, "id = ?", *staff.EmployerID).Error; err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to retrieve employer profile: %s", err.Error()),
		})
		return
	}

	c.JSON(http.StatusOK, employer)
}

// GetEmployerByID returns an employer's public profile.
// @Summary Get employer by ID
// @Description Retrieve a specific employer using its unique ID
// @Tags Employer
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Param id path string true "ID of desired employer"
// @Success 200 {object} model.Employer "Return the employer with the specified ID"
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Failure 404 {object} utilities.ErrorResponse "Employer not found"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /employer/{id} [get]
func (ec *EmployerController) GetEmployerByID(c *gin.Context) {
	id := c.Param("id")

	employer := model.Employer{}
	if err := ec.DB.Preload("JobPostings").
		Where("id = ?", id).
		First(&employer).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, utilities.ErrorResponse{Error: "Employer not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to retrieve employer: %s", err.Error()),
		})
		return
	}

	c.JSON(http.StatusOK, employer)
}
