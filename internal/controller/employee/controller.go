// Package employee provides HTTP handlers for employee profile operations.
package employee

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

// EmployeeController handles employee profile endpoints
type EmployeeController struct {
	DB *database.DBinstanceStruct
}

// NewEmployeeController creates a new instance of EmployeeController
func NewEmployeeController(db *database.DBinstanceStruct) *EmployeeController {
	return &EmployeeController{
		DB: db,
	}
}

// EditProfile updates the non-empty fields of the caller's employee profile.
// @Summary Edit employee profile
// @Description Only employee user can access this endpoint. Empty fields in the body are ignored.
// @Tags Employee
// @Accept json
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Param profile body model.EditableEmployeeInfo true "Profile fields to update"
// @Success 200 {object} model.Employee "Updated employee profile"
// @Failure 400 {object} utilities.ErrorResponse "Invalid request body"
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Failure 404 {object} utilities.ErrorResponse "Employee profile not found"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /employee/profile [patch]
func (ec *EmployeeController) EditProfile(c *gin.Context) {
	user, err := utilities.ExtractUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, utilities.ErrorResponse{Error: err.Error()})
		return
	}

	employee := model.Employee{}
	if err := ec.DB.Preload("User").Where("user_id = ?", user.ID).First(&employee).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, utilities.ErrorResponse{Error: "Employee profile not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to retrieve employee profile: %s", err.Error()),
		})
		return
	}

	edited := model.Employee{}
	if err := c.ShouldBindJSON(&edited.EditableEmployeeInfo); err != nil {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{
			Error: fmt.Sprintf("Invalid request body: %s", err.Error()),
		})
		return
	}

	utilities.MergeNonEmpty(&employee.EditableEmployeeInfo, &edited.EditableEmployeeInfo)

	if err := ec.DB.Save(&employee).Error; err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to update employee profile: %s", err.Error()),
		})
		return
	}

	c.JSON(http.StatusOK, employee)
}

// GetMyProfile returns the caller's employee profile.
// @Summary Get my employee profile
// @Description Only employee user can access this endpoint
// @Tags Employee
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Success 200 {object} model.Employee "Employee profile of the caller"
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Failure 404 {object} utilities.ErrorResponse "Employee profile not found"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /employee/myprofile [get]
func (ec *EmployeeController) GetMyProfile(c *gin.Context) {
	user, err := utilities.ExtractUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, utilities.ErrorResponse{Error: err.Error()})
		return
	}

	employee := model.Employee{}
	if err := ec.DB.Preload("User").
		Preload("Employer").
		Where("user_id = ?", user.ID).
		First(&employee).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, utilities.ErrorResponse{Error: "Employee profile not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to retrieve employee profile: %s", err.Error()),
		})
		return
	}

	c.JSON(http.StatusOK, employee)
}
