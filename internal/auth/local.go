// Package auth contains handler relate to log in and create user account
package auth

import (
	"HandyHire-backend/internal/database"
	"HandyHire-backend/internal/model"
	"HandyHire-backend/internal/utilities"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// LocalAuthHandler holds DB reference for handler methods.
type LocalAuthHandler struct {
	DB *database.DBinstanceStruct
}

// NewLocalAuthHandler creates a new instance of LocalAuthHandler with the provided database connection.
func NewLocalAuthHandler(db *database.DBinstanceStruct) *LocalAuthHandler {
	return &LocalAuthHandler{
		DB: db,
	}
}

type registerInfo struct {
	Username     string `json:"username" binding:"required"`
	Password     string `json:"password" binding:"required"`
	Role         string `json:"role" binding:"required,oneof=employee employer"`
	EmployerName string `json:"employer_name"`
}

type loginInfo struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LocalRegisterHandler handles local registration by receiving username and password.
// Registering as employee creates a candidate profile; registering as
// employer creates the employer record and puts the account on its roster.
// @Summary Handles local registration by receiving username, password and role
// @Description Username must not already exist and password must be at least 8 characters long. Role 'employer' additionally requires employer_name.
// @Tags Auth
// @Accept json
// @Produce json
// @Param Info body registerInfo true "role can be only 'employee' or 'employer'"
// @Success 201 {object} map[string]interface{} "Created account plus access token"
// @Failure 400 {object} utilities.ErrorResponse "Info provided not met the condition"
// @Failure 500 {object} utilities.ErrorResponse "Database or password hashing error"
// @Router /auth/register [post]
func (lh *LocalAuthHandler) LocalRegisterHandler(c *gin.Context) {
	var info registerInfo

	if err := c.ShouldBindJSON(&info); err != nil {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{
			Error: "Username, password, and Role (Only 'employee' or 'employer') must be provided",
		})
		return
	}

	var user model.User
	err := lh.DB.Where("username = ?", info.Username).First(&user).Error

	switch {
	case err == nil:
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{
			Error: "Username already exist",
		})
		return

	case errors.Is(err, gorm.ErrRecordNotFound):
		// Do nothing

	default:
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Database error: %s", err.Error()),
		})
		return
	}

	if len(info.Password) < 8 {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{
			Error: "Password should longer or equal to 8 characters",
		})
		return
	}

	hashedPassword, err := utilities.HashPassword(info.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed hash password: %s", err.Error()),
		})
		return
	}

	switch info.Role {
	case "employee":
		newUser := model.User{
			Username: info.Username,
			Password: hashedPassword,
			Role:     model.RoleEmployee,
		}
		employee := model.Employee{}
		if err := lh.DB.Transaction(func(tx *gorm.DB) error {
			if err := tx.Create(&newUser).Error; err != nil {
				return err
			}
			employee.UserID = newUser.ID
			return tx.Create(&employee).Error
		}); err != nil {
			c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
				Error: fmt.Sprintf("Failed to create user: %s", err.Error()),
			})
			return
		}

		accessToken, err := generateToken(newUser.ID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
				Error: fmt.Sprintf("Failed to generate access token: %s", err.Error()),
			})
			return
		}

		c.JSON(http.StatusCreated, gin.H{
			"user":         newUser,
			"employee":     employee,
			"access_token": accessToken,
		})
	case "employer":
		if strings.TrimSpace(info.EmployerName) == "" {
			c.JSON(http.StatusBadRequest, utilities.ErrorResponse{
				Error: "employer_name must be provided when registering as employer",
			})
			return
		}

		verified := model.StatusPending
		if strings.ToLower(strings.TrimSpace(os.Getenv("BYPASS_VERIFICATION"))) == "true" {
			verified = model.StatusVerified
		}

		newUser := model.User{
			Username: info.Username,
			Password: hashedPassword,
			Role:     model.RoleEmployer,
		}
		employer := model.Employer{
			VerifiedStatus: verified,
			EditableEmployerInfo: model.EditableEmployerInfo{
				Name: info.EmployerName,
			},
		}
		staff := model.Employee{}
		if err := lh.DB.Transaction(func(tx *gorm.DB) error {
			if err := tx.Create(&newUser).Error; err != nil {
				return err
			}
			if err := tx.Create(&employer).Error; err != nil {
				return err
			}
			staff.UserID = newUser.ID
			staff.EmployerID = &employer.ID
			return tx.Create(&staff).Error
		}); err != nil {
			c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
				Error: fmt.Sprintf("Failed to create user: %s", err.Error()),
			})
			return
		}

		accessToken, err := generateToken(newUser.ID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
				Error: fmt.Sprintf("Failed to generate access token: %s", err.Error()),
			})
			return
		}

		c.JSON(http.StatusCreated, gin.H{
			"user":         newUser,
			"employer":     employer,
			"access_token": accessToken,
		})
	}
}

// LocalLoginHandler handles local login by receiving username and password.
// @Summary Handles local login by receiving username and password
// @Description Respond with the account, its profile and an access token
// @Tags Auth
// @Accept json
// @Produce json
// @Param Info body loginInfo true "Credentials"
// @Success 200 {object} map[string]interface{} "Account plus access token"
// @Failure 400 {object} utilities.ErrorResponse "Missing credentials"
// @Failure 401 {object} utilities.ErrorResponse "Unknown username or wrong password"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /auth/login [post]
func (lh *LocalAuthHandler) LocalLoginHandler(c *gin.Context) {
	var info loginInfo

	if err := c.ShouldBindJSON(&info); err != nil {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{
			Error: "Username or password is not provided",
		})
		return
	}

	var user model.User
	err := lh.DB.Where("username = ?", info.Username).First(&user).Error

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		c.JSON(http.StatusUnauthorized, utilities.ErrorResponse{
			Error: "Username or password is incorrect",
		})
		return

	case err == nil:
		// Do nothing

	default:
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Database error: %s", err.Error()),
		})
		return
	}

	if user.Password == "" || !utilities.VerifyPassword(info.Password, user.Password) {
		c.JSON(http.StatusUnauthorized, utilities.ErrorResponse{
			Error: "Username or password is incorrect",
		})
		return
	}

	accessToken, err := generateToken(user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to generate access token: %s", err.Error()),
		})
		return
	}

	resp := gin.H{
		"user":         user,
		"access_token": accessToken,
	}

	var employee model.Employee
	if err := lh.DB.Where("user_id = ?", user.ID).First(&employee).Error; err == nil {
		resp["employee"] = employee
		if employee.EmployerID != nil {
			var employer model.Employer
			if err := lh.DB.First(&employer, "id = ?", *employee.EmployerID).Error; err == nil {
				resp["employer"] = employer
			}
		}
	}

	c.JSON(http.StatusOK, resp)
}
