// Package application provides HTTP handlers for job application operations.
package application

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"HandyHire-backend/internal/apperr"
	"HandyHire-backend/internal/database"
	"HandyHire-backend/internal/lifecycle"
	"HandyHire-backend/internal/notify"
	"HandyHire-backend/internal/utilities"
)

// ApplicationController handles job application related endpoints
type ApplicationController struct {
	DB        *database.DBinstanceStruct
	Lifecycle *lifecycle.Manager
}

// NewApplicationController creates a new instance of ApplicationController with the provided database connection.
func NewApplicationController(db *database.DBinstanceStruct, notifier notify.Dispatcher) *ApplicationController {
	return &ApplicationController{
		DB:        db,
		Lifecycle: lifecycle.NewManager(db, notifier),
	}
}

type submitRequest struct {
	JobPostingID uint    `json:"job_posting_id" binding:"required"`
	CoverMessage string  `json:"cover_message"`
	ResumeURL    *string `json:"resume_url"`
}

type statusRequest struct {
	Status string `json:"status" binding:"required"`
}

// SubmitHandler handles the creation of a new job application by an employee.
// @Summary Submit job application
// @Description Only employee user can access this endpoint. Creates the application together with its conversation and seed message.
// @Tags Application
// @Accept json
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Param application body submitRequest true "Application information"
// @Success 201 {object} lifecycle.SubmitResult "Successfully applied to job posting"
// @Failure 400 {object} utilities.ErrorResponse "Invalid request body"
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Failure 404 {object} utilities.ErrorResponse "Job posting not found"
// @Failure 409 {object} utilities.ErrorResponse "Already applied to this job posting"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /application [post]
func (a *ApplicationController) SubmitHandler(c *gin.Context) {
	user, err := utilities.ExtractUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, utilities.ErrorResponse{Error: err.Error()})
		return
	}

	req := submitRequest{}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{
			Error: fmt.Sprintf("Invalid request body: %s", err.Error()),
		})
		return
	}

	result, err := a.Lifecycle.SubmitApplication(user, req.JobPostingID, req.CoverMessage, req.ResumeURL)
	if err != nil {
		c.JSON(apperr.HTTPStatus(err), utilities.ErrorResponse{Error: apperr.Message(err)})
		return
	}

	c.JSON(http.StatusCreated, result)
}

// MyApplicationsHandler lists the calling employee's own applications.
// @Summary List my applications
// @Description Only employee user can access this endpoint
// @Tags Application
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Success 200 {array} model.JobApplication "Applications of the caller"
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Failure 404 {object} utilities.ErrorResponse "Employee profile not found"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /application/me [get]
func (a *ApplicationController) MyApplicationsHandler(c *gin.Context) {
	user, err := utilities.ExtractUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, utilities.ErrorResponse{Error: err.Error()})
		return
	}

	apps, err := a.Lifecycle.ApplicationsForApplicant(user)
	if err != nil {
		c.JSON(apperr.HTTPStatus(err), utilities.ErrorResponse{Error: apperr.Message(err)})
		return
	}

	c.JSON(http.StatusOK, apps)
}

// PostingApplicationsHandler lists the applications of one posting for the
// employer's staff.
// @Summary List applications of a posting
// @Description Only staff of the posting's employer can access this endpoint
// @Tags Application
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Param id path int true "Job posting ID"
// @Success 200 {array} model.JobApplication "Applications of the posting"
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Failure 403 {object} utilities.ErrorResponse "Not staff of the posting's employer"
// @Failure 404 {object} utilities.ErrorResponse "Job posting not found"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /application/posting/{id} [get]
func (a *ApplicationController) PostingApplicationsHandler(c *gin.Context) {
	user, err := utilities.ExtractUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, utilities.ErrorResponse{Error: err.Error()})
		return
	}

	postingID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{Error: "Invalid posting id"})
		return
	}

	apps, err := a.Lifecycle.ApplicationsForPosting(user, uint(postingID))
	if err != nil {
		c.JSON(apperr.HTTPStatus(err), utilities.ErrorResponse{Error: apperr.Message(err)})
		return
	}

	c.JSON(http.StatusOK, apps)
}

// AcceptHandler moves an application into review and guarantees a linked
// conversation exists. Safe to call repeatedly.
// @Summary Accept job application
// @Description Only staff of the posting's employer can access this endpoint. Idempotent.
// @Tags Application
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Param id path int true "Application ID"
// @Success 200 {object} lifecycle.AcceptResult "Conversation the application resolved to"
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Failure 403 {object} utilities.ErrorResponse "Not staff of the posting's employer"
// @Failure 404 {object} utilities.ErrorResponse "Application not found"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /application/{id}/accept [patch]
func (a *ApplicationController) AcceptHandler(c *gin.Context) {
	user, err := utilities.ExtractUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, utilities.ErrorResponse{Error: err.Error()})
		return
	}

	appID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{Error: "Invalid application id"})
		return
	}

	result, err := a.Lifecycle.AcceptApplication(user, uint(appID))
	if err != nil {
		c.JSON(apperr.HTTPStatus(err), utilities.ErrorResponse{Error: apperr.Message(err)})
		return
	}

	c.JSON(http.StatusOK, result)
}

// StatusHandler overwrites an application's status.
// @Summary Update application status
// @Description Only staff of the posting's employer can access this endpoint. Any valid status can be set regardless of the current one.
// @Tags Application
// @Accept json
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Param id path int true "Application ID"
// @Param status body statusRequest true "New status"
// @Success 200 {object} model.JobApplication "Updated application"
// @Failure 400 {object} utilities.ErrorResponse "Invalid request body or status"
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Failure 403 {object} utilities.ErrorResponse "Not staff of the posting's employer"
// @Failure 404 {object} utilities.ErrorResponse "Application not found"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /application/{id}/status [patch]
func (a *ApplicationController) StatusHandler(c *gin.Context) {
	user, err := utilities.ExtractUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, utilities.ErrorResponse{Error: err.Error()})
		return
	}

	appID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{Error: "Invalid application id"})
		return
	}

	req := statusRequest{}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{
			Error: fmt.Sprintf("Invalid request body: %s", err.Error()),
		})
		return
	}

	app, err := a.Lifecycle.UpdateStatus(user, uint(appID), req.Status)
	if err != nil {
		c.JSON(apperr.HTTPStatus(err), utilities.ErrorResponse{Error: apperr.Message(err)})
		return
	}

	c.JSON(http.StatusOK, app)
}
