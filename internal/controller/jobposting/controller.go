// Package jobposting provides HTTP handlers for job posting related operations.
package jobposting

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"HandyHire-backend/internal/authz"
	"HandyHire-backend/internal/database"
	"HandyHire-backend/internal/model"
	"HandyHire-backend/internal/utilities"
)

// JobPostingController handles job posting related endpoints
type JobPostingController struct {
	DB *database.DBinstanceStruct
}

// NewJobPostingController creates a new instance of JobPostingController
func NewJobPostingController(db *database.DBinstanceStruct) *JobPostingController {
	return &JobPostingController{
		DB: db,
	}
}

type postingStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// CreateHandler handles the creation of a new job posting by employer staff.
// @Summary Create job posting based on given json structure
// @Description Only staff of a verified employer have access to this endpoint
// @Tags Jobposting
// @Accept json
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Param Jobposting body model.EditableJobPostingInfo true "Input job posting information"
// @Success 201 {object} model.JobPosting "Successfully create job posting"
// @Failure 400 {object} utilities.ErrorResponse "Invalid job posting struct"
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Failure 403 {object} utilities.ErrorResponse "Not staff of a verified employer"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /jobposting [post]
func (jc *JobPostingController) CreateHandler(c *gin.Context) {
	user, err := utilities.ExtractUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, utilities.ErrorResponse{Error: err.Error()})
		return
	}

	staff, err := authz.ResolveEmployee(jc.DB.DB, user.ID)
	if err != nil || !staff.IsStaff() {
		c.JSON(http.StatusForbidden, utilities.ErrorResponse{Error: "Only employer staff can create job postings"})
		return
	}

	var employer model.Employer
	if err := jc.DB.First(&employer, "id = ?", *staff.EmployerID).Error; err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to retrieve employer information: %s", err.Error()),
		})
		return
	}
	if employer.VerifiedStatus != model.StatusVerified {
		c.JSON(http.StatusForbidden, utilities.ErrorResponse{
			Error: "Only verified employers can create job postings",
		})
		return
	}

	posting := model.JobPosting{}
	decoder := json.NewDecoder(c.Request.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&posting.EditableJobPostingInfo); err != nil {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{
			Error: fmt.Sprintf("Invalid request body: %s", err.Error()),
		})
		return
	}

	posting.EmployerID = employer.ID
	posting.PostedByID = staff.UserID
	if err := jc.DB.Create(&posting).Error; err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprint("Failed to create job posting: ", err),
		})
		return
	}

	c.JSON(http.StatusCreated, posting)
}

// GetPostings fetches job postings matching optional query filters.
// @Summary Get job postings
// @Description Retrieve active, unexpired postings filtered by the given query parameters
// @Tags Jobposting
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Param search query string false "Substring match on title"
// @Param type query string false "Substring match on job type"
// @Param tag query string false "Exact match on one tag"
// @Param salary query string false "Exact match on salary"
// @Param employer query string false "Substring match on employer name"
// @Param industry query string false "Substring match on employer industry"
// @Param location query string false "Substring match on location"
// @Param desc query string false "Sort newest first when true"
// @Success 200 {array} model.JobPosting "Matching job postings"
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /jobposting [get]
func (jc *JobPostingController) GetPostings(c *gin.Context) {
	rawSearch := c.Query("search")
	rawJobType := c.Query("type")
	rawTag := c.Query("tag")
	rawSalary := c.Query("salary")
	rawEmployer := c.Query("employer")
	rawIndustry := c.Query("industry")
	rawLocation := c.Query("location")
	rawDesc := c.Query("desc")

	var postings []model.JobPosting

	result := jc.DB.Model(&model.JobPosting{}).
		Where("job_postings.status = ?", model.PostingStatusActive).
		Where("expiring > ? OR expiring IS NULL", time.Now())

	if rawSearch != "" {
		result = result.Where("title ILIKE ?", "%"+rawSearch+"%")
	}

	if rawJobType != "" {
		result = result.Where("type ILIKE ?", "%"+rawJobType+"%")
	}

	if rawTag != "" {
		result = result.Where("? ILIKE ANY(tags)", rawTag)
	}

	if rawSalary != "" {
		result = result.Where("salary = ?", rawSalary)
	}

	// Join employers table only once if needed for employer or industry filters
	if rawEmployer != "" || rawIndustry != "" {
		result = result.Joins("JOIN employers ON employers.id = job_postings.employer_id")
	}

	if rawEmployer != "" {
		result = result.Where("employers.name ILIKE ?", "%"+rawEmployer+"%")
	}

	if rawIndustry != "" {
		result = result.Where("employers.industry ILIKE ?", "%"+rawIndustry+"%")
	}

	if rawLocation != "" {
		result = result.Where("job_postings.location ILIKE ?", "%"+rawLocation+"%")
	}

	result = result.Order(clause.OrderByColumn{
		Column: clause.Column{Name: "post_time"},
		Desc:   strings.ToLower(rawDesc) == "true",
	}).Find(&postings)

	if err := result.Error; err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprint("Failed to fetch job postings: ", err.Error()),
		})
		return
	}

	c.JSON(http.StatusOK, postings)
}

// GetPostingByID fetches a job posting by its ID from the database
// and returns it as a JSON response.
// @Summary Get job posting by ID
// @Description Retrieve a specific job posting using its unique ID
// @Tags Jobposting
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Param id path integer true "ID of desired job posting"
// @Success 200 {object} model.JobPosting "Return the job posting with the specified ID"
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Failure 404 {object} utilities.ErrorResponse "Job posting not found"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /jobposting/{id} [get]
func (jc *JobPostingController) GetPostingByID(c *gin.Context) {
	id := c.Param("id")

	posting := model.JobPosting{}
	if err := jc.DB.
		Preload("Employer").
		Where("id = ?", id).
		First(&posting).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, utilities.ErrorResponse{Error: "Job posting not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to retrieve job posting: %s", err.Error()),
		})
		return
	}

	c.JSON(http.StatusOK, posting)
}

// EditHandler allows employer staff to update a posting their employer owns.
// @Summary Edit job posting based on given json structure
// @Description Only staff of the employer that owns the posting have access to this endpoint
// @Tags Jobposting
// @Accept json
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Param id path integer true "ID of desired job posting"
// @Param Jobposting body model.EditableJobPostingInfo true "Input job posting information"
// @Success 200 {object} model.JobPosting "Successfully update job posting"
// @Failure 400 {object} utilities.ErrorResponse "Invalid job posting struct"
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Failure 403 {object} utilities.ErrorResponse "Not staff of the owning employer"
// @Failure 404 {object} utilities.ErrorResponse "Posting not found"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /jobposting/{id} [patch]
func (jc *JobPostingController) EditHandler(c *gin.Context) {
	user, err := utilities.ExtractUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, utilities.ErrorResponse{Error: err.Error()})
		return
	}

	posting, ok := jc.ownedPosting(c, user)
	if !ok {
		return
	}

	// Bind incoming JSON to a temporary struct to avoid overwriting ownership fields
	updated := model.JobPosting{}
	decoder := json.NewDecoder(c.Request.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&updated.EditableJobPostingInfo); err != nil {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to parse request body: %s", err.Error()),
		})
		return
	}

	if err := jc.DB.Model(&posting).Updates(updated).Error; err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to update job posting: %s", err.Error()),
		})
		return
	}

	if err := jc.DB.Where("id = ?", posting.ID).First(&posting).Error; err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to retrieve updated job posting: %s", err.Error()),
		})
		return
	}

	c.JSON(http.StatusOK, posting)
}

// StatusHandler overwrites a posting's status with one of the allowed values.
// @Summary Update job posting status
// @Description Only staff of the employer that owns the posting have access to this endpoint
// @Tags Jobposting
// @Accept json
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Param id path integer true "ID of desired job posting"
// @Param status body postingStatusRequest true "New status"
// @Success 200 {object} model.JobPosting "Successfully update posting status"
// @Failure 400 {object} utilities.ErrorResponse "Invalid status"
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Failure 403 {object} utilities.ErrorResponse "Not staff of the owning employer"
// @Failure 404 {object} utilities.ErrorResponse "Posting not found"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /jobposting/{id}/status [patch]
func (jc *JobPostingController) StatusHandler(c *gin.Context) {
	user, err := utilities.ExtractUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, utilities.ErrorResponse{Error: err.Error()})
		return
	}

	posting, ok := jc.ownedPosting(c, user)
	if !ok {
		return
	}

	req := postingStatusRequest{}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{
			Error: fmt.Sprintf("Invalid request body: %s", err.Error()),
		})
		return
	}
	if !model.ValidPostingStatus(req.Status) {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{
			Error: fmt.Sprintf("Invalid posting status %q", req.Status),
		})
		return
	}

	if err := jc.DB.Model(&posting).UpdateColumn("status", req.Status).Error; err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to update posting status: %s", err.Error()),
		})
		return
	}
	posting.Status = req.Status

	c.JSON(http.StatusOK, posting)
}

// ownedPosting loads the posting from the path id and checks the caller is
// staff of the employer that owns it. It writes the error response itself.
func (jc *JobPostingController) ownedPosting(c *gin.Context, user model.User) (model.JobPosting, bool) {
	id := c.Param("id")

	posting := model.JobPosting{}
	if err := jc.DB.Where("id = ?", id).First(&posting).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, utilities.ErrorResponse{Error: "Job posting not found"})
			return posting, false
		}
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to retrieve job posting: %s", err.Error()),
		})
		return posting, false
	}

	isStaff, err := authz.IsStaffOf(jc.DB.DB, user.ID, posting.EmployerID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to check employer staff: %s", err.Error()),
		})
		return posting, false
	}
	if !isStaff {
		c.JSON(http.StatusForbidden, utilities.ErrorResponse{
			Error: "You are not allowed to edit this job posting",
		})
		return posting, false
	}

	return posting, true
}
