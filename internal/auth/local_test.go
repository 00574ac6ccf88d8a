package auth

import (
	"context"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/testcontainers/testcontainers-go"

	"HandyHire-backend/internal/database"
	"HandyHire-backend/internal/model"
	"HandyHire-backend/internal/utilities"
)

var testDB *database.DBinstanceStruct

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	var err error
	var midTeardown func(context.Context, ...testcontainers.TerminateOption) error
	midTeardown, testDB, err = database.GetTestDB()
	if err != nil {
		os.Exit(1)
	}
	m.Run()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if midTeardown != nil {
		_ = midTeardown(ctx)
	}
}

func TestLocalRegisterHandler_Employee(t *testing.T) {
	handler := NewLocalAuthHandler(testDB)

	rec, resp, err := utilities.SimulateAPICall(handler.LocalRegisterHandler, "/register", http.MethodPost, map[string]string{
		"username": "new_candidate",
		"password": "LongEnough1!",
		"role":     "employee",
	})
	assert.NoError(t, err)
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.NotNil(t, resp["access_token"])
	assert.NotNil(t, resp["employee"])

	var employee model.Employee
	assert.NoError(t, testDB.Joins("User").Where("\"User\".username = ?", "new_candidate").First(&employee).Error)
	assert.Nil(t, employee.EmployerID)
}

func TestLocalRegisterHandler_Employer(t *testing.T) {
	handler := NewLocalAuthHandler(testDB)

	rec, resp, err := utilities.SimulateAPICall(handler.LocalRegisterHandler, "/register", http.MethodPost, map[string]string{
		"username":      "new_employer",
		"password":      "LongEnough1!",
		"role":          "employer",
		"employer_name": "Gable & Sons Roofing",
	})
	assert.NoError(t, err)
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.NotNil(t, resp["access_token"])
	assert.NotNil(t, resp["employer"])

	// The registering account ends up on the new employer's roster.
	var employee model.Employee
	assert.NoError(t, testDB.Joins("User").Where("\"User\".username = ?", "new_employer").First(&employee).Error)
	assert.NotNil(t, employee.EmployerID)

	var employer model.Employer
	assert.NoError(t, testDB.First(&employer, "id = ?", *employee.EmployerID).Error)
	assert.Equal(t, "Gable & Sons Roofing", employer.Name)
	assert.Equal(t, model.StatusPending, employer.VerifiedStatus)
}

func TestLocalRegisterHandler_EmployerWithoutName(t *testing.T) {
	handler := NewLocalAuthHandler(testDB)

	rec, _, err := utilities.SimulateAPICall(handler.LocalRegisterHandler, "/register", http.MethodPost, map[string]string{
		"username": "nameless_employer",
		"password": "LongEnough1!",
		"role":     "employer",
	})
	assert.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLocalRegisterHandler_ShortPassword(t *testing.T) {
	handler := NewLocalAuthHandler(testDB)

	rec, _, err := utilities.SimulateAPICall(handler.LocalRegisterHandler, "/register", http.MethodPost, map[string]string{
		"username": "short_pwd_user",
		"password": "short",
		"role":     "employee",
	})
	assert.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLocalRegisterHandler_DuplicateUsername(t *testing.T) {
	handler := NewLocalAuthHandler(testDB)

	rec, resp, err := utilities.SimulateAPICall(handler.LocalRegisterHandler, "/register", http.MethodPost, map[string]string{
		"username": database.TestUserCandidate1.Username,
		"password": "LongEnough1!",
		"role":     "employee",
	})
	assert.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, resp["error"], "already exist")
}

func TestLocalLoginHandler_Success(t *testing.T) {
	handler := NewLocalAuthHandler(testDB)

	rec, resp, err := utilities.SimulateAPICall(handler.LocalLoginHandler, "/login", http.MethodPost, map[string]string{
		"username": database.TestUserStaff1.Username,
		"password": database.TestSeedPassword,
	})
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotNil(t, resp["access_token"])
	// Staff logins carry the employer profile.
	assert.NotNil(t, resp["employer"])
}

func TestLocalLoginHandler_WrongPassword(t *testing.T) {
	handler := NewLocalAuthHandler(testDB)

	rec, _, err := utilities.SimulateAPICall(handler.LocalLoginHandler, "/login", http.MethodPost, map[string]string{
		"username": database.TestUserStaff1.Username,
		"password": "not-the-password",
	})
	assert.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLocalLoginHandler_UnknownUser(t *testing.T) {
	handler := NewLocalAuthHandler(testDB)

	rec, _, err := utilities.SimulateAPICall(handler.LocalLoginHandler, "/login", http.MethodPost, map[string]string{
		"username": "ghost",
		"password": "whatever123",
	})
	assert.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
