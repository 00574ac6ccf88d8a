package application

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/testcontainers/testcontainers-go"

	"HandyHire-backend/internal/auth"
	"HandyHire-backend/internal/database"
	"HandyHire-backend/internal/middleware"
	"HandyHire-backend/internal/model"
	"HandyHire-backend/internal/notify"
	"HandyHire-backend/internal/testutil"
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

func newRouter() (*gin.Engine, *notify.Recorder) {
	rec := &notify.Recorder{}
	ac := NewApplicationController(testDB, rec)
	r := gin.Default()
	r.POST("/application", middleware.RequireAuth(testDB), middleware.CheckRole(model.RoleEmployee), ac.SubmitHandler)
	r.GET("/application/me", middleware.RequireAuth(testDB), middleware.CheckRole(model.RoleEmployee), ac.MyApplicationsHandler)
	r.GET("/application/posting/:id", middleware.RequireAuth(testDB), middleware.CheckRole(model.RoleEmployer), ac.PostingApplicationsHandler)
	r.PATCH("/application/:id/accept", middleware.RequireAuth(testDB), middleware.CheckRole(model.RoleEmployer), ac.AcceptHandler)
	r.PATCH("/application/:id/status", middleware.RequireAuth(testDB), middleware.CheckRole(model.RoleEmployer), ac.StatusHandler)
	return r, rec
}

func TestSubmitHandler_Success(t *testing.T) {
	candidateToken, err := auth.GetAccessToken(t, testDB, database.TestUserCandidate1.Username, database.TestSeedPassword)
	assert.NoError(t, err)

	r, rec := newRouter()

	body := gin.H{
		"job_posting_id": database.TestPosting1.ID,
		"cover_message":  "Experienced carpenter, available immediately.",
	}

	httpRec, resp := testutil.MakeJSONRequest(body, candidateToken, r, "/application", http.MethodPost)

	assert.Equal(t, http.StatusCreated, httpRec.Code)
	if resp != nil {
		assert.NotZero(t, resp["application_id"])
		assert.NotZero(t, resp["conversation_id"])
	}
	assert.Equal(t, 1, rec.CountKind(notify.KindApplicationReceived))
}

func TestSubmitHandler_Duplicate(t *testing.T) {
	candidateToken, err := auth.GetAccessToken(t, testDB, database.TestUserCandidate2.Username, database.TestSeedPassword)
	assert.NoError(t, err)

	r, _ := newRouter()

	body := gin.H{"job_posting_id": database.TestPosting2.ID}

	httpRec, _ := testutil.MakeJSONRequest(body, candidateToken, r, "/application", http.MethodPost)
	if httpRec.Code != http.StatusCreated {
		t.Fatalf("initial application failed with code %d", httpRec.Code)
	}

	httpRec2, resp2 := testutil.MakeJSONRequest(body, candidateToken, r, "/application", http.MethodPost)
	assert.Equal(t, http.StatusConflict, httpRec2.Code)
	if resp2 != nil {
		assert.Contains(t, resp2["error"], "already applied")
	}
}

func TestSubmitHandler_UnknownPosting(t *testing.T) {
	candidateToken, err := auth.GetAccessToken(t, testDB, database.TestUserCandidate1.Username, database.TestSeedPassword)
	assert.NoError(t, err)

	r, _ := newRouter()

	httpRec, _ := testutil.MakeJSONRequest(gin.H{"job_posting_id": 999999}, candidateToken, r, "/application", http.MethodPost)
	assert.Equal(t, http.StatusNotFound, httpRec.Code)
}

func TestSubmitHandler_EmployerRoleRejected(t *testing.T) {
	staffToken, err := auth.GetAccessToken(t, testDB, database.TestUserStaff1.Username, database.TestSeedPassword)
	assert.NoError(t, err)

	r, _ := newRouter()

	httpRec, _ := testutil.MakeJSONRequest(gin.H{"job_posting_id": database.TestPosting1.ID}, staffToken, r, "/application", http.MethodPost)
	assert.Equal(t, http.StatusForbidden, httpRec.Code)
}

func TestAcceptHandler_IdempotentFlow(t *testing.T) {
	candidateToken, err := auth.GetAccessToken(t, testDB, database.TestUserCandidate1.Username, database.TestSeedPassword)
	assert.NoError(t, err)
	staffToken, err := auth.GetAccessToken(t, testDB, database.TestUserStaff2.Username, database.TestSeedPassword)
	assert.NoError(t, err)

	r, _ := newRouter()

	httpRec, resp := testutil.MakeJSONRequest(gin.H{"job_posting_id": database.TestPosting3.ID}, candidateToken, r, "/application", http.MethodPost)
	if httpRec.Code != http.StatusCreated {
		t.Fatalf("application failed with code %d: %s", httpRec.Code, httpRec.Body.String())
	}
	appID := resp["application_id"].(float64)

	endpoint := fmt.Sprintf("/application/%.0f/accept", appID)
	accRec, accResp := testutil.MakeJSONRequest(gin.H{}, staffToken, r, endpoint, http.MethodPatch)
	assert.Equal(t, http.StatusOK, accRec.Code)
	assert.Equal(t, false, accResp["is_new"])
	convID := accResp["conversation_id"]

	// Second accept resolves to the same conversation.
	accRec2, accResp2 := testutil.MakeJSONRequest(gin.H{}, staffToken, r, endpoint, http.MethodPatch)
	assert.Equal(t, http.StatusOK, accRec2.Code)
	assert.Equal(t, convID, accResp2["conversation_id"])
	assert.Equal(t, false, accResp2["is_new"])
}

func TestAcceptHandler_CrossEmployerForbidden(t *testing.T) {
	staffToken, err := auth.GetAccessToken(t, testDB, database.TestUserStaff1.Username, database.TestSeedPassword)
	assert.NoError(t, err)

	var app model.JobApplication
	if err := testDB.Where("job_posting_id = ?", database.TestPosting3.ID).First(&app).Error; err != nil {
		t.Fatalf("no application on posting 3: %v", err)
	}

	r, _ := newRouter()

	httpRec, _ := testutil.MakeJSONRequest(gin.H{}, staffToken, r,
		fmt.Sprintf("/application/%d/accept", app.ID), http.MethodPatch)
	assert.Equal(t, http.StatusForbidden, httpRec.Code)
}

func TestStatusHandler_InvalidStatus(t *testing.T) {
	staffToken, err := auth.GetAccessToken(t, testDB, database.TestUserStaff1.Username, database.TestSeedPassword)
	assert.NoError(t, err)

	var app model.JobApplication
	if err := testDB.Where("job_posting_id = ?", database.TestPosting1.ID).First(&app).Error; err != nil {
		t.Fatalf("no application on posting 1: %v", err)
	}

	r, _ := newRouter()

	httpRec, resp := testutil.MakeJSONRequest(gin.H{"status": "maybe-later"}, staffToken, r,
		fmt.Sprintf("/application/%d/status", app.ID), http.MethodPatch)
	assert.Equal(t, http.StatusBadRequest, httpRec.Code)
	if resp != nil {
		assert.Contains(t, resp["error"], "Invalid application status")
	}
}

func TestStatusHandler_TerminalNotSticky(t *testing.T) {
	staffToken, err := auth.GetAccessToken(t, testDB, database.TestUserStaff1.Username, database.TestSeedPassword)
	assert.NoError(t, err)

	var app model.JobApplication
	if err := testDB.Where("job_posting_id = ?", database.TestPosting1.ID).First(&app).Error; err != nil {
		t.Fatalf("no application on posting 1: %v", err)
	}

	r, _ := newRouter()
	endpoint := fmt.Sprintf("/application/%d/status", app.ID)

	for _, status := range []string{model.ApplicationStatusRejected, model.ApplicationStatusReviewing} {
		httpRec, resp := testutil.MakeJSONRequest(gin.H{"status": status}, staffToken, r, endpoint, http.MethodPatch)
		assert.Equal(t, http.StatusOK, httpRec.Code)
		if resp != nil {
			assert.Equal(t, status, resp["status"])
		}
	}
}

func TestMyApplicationsHandler(t *testing.T) {
	candidateToken, err := auth.GetAccessToken(t, testDB, database.TestUserCandidate1.Username, database.TestSeedPassword)
	assert.NoError(t, err)

	r, _ := newRouter()

	httpRec, _ := testutil.MakeJSONRequest(nil, candidateToken, r, "/application/me", http.MethodGet)
	assert.Equal(t, http.StatusOK, httpRec.Code)
}
