package conversation

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

func newRouter() *gin.Engine {
	cc := NewConversationController(testDB, &notify.Recorder{})
	r := gin.Default()
	needAuth := r.Group("", middleware.RequireAuth(testDB))
	needAuth.POST("/conversation/direct", middleware.CheckRole(model.RoleEmployer), cc.DirectHandler)
	needAuth.GET("/conversation/me", cc.InboxHandler)
	needAuth.GET("/conversation/:id/message", cc.MessagesHandler)
	needAuth.POST("/conversation/:id/message", cc.PostMessageHandler)
	return r
}

func TestDirectHandler_CreateThenReuse(t *testing.T) {
	staffToken, err := auth.GetAccessToken(t, testDB, database.TestUserStaff1.Username, database.TestSeedPassword)
	assert.NoError(t, err)

	r := newRouter()

	body := gin.H{
		"employer_id":   database.TestEmployer1.ID,
		"employee_id":   database.TestCandidate1.UserID,
		"first_message": "Hi Alice, we have a framing opening.",
	}

	rec, resp := testutil.MakeJSONRequest(body, staffToken, r, "/conversation/direct", http.MethodPost)
	assert.Equal(t, http.StatusCreated, rec.Code)
	convID := resp["id"]

	rec2, resp2 := testutil.MakeJSONRequest(body, staffToken, r, "/conversation/direct", http.MethodPost)
	assert.Equal(t, http.StatusOK, rec2.Code)
	assert.Equal(t, convID, resp2["id"])
}

func TestDirectHandler_EmptyFirstMessage(t *testing.T) {
	staffToken, err := auth.GetAccessToken(t, testDB, database.TestUserStaff1.Username, database.TestSeedPassword)
	assert.NoError(t, err)

	r := newRouter()

	body := gin.H{
		"employer_id": database.TestEmployer1.ID,
		"employee_id": database.TestCandidate2.UserID,
	}

	rec, _ := testutil.MakeJSONRequest(body, staffToken, r, "/conversation/direct", http.MethodPost)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDirectHandler_CandidateRoleRejected(t *testing.T) {
	candidateToken, err := auth.GetAccessToken(t, testDB, database.TestUserCandidate1.Username, database.TestSeedPassword)
	assert.NoError(t, err)

	r := newRouter()

	body := gin.H{
		"employer_id":   database.TestEmployer1.ID,
		"employee_id":   database.TestCandidate2.UserID,
		"first_message": "hello",
	}

	rec, _ := testutil.MakeJSONRequest(body, candidateToken, r, "/conversation/direct", http.MethodPost)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestPostMessageHandler_RoundTrip(t *testing.T) {
	staffToken, err := auth.GetAccessToken(t, testDB, database.TestUserStaff2.Username, database.TestSeedPassword)
	assert.NoError(t, err)
	candidateToken, err := auth.GetAccessToken(t, testDB, database.TestUserCandidate2.Username, database.TestSeedPassword)
	assert.NoError(t, err)

	r := newRouter()

	body := gin.H{
		"employer_id":   database.TestEmployer2.ID,
		"employee_id":   database.TestCandidate2.UserID,
		"first_message": "Hi Bob, are you taking service calls?",
	}
	rec, resp := testutil.MakeJSONRequest(body, staffToken, r, "/conversation/direct", http.MethodPost)
	assert.Equal(t, http.StatusCreated, rec.Code)
	convID := resp["id"].(float64)

	endpoint := fmt.Sprintf("/conversation/%.0f/message", convID)

	msgBody := gin.H{
		"content":     "Yes, send over the details.",
		"sender_type": model.SenderTypeEmployee,
		"employee_id": database.TestCandidate2.UserID,
	}
	msgRec, msgResp := testutil.MakeJSONRequest(msgBody, candidateToken, r, endpoint, http.MethodPost)
	assert.Equal(t, http.StatusCreated, msgRec.Code)
	assert.Equal(t, model.SenderTypeEmployee, msgResp["sender_type"])

	// Both participants read the same ascending listing.
	listRec, _ := testutil.MakeJSONRequest(nil, staffToken, r, endpoint, http.MethodGet)
	assert.Equal(t, http.StatusOK, listRec.Code)
	assert.Contains(t, listRec.Body.String(), "Yes, send over the details.")
}

func TestPostMessageHandler_NonParticipantNotFound(t *testing.T) {
	staffToken, err := auth.GetAccessToken(t, testDB, database.TestUserStaff1.Username, database.TestSeedPassword)
	assert.NoError(t, err)
	outsiderToken, err := auth.GetAccessToken(t, testDB, database.TestUserCandidate2.Username, database.TestSeedPassword)
	assert.NoError(t, err)

	r := newRouter()

	body := gin.H{
		"employer_id":   database.TestEmployer1.ID,
		"employee_id":   database.TestCandidate1.UserID,
		"first_message": "Private thread with Alice.",
	}
	rec, resp := testutil.MakeJSONRequest(body, staffToken, r, "/conversation/direct", http.MethodPost)
	if rec.Code != http.StatusCreated && rec.Code != http.StatusOK {
		t.Fatalf("conversation setup failed with code %d", rec.Code)
	}
	convID := resp["id"].(float64)

	msgBody := gin.H{
		"content":     "let me in",
		"sender_type": model.SenderTypeEmployee,
		"employee_id": database.TestCandidate2.UserID,
	}
	msgRec, msgResp := testutil.MakeJSONRequest(msgBody, outsiderToken, r,
		fmt.Sprintf("/conversation/%.0f/message", convID), http.MethodPost)
	assert.Equal(t, http.StatusNotFound, msgRec.Code)
	if msgResp != nil {
		assert.Equal(t, "Conversation not found", msgResp["error"])
	}
}

func TestInboxHandler(t *testing.T) {
	staffToken, err := auth.GetAccessToken(t, testDB, database.TestUserStaff1.Username, database.TestSeedPassword)
	assert.NoError(t, err)

	r := newRouter()

	rec, _ := testutil.MakeJSONRequest(nil, staffToken, r, "/conversation/me", http.MethodGet)
	assert.Equal(t, http.StatusOK, rec.Code)
}
