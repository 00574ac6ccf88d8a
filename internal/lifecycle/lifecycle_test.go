package lifecycle

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"

	"HandyHire-backend/internal/apperr"
	"HandyHire-backend/internal/database"
	"HandyHire-backend/internal/model"
	"HandyHire-backend/internal/notify"
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

func newManager(rec *notify.Recorder) *Manager {
	return NewManager(testDB, rec)
}

func TestSubmitApplication_CreatesConversationAndSeedMessage(t *testing.T) {
	rec := &notify.Recorder{}
	mgr := newManager(rec)

	cover := "I have five years of framing experience and my own tools."
	result, err := mgr.SubmitApplication(database.TestUserCandidate1, database.TestPosting1.ID, cover, nil)
	require.NoError(t, err)
	require.NotZero(t, result.ApplicationID)
	require.NotZero(t, result.ConversationID)

	var app model.JobApplication
	require.NoError(t, testDB.First(&app, "id = ?", result.ApplicationID).Error)
	assert.Equal(t, model.ApplicationStatusPending, app.Status)
	require.NotNil(t, app.ConversationID)
	assert.Equal(t, result.ConversationID, *app.ConversationID)

	var msgs []model.Message
	require.NoError(t, testDB.Where("conversation_id = ?", result.ConversationID).Find(&msgs).Error)
	require.Len(t, msgs, 1)
	assert.Equal(t, cover, msgs[0].Content)
	assert.Equal(t, model.SenderTypeEmployee, msgs[0].SenderType)
	assert.Equal(t, database.TestUserCandidate1.ID, msgs[0].SenderID)

	assert.Equal(t, 1, rec.CountKind(notify.KindApplicationReceived))
	sent := rec.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, *database.TestEmployer1.ContactEmail, sent[0].Recipient)
}

func TestSubmitApplication_TemplatedSeedWithoutCover(t *testing.T) {
	rec := &notify.Recorder{}
	mgr := newManager(rec)

	result, err := mgr.SubmitApplication(database.TestUserCandidate2, database.TestPosting1.ID, "", nil)
	require.NoError(t, err)

	var msgs []model.Message
	require.NoError(t, testDB.Where("conversation_id = ?", result.ConversationID).
		Order("created_at ASC, id ASC").Find(&msgs).Error)
	require.NotEmpty(t, msgs)
	assert.Contains(t, msgs[0].Content, database.TestPosting1.Title)
	assert.Contains(t, msgs[0].Content, "applied")
}

func TestSubmitApplication_DuplicateConflict(t *testing.T) {
	rec := &notify.Recorder{}
	mgr := newManager(rec)

	_, err := mgr.SubmitApplication(database.TestUserCandidate1, database.TestPosting2.ID, "First try.", nil)
	require.NoError(t, err)

	var before int64
	require.NoError(t, testDB.Model(&model.JobApplication{}).Count(&before).Error)

	_, err = mgr.SubmitApplication(database.TestUserCandidate1, database.TestPosting2.ID, "Second try.", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperr.ErrConflict)

	var after int64
	require.NoError(t, testDB.Model(&model.JobApplication{}).Count(&after).Error)
	assert.Equal(t, before, after)
}

func TestSubmitApplication_PostingNotFound(t *testing.T) {
	mgr := newManager(&notify.Recorder{})

	_, err := mgr.SubmitApplication(database.TestUserCandidate1, 999999, "", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestAcceptApplication_IdempotentOnExistingConversation(t *testing.T) {
	rec := &notify.Recorder{}
	mgr := newManager(rec)

	submitted, err := mgr.SubmitApplication(database.TestUserCandidate2, database.TestPosting3.ID, "Licensed and available.", nil)
	require.NoError(t, err)

	accepted, err := mgr.AcceptApplication(database.TestUserStaff2, submitted.ApplicationID)
	require.NoError(t, err)
	assert.Equal(t, submitted.ConversationID, accepted.ConversationID)
	assert.False(t, accepted.IsNew)

	var app model.JobApplication
	require.NoError(t, testDB.First(&app, "id = ?", submitted.ApplicationID).Error)
	assert.Equal(t, model.ApplicationStatusReviewing, app.Status)
	assert.Equal(t, 1, rec.CountKind(notify.KindApplicationAccepted))

	// A repeat accept changes nothing and stays silent.
	again, err := mgr.AcceptApplication(database.TestUserStaff2, submitted.ApplicationID)
	require.NoError(t, err)
	assert.Equal(t, accepted.ConversationID, again.ConversationID)
	assert.False(t, again.IsNew)
	assert.Equal(t, 1, rec.CountKind(notify.KindApplicationAccepted))

	require.NoError(t, testDB.First(&app, "id = ?", submitted.ApplicationID).Error)
	assert.Equal(t, model.ApplicationStatusReviewing, app.Status)
}

func TestAcceptApplication_ProvisionsMissingConversation(t *testing.T) {
	rec := &notify.Recorder{}
	mgr := newManager(rec)

	// An application without a conversation, as employer-side imports create them.
	app := model.JobApplication{
		JobPostingID: database.TestPosting3.ID,
		ApplicantID:  database.TestCandidate1.UserID,
		Status:       model.ApplicationStatusPending,
	}
	require.NoError(t, testDB.Create(&app).Error)

	accepted, err := mgr.AcceptApplication(database.TestUserStaff2, app.ID)
	require.NoError(t, err)
	assert.True(t, accepted.IsNew)
	require.NotZero(t, accepted.ConversationID)

	var reloaded model.JobApplication
	require.NoError(t, testDB.First(&reloaded, "id = ?", app.ID).Error)
	assert.Equal(t, model.ApplicationStatusReviewing, reloaded.Status)
	require.NotNil(t, reloaded.ConversationID)
	assert.Equal(t, accepted.ConversationID, *reloaded.ConversationID)

	var msgs []model.Message
	require.NoError(t, testDB.Where("conversation_id = ?", accepted.ConversationID).
		Order("created_at ASC, id ASC").Find(&msgs).Error)
	require.NotEmpty(t, msgs)
	assert.Equal(t, model.SenderTypeEmployer, msgs[0].SenderType)
	assert.Contains(t, msgs[0].Content, database.TestPosting3.Title)
}

func TestAcceptApplication_CrossEmployerForbidden(t *testing.T) {
	mgr := newManager(&notify.Recorder{})

	var app model.JobApplication
	require.NoError(t, testDB.Where("job_posting_id = ?", database.TestPosting3.ID).
		First(&app).Error)

	// Staff of employer 1 must not touch employer 2's applications.
	_, err := mgr.AcceptApplication(database.TestUserStaff1, app.ID)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperr.ErrForbidden)
}

func TestAcceptApplication_NotFound(t *testing.T) {
	mgr := newManager(&notify.Recorder{})

	_, err := mgr.AcceptApplication(database.TestUserStaff1, 999999)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestUpdateStatus_UnorderedTransitions(t *testing.T) {
	mgr := newManager(&notify.Recorder{})

	var app model.JobApplication
	require.NoError(t, testDB.Joins("JobPosting").
		Where("\"JobPosting\".employer_id = ?", database.TestEmployer1.ID).
		First(&app).Error)

	// Terminal states are not sticky: hired, back to pending, then rejected.
	for _, status := range []string{
		model.ApplicationStatusHired,
		model.ApplicationStatusPending,
		model.ApplicationStatusRejected,
	} {
		updated, err := mgr.UpdateStatus(database.TestUserStaff1, app.ID, status)
		require.NoError(t, err)
		assert.Equal(t, status, updated.Status)

		var reloaded model.JobApplication
		require.NoError(t, testDB.First(&reloaded, "id = ?", app.ID).Error)
		assert.Equal(t, status, reloaded.Status)
	}
}

func TestUpdateStatus_InvalidEnum(t *testing.T) {
	mgr := newManager(&notify.Recorder{})

	var app model.JobApplication
	require.NoError(t, testDB.First(&app).Error)

	_, err := mgr.UpdateStatus(database.TestUserStaff1, app.ID, "on-hold")
	require.Error(t, err)
	assert.ErrorIs(t, err, apperr.ErrInvalidArgument)
}

func TestUpdateStatus_CrossEmployerForbidden(t *testing.T) {
	mgr := newManager(&notify.Recorder{})

	var app model.JobApplication
	require.NoError(t, testDB.Joins("JobPosting").
		Where("\"JobPosting\".employer_id = ?", database.TestEmployer1.ID).
		First(&app).Error)

	_, err := mgr.UpdateStatus(database.TestUserStaff2, app.ID, model.ApplicationStatusReviewing)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperr.ErrForbidden)
}

func TestApplicationsForApplicant_OwnOnly(t *testing.T) {
	mgr := newManager(&notify.Recorder{})

	apps, err := mgr.ApplicationsForApplicant(database.TestUserCandidate1)
	require.NoError(t, err)
	for _, app := range apps {
		assert.Equal(t, database.TestCandidate1.UserID, app.ApplicantID)
	}
}

func TestApplicationsForPosting_StaffOnly(t *testing.T) {
	mgr := newManager(&notify.Recorder{})

	apps, err := mgr.ApplicationsForPosting(database.TestUserStaff1, database.TestPosting1.ID)
	require.NoError(t, err)
	for _, app := range apps {
		assert.Equal(t, database.TestPosting1.ID, app.JobPostingID)
	}

	_, err = mgr.ApplicationsForPosting(database.TestUserStaff2, database.TestPosting1.ID)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperr.ErrForbidden)
}
