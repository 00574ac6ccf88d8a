package database

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"

	"HandyHire-backend/internal/model"
)

var testDB *DBinstanceStruct

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	var err error
	var midTeardown func(context.Context, ...testcontainers.TerminateOption) error
	midTeardown, testDB, err = GetTestDB()
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

func TestHealth(t *testing.T) {
	stats := testDB.Health()
	assert.Equal(t, "up", stats["status"])
}

func TestConversationPairUniqueIndex(t *testing.T) {
	conv := model.Conversation{UpdatedAt: time.Now().UTC()}
	require.NoError(t, testDB.Create(&conv).Error)

	key := model.ConversationKey{
		ConversationID: conv.ID,
		EmployerID:     TestEmployer1.ID,
		EmployeeID:     TestCandidate1.UserID,
	}
	require.NoError(t, testDB.Create(&key).Error)

	conv2 := model.Conversation{UpdatedAt: time.Now().UTC()}
	require.NoError(t, testDB.Create(&conv2).Error)

	dup := model.ConversationKey{
		ConversationID: conv2.ID,
		EmployerID:     TestEmployer1.ID,
		EmployeeID:     TestCandidate1.UserID,
	}
	err := testDB.Create(&dup).Error
	require.Error(t, err)
	assert.True(t, IsUniqueViolation(err))
}

func TestApplicationPairUniqueIndex(t *testing.T) {
	app := model.JobApplication{
		JobPostingID: TestPosting1.ID,
		ApplicantID:  TestCandidate2.UserID,
		Status:       model.ApplicationStatusPending,
	}
	require.NoError(t, testDB.Create(&app).Error)

	dup := model.JobApplication{
		JobPostingID: TestPosting1.ID,
		ApplicantID:  TestCandidate2.UserID,
		Status:       model.ApplicationStatusPending,
	}
	err := testDB.Create(&dup).Error
	require.Error(t, err)
	assert.True(t, IsUniqueViolation(err))
}
