// Package lifecycle owns job applications: creation, status transitions, and
// the transactional coupling to conversations. Submitting and accepting an
// application provision the messaging thread in the same transaction as the
// application write; notifications fire only after commit.
package lifecycle

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"HandyHire-backend/internal/apperr"
	"HandyHire-backend/internal/authz"
	"HandyHire-backend/internal/database"
	"HandyHire-backend/internal/messaging"
	"HandyHire-backend/internal/model"
	"HandyHire-backend/internal/notify"
)

// Manager bundles the DB handle and the notification dispatcher the
// lifecycle operations need.
type Manager struct {
	DB       *database.DBinstanceStruct
	Notifier notify.Dispatcher
}

// NewManager creates a new lifecycle Manager.
func NewManager(db *database.DBinstanceStruct, notifier notify.Dispatcher) *Manager {
	return &Manager{DB: db, Notifier: notifier}
}

// SubmitResult identifies the rows a submission created.
type SubmitResult struct {
	ApplicationID  uint `json:"application_id"`
	ConversationID uint `json:"conversation_id"`
}

// AcceptResult reports the conversation an acceptance resolved to and
// whether it had to be created.
type AcceptResult struct {
	ConversationID uint `json:"conversation_id"`
	IsNew          bool `json:"is_new"`
}

// SubmitApplication creates a job application for the principal, provisioning
// the conversation with the posting's employer and its seed message in the
// same transaction as the application row. Duplicate (posting, applicant)
// pairs are rejected with a conflict, app-side first and by the store's
// unique index when two submissions race.
func (m *Manager) SubmitApplication(user model.User, postingID uint, coverMessage string, resumeURL *string) (*SubmitResult, error) {
	applicant, err := authz.ResolveEmployee(m.DB.DB, user.ID)
	if err != nil {
		return nil, err
	}

	var posting model.JobPosting
	if err := m.DB.First(&posting, "id = ?", postingID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.New(apperr.ErrNotFound, "Job posting not found")
		}
		return nil, err
	}

	var existing model.JobApplication
	err = m.DB.Where("job_posting_id = ? AND applicant_id = ?", postingID, applicant.UserID).
		First(&existing).Error
	if err == nil {
		return nil, apperr.New(apperr.ErrConflict, "You have already applied to this job posting")
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	seed := coverMessage
	if seed == "" {
		seed = fmt.Sprintf("Hello! I have applied to your %q posting and would love to hear more.", posting.Title)
	}

	var app model.JobApplication
	var convID uint
	err = m.DB.Transaction(func(tx *gorm.DB) error {
		conv, _, err := messaging.EnsureConversation(tx, posting.EmployerID, applicant.UserID)
		if err != nil {
			return err
		}
		convID = conv.ID

		if _, err := messaging.AppendMessage(tx, conv.ID, applicant.UserID, model.SenderTypeEmployee, seed); err != nil {
			return err
		}

		app = model.JobApplication{
			JobPostingID:   posting.ID,
			ApplicantID:    applicant.UserID,
			Status:         model.ApplicationStatusPending,
			ConversationID: &conv.ID,
			CoverMessage:   coverMessage,
			ResumeURL:      resumeURL,
		}
		return tx.Create(&app).Error
	})
	if err != nil {
		// A racing duplicate aborts the whole transaction on the store's
		// unique index, nothing is partially committed.
		if database.IsUniqueViolation(err) {
			return nil, apperr.New(apperr.ErrConflict, "You have already applied to this job posting")
		}
		return nil, err
	}

	m.notifyEmployer(posting, applicant)

	return &SubmitResult{ApplicationID: app.ID, ConversationID: convID}, nil
}

// AcceptApplication moves an application into review and guarantees a linked
// conversation exists. It is idempotent: repeat calls return the same
// conversation id with IsNew=false and dispatch no further notifications,
// because the accepted-notification is tied to the actual pending→reviewing
// transition.
func (m *Manager) AcceptApplication(user model.User, applicationID uint) (*AcceptResult, error) {
	var app model.JobApplication
	if err := m.DB.Preload("JobPosting").First(&app, "id = ?", applicationID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.New(apperr.ErrNotFound, "Application not found")
		}
		return nil, err
	}

	// The critical check: staff membership is re-derived from the posting's
	// employer, never taken from the request.
	if err := authz.RequireStaffOf(m.DB.DB, user.ID, app.JobPosting.EmployerID); err != nil {
		return nil, err
	}

	if app.ConversationID != nil {
		advanced := false
		if app.Status == model.ApplicationStatusPending {
			if err := m.DB.Model(&app).
				UpdateColumn("status", model.ApplicationStatusReviewing).Error; err != nil {
				return nil, err
			}
			advanced = true
		}
		if advanced {
			m.notifyApplicant(app)
		}
		return &AcceptResult{ConversationID: *app.ConversationID, IsNew: false}, nil
	}

	seed := fmt.Sprintf("Thanks for your interest in %q. We'd like to talk.", app.JobPosting.Title)

	var convID uint
	err := m.DB.Transaction(func(tx *gorm.DB) error {
		conv, _, err := messaging.EnsureConversation(tx, app.JobPosting.EmployerID, app.ApplicantID)
		if err != nil {
			return err
		}
		convID = conv.ID

		if _, err := messaging.AppendMessage(tx, conv.ID, user.ID, model.SenderTypeEmployer, seed); err != nil {
			return err
		}

		return tx.Model(&app).UpdateColumns(map[string]interface{}{
			"conversation_id": conv.ID,
			"status":          model.ApplicationStatusReviewing,
		}).Error
	})
	if err != nil {
		if database.IsUniqueViolation(err) {
			return nil, apperr.New(apperr.ErrConflict, "Conversation for this pair already exists")
		}
		return nil, err
	}

	m.notifyApplicant(app)

	return &AcceptResult{ConversationID: convID, IsNew: true}, nil
}

// UpdateStatus overwrites an application's status. Only enum membership is
// validated, transition order is deliberately unconstrained, including out of
// hired and rejected. No conversation side effects.
func (m *Manager) UpdateStatus(user model.User, applicationID uint, newStatus string) (*model.JobApplication, error) {
	if !model.ValidApplicationStatus(newStatus) {
		return nil, apperr.New(apperr.ErrInvalidArgument, "Invalid application status %q", newStatus)
	}

	var app model.JobApplication
	if err := m.DB.Preload("JobPosting").First(&app, "id = ?", applicationID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.New(apperr.ErrNotFound, "Application not found")
		}
		return nil, err
	}

	if err := authz.RequireStaffOf(m.DB.DB, user.ID, app.JobPosting.EmployerID); err != nil {
		return nil, err
	}

	if err := m.DB.Model(&app).UpdateColumn("status", newStatus).Error; err != nil {
		return nil, err
	}
	return &app, nil
}

// ApplicationsForApplicant lists the principal's own applications, newest
// first.
func (m *Manager) ApplicationsForApplicant(user model.User) ([]model.JobApplication, error) {
	applicant, err := authz.ResolveEmployee(m.DB.DB, user.ID)
	if err != nil {
		return nil, err
	}
	var apps []model.JobApplication
	if err := m.DB.Where("applicant_id = ?", applicant.UserID).
		Order("applied_at DESC, id DESC").
		Find(&apps).Error; err != nil {
		return nil, err
	}
	return apps, nil
}

// ApplicationsForPosting lists a posting's applications for staff of the
// owning employer.
func (m *Manager) ApplicationsForPosting(user model.User, postingID uint) ([]model.JobApplication, error) {
	var posting model.JobPosting
	if err := m.DB.First(&posting, "id = ?", postingID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.New(apperr.ErrNotFound, "Job posting not found")
		}
		return nil, err
	}
	if err := authz.RequireStaffOf(m.DB.DB, user.ID, posting.EmployerID); err != nil {
		return nil, err
	}
	var apps []model.JobApplication
	if err := m.DB.Where("job_posting_id = ?", postingID).
		Order("applied_at DESC, id DESC").
		Find(&apps).Error; err != nil {
		return nil, err
	}
	return apps, nil
}

func (m *Manager) notifyEmployer(posting model.JobPosting, applicant model.Employee) {
	var employer model.Employer
	if err := m.DB.First(&employer, "id = ?", posting.EmployerID).Error; err != nil {
		return
	}
	if employer.ContactEmail == nil || *employer.ContactEmail == "" {
		return
	}
	m.Notifier.Send(notify.KindApplicationReceived, *employer.ContactEmail, notify.Payload{
		"posting_title":  posting.Title,
		"applicant_name": fmt.Sprintf("%s %s", applicant.FirstName, applicant.LastName),
	})
}

func (m *Manager) notifyApplicant(app model.JobApplication) {
	var applicant model.Employee
	if err := m.DB.Preload("User").First(&applicant, "user_id = ?", app.ApplicantID).Error; err != nil {
		return
	}
	addr := ""
	if applicant.ContactEmail != nil && *applicant.ContactEmail != "" {
		addr = *applicant.ContactEmail
	} else if applicant.User.Email != nil {
		addr = *applicant.User.Email
	}
	if addr == "" {
		return
	}
	var employer model.Employer
	employerName := ""
	if err := m.DB.First(&employer, "id = ?", app.JobPosting.EmployerID).Error; err == nil {
		employerName = employer.Name
	}
	m.Notifier.Send(notify.KindApplicationAccepted, addr, notify.Payload{
		"posting_title": app.JobPosting.Title,
		"employer_name": employerName,
	})
}
