package model

import (
	"time"

	"github.com/google/uuid"
)

var (
	// ApplicationStatusPending indicates that the application is awaiting review
	ApplicationStatusPending = "pending"
	// ApplicationStatusReviewing indicates that the employer is reviewing the application
	ApplicationStatusReviewing = "reviewing"
	// ApplicationStatusInterviewed indicates that the candidate has been interviewed
	ApplicationStatusInterviewed = "interviewed"
	// ApplicationStatusOffered indicates that an offer has been extended
	ApplicationStatusOffered = "offered"
	// ApplicationStatusHired indicates that the candidate has been hired
	ApplicationStatusHired = "hired"
	// ApplicationStatusRejected indicates that the application has been rejected
	ApplicationStatusRejected = "rejected"
)

// ValidApplicationStatus checks a status string against the application status enum.
// Transition order is intentionally not constrained, only membership is.
func ValidApplicationStatus(s string) bool {
	switch s {
	case ApplicationStatusPending, ApplicationStatusReviewing, ApplicationStatusInterviewed,
		ApplicationStatusOffered, ApplicationStatusHired, ApplicationStatusRejected:
		return true
	}
	return false
}

// JobApplication represents a candidate's application to a job posting.
// The (job_posting_id, applicant_id) pair is unique at the store level,
// duplicate submissions must surface as a conflict.
type JobApplication struct {
	ID        uint      `gorm:"primaryKey;autoIncrement;->" json:"id"`
	AppliedAt time.Time `gorm:"type:timestamp;default:CURRENT_TIMESTAMP;->" json:"applied_at"`
	Status    string    `gorm:"type:text;default:'pending'" json:"status"`

	JobPostingID uint       `gorm:"not null;uniqueIndex:idx_posting_applicant;<-:create" json:"job_posting_id"`
	JobPosting   JobPosting `gorm:"foreignKey:JobPostingID;references:ID" json:"-"`

	// ApplicantID references Employee.UserID
	ApplicantID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_posting_applicant;<-:create" json:"applicant_id"`
	Applicant   Employee  `gorm:"foreignKey:ApplicantID;references:UserID" json:"-"`

	// ConversationID is set when the application is linked to a messaging
	// thread, and never changes afterwards.
	ConversationID *uint         `gorm:"index" json:"conversation_id,omitempty"`
	Conversation   *Conversation `gorm:"foreignKey:ConversationID;references:ID" json:"-"`

	CoverMessage string  `gorm:"type:text" json:"cover_message"`
	ResumeURL    *string `gorm:"type:text" json:"resume_url,omitempty"`
}
