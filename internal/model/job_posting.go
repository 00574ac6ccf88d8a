package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

var (
	// PostingStatusDraft indicates that the posting is not visible to candidates yet
	PostingStatusDraft = "DRAFT"
	// PostingStatusActive indicates that the posting accepts applications
	PostingStatusActive = "ACTIVE"
	// PostingStatusPaused indicates that the posting is temporarily hidden
	PostingStatusPaused = "PAUSED"
	// PostingStatusClosed indicates that the posting is closed without a hire
	PostingStatusClosed = "CLOSED"
	// PostingStatusFilled indicates that the opening has been filled
	PostingStatusFilled = "FILLED"
)

// ValidPostingStatus checks a status string against the posting status enum.
func ValidPostingStatus(s string) bool {
	switch s {
	case PostingStatusDraft, PostingStatusActive, PostingStatusPaused, PostingStatusClosed, PostingStatusFilled:
		return true
	}
	return false
}

// EditableJobPostingInfo is part of job posting that can be edited
type EditableJobPostingInfo struct {
	Title    string         `gorm:"type:text" json:"title"`
	Desc     string         `gorm:"type:text" json:"desc"`
	Req      string         `gorm:"type:text" json:"req"`
	Location string         `gorm:"type:text" json:"location"`
	Type     string         `gorm:"type:text" json:"type"`
	Salary   string         `gorm:"type:text" json:"salary"`
	Tags     pq.StringArray `gorm:"type:text[]" json:"tags"`
	Expiring *time.Time     `gorm:"type:timestamp" json:"expiring,omitempty"`
}

// JobPosting is gorm model for store job posting data in DB
type JobPosting struct {
	ID         uint      `gorm:"primaryKey;autoIncrement;->" json:"id"`
	EmployerID uuid.UUID `gorm:"type:uuid;not null;index;<-:create" json:"employer_id"`
	Employer   Employer  `gorm:"foreignKey:EmployerID;references:ID" json:"-"`

	// PostedByID references the staff employee who created the posting
	PostedByID uuid.UUID `gorm:"type:uuid;not null;<-:create" json:"posted_by_id"`
	PostedBy   Employee  `gorm:"foreignKey:PostedByID;references:UserID" json:"-"`

	EditableJobPostingInfo
	Status   string    `gorm:"type:text;default:'DRAFT'" json:"status"`
	PostTime time.Time `gorm:"type:timestamp;default:CURRENT_TIMESTAMP;->" json:"post_time"`

	Applications []JobApplication `gorm:"foreignKey:JobPostingID;constraint:OnDelete:CASCADE" json:"-"`
}
