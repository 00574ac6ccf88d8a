package model

import (
	"github.com/google/uuid"
)

var (
	// StatusPending indicates that the employer has not been reviewed by an admin yet
	StatusPending = "pending"
	// StatusVerified indicates that the employer passed admin review
	StatusVerified = "verified"
	// StatusRejected indicates that the employer failed admin review
	StatusRejected = "rejected"
)

// EditableEmployerInfo is the part of an employer profile owners may edit
type EditableEmployerInfo struct {
	Name         string  `gorm:"type:text" json:"name"`
	ContactEmail *string `gorm:"type:text" json:"contact_email"`
	Overview     string  `gorm:"type:text" json:"overview"`
	Industry     string  `gorm:"type:text" json:"industry"`
	Website      *string `gorm:"type:text" json:"website,omitempty"`
}

// Employer is a company account that posts jobs and employs staff.
type Employer struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()" json:"id"`
	EditableEmployerInfo
	VerifiedStatus string `gorm:"type:text;default:'pending'" json:"verified_status"`

	Staff       []Employee   `gorm:"foreignKey:EmployerID;references:ID" json:"staff,omitempty"`
	JobPostings []JobPosting `gorm:"foreignKey:EmployerID;references:ID" json:"-"`

	Conversations []*Conversation `gorm:"many2many:conversation_employers;" json:"-"`
}
