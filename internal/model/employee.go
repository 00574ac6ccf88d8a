package model

import (
	"github.com/google/uuid"
	"github.com/lib/pq"
)

// EditableEmployeeInfo is the part of an employee profile the owner may edit
type EditableEmployeeInfo struct {
	FirstName     string         `gorm:"type:text" json:"first_name"`
	LastName      string         `gorm:"type:text" json:"last_name"`
	TradeCategory *string        `gorm:"type:text" json:"trade_category,omitempty"`
	Skills        pq.StringArray `gorm:"type:text[]" json:"skills"`
	ContactEmail  *string        `gorm:"type:text" json:"contact_email,omitempty"`
}

// Employee is an individual account. EmployerID set means the employee is
// staff of that employer; nil means a free-floating candidate.
type Employee struct {
	UserID uuid.UUID `gorm:"type:uuid;primaryKey" json:"user_id"`
	User   User      `gorm:"foreignKey:UserID;references:ID;constraint:OnDelete:CASCADE" json:"user"`
	EditableEmployeeInfo

	EmployerID *uuid.UUID `gorm:"type:uuid;index" json:"employer_id,omitempty"`
	Employer   *Employer  `gorm:"foreignKey:EmployerID;references:ID" json:"-"`

	Conversations []*Conversation `gorm:"many2many:conversation_employees;foreignKey:UserID;joinForeignKey:EmployeeID;References:ID;joinReferences:ConversationID" json:"-"`
}

// IsStaff reports whether the employee is on an employer's roster.
func (e *Employee) IsStaff() bool {
	return e.EmployerID != nil
}
