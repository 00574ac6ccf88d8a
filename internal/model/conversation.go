package model

import (
	"time"

	"github.com/google/uuid"
)

// Conversation is a persistent messaging thread between employers and
// employees. UpdatedAt is the recency marker inbox views order by; it is
// bumped to the created_at of every appended message.
type Conversation struct {
	ID        uint      `gorm:"primaryKey;autoIncrement;->" json:"id"`
	CreatedAt time.Time `gorm:"type:timestamp;default:CURRENT_TIMESTAMP;->" json:"created_at"`
	UpdatedAt time.Time `gorm:"type:timestamp" json:"updated_at"`

	Employers []*Employer `gorm:"many2many:conversation_employers;foreignKey:ID;joinForeignKey:ConversationID;References:ID;joinReferences:EmployerID" json:"employers,omitempty"`
	Employees []*Employee `gorm:"many2many:conversation_employees;foreignKey:ID;joinForeignKey:ConversationID;References:UserID;joinReferences:EmployeeID" json:"employees,omitempty"`

	Messages []Message `gorm:"foreignKey:ConversationID;constraint:OnDelete:CASCADE" json:"-"`
}

// ConversationKey is the store-level guard for the at-most-one-conversation
// per (employer, employee) pair invariant. It is written in the same
// transaction as the conversation it points to; the composite unique index is
// what makes concurrent duplicate-pair creation lose with a constraint
// violation instead of a second thread.
type ConversationKey struct {
	ID             uint         `gorm:"primaryKey;autoIncrement;->" json:"id"`
	ConversationID uint         `gorm:"not null;index" json:"conversation_id"`
	Conversation   Conversation `gorm:"foreignKey:ConversationID;references:ID;constraint:OnDelete:CASCADE" json:"-"`

	EmployerID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_conversation_pair" json:"employer_id"`
	EmployeeID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_conversation_pair" json:"employee_id"`
}
