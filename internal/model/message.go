package model

import (
	"time"

	"github.com/google/uuid"
)

var (
	// SenderTypeEmployer tags a message sent by an employer-side participant
	SenderTypeEmployer = "EMPLOYER"
	// SenderTypeEmployee tags a message sent by an employee-side participant
	SenderTypeEmployee = "EMPLOYEE"
)

// Message is one immutable entry in a conversation. SenderID alone is
// ambiguous because it draws from two identity spaces, SenderType is the
// required discriminant. Display order is (created_at, id) ascending; the id
// is the tie-break when the store coarsens concurrent timestamps.
type Message struct {
	ID             uint         `gorm:"primaryKey;autoIncrement;->" json:"id"`
	ConversationID uint         `gorm:"not null;index;<-:create" json:"conversation_id"`
	Conversation   Conversation `gorm:"foreignKey:ConversationID;references:ID" json:"-"`

	SenderID   uuid.UUID `gorm:"type:uuid;not null;<-:create" json:"sender_id"`
	SenderType string    `gorm:"type:text;not null;<-:create" json:"sender_type"`
	Content    string    `gorm:"type:text;not null;<-:create" json:"content"`
	CreatedAt  time.Time `gorm:"type:timestamp;not null" json:"created_at"`
}
