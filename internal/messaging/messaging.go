// Package messaging owns conversations and messages: creation, participant
// authorization, the at-most-one-conversation-per-pair invariant, and
// recency bookkeeping for inbox views.
package messaging

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"HandyHire-backend/internal/apperr"
	"HandyHire-backend/internal/authz"
	"HandyHire-backend/internal/database"
	"HandyHire-backend/internal/model"
	"HandyHire-backend/internal/notify"
)

// Manager bundles the DB handle and the notification dispatcher the
// messaging operations need.
type Manager struct {
	DB       *database.DBinstanceStruct
	Notifier notify.Dispatcher
}

// NewManager creates a new messaging Manager.
func NewManager(db *database.DBinstanceStruct, notifier notify.Dispatcher) *Manager {
	return &Manager{DB: db, Notifier: notifier}
}

// SenderDeclaration carries which side of a conversation the caller claims
// to act as. Exactly one of EmployerID/EmployeeID must be set, matching
// SenderType.
type SenderDeclaration struct {
	SenderType string     `json:"sender_type" binding:"required"`
	EmployerID *uuid.UUID `json:"employer_id,omitempty"`
	EmployeeID *uuid.UUID `json:"employee_id,omitempty"`
}

// ConversationPreview is a conversation plus its latest message, the shape
// inbox views render.
type ConversationPreview struct {
	Conversation model.Conversation `json:"conversation"`
	LastMessage  *model.Message     `json:"last_message,omitempty"`
}

// EnsureConversation finds the conversation for an (employer, employee) pair
// or creates it inside the caller's transaction: the conversation row, both
// participant join rows and the pair key are written together. A concurrent
// creator for the same pair makes the key insert fail on its unique index,
// which aborts the caller's transaction; callers decide whether to retry the
// lookup (FindOrCreateDirectConversation) or surface a conflict
// (the application-submission transaction).
func EnsureConversation(tx *gorm.DB, employerID uuid.UUID, employeeID uuid.UUID) (model.Conversation, bool, error) {
	var key model.ConversationKey
	err := tx.Where("employer_id = ? AND employee_id = ?", employerID, employeeID).First(&key).Error
	if err == nil {
		var conv model.Conversation
		if err := tx.First(&conv, "id = ?", key.ConversationID).Error; err != nil {
			return model.Conversation{}, false, err
		}
		return conv, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Conversation{}, false, err
	}

	conv := model.Conversation{UpdatedAt: time.Now().UTC()}
	if err := tx.Create(&conv).Error; err != nil {
		return model.Conversation{}, false, err
	}
	if err := tx.Exec(
		"INSERT INTO conversation_employers (conversation_id, employer_id) VALUES (?, ?)",
		conv.ID, employerID,
	).Error; err != nil {
		return model.Conversation{}, false, err
	}
	if err := tx.Exec(
		"INSERT INTO conversation_employees (conversation_id, employee_id) VALUES (?, ?)",
		conv.ID, employeeID,
	).Error; err != nil {
		return model.Conversation{}, false, err
	}

	// The unique index on (employer_id, employee_id) is the real guard; the
	// lookup above is an optimization.
	if err := tx.Create(&model.ConversationKey{
		ConversationID: conv.ID,
		EmployerID:     employerID,
		EmployeeID:     employeeID,
	}).Error; err != nil {
		return model.Conversation{}, false, err
	}

	return conv, true, nil
}

// AppendMessage writes an immutable message and bumps the conversation's
// recency marker to the message timestamp, inside the caller's transaction.
func AppendMessage(tx *gorm.DB, conversationID uint, senderID uuid.UUID, senderType string, content string) (model.Message, error) {
	msg := model.Message{
		ConversationID: conversationID,
		SenderID:       senderID,
		SenderType:     senderType,
		Content:        content,
		CreatedAt:      time.Now().UTC(),
	}
	if err := tx.Create(&msg).Error; err != nil {
		return model.Message{}, err
	}
	if err := tx.Model(&model.Conversation{}).
		Where("id = ?", conversationID).
		UpdateColumn("updated_at", msg.CreatedAt).Error; err != nil {
		return model.Message{}, err
	}
	return msg, nil
}

// FindOrCreateDirectConversation is the employer-outreach entry point: staff
// of employerID open (or continue) the thread with employeeID and post
// firstMessage. Two concurrent callers for the same pair converge on a single
// conversation, the loser observes the winner's row and appends to it.
func (m *Manager) FindOrCreateDirectConversation(user model.User, employerID uuid.UUID, employeeID uuid.UUID, firstMessage string) (*model.Conversation, bool, error) {
	if firstMessage == "" {
		return nil, false, apperr.New(apperr.ErrInvalidArgument, "Message content must not be empty")
	}

	if err := authz.RequireStaffOf(m.DB.DB, user.ID, employerID); err != nil {
		return nil, false, err
	}

	var employee model.Employee
	if err := m.DB.Where("user_id = ?", employeeID).First(&employee).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, apperr.New(apperr.ErrNotFound, "Employee not found")
		}
		return nil, false, err
	}

	var conv model.Conversation
	isNew := false
	create := func() error {
		return m.DB.Transaction(func(tx *gorm.DB) error {
			var err error
			conv, isNew, err = EnsureConversation(tx, employerID, employeeID)
			if err != nil {
				return err
			}
			_, err = AppendMessage(tx, conv.ID, user.ID, model.SenderTypeEmployer, firstMessage)
			return err
		})
	}

	if err := create(); err != nil {
		if !database.IsUniqueViolation(err) {
			return nil, false, err
		}
		// Lost the creation race: the winner's key row exists now, re-run to
		// pick it up and append there.
		if err := create(); err != nil {
			if database.IsUniqueViolation(err) {
				return nil, false, apperr.New(apperr.ErrConflict, "Conversation for this pair already exists")
			}
			return nil, false, err
		}
	}

	m.notifyEmployees(conv.ID, user, firstMessage)
	return &conv, isNew, nil
}

// PostMessage validates the sender declaration against conversation
// membership and appends an immutable message. Non-participants get the same
// "Conversation not found" answer as callers of unknown conversations, so
// membership is never leaked.
func (m *Manager) PostMessage(user model.User, conversationID uint, content string, decl SenderDeclaration) (*model.Message, error) {
	if content == "" {
		return nil, apperr.New(apperr.ErrInvalidArgument, "Message content must not be empty")
	}

	var conv model.Conversation
	if err := m.DB.First(&conv, "id = ?", conversationID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.New(apperr.ErrNotFound, "Conversation not found")
		}
		return nil, err
	}

	employee, err := authz.ResolveEmployee(m.DB.DB, user.ID)
	if err != nil {
		return nil, err
	}

	if (decl.EmployerID == nil) == (decl.EmployeeID == nil) {
		return nil, apperr.New(apperr.ErrInvalidArgument, "Exactly one of employer_id or employee_id must be declared")
	}

	switch decl.SenderType {
	case model.SenderTypeEmployer:
		if decl.EmployerID == nil {
			return nil, apperr.New(apperr.ErrInvalidArgument, "employer_id must be declared for an EMPLOYER sender")
		}
		if employee.EmployerID == nil || *employee.EmployerID != *decl.EmployerID {
			return nil, apperr.New(apperr.ErrForbidden, "You are not staff of the declared employer")
		}
		ok, err := m.employerParticipates(conversationID, *decl.EmployerID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, apperr.New(apperr.ErrNotFound, "Conversation not found")
		}
	case model.SenderTypeEmployee:
		if decl.EmployeeID == nil {
			return nil, apperr.New(apperr.ErrInvalidArgument, "employee_id must be declared for an EMPLOYEE sender")
		}
		if user.ID != *decl.EmployeeID {
			return nil, apperr.New(apperr.ErrForbidden, "You may only send as yourself")
		}
		ok, err := m.employeeParticipates(conversationID, *decl.EmployeeID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, apperr.New(apperr.ErrNotFound, "Conversation not found")
		}
	default:
		return nil, apperr.New(apperr.ErrInvalidArgument, "sender_type must be EMPLOYER or EMPLOYEE")
	}

	var msg model.Message
	err = m.DB.Transaction(func(tx *gorm.DB) error {
		var err error
		msg, err = AppendMessage(tx, conversationID, user.ID, decl.SenderType, content)
		return err
	})
	if err != nil {
		return nil, err
	}

	// Post-commit: notify everyone on the other side with a known address.
	if decl.SenderType == model.SenderTypeEmployer {
		m.notifyEmployees(conversationID, user, content)
	} else {
		m.notifyEmployers(conversationID, user)
	}

	return &msg, nil
}

// Inbox lists the conversations the principal participates in, most recently
// active first, each with its latest message preview.
func (m *Manager) Inbox(user model.User) ([]ConversationPreview, error) {
	employee, err := authz.ResolveEmployee(m.DB.DB, user.ID)
	if err != nil {
		return nil, err
	}

	var convs []model.Conversation
	q := m.DB.Model(&model.Conversation{})
	if employee.IsStaff() {
		q = q.Joins("JOIN conversation_employers ce ON ce.conversation_id = conversations.id").
			Where("ce.employer_id = ?", *employee.EmployerID)
	} else {
		q = q.Joins("JOIN conversation_employees ce ON ce.conversation_id = conversations.id").
			Where("ce.employee_id = ?", user.ID)
	}
	if err := q.Order("conversations.updated_at DESC").Find(&convs).Error; err != nil {
		return nil, err
	}

	previews := make([]ConversationPreview, 0, len(convs))
	for _, conv := range convs {
		preview := ConversationPreview{Conversation: conv}
		var last model.Message
		err := m.DB.Where("conversation_id = ?", conv.ID).
			Order("created_at DESC, id DESC").
			First(&last).Error
		if err == nil {
			preview.LastMessage = &last
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		previews = append(previews, preview)
	}
	return previews, nil
}

// Messages lists a conversation's messages in display order. Only
// participants may read; everyone else gets NotFound.
func (m *Manager) Messages(user model.User, conversationID uint) ([]model.Message, error) {
	var conv model.Conversation
	if err := m.DB.First(&conv, "id = ?", conversationID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.New(apperr.ErrNotFound, "Conversation not found")
		}
		return nil, err
	}

	employee, err := authz.ResolveEmployee(m.DB.DB, user.ID)
	if err != nil {
		return nil, err
	}

	participates := false
	if employee.IsStaff() {
		participates, err = m.employerParticipates(conversationID, *employee.EmployerID)
	} else {
		participates, err = m.employeeParticipates(conversationID, user.ID)
	}
	if err != nil {
		return nil, err
	}
	if !participates {
		return nil, apperr.New(apperr.ErrNotFound, "Conversation not found")
	}

	var msgs []model.Message
	if err := m.DB.Where("conversation_id = ?", conversationID).
		Order("created_at ASC, id ASC").
		Find(&msgs).Error; err != nil {
		return nil, err
	}
	return msgs, nil
}

func (m *Manager) employerParticipates(conversationID uint, employerID uuid.UUID) (bool, error) {
	var count int64
	err := m.DB.Table("conversation_employers").
		Where("conversation_id = ? AND employer_id = ?", conversationID, employerID).
		Count(&count).Error
	return count > 0, err
}

func (m *Manager) employeeParticipates(conversationID uint, employeeID uuid.UUID) (bool, error) {
	var count int64
	err := m.DB.Table("conversation_employees").
		Where("conversation_id = ? AND employee_id = ?", conversationID, employeeID).
		Count(&count).Error
	return count > 0, err
}

// notifyEmployees fans a new-message notification out to every employee
// participant with a known contact address.
func (m *Manager) notifyEmployees(conversationID uint, sender model.User, _ string) {
	var employees []model.Employee
	if err := m.DB.Preload("User").
		Joins("JOIN conversation_employees ce ON ce.employee_id = employees.user_id").
		Where("ce.conversation_id = ?", conversationID).
		Find(&employees).Error; err != nil {
		return
	}
	for _, e := range employees {
		addr := contactAddress(e.ContactEmail, e.User.Email)
		if addr == "" {
			continue
		}
		m.Notifier.Send(notify.KindNewMessage, addr, notify.Payload{
			"sender_name":     sender.Username,
			"conversation_id": fmt.Sprint(conversationID),
		})
	}
}

// notifyEmployers fans a new-message notification out to every employer
// participant with a known contact address.
func (m *Manager) notifyEmployers(conversationID uint, sender model.User) {
	var employers []model.Employer
	if err := m.DB.
		Joins("JOIN conversation_employers ce ON ce.employer_id = employers.id").
		Where("ce.conversation_id = ?", conversationID).
		Find(&employers).Error; err != nil {
		return
	}
	for _, e := range employers {
		if e.ContactEmail == nil || *e.ContactEmail == "" {
			continue
		}
		m.Notifier.Send(notify.KindNewMessage, *e.ContactEmail, notify.Payload{
			"sender_name":     sender.Username,
			"conversation_id": fmt.Sprint(conversationID),
		})
	}
}

func contactAddress(primary *string, fallback *string) string {
	if primary != nil && *primary != "" {
		return *primary
	}
	if fallback != nil {
		return *fallback
	}
	return ""
}
