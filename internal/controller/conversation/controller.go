// Package conversation provides HTTP handlers for messaging operations.
package conversation

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"HandyHire-backend/internal/apperr"
	"HandyHire-backend/internal/database"
	"HandyHire-backend/internal/messaging"
	"HandyHire-backend/internal/notify"
	"HandyHire-backend/internal/utilities"
)

// ConversationController handles conversation and message endpoints
type ConversationController struct {
	DB        *database.DBinstanceStruct
	Messaging *messaging.Manager
}

// NewConversationController creates a new instance of ConversationController with the provided database connection.
func NewConversationController(db *database.DBinstanceStruct, notifier notify.Dispatcher) *ConversationController {
	return &ConversationController{
		DB:        db,
		Messaging: messaging.NewManager(db, notifier),
	}
}

type directRequest struct {
	EmployerID   uuid.UUID `json:"employer_id" binding:"required"`
	EmployeeID   uuid.UUID `json:"employee_id" binding:"required"`
	FirstMessage string    `json:"first_message"`
}

type postMessageRequest struct {
	Content string `json:"content"`
	messaging.SenderDeclaration
}

// DirectHandler finds or creates the direct conversation between an employer
// and an employee.
// @Summary Find or create direct conversation
// @Description Only staff of the employer can open a direct conversation. Returns the existing conversation for the pair if there is one.
// @Tags Conversation
// @Accept json
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Param conversation body directRequest true "Conversation pair and first message"
// @Success 200 {object} model.Conversation "Existing conversation for the pair"
// @Success 201 {object} model.Conversation "Newly created conversation"
// @Failure 400 {object} utilities.ErrorResponse "Invalid request body or empty first message"
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Failure 403 {object} utilities.ErrorResponse "Not staff of the employer"
// @Failure 404 {object} utilities.ErrorResponse "Employee not found"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /conversation/direct [post]
func (cc *ConversationController) DirectHandler(c *gin.Context) {
	user, err := utilities.ExtractUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, utilities.ErrorResponse{Error: err.Error()})
		return
	}

	req := directRequest{}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{
			Error: fmt.Sprintf("Invalid request body: %s", err.Error()),
		})
		return
	}

	conv, isNew, err := cc.Messaging.FindOrCreateDirectConversation(user, req.EmployerID, req.EmployeeID, req.FirstMessage)
	if err != nil {
		c.JSON(apperr.HTTPStatus(err), utilities.ErrorResponse{Error: apperr.Message(err)})
		return
	}

	status := http.StatusOK
	if isNew {
		status = http.StatusCreated
	}
	c.JSON(status, conv)
}

// PostMessageHandler appends a message to a conversation.
// @Summary Post message
// @Description The caller must be a participant of the conversation on the declared side.
// @Tags Conversation
// @Accept json
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Param id path int true "Conversation ID"
// @Param message body postMessageRequest true "Message content and sender declaration"
// @Success 201 {object} model.Message "Created message"
// @Failure 400 {object} utilities.ErrorResponse "Invalid request body or empty content"
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Failure 403 {object} utilities.ErrorResponse "Sender declaration does not match the caller"
// @Failure 404 {object} utilities.ErrorResponse "Conversation not found"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /conversation/{id}/message [post]
func (cc *ConversationController) PostMessageHandler(c *gin.Context) {
	user, err := utilities.ExtractUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, utilities.ErrorResponse{Error: err.Error()})
		return
	}

	convID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{Error: "Invalid conversation id"})
		return
	}

	req := postMessageRequest{}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{
			Error: fmt.Sprintf("Invalid request body: %s", err.Error()),
		})
		return
	}

	msg, err := cc.Messaging.PostMessage(user, uint(convID), req.Content, req.SenderDeclaration)
	if err != nil {
		c.JSON(apperr.HTTPStatus(err), utilities.ErrorResponse{Error: apperr.Message(err)})
		return
	}

	c.JSON(http.StatusCreated, msg)
}

// InboxHandler lists the caller's conversations, most recently active first.
// @Summary List my conversations
// @Description Conversations are ordered by last activity and carry their latest message.
// @Tags Conversation
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Success 200 {array} messaging.ConversationPreview "Conversations of the caller"
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Failure 404 {object} utilities.ErrorResponse "Employee profile not found"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /conversation/me [get]
func (cc *ConversationController) InboxHandler(c *gin.Context) {
	user, err := utilities.ExtractUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, utilities.ErrorResponse{Error: err.Error()})
		return
	}

	previews, err := cc.Messaging.Inbox(user)
	if err != nil {
		c.JSON(apperr.HTTPStatus(err), utilities.ErrorResponse{Error: apperr.Message(err)})
		return
	}

	c.JSON(http.StatusOK, previews)
}

// MessagesHandler lists a conversation's messages in display order.
// @Summary List conversation messages
// @Description Only participants can read a conversation. Non-participants get 404.
// @Tags Conversation
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Param id path int true "Conversation ID"
// @Success 200 {array} model.Message "Messages oldest first"
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Failure 404 {object} utilities.ErrorResponse "Conversation not found"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /conversation/{id}/message [get]
func (cc *ConversationController) MessagesHandler(c *gin.Context) {
	user, err := utilities.ExtractUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, utilities.ErrorResponse{Error: err.Error()})
		return
	}

	convID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{Error: "Invalid conversation id"})
		return
	}

	msgs, err := cc.Messaging.Messages(user, uint(convID))
	if err != nil {
		c.JSON(apperr.HTTPStatus(err), utilities.ErrorResponse{Error: apperr.Message(err)})
		return
	}

	c.JSON(http.StatusOK, msgs)
}
