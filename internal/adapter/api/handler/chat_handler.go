package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"gringochat/internal/domain/entity"
	"gringochat/internal/usecase"
	"gringochat/pkg/response"
)

type ChatHandler struct {
	conversationUseCase *usecase.ConversationUseCase
	messageUseCase      *usecase.MessageUseCase
}

func NewChatHandler(conversationUseCase *usecase.ConversationUseCase, messageUseCase *usecase.MessageUseCase) *ChatHandler {
	return &ChatHandler{
		conversationUseCase: conversationUseCase,
		messageUseCase:      messageUseCase,
	}
}

type createConversationRequest struct {
	ParticipantIDs []string               `json:"participant_ids" validate:"required,min=1"`
	Kind           string                 `json:"kind" validate:"omitempty,oneof=DIRECT SUPPORT DISPATCH"`
	Metadata       map[string]interface{} `json:"metadata,omitempty"`
}

type sendMessageRequest struct {
	Body        string              `json:"body"`
	Kind        string              `json:"kind" validate:"omitempty,oneof=TEXT IMAGE FILE SYSTEM LOCATION"`
	Attachments []attachmentRequest `json:"attachments,omitempty"`
}

type attachmentRequest struct {
	URL  string `json:"url" validate:"required,url"`
	Kind string `json:"kind" validate:"required"`
	Name string `json:"name"`
	Size int64  `json:"size"`
}

type setStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=ACTIVE CLOSED DELETED"`
}

type addParticipantRequest struct {
	PrincipalID string `json:"principal_id" validate:"required"`
}

// CreateConversation creates a conversation for the given participants. The
// authenticated caller is always included.
func (h *ChatHandler) CreateConversation(c echo.Context) error {
	var req createConversationRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}

	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	principalID := c.Get("uid").(string)

	participantIDs := req.ParticipantIDs
	found := false
	for _, id := range participantIDs {
		if id == principalID {
			found = true
			break
		}
	}
	if !found {
		participantIDs = append([]string{principalID}, participantIDs...)
	}

	conversation, err := h.conversationUseCase.Create(c.Request().Context(), usecase.CreateConversationInput{
		ParticipantIDs: participantIDs,
		Kind:           req.Kind,
		Metadata:       req.Metadata,
	})
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, conversation)
}

// ListConversations lists the caller's active conversations, newest first.
func (h *ChatHandler) ListConversations(c echo.Context) error {
	principalID := c.Get("uid").(string)

	conversations, err := h.conversationUseCase.ListForPrincipal(c.Request().Context(), principalID)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, conversations)
}

func (h *ChatHandler) GetConversation(c echo.Context) error {
	conversationID := c.Param("id")

	conversation, err := h.conversationUseCase.Get(c.Request().Context(), conversationID)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, conversation)
}

func (h *ChatHandler) DeleteConversation(c echo.Context) error {
	conversationID := c.Param("id")

	if err := h.conversationUseCase.Delete(c.Request().Context(), conversationID); err != nil {
		return response.Error(c, err)
	}

	return c.NoContent(http.StatusOK)
}

func (h *ChatHandler) SetStatus(c echo.Context) error {
	conversationID := c.Param("id")

	var req setStatusRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}

	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	if err := h.conversationUseCase.SetStatus(c.Request().Context(), conversationID, req.Status); err != nil {
		return response.Error(c, err)
	}

	return c.NoContent(http.StatusOK)
}

func (h *ChatHandler) AddParticipant(c echo.Context) error {
	conversationID := c.Param("id")

	var req addParticipantRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}

	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	conversation, err := h.conversationUseCase.AddParticipant(c.Request().Context(), conversationID, req.PrincipalID)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, conversation)
}

func (h *ChatHandler) RemoveParticipant(c echo.Context) error {
	conversationID := c.Param("id")
	principalID := c.Param("principalId")

	if err := h.conversationUseCase.RemoveParticipant(c.Request().Context(), conversationID, principalID); err != nil {
		return response.Error(c, err)
	}

	return c.NoContent(http.StatusOK)
}

// SendMessage sends a message to a conversation
func (h *ChatHandler) SendMessage(c echo.Context) error {
	conversationID := c.Param("id")
	principalID := c.Get("uid").(string)

	var req sendMessageRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}

	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	attachments := make([]entity.Attachment, 0, len(req.Attachments))
	for _, a := range req.Attachments {
		attachments = append(attachments, entity.Attachment{
			URL:  a.URL,
			Kind: a.Kind,
			Name: a.Name,
			Size: a.Size,
		})
	}

	message, err := h.messageUseCase.Send(c.Request().Context(), usecase.SendMessageInput{
		ConversationID: conversationID,
		SenderID:       principalID,
		Body:           req.Body,
		Kind:           req.Kind,
		Attachments:    attachments,
	})
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, message)
}

// ListMessages returns a conversation's messages ordered oldest first.
func (h *ChatHandler) ListMessages(c echo.Context) error {
	conversationID := c.Param("id")
	principalID := c.Get("uid").(string)

	limit := 50
	offset := 0

	if limitStr := c.QueryParam("limit"); limitStr != "" {
		if parsedLimit, err := strconv.Atoi(limitStr); err == nil && parsedLimit > 0 {
			limit = parsedLimit
		}
	}

	if offsetStr := c.QueryParam("offset"); offsetStr != "" {
		if parsedOffset, err := strconv.Atoi(offsetStr); err == nil && parsedOffset >= 0 {
			offset = parsedOffset
		}
	}

	messages, total, err := h.messageUseCase.List(c.Request().Context(), conversationID, principalID, limit, offset)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]interface{}{
		"items": messages,
		"total": total,
	})
}

// MarkRead acknowledges the caller's whole backlog in the conversation.
func (h *ChatHandler) MarkRead(c echo.Context) error {
	conversationID := c.Param("id")
	principalID := c.Get("uid").(string)

	if err := h.messageUseCase.MarkRead(c.Request().Context(), conversationID, principalID); err != nil {
		return response.Error(c, err)
	}

	return c.NoContent(http.StatusOK)
}
