package usecase

import (
	"context"
	"strings"
	"time"

	"gringochat/internal/domain/entity"
	"gringochat/internal/domain/repository"
	"gringochat/pkg/errors"
	"gringochat/pkg/logger"
)

var validMessageKinds = map[string]bool{
	entity.MessageText:     true,
	entity.MessageImage:    true,
	entity.MessageFile:     true,
	entity.MessageSystem:   true,
	entity.MessageLocation: true,
}

type MessageUseCase struct {
	conversationRepo repository.ConversationRepository
	messageRepo      repository.MessageRepository
	unread           *UnreadUseCase
	bridge           *NotificationBridge
}

func NewMessageUseCase(
	conversationRepo repository.ConversationRepository,
	messageRepo repository.MessageRepository,
	unread *UnreadUseCase,
	bridge *NotificationBridge,
) *MessageUseCase {
	return &MessageUseCase{
		conversationRepo: conversationRepo,
		messageRepo:      messageRepo,
		unread:           unread,
		bridge:           bridge,
	}
}

type SendMessageInput struct {
	ConversationID string
	SenderID       string
	Body           string
	Kind           string
	Attachments    []entity.Attachment
}

func (uc *MessageUseCase) Send(ctx context.Context, input SendMessageInput) (*entity.Message, error) {
	kind := input.Kind
	if kind == "" {
		kind = entity.MessageText
	}
	if !validMessageKinds[kind] {
		return nil, errors.InvalidArgument("Unknown message kind", nil)
	}
	if kind == entity.MessageText && strings.TrimSpace(input.Body) == "" {
		return nil, errors.InvalidArgument("Text messages must have a body", nil)
	}

	conversation, err := uc.conversationRepo.GetByID(ctx, input.ConversationID)
	if err != nil {
		return nil, err
	}

	if conversation.Status != entity.StatusActive {
		return nil, errors.Conflict("Conversation is not active")
	}

	// SYSTEM messages come from back-office automation, not a participant.
	if kind != entity.MessageSystem && !conversation.IsParticipant(input.SenderID) {
		logger.Warn("Send rejected: principal %s is not a participant of conversation %s", input.SenderID, input.ConversationID)
		return nil, errors.Forbidden("Sender is not a participant of this conversation", nil)
	}

	now := time.Now()
	message := &entity.Message{
		ConversationID: input.ConversationID,
		SenderID:       input.SenderID,
		Body:           input.Body,
		Kind:           kind,
		Attachments:    input.Attachments,
		// Self-read-on-send: the sender has, by definition, seen their own
		// message.
		ReadBy:    map[string]time.Time{input.SenderID: now},
		CreatedAt: now,
	}

	if err := uc.messageRepo.Create(ctx, message); err != nil {
		logger.Error("Send: failed to persist message for conversation %s: %v", input.ConversationID, err)
		return nil, err
	}

	// The message is durable from here on. Bookkeeping runs on a context
	// detached from caller cancellation so counters are never left
	// half-updated by a caller that went away.
	bg := context.WithoutCancel(ctx)

	if err := uc.conversationRepo.SetLastMessage(bg, conversation.ID, message.ID, message.Body, now); err != nil {
		logger.Error("Send: failed to stamp last message on conversation %s: %v", conversation.ID, err)
		return nil, err
	}

	if err := uc.unread.OnMessageSent(bg, conversation.ID, input.SenderID, conversation.ParticipantIDs); err != nil {
		logger.Error("Send: failed to increment unread counters for conversation %s: %v", conversation.ID, err)
		return nil, err
	}

	uc.bridge.Fanout(bg, conversation, message)

	return message, nil
}

// MarkRead acknowledges the whole backlog for one participant: counter
// reset first, then bulk receipt stamping. Re-invoking is a no-op.
func (uc *MessageUseCase) MarkRead(ctx context.Context, conversationID, principalID string) error {
	conversation, err := uc.conversationRepo.GetByID(ctx, conversationID)
	if err != nil {
		return err
	}

	if !conversation.IsParticipant(principalID) {
		return errors.Forbidden("Principal is not a participant of this conversation", nil)
	}

	now := time.Now()
	bg := context.WithoutCancel(ctx)

	if err := uc.unread.OnRead(bg, conversationID, principalID, now); err != nil {
		return err
	}

	stamped, err := uc.messageRepo.MarkRead(bg, conversationID, principalID, now)
	if err != nil {
		return err
	}
	if stamped > 0 {
		logger.Debug("Stamped %d read receipts for principal %s in conversation %s", stamped, principalID, conversationID)
	}

	return nil
}

func (uc *MessageUseCase) List(ctx context.Context, conversationID, principalID string, limit, offset int) ([]*entity.Message, int64, error) {
	conversation, err := uc.conversationRepo.GetByID(ctx, conversationID)
	if err != nil {
		return nil, 0, err
	}

	if !conversation.IsParticipant(principalID) {
		return nil, 0, errors.Forbidden("Principal is not a participant of this conversation", nil)
	}

	return uc.messageRepo.ListByConversation(ctx, conversationID, limit, offset)
}
