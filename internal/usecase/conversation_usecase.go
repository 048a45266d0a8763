package usecase

import (
	"context"
	"time"

	"gringochat/internal/domain/entity"
	"gringochat/internal/domain/repository"
	"gringochat/pkg/errors"
	"gringochat/pkg/logger"
)

type ConversationUseCase struct {
	conversationRepo repository.ConversationRepository
	messageRepo      repository.MessageRepository
	identity         IdentityResolver
}

func NewConversationUseCase(
	conversationRepo repository.ConversationRepository,
	messageRepo repository.MessageRepository,
	identity IdentityResolver,
) *ConversationUseCase {
	return &ConversationUseCase{
		conversationRepo: conversationRepo,
		messageRepo:      messageRepo,
		identity:         identity,
	}
}

type CreateConversationInput struct {
	ParticipantIDs []string
	Kind           string
	Metadata       map[string]interface{}
}

func (uc *ConversationUseCase) Create(ctx context.Context, input CreateConversationInput) (*entity.Conversation, error) {
	seen := make(map[string]bool)
	var participantIDs []string
	for _, id := range input.ParticipantIDs {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		participantIDs = append(participantIDs, id)
	}

	if len(participantIDs) == 0 {
		return nil, errors.InvalidArgument("At least one participant id is required", nil)
	}

	kind := input.Kind
	if kind == "" {
		kind = "DIRECT"
	}

	now := time.Now()
	participants := make(map[string]*entity.Participant, len(participantIDs))
	for _, id := range participantIDs {
		principal, err := uc.identity.Resolve(ctx, id)
		if err != nil {
			logger.Error("Create conversation: failed to resolve principal %s: %v", id, err)
			return nil, err
		}

		// Display name and type are resolved once here and denormalized on
		// the document, so sending a message never costs an identity lookup.
		participants[id] = &entity.Participant{
			PrincipalID: principal.ID,
			DisplayName: principal.DisplayName,
			Type:        principal.Type,
			UnreadCount: 0,
			LastReadAt:  now,
		}
	}

	conversation := &entity.Conversation{
		Kind:           kind,
		ParticipantIDs: participantIDs,
		Participants:   participants,
		UnreadFor:      []string{},
		Status:         entity.StatusActive,
		Metadata:       input.Metadata,
		LastMessageAt:  now,
	}

	if err := uc.conversationRepo.Create(ctx, conversation); err != nil {
		logger.Error("Create conversation: repository create failed: %v", err)
		return nil, err
	}

	return conversation, nil
}

func (uc *ConversationUseCase) Get(ctx context.Context, id string) (*entity.Conversation, error) {
	return uc.conversationRepo.GetByID(ctx, id)
}

func (uc *ConversationUseCase) ListForPrincipal(ctx context.Context, principalID string) ([]*entity.Conversation, error) {
	return uc.conversationRepo.ListByPrincipal(ctx, principalID)
}

func (uc *ConversationUseCase) AddParticipant(ctx context.Context, id, principalID string) (*entity.Conversation, error) {
	conversation, err := uc.conversationRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if conversation.Status != entity.StatusActive {
		return nil, errors.Conflict("Conversation is not active")
	}

	// Idempotent add: a second join is a no-op, never a counter reset.
	if conversation.IsParticipant(principalID) {
		return conversation, nil
	}

	principal, err := uc.identity.Resolve(ctx, principalID)
	if err != nil {
		return nil, err
	}

	participant := &entity.Participant{
		PrincipalID: principal.ID,
		DisplayName: principal.DisplayName,
		Type:        principal.Type,
		UnreadCount: 0,
		LastReadAt:  time.Now(),
	}

	if err := uc.conversationRepo.AddParticipant(ctx, id, participant); err != nil {
		return nil, err
	}

	conversation.ParticipantIDs = append(conversation.ParticipantIDs, principalID)
	conversation.Participants[principalID] = participant

	return conversation, nil
}

func (uc *ConversationUseCase) RemoveParticipant(ctx context.Context, id, principalID string) error {
	conversation, err := uc.conversationRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if !conversation.IsParticipant(principalID) {
		return nil
	}

	if len(conversation.ParticipantIDs) <= 1 {
		return errors.Conflict("Cannot remove the last participant of a conversation")
	}

	return uc.conversationRepo.RemoveParticipant(ctx, id, principalID)
}

func (uc *ConversationUseCase) SetStatus(ctx context.Context, id, newStatus string) error {
	if _, ok := map[string]bool{
		entity.StatusActive:  true,
		entity.StatusClosed:  true,
		entity.StatusDeleted: true,
	}[newStatus]; !ok {
		return errors.InvalidArgument("Unknown conversation status", nil)
	}

	conversation, err := uc.conversationRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if !conversation.CanTransitionTo(newStatus) {
		return errors.InvalidTransition("Conversation status can only move forward: ACTIVE -> CLOSED -> DELETED")
	}

	if err := uc.conversationRepo.SetStatus(ctx, id, newStatus); err != nil {
		return err
	}

	if newStatus == entity.StatusDeleted {
		// Two-phase cascade: the document is already marked DELETED (and so
		// invisible to every query) before its messages are purged. A crash
		// in between leaves unreachable garbage, never a visible
		// half-deleted conversation.
		purgeCtx := context.WithoutCancel(ctx)
		if err := uc.messageRepo.PurgeByConversation(purgeCtx, id); err != nil {
			logger.Error("Cascade purge failed for conversation %s: %v", id, err)
			return err
		}
	}

	return nil
}

// Delete destroys the conversation and every message it owns.
func (uc *ConversationUseCase) Delete(ctx context.Context, id string) error {
	conversation, err := uc.conversationRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	deleteCtx := context.WithoutCancel(ctx)

	if conversation.Status != entity.StatusDeleted {
		if err := uc.conversationRepo.SetStatus(deleteCtx, id, entity.StatusDeleted); err != nil {
			return err
		}
	}

	if err := uc.messageRepo.PurgeByConversation(deleteCtx, id); err != nil {
		logger.Error("Cascade purge failed for conversation %s: %v", id, err)
		return err
	}

	return uc.conversationRepo.Delete(deleteCtx, id)
}
