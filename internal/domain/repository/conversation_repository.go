package repository

import (
	"context"
	"time"

	"gringochat/internal/domain/entity"
)

type ConversationRepository interface {
	Create(ctx context.Context, conversation *entity.Conversation) error
	GetByID(ctx context.Context, id string) (*entity.Conversation, error)
	// ListByPrincipal returns ACTIVE conversations the principal belongs to,
	// newest updatedAt first.
	ListByPrincipal(ctx context.Context, principalID string) ([]*entity.Conversation, error)
	AddParticipant(ctx context.Context, id string, participant *entity.Participant) error
	RemoveParticipant(ctx context.Context, id string, principalID string) error
	SetStatus(ctx context.Context, id string, status string) error
	SetLastMessage(ctx context.Context, id string, messageID, body string, at time.Time) error
	Delete(ctx context.Context, id string) error

	// Unread counter maintenance. Each method is a single atomic document
	// update so concurrent sends never lose increments.
	IncrementUnread(ctx context.Context, id string, recipients []string) error
	ResetUnread(ctx context.Context, id string, principalID string, readAt time.Time) error
	HasUnread(ctx context.Context, principalID string) (bool, error)
}
