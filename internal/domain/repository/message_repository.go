package repository

import (
	"context"
	"time"

	"gringochat/internal/domain/entity"
)

type MessageRepository interface {
	Create(ctx context.Context, message *entity.Message) error
	// ListByConversation returns all messages ordered by createdAt ascending.
	ListByConversation(ctx context.Context, conversationID string, limit, offset int) ([]*entity.Message, int64, error)
	// MarkRead stamps a read receipt for the principal on every message not
	// yet read by them. Returns the number of messages stamped.
	MarkRead(ctx context.Context, conversationID, principalID string, readAt time.Time) (int, error)
	// PurgeByConversation deletes every message owned by the conversation.
	PurgeByConversation(ctx context.Context, conversationID string) error
}
