package usecase

import (
	"context"
	"time"

	"gringochat/internal/domain/repository"
)

// UnreadStatus is the cached answer to "does this principal have anything
// unread?", stamped with the time it was computed.
type UnreadStatus struct {
	HasUnreadMessages bool      `json:"has_unread_messages"`
	Timestamp         time.Time `json:"timestamp"`
}

type ConversationUnread struct {
	ConversationID string `json:"conversation_id"`
	UnreadCount    int64  `json:"unread_count"`
}

type UnreadSummary struct {
	TotalUnreadCount int64                `json:"total_unread_count"`
	PerConversation  []ConversationUnread `json:"per_conversation"`
}

// UnreadUseCase keeps each participant's denormalized unread counter
// consistent without a full message scan on reads.
type UnreadUseCase struct {
	conversationRepo repository.ConversationRepository
	cache            Cache
	cacheTTL         time.Duration
}

func NewUnreadUseCase(conversationRepo repository.ConversationRepository, cache Cache, cacheTTL time.Duration) *UnreadUseCase {
	return &UnreadUseCase{
		conversationRepo: conversationRepo,
		cache:            cache,
		cacheTTL:         cacheTTL,
	}
}

func unreadCacheKey(principalID string) string {
	return "unread:" + principalID
}

// OnMessageSent bumps every recipient's counter in one atomic document
// update, then invalidates their cache entries before returning. The
// invalidation is synchronous: a stale "no unread" answer must not outlive
// this call.
func (uc *UnreadUseCase) OnMessageSent(ctx context.Context, conversationID, senderID string, recipients []string) error {
	targets := make([]string, 0, len(recipients))
	for _, principalID := range recipients {
		if principalID != senderID {
			targets = append(targets, principalID)
		}
	}

	if err := uc.conversationRepo.IncrementUnread(ctx, conversationID, targets); err != nil {
		return err
	}

	for _, principalID := range targets {
		uc.cache.Invalidate(unreadCacheKey(principalID))
	}

	return nil
}

// OnRead zeroes the participant's counter, stamps lastReadAt and
// invalidates their cache entry before returning.
func (uc *UnreadUseCase) OnRead(ctx context.Context, conversationID, principalID string, readAt time.Time) error {
	if err := uc.conversationRepo.ResetUnread(ctx, conversationID, principalID, readAt); err != nil {
		return err
	}

	uc.cache.Invalidate(unreadCacheKey(principalID))

	return nil
}

// HasUnread is the hot-path existence check: cache first, then a bounded
// store query on miss, populating the cache on the way back.
func (uc *UnreadUseCase) HasUnread(ctx context.Context, principalID string) (*UnreadStatus, error) {
	key := unreadCacheKey(principalID)

	if cached, ok := uc.cache.Get(key); ok {
		if unreadStatus, ok := cached.(*UnreadStatus); ok {
			return unreadStatus, nil
		}
	}

	hasUnread, err := uc.conversationRepo.HasUnread(ctx, principalID)
	if err != nil {
		return nil, err
	}

	unreadStatus := &UnreadStatus{
		HasUnreadMessages: hasUnread,
		Timestamp:         time.Now(),
	}
	uc.cache.Set(key, unreadStatus, uc.cacheTTL)

	return unreadStatus, nil
}

// UnreadSummary is the full accounting used for badge counts. It is not
// cached: it is called far less often and callers need per-conversation
// detail.
func (uc *UnreadUseCase) UnreadSummary(ctx context.Context, principalID string) (*UnreadSummary, error) {
	conversations, err := uc.conversationRepo.ListByPrincipal(ctx, principalID)
	if err != nil {
		return nil, err
	}

	summary := &UnreadSummary{
		PerConversation: []ConversationUnread{},
	}
	for _, conversation := range conversations {
		count := conversation.UnreadCountFor(principalID)
		if count == 0 {
			continue
		}
		summary.TotalUnreadCount += count
		summary.PerConversation = append(summary.PerConversation, ConversationUnread{
			ConversationID: conversation.ID,
			UnreadCount:    count,
		})
	}

	return summary, nil
}
