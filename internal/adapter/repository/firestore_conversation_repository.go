package repository

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"gringochat/internal/domain/entity"
	"gringochat/internal/domain/repository"
	"gringochat/pkg/errors"
	"gringochat/pkg/logger"
)

const conversationsCollection = "conversations"

type firestoreConversationRepository struct {
	client *firestore.Client
}

func NewFirestoreConversationRepository(client *firestore.Client) repository.ConversationRepository {
	return &firestoreConversationRepository{
		client: client,
	}
}

func (r *firestoreConversationRepository) Create(ctx context.Context, conversation *entity.Conversation) error {
	if conversation.ID == "" {
		conversation.ID = uuid.New().String()
	}

	now := time.Now()
	conversation.CreatedAt = now
	conversation.UpdatedAt = now

	_, err := r.client.Collection(conversationsCollection).Doc(conversation.ID).Set(ctx, conversation)
	if err != nil {
		return errors.Unavailable("Failed to create conversation", err)
	}

	return nil
}

func (r *firestoreConversationRepository) GetByID(ctx context.Context, id string) (*entity.Conversation, error) {
	doc, err := r.client.Collection(conversationsCollection).Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, errors.NotFound("Conversation", err)
		}
		return nil, errors.Unavailable("Failed to get conversation", err)
	}

	var conversation entity.Conversation
	if err := doc.DataTo(&conversation); err != nil {
		return nil, errors.Internal("Failed to parse conversation data", err)
	}

	return &conversation, nil
}

func (r *firestoreConversationRepository) ListByPrincipal(ctx context.Context, principalID string) ([]*entity.Conversation, error) {
	query := r.client.Collection(conversationsCollection).
		Where("participantIds", "array-contains", principalID).
		Where("status", "==", entity.StatusActive).
		OrderBy("updatedAt", firestore.Desc)

	docs, err := query.Documents(ctx).GetAll()
	if err != nil {
		logger.Error("Firestore error while listing conversations for principal %s: %v", principalID, err)
		return nil, errors.Unavailable("Failed to list conversations", err)
	}

	var conversations []*entity.Conversation
	for _, doc := range docs {
		var conversation entity.Conversation
		if err := doc.DataTo(&conversation); err != nil {
			logger.Warn("Skipping malformed conversation %s: %v", doc.Ref.ID, err)
			continue
		}
		conversations = append(conversations, &conversation)
	}

	return conversations, nil
}

func (r *firestoreConversationRepository) AddParticipant(ctx context.Context, id string, participant *entity.Participant) error {
	_, err := r.client.Collection(conversationsCollection).Doc(id).Update(ctx, []firestore.Update{
		{FieldPath: firestore.FieldPath{"participants", participant.PrincipalID}, Value: participant},
		{Path: "participantIds", Value: firestore.ArrayUnion(participant.PrincipalID)},
		{Path: "updatedAt", Value: time.Now()},
	})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return errors.NotFound("Conversation", err)
		}
		return errors.Unavailable("Failed to add participant", err)
	}

	return nil
}

func (r *firestoreConversationRepository) RemoveParticipant(ctx context.Context, id string, principalID string) error {
	_, err := r.client.Collection(conversationsCollection).Doc(id).Update(ctx, []firestore.Update{
		{FieldPath: firestore.FieldPath{"participants", principalID}, Value: firestore.Delete},
		{Path: "participantIds", Value: firestore.ArrayRemove(principalID)},
		{Path: "unreadFor", Value: firestore.ArrayRemove(principalID)},
		{Path: "updatedAt", Value: time.Now()},
	})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return errors.NotFound("Conversation", err)
		}
		return errors.Unavailable("Failed to remove participant", err)
	}

	return nil
}

func (r *firestoreConversationRepository) SetStatus(ctx context.Context, id string, newStatus string) error {
	_, err := r.client.Collection(conversationsCollection).Doc(id).Update(ctx, []firestore.Update{
		{Path: "status", Value: newStatus},
		{Path: "updatedAt", Value: time.Now()},
	})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return errors.NotFound("Conversation", err)
		}
		return errors.Unavailable("Failed to update conversation status", err)
	}

	return nil
}

func (r *firestoreConversationRepository) SetLastMessage(ctx context.Context, id string, messageID, body string, at time.Time) error {
	_, err := r.client.Collection(conversationsCollection).Doc(id).Update(ctx, []firestore.Update{
		{Path: "lastMessageId", Value: messageID},
		{Path: "lastMessageBody", Value: body},
		{Path: "lastMessageAt", Value: at},
		{Path: "updatedAt", Value: at},
	})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return errors.NotFound("Conversation", err)
		}
		return errors.Unavailable("Failed to update last message", err)
	}

	return nil
}

// IncrementUnread bumps every recipient's counter and indexes them in
// unreadFor with one Update call. Firestore applies all transforms on a
// single document atomically, so two concurrent sends both land.
func (r *firestoreConversationRepository) IncrementUnread(ctx context.Context, id string, recipients []string) error {
	if len(recipients) == 0 {
		return nil
	}

	updates := make([]firestore.Update, 0, len(recipients)+2)
	unreadFor := make([]interface{}, 0, len(recipients))
	for _, principalID := range recipients {
		updates = append(updates, firestore.Update{
			FieldPath: firestore.FieldPath{"participants", principalID, "unreadCount"},
			Value:     firestore.Increment(1),
		})
		unreadFor = append(unreadFor, principalID)
	}
	updates = append(updates,
		firestore.Update{Path: "unreadFor", Value: firestore.ArrayUnion(unreadFor...)},
		firestore.Update{Path: "updatedAt", Value: time.Now()},
	)

	_, err := r.client.Collection(conversationsCollection).Doc(id).Update(ctx, updates)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return errors.NotFound("Conversation", err)
		}
		return errors.Unavailable("Failed to increment unread counters", err)
	}

	return nil
}

func (r *firestoreConversationRepository) ResetUnread(ctx context.Context, id string, principalID string, readAt time.Time) error {
	_, err := r.client.Collection(conversationsCollection).Doc(id).Update(ctx, []firestore.Update{
		{FieldPath: firestore.FieldPath{"participants", principalID, "unreadCount"}, Value: 0},
		{FieldPath: firestore.FieldPath{"participants", principalID, "lastReadAt"}, Value: readAt},
		{Path: "unreadFor", Value: firestore.ArrayRemove(principalID)},
	})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return errors.NotFound("Conversation", err)
		}
		return errors.Unavailable("Failed to reset unread counter", err)
	}

	return nil
}

// HasUnread is an existence check, not a count: the indexed unreadFor array
// makes it a single Limit(1) query regardless of conversation volume.
func (r *firestoreConversationRepository) HasUnread(ctx context.Context, principalID string) (bool, error) {
	query := r.client.Collection(conversationsCollection).
		Where("status", "==", entity.StatusActive).
		Where("unreadFor", "array-contains", principalID).
		Limit(1)

	iter := query.Documents(ctx)
	defer iter.Stop()

	_, err := iter.Next()
	if err == iterator.Done {
		return false, nil
	}
	if err != nil {
		return false, errors.Unavailable("Failed to query unread conversations", err)
	}

	return true, nil
}

func (r *firestoreConversationRepository) Delete(ctx context.Context, id string) error {
	_, err := r.client.Collection(conversationsCollection).Doc(id).Delete(ctx)
	if err != nil {
		return errors.Unavailable("Failed to delete conversation", err)
	}

	return nil
}
