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

const messagesCollection = "messages"

type firestoreMessageRepository struct {
	client *firestore.Client
}

func NewFirestoreMessageRepository(client *firestore.Client) repository.MessageRepository {
	return &firestoreMessageRepository{
		client: client,
	}
}

func (r *firestoreMessageRepository) messages(conversationID string) *firestore.CollectionRef {
	return r.client.Collection(conversationsCollection).Doc(conversationID).Collection(messagesCollection)
}

func (r *firestoreMessageRepository) Create(ctx context.Context, message *entity.Message) error {
	if message.ID == "" {
		message.ID = uuid.New().String()
	}
	if message.CreatedAt.IsZero() {
		message.CreatedAt = time.Now()
	}

	_, err := r.messages(message.ConversationID).Doc(message.ID).Set(ctx, message)
	if err != nil {
		return errors.Unavailable("Failed to create message", err)
	}

	return nil
}

func (r *firestoreMessageRepository) ListByConversation(ctx context.Context, conversationID string, limit, offset int) ([]*entity.Message, int64, error) {
	query := r.messages(conversationID).OrderBy("createdAt", firestore.Asc)

	allDocs, err := query.Documents(ctx).GetAll()
	if err != nil {
		logger.Error("Firestore error while listing messages for conversation %s: %v", conversationID, err)
		return nil, 0, errors.Unavailable("Failed to list messages", err)
	}

	total := int64(len(allDocs))

	start := offset
	if start > len(allDocs) {
		start = len(allDocs)
	}
	end := len(allDocs)
	if limit > 0 && start+limit < end {
		end = start + limit
	}

	var messages []*entity.Message
	for _, doc := range allDocs[start:end] {
		var message entity.Message
		if err := doc.DataTo(&message); err != nil {
			logger.Warn("Skipping malformed message %s in conversation %s: %v", doc.Ref.ID, conversationID, err)
			continue
		}
		messages = append(messages, &message)
	}

	return messages, total, nil
}

// MarkRead stamps the principal's receipt on every message they have not
// read yet. Each stamp is a single-field update on one message document, so
// it is atomic per message; re-invoking finds nothing left to stamp.
func (r *firestoreMessageRepository) MarkRead(ctx context.Context, conversationID, principalID string, readAt time.Time) (int, error) {
	docs, err := r.messages(conversationID).Documents(ctx).GetAll()
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return 0, errors.NotFound("Conversation", err)
		}
		return 0, errors.Unavailable("Failed to load messages for read marking", err)
	}

	bw := r.client.BulkWriter(ctx)
	stamped := 0
	for _, doc := range docs {
		var message entity.Message
		if err := doc.DataTo(&message); err != nil {
			logger.Warn("Skipping malformed message %s during read marking: %v", doc.Ref.ID, err)
			continue
		}
		if message.ReadByPrincipal(principalID) {
			continue
		}

		_, err := bw.Update(doc.Ref, []firestore.Update{
			{FieldPath: firestore.FieldPath{"readBy", principalID}, Value: readAt},
		})
		if err != nil {
			bw.End()
			return stamped, errors.Unavailable("Failed to enqueue read receipt", err)
		}
		stamped++
	}
	bw.End()

	return stamped, nil
}

func (r *firestoreMessageRepository) PurgeByConversation(ctx context.Context, conversationID string) error {
	iter := r.messages(conversationID).Documents(ctx)
	defer iter.Stop()

	bw := r.client.BulkWriter(ctx)
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			bw.End()
			return errors.Unavailable("Failed to iterate messages for purge", err)
		}
		if _, err := bw.Delete(doc.Ref); err != nil {
			bw.End()
			return errors.Unavailable("Failed to enqueue message delete", err)
		}
	}
	bw.End()

	return nil
}
