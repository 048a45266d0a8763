package usecase

import (
	"context"
	"sync"

	"gringochat/internal/domain/entity"
	"gringochat/pkg/logger"
)

// NotificationBridge turns a "message sent" event into best-effort calls to
// the notification fan-out collaborator. One recipient's failure never
// blocks or fails delivery to the others, and the ledger's send operation
// never depends on fan-out succeeding.
type NotificationBridge struct {
	notifier Notifier
}

func NewNotificationBridge(notifier Notifier) *NotificationBridge {
	return &NotificationBridge{
		notifier: notifier,
	}
}

func (b *NotificationBridge) Fanout(ctx context.Context, conversation *entity.Conversation, message *entity.Message) {
	title := "New message"
	if sender, ok := conversation.Participants[message.SenderID]; ok && sender.DisplayName != "" {
		title = sender.DisplayName
	}

	body := previewBody(message)
	data := map[string]string{
		"conversation_id": conversation.ID,
		"message_id":      message.ID,
		"sender_id":       message.SenderID,
		"kind":            message.Kind,
	}

	// Recipients are notified concurrently; ordering across participants is
	// not part of the contract.
	var wg sync.WaitGroup
	for _, principalID := range conversation.ParticipantIDs {
		if principalID == message.SenderID {
			continue
		}

		wg.Add(1)
		go func(recipientID string) {
			defer wg.Done()
			if err := b.notifier.Send(ctx, recipientID, title, body, data); err != nil {
				logger.LogFanoutError(conversation.ID, recipientID, err)
			}
		}(principalID)
	}
	wg.Wait()
}

func previewBody(message *entity.Message) string {
	switch message.Kind {
	case entity.MessageImage:
		return "Sent a photo"
	case entity.MessageFile:
		return "Sent a file"
	case entity.MessageLocation:
		return "Shared a location"
	default:
		body := message.Body
		if len(body) > 120 {
			body = body[:117] + "..."
		}
		return body
	}
}
