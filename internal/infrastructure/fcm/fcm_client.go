package fcm

import (
	"context"

	"cloud.google.com/go/firestore"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"gringochat/pkg/logger"
)

const deviceTokensCollection = "deviceTokens"

// Client pushes notifications through Firebase Cloud Messaging. Delivery is
// best-effort; FCM owns retries and delivery guarantees.
type Client struct {
	messaging *messaging.Client
	firestore *firestore.Client
}

func NewClient(messagingClient *messaging.Client, firestoreClient *firestore.Client) *Client {
	return &Client{
		messaging: messagingClient,
		firestore: firestoreClient,
	}
}

// Send looks up the recipient's device registration token and enqueues one
// push. A principal without a registered device is not an error.
func (c *Client) Send(ctx context.Context, recipientID, title, body string, data map[string]string) error {
	doc, err := c.firestore.Collection(deviceTokensCollection).Doc(recipientID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			logger.Debug("No device token registered for principal %s", recipientID)
			return nil
		}
		return err
	}

	token, _ := doc.Data()["token"].(string)
	if token == "" {
		return nil
	}

	message := &messaging.Message{
		Token: token,
		Notification: &messaging.Notification{
			Title: title,
			Body:  body,
		},
		Data: data,
	}

	_, err = c.messaging.Send(ctx, message)
	return err
}
