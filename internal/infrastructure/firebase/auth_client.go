package firebase

import (
	"context"

	"firebase.google.com/go/v4/auth"
)

// FirebaseAuthClient wraps the identity provider. The chat core never
// manages credentials; it only verifies tokens and probes connectivity.
type FirebaseAuthClient struct {
	client *auth.Client
}

func NewFirebaseAuthClient(client *auth.Client) *FirebaseAuthClient {
	return &FirebaseAuthClient{
		client: client,
	}
}

func (f *FirebaseAuthClient) VerifyToken(ctx context.Context, token string) (string, error) {
	result, err := f.client.VerifyIDToken(ctx, token)
	if err != nil {
		return "", err
	}

	return result.UID, nil
}

func (f *FirebaseAuthClient) TestConnection(ctx context.Context) error {
	// A lookup for a uid that does not exist still proves the provider is
	// reachable and credentials are valid.
	_, err := f.client.GetUser(ctx, "connectivity-probe")
	if err != nil && auth.IsUserNotFound(err) {
		return nil
	}

	return err
}
