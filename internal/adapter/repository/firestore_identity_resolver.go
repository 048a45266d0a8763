package repository

import (
	"context"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"gringochat/internal/domain/entity"
	"gringochat/pkg/errors"
)

// identityProbe maps one back-office collection to the principal type it
// holds and the document field carrying the display name.
type identityProbe struct {
	collection    string
	principalType string
	nameField     string
}

var identityProbes = []identityProbe{
	{collection: "customers", principalType: entity.PrincipalCustomer, nameField: "name"},
	{collection: "stores", principalType: entity.PrincipalStore, nameField: "businessName"},
	{collection: "couriers", principalType: entity.PrincipalCourier, nameField: "name"},
	{collection: "supportAgents", principalType: entity.PrincipalSupport, nameField: "name"},
}

type firestoreIdentityResolver struct {
	client *firestore.Client
}

// NewFirestoreIdentityResolver resolves a principal id against the delivery
// back office's typed collections. Resolution happens once, at conversation
// creation; the result is cached on the conversation document.
func NewFirestoreIdentityResolver(client *firestore.Client) *firestoreIdentityResolver {
	return &firestoreIdentityResolver{
		client: client,
	}
}

func (r *firestoreIdentityResolver) Resolve(ctx context.Context, principalID string) (*entity.Principal, error) {
	for _, probe := range identityProbes {
		doc, err := r.client.Collection(probe.collection).Doc(principalID).Get(ctx)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				continue
			}
			return nil, errors.Unavailable("Failed to resolve principal", err)
		}

		principal := &entity.Principal{
			ID:   principalID,
			Type: probe.principalType,
		}
		if name, ok := doc.Data()[probe.nameField].(string); ok {
			principal.DisplayName = name
		}
		return principal, nil
	}

	return nil, errors.NotFound("Principal", nil)
}
