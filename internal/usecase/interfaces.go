package usecase

import (
	"context"
	"time"

	"gringochat/internal/domain/entity"
)

// Collaborators are injected rather than reached through package globals so
// tests can substitute deterministic fakes and a multi-process deployment
// can swap in networked implementations without touching call sites.

type Cache interface {
	Get(key string) (interface{}, bool)
	Set(key string, value interface{}, ttl time.Duration)
	Invalidate(key string)
}

type Limiter interface {
	Allow(principalID string) (bool, time.Duration)
}

type Notifier interface {
	Send(ctx context.Context, recipientID, title, body string, data map[string]string) error
}

type IdentityResolver interface {
	Resolve(ctx context.Context, principalID string) (*entity.Principal, error)
}
