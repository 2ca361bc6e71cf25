// internal/domain/push/token.go
package push

import (
	"context"
	"time"
)

// Token is one registered push destination. An owner may have any number of
// them (one per device); each row is sent to independently.
type Token struct {
	ID        string
	UserID    string
	Token     string
	CreatedAt time.Time
}

// Repository defines persistence for push destinations.
type Repository interface {
	// Save upserts on (user_id, token) so re-registering a device is a no-op.
	Save(ctx context.Context, userID, token string) error
	// ListByUsers returns every token belonging to any of the given owners.
	ListByUsers(ctx context.Context, userIDs []string) ([]*Token, error)
	DeleteByUserAndToken(ctx context.Context, userID, token string) error
}
