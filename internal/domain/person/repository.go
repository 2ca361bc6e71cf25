// internal/domain/person/repository.go
package person

import (
	"context"
	"time"
)

// Repository defines the operations for persisting and retrieving Person entities.
type Repository interface {
	Create(ctx context.Context, p *Person) error
	GetByID(ctx context.Context, id string) (*Person, error)
	Update(ctx context.Context, p *Person) error
	// UpdateNextReminder moves only the deadline pointer. Rescheduling is the
	// hot write path, so it does not touch the display columns.
	UpdateNextReminder(ctx context.Context, id string, next time.Time) error
	// ListByUser returns the owner's people ordered soonest-due first.
	ListByUser(ctx context.Context, userID string) ([]*Person, error)
	// ListDue returns every person whose deadline is at or before asOf,
	// across all owners. Used by the dispatch run.
	ListDue(ctx context.Context, asOf time.Time) ([]*Person, error)
	Delete(ctx context.Context, id string) error
}
