// internal/domain/outreach/outreach.go
package outreach

import (
	"context"
	"database/sql"
	"time"
)

// Outreach is one recorded reach-out. The table is an append-only ledger:
// rows are never updated or deleted here, independent of the mutable deadline
// pointer on the person row.
type Outreach struct {
	ID          string
	PersonID    string
	ContactedAt time.Time
	Note        sql.NullString
	CreatedAt   time.Time
}

// Repository defines persistence for the outreach ledger.
type Repository interface {
	Create(ctx context.Context, o *Outreach) error
	ListByPerson(ctx context.Context, personID string) ([]*Outreach, error)
}
