package database

import (
	"context"
	"database/sql"
	"fmt"

	"forget_me_not/internal/domain/outreach"

	"github.com/google/uuid"
)

type PostgresOutreachRepository struct {
	db *sql.DB
}

func NewPostgresOutreachRepository(db *sql.DB) *PostgresOutreachRepository {
	return &PostgresOutreachRepository{db: db}
}

// Create appends one ledger row. There is deliberately no update or delete on
// this repository.
func (r *PostgresOutreachRepository) Create(ctx context.Context, o *outreach.Outreach) error {
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	query := `INSERT INTO outreach (id, person_id, contacted_at, note)
               VALUES ($1, $2, $3, $4)
               RETURNING created_at`

	err := r.db.QueryRowContext(ctx, query, o.ID, o.PersonID, o.ContactedAt, o.Note).Scan(&o.CreatedAt)
	if err != nil {
		return fmt.Errorf("error creating outreach entry: %w", err)
	}
	return nil
}

func (r *PostgresOutreachRepository) ListByPerson(ctx context.Context, personID string) ([]*outreach.Outreach, error) {
	query := `SELECT id, person_id, contacted_at, note, created_at
               FROM outreach WHERE person_id = $1 ORDER BY contacted_at DESC`

	rows, err := r.db.QueryContext(ctx, query, personID)
	if err != nil {
		return nil, fmt.Errorf("error listing outreach entries: %w", err)
	}
	defer rows.Close()

	entries := make([]*outreach.Outreach, 0)
	for rows.Next() {
		o := &outreach.Outreach{}
		if err := rows.Scan(&o.ID, &o.PersonID, &o.ContactedAt, &o.Note, &o.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning outreach entry: %w", err)
		}
		entries = append(entries, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating outreach entries: %w", err)
	}
	return entries, nil
}
