package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"forget_me_not/internal/domain/person"

	"github.com/google/uuid"
	_ "github.com/lib/pq" // PostgreSQL driver
)

// Custom errors
var ErrPersonNotFound = fmt.Errorf("person not found")

const personColumns = `id, user_id, name, photo_url, phone, email, reminder_frequency,
               custom_days, next_reminder_at, relationship_hint, created_at, updated_at`

type PostgresPersonRepository struct {
	db *sql.DB
}

func NewPostgresPersonRepository(db *sql.DB) *PostgresPersonRepository {
	return &PostgresPersonRepository{db: db}
}

func (r *PostgresPersonRepository) Create(ctx context.Context, p *person.Person) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	query := `INSERT INTO person (id, user_id, name, photo_url, phone, email, reminder_frequency,
               custom_days, next_reminder_at, relationship_hint)
               VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
               RETURNING created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query,
		p.ID, p.UserID, p.Name, p.PhotoURL, p.Phone, p.Email, string(p.Frequency),
		p.CustomDays, p.NextReminderAt, p.RelationshipHint,
	).Scan(&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("error creating person: %w", err)
	}
	return nil
}

func (r *PostgresPersonRepository) GetByID(ctx context.Context, id string) (*person.Person, error) {
	query := `SELECT ` + personColumns + ` FROM person WHERE id = $1`
	p := &person.Person{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&p.ID, &p.UserID, &p.Name, &p.PhotoURL, &p.Phone, &p.Email, &p.Frequency,
		&p.CustomDays, &p.NextReminderAt, &p.RelationshipHint, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrPersonNotFound
		}
		return nil, fmt.Errorf("error getting person by ID: %w", err)
	}
	return p, nil
}

func (r *PostgresPersonRepository) Update(ctx context.Context, p *person.Person) error {
	query := `UPDATE person
               SET name = $1, photo_url = $2, phone = $3, email = $4, reminder_frequency = $5,
                   custom_days = $6, next_reminder_at = $7, relationship_hint = $8, updated_at = NOW()
               WHERE id = $9
               RETURNING updated_at`

	err := r.db.QueryRowContext(ctx, query,
		p.Name, p.PhotoURL, p.Phone, p.Email, string(p.Frequency),
		p.CustomDays, p.NextReminderAt, p.RelationshipHint, p.ID,
	).Scan(&p.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return ErrPersonNotFound
		}
		return fmt.Errorf("error updating person: %w", err)
	}
	return nil
}

func (r *PostgresPersonRepository) UpdateNextReminder(ctx context.Context, id string, next time.Time) error {
	query := `UPDATE person SET next_reminder_at = $1, updated_at = NOW() WHERE id = $2`

	res, err := r.db.ExecContext(ctx, query, next, id)
	if err != nil {
		return fmt.Errorf("error updating next reminder: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("error checking updated rows: %w", err)
	}
	if affected == 0 {
		return ErrPersonNotFound
	}
	return nil
}

func (r *PostgresPersonRepository) ListByUser(ctx context.Context, userID string) ([]*person.Person, error) {
	query := `SELECT ` + personColumns + ` FROM person
               WHERE user_id = $1 ORDER BY next_reminder_at`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("error listing people for user: %w", err)
	}
	defer rows.Close()
	return scanPeople(rows)
}

func (r *PostgresPersonRepository) ListDue(ctx context.Context, asOf time.Time) ([]*person.Person, error) {
	query := `SELECT ` + personColumns + ` FROM person
               WHERE next_reminder_at <= $1 ORDER BY next_reminder_at`

	rows, err := r.db.QueryContext(ctx, query, asOf)
	if err != nil {
		return nil, fmt.Errorf("error listing due people: %w", err)
	}
	defer rows.Close()
	return scanPeople(rows)
}

func (r *PostgresPersonRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM person WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("error deleting person: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("error checking deleted rows: %w", err)
	}
	if affected == 0 {
		return ErrPersonNotFound
	}
	return nil
}

func scanPeople(rows *sql.Rows) ([]*person.Person, error) {
	people := make([]*person.Person, 0)
	for rows.Next() {
		p := &person.Person{}
		if err := rows.Scan(
			&p.ID, &p.UserID, &p.Name, &p.PhotoURL, &p.Phone, &p.Email, &p.Frequency,
			&p.CustomDays, &p.NextReminderAt, &p.RelationshipHint, &p.CreatedAt, &p.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("error scanning person: %w", err)
		}
		people = append(people, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating people: %w", err)
	}
	return people, nil
}
