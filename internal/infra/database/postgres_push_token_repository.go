package database

import (
	"context"
	"database/sql"
	"fmt"

	"forget_me_not/internal/domain/push"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

type PostgresPushTokenRepository struct {
	db *sql.DB
}

func NewPostgresPushTokenRepository(db *sql.DB) *PostgresPushTokenRepository {
	return &PostgresPushTokenRepository{db: db}
}

// Save upserts on (user_id, token): re-registering the same device is a no-op,
// while the same owner may hold any number of distinct tokens.
func (r *PostgresPushTokenRepository) Save(ctx context.Context, userID, token string) error {
	query := `INSERT INTO user_push_tokens (id, user_id, token)
               VALUES ($1, $2, $3)
               ON CONFLICT (user_id, token) DO NOTHING`

	if _, err := r.db.ExecContext(ctx, query, uuid.NewString(), userID, token); err != nil {
		return fmt.Errorf("error saving push token: %w", err)
	}
	return nil
}

func (r *PostgresPushTokenRepository) ListByUsers(ctx context.Context, userIDs []string) ([]*push.Token, error) {
	if len(userIDs) == 0 {
		return []*push.Token{}, nil
	}
	query := `SELECT id, user_id, token, created_at
               FROM user_push_tokens WHERE user_id = ANY($1)`

	rows, err := r.db.QueryContext(ctx, query, pq.Array(userIDs))
	if err != nil {
		return nil, fmt.Errorf("error listing push tokens: %w", err)
	}
	defer rows.Close()

	tokens := make([]*push.Token, 0)
	for rows.Next() {
		t := &push.Token{}
		if err := rows.Scan(&t.ID, &t.UserID, &t.Token, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning push token: %w", err)
		}
		tokens = append(tokens, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating push tokens: %w", err)
	}
	return tokens, nil
}

func (r *PostgresPushTokenRepository) DeleteByUserAndToken(ctx context.Context, userID, token string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM user_push_tokens WHERE user_id = $1 AND token = $2`, userID, token); err != nil {
		return fmt.Errorf("error deleting push token: %w", err)
	}
	return nil
}
