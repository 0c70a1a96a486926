package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/nsokolov/studypulse-bot/internal/infra/postgres"
)

// InterestRepository provides access to user interest labels in the database.
type InterestRepository struct {
	db postgres.DBTX
	tx *postgres.Transactor
}

func NewInterestRepository(db postgres.DBTX, tx *postgres.Transactor) *InterestRepository {
	return &InterestRepository{db: db, tx: tx}
}

// ListByUserID returns the user's interest labels in storage order.
func (r *InterestRepository) ListByUserID(ctx context.Context, userID int64) ([]string, error) {
	query := `
		SELECT interest
		FROM user_interests
		WHERE user_id = $1
		ORDER BY id
	`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list interests: %w", err)
	}
	defer rows.Close()

	var labels []string
	for rows.Next() {
		var label string
		if err := rows.Scan(&label); err != nil {
			return nil, fmt.Errorf("scan interest: %w", err)
		}
		labels = append(labels, label)
	}

	return labels, rows.Err()
}

// ReplaceAll removes every stored interest of the user and inserts the
// given labels, as one transaction. Concurrent readers see either the old
// set or the new set, never the gap between delete and insert.
func (r *InterestRepository) ReplaceAll(ctx context.Context, userID int64, labels []string) error {
	return r.tx.WithinTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		if _, err := tx.Exec(ctx,
			"DELETE FROM user_interests WHERE user_id = $1", userID,
		); err != nil {
			return fmt.Errorf("delete interests: %w", err)
		}

		query := `
			INSERT INTO user_interests (user_id, interest)
			VALUES ($1, $2)
			ON CONFLICT (user_id, interest) DO NOTHING
		`
		for _, label := range labels {
			if _, err := tx.Exec(ctx, query, userID, label); err != nil {
				return fmt.Errorf("insert interest: %w", err)
			}
		}

		return nil
	})
}
