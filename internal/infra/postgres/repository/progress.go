package repository

import (
	"context"
	"fmt"

	"github.com/nsokolov/studypulse-bot/internal/domain/entities"
	"github.com/nsokolov/studypulse-bot/internal/infra/postgres"
)

// ProgressRepository provides access to study progress entries in the
// database. Entries are append-only; there is no update or delete path.
type ProgressRepository struct {
	db postgres.DBTX
}

func NewProgressRepository(db postgres.DBTX) *ProgressRepository {
	return &ProgressRepository{db: db}
}

// Insert appends a study progress entry and fills in its generated ID.
func (r *ProgressRepository) Insert(ctx context.Context, entry *entities.StudyProgressEntry) error {
	query := `
		INSERT INTO study_progress (user_id, topic, duration_minutes, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`

	err := r.db.QueryRow(ctx, query,
		entry.UserID, entry.Topic, entry.DurationMinutes, entry.CreatedAt,
	).Scan(&entry.ID)
	if err != nil {
		return fmt.Errorf("insert progress entry: %w", err)
	}

	return nil
}

// GetStats aggregates all entries of a user.
func (r *ProgressRepository) GetStats(ctx context.Context, userID int64) (*entities.ProgressStats, error) {
	query := `
		SELECT COALESCE(SUM(duration_minutes), 0), COUNT(*)
		FROM study_progress
		WHERE user_id = $1
	`

	var stats entities.ProgressStats
	err := r.db.QueryRow(ctx, query, userID).Scan(&stats.TotalMinutes, &stats.TotalEntries)
	if err != nil {
		return nil, fmt.Errorf("get progress stats: %w", err)
	}

	return &stats, nil
}

// ListRecent returns up to limit most recent entries, newest first.
func (r *ProgressRepository) ListRecent(ctx context.Context, userID int64, limit int) ([]*entities.StudyProgressEntry, error) {
	query := `
		SELECT id, user_id, topic, duration_minutes, created_at
		FROM study_progress
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2
	`

	rows, err := r.db.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list recent progress: %w", err)
	}
	defer rows.Close()

	var entries []*entities.StudyProgressEntry
	for rows.Next() {
		var e entities.StudyProgressEntry
		if err := rows.Scan(&e.ID, &e.UserID, &e.Topic, &e.DurationMinutes, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan progress entry: %w", err)
		}
		entries = append(entries, &e)
	}

	return entries, rows.Err()
}
